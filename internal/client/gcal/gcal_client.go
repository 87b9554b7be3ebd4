package gcal

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/minutemate/task-engine/internal/models"
)

// Client mirrors tasks as all-day events on one Google Calendar. OAuth is the
// caller's problem; the client only needs an authorized token source.
type Client struct {
	srv        *calendar.Service
	calendarID string
}

func NewClient(ctx context.Context, tokenSource oauth2.TokenSource, calendarID string) (*Client, error) {
	srv, err := calendar.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("build calendar service: %w", err)
	}
	if calendarID == "" {
		calendarID = "primary"
	}
	return &Client{srv: srv, calendarID: calendarID}, nil
}

func (c *Client) Name() string { return "calendar" }

func (c *Client) CreateTask(ctx context.Context, task models.Task) (string, error) {
	event := &calendar.Event{
		Summary:     task.Description,
		Description: eventDescription(task),
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{"task_id": task.ID},
		},
	}

	if task.Deadline != nil {
		day := task.Deadline.Format("2006-01-02")
		event.Start = &calendar.EventDateTime{Date: day}
		event.End = &calendar.EventDateTime{Date: day}
	}

	created, err := c.srv.Events.Insert(c.calendarID, event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create event (calendar): %w", err)
	}
	return created.Id, nil
}

func (c *Client) DeleteTask(ctx context.Context, externalID string) error {
	if err := c.srv.Events.Delete(c.calendarID, externalID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete event (calendar): %w", err)
	}
	return nil
}

func eventDescription(task models.Task) string {
	desc := fmt.Sprintf("Type: %s\nPriority: %s", task.Type, task.Priority)
	if task.Assignee != "" {
		desc += "\nAssignee: " + task.Assignee
	}
	if task.SuggestedApproach != "" {
		desc += "\n\n" + task.SuggestedApproach
	}
	return desc
}
