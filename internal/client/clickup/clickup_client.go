package clickup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/minutemate/task-engine/internal/models"
)

// ClickUpClient mirrors tasks into a single ClickUp list.
type ClickUpClient struct {
	baseUrl    string
	token      string
	listId     string
	httpClient *http.Client
}

func NewClickUpClient(token, listId string) *ClickUpClient {
	return &ClickUpClient{
		baseUrl:    "https://api.clickup.com/api/v2",
		token:      token,
		listId:     listId,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *ClickUpClient) Name() string { return "clickup" }

// ClickUp priorities run 1 (urgent) to 4 (low).
func mapPriority(p models.Priority) *int {
	var v int
	switch p {
	case models.PriorityHighest:
		v = 1
	case models.PriorityHigh:
		v = 2
	case models.PriorityMedium:
		v = 3
	case models.PriorityLow:
		v = 4
	default:
		return nil
	}
	return &v
}

func decodeError(statusCode int, body io.Reader) error {
	errorBody, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read error body (clickup): %w", err)
	}

	var clickupErr ClickUpErrors
	if err := json.Unmarshal(errorBody, &clickupErr); err != nil {
		return fmt.Errorf("error status (clickup): %d", statusCode)
	}
	if clickupErr.Err != "" {
		return fmt.Errorf("ClickUp error: %s", clickupErr.Err)
	}
	return fmt.Errorf("API error status: %d", statusCode)
}

func (c *ClickUpClient) CreateTask(ctx context.Context, task models.Task) (string, error) {
	description := task.SuggestedApproach
	if task.Assignee != "" {
		if description != "" {
			description += "\n\n"
		}
		description += "Assignee: " + task.Assignee
	}

	reqBody := CreateTaskRequest{
		Name:        task.Description,
		Description: description,
		Priority:    mapPriority(task.Priority),
	}
	if task.Deadline != nil {
		ms := task.Deadline.UTC().UnixMilli()
		reqBody.DueDate = &ms
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal create task request (clickup): %w", err)
	}

	url := c.baseUrl + "/list/" + c.listId + "/task"

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("build request (clickup): %w", err)
	}

	req.Header.Set("Authorization", c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("create task (clickup): %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", decodeError(resp.StatusCode, resp.Body)
	}

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response body (clickup): %w", err)
	}

	var createdTask ClickUpTask
	if err := json.Unmarshal(responseBody, &createdTask); err != nil {
		return "", fmt.Errorf("parse create task response (clickup): %w", err)
	}
	if createdTask.Id == "" {
		return "", fmt.Errorf("create task (clickup): response carried no id")
	}

	return createdTask.Id, nil
}

func (c *ClickUpClient) DeleteTask(ctx context.Context, externalID string) error {
	req, err := http.NewRequestWithContext(ctx, "DELETE", c.baseUrl+"/task/"+externalID, nil)
	if err != nil {
		return fmt.Errorf("build request (clickup): %w", err)
	}

	req.Header.Set("Authorization", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete task (clickup): %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return decodeError(resp.StatusCode, resp.Body)
	}

	return nil
}
