package asana

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

// AsanaClient mirrors tasks into a single Asana project.
type AsanaClient struct {
	baseUrl    string
	token      string
	projectGid string
	httpClient *http.Client
}

func NewAsanaClient(token, projectGid string) *AsanaClient {
	return &AsanaClient{
		baseUrl:    "https://app.asana.com/api/1.0",
		token:      token,
		projectGid: projectGid,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *AsanaClient) Name() string { return "asana" }

func formatDueDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

func decodeError(statusCode int, body io.Reader) error {
	errorBody, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read error body (asana): %w", err)
	}

	var asanaErr AsanaErrors
	if err := json.Unmarshal(errorBody, &asanaErr); err != nil {
		return fmt.Errorf("error status (asana): %d", statusCode)
	}
	if len(asanaErr.Errors) > 0 {
		return fmt.Errorf("Asana error: %s", asanaErr.Errors[0].Message)
	}
	return fmt.Errorf("API error status: %d", statusCode)
}

func (c *AsanaClient) CreateTask(ctx context.Context, task models.Task) (string, error) {
	notes := task.SuggestedApproach
	if task.Assignee != "" {
		if notes != "" {
			notes += "\n\n"
		}
		notes += "Assignee: " + task.Assignee
	}

	wrapper := CreateTaskRequestWrapper{Data: CreateTaskRequest{
		Name:     task.Description,
		Notes:    notes,
		DueOn:    formatDueDate(task.Deadline),
		Projects: []string{c.projectGid},
	}}

	body, err := json.Marshal(wrapper)
	if err != nil {
		return "", fmt.Errorf("marshal create task request (asana): %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseUrl+"/tasks", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("build request (asana): %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("create task (asana): %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", decodeError(resp.StatusCode, resp.Body)
	}

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response body (asana): %w", err)
	}

	var createdTaskResp CreateTaskResponse
	if err := json.Unmarshal(responseBody, &createdTaskResp); err != nil {
		return "", fmt.Errorf("parse create task response (asana): %w", err)
	}
	if createdTaskResp.Data.Gid == "" {
		return "", fmt.Errorf("create task (asana): response carried no gid")
	}

	return createdTaskResp.Data.Gid, nil
}

func (c *AsanaClient) DeleteTask(ctx context.Context, externalID string) error {
	req, err := http.NewRequestWithContext(ctx, "DELETE", c.baseUrl+"/tasks/"+externalID, nil)
	if err != nil {
		return fmt.Errorf("build request (asana): %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete task (asana): %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp.StatusCode, resp.Body)
	}

	return nil
}
