package models

import "time"

type TaskType string

const (
	TaskTypeCommitment TaskType = "commitment"
	TaskTypeAction     TaskType = "action"
	TaskTypeFollowUp   TaskType = "follow_up"
	TaskTypeRisk       TaskType = "risk"
)

type Priority string

const (
	PriorityLow     Priority = "low"
	PriorityMedium  Priority = "medium"
	PriorityHigh    Priority = "high"
	PriorityHighest Priority = "highest"
)

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

type TaskOrigin string

const (
	TaskOriginExtracted TaskOrigin = "extracted"
	TaskOriginManual    TaskOrigin = "manual"
)

// Task unifies commitments, action items, follow-ups and risks. ExternalIDs
// holds the id of the mirrored object per integration; a missing key means the
// task has not been synced to that system yet.
type Task struct {
	ID                string            `json:"id"`
	TranscriptID      *string           `json:"transcript_id,omitempty"`
	Description       string            `json:"description"`
	Type              TaskType          `json:"task_type"`
	Assignee          string            `json:"assignee,omitempty"`
	Deadline          *time.Time        `json:"deadline,omitempty"`
	Priority          Priority          `json:"priority"`
	Status            TaskStatus        `json:"status"`
	NeedsConfirmation bool              `json:"needs_confirmation"`
	ClusterGroup      *string           `json:"cluster_group,omitempty"`
	SuggestedApproach string            `json:"suggested_approach,omitempty"`
	CompletionNote    string            `json:"completion_note,omitempty"`
	CompletedDate     *time.Time        `json:"completed_date,omitempty"`
	Origin            TaskOrigin        `json:"origin"`
	CreatedAt         time.Time         `json:"created_at"`
	ExternalIDs       map[string]string `json:"external_ids,omitempty"`
}

// ExtractedItem is one candidate task returned by the extraction collaborator,
// already validated and with the deadline parsed. A nil deadline means the
// collaborator omitted one; the pipeline applies the hard fallback.
type ExtractedItem struct {
	Description       string
	Assignee          string
	Deadline          *time.Time
	Priority          Priority
	SuggestedApproach string
	NeedsConfirmation bool
}

type ExtractionResult struct {
	Commitments []ExtractedItem
	ActionItems []ExtractedItem
	FollowUps   []ExtractedItem
	Risks       []ExtractedItem
}

func (r *ExtractionResult) Total() int {
	return len(r.Commitments) + len(r.ActionItems) + len(r.FollowUps) + len(r.Risks)
}

// ClusterTask is the view of a task sent to the clustering collaborator.
// Index is a local position in the batch, not a task id.
type ClusterTask struct {
	Index       int
	Description string
	Deadline    *time.Time
}

type Cluster struct {
	Name        string
	Reasoning   string
	TaskIndices []int
}
