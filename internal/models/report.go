package models

// SyncError records a single task that could not be mirrored.
type SyncError struct {
	TaskID  string `json:"task_id"`
	Message string `json:"message"`
}

// SyncReport is the outcome of a batch sync run against one integration.
// Per-task outcomes are independent; the batch never rolls back.
type SyncReport struct {
	Integration string      `json:"integration"`
	Synced      int         `json:"synced"`
	Failed      int         `json:"failed"`
	Errors      []SyncError `json:"errors,omitempty"`
}

// ClusterReport counts how many eligible tasks were offered to the clustering
// collaborator and how many label writes succeeded.
type ClusterReport struct {
	Requested int      `json:"requested"`
	Updated   int      `json:"updated"`
	Failed    int      `json:"failed"`
	Clusters  int      `json:"clusters"`
	Errors    []string `json:"errors,omitempty"`
}

type DeleteOutcome string

const (
	DeleteOutcomeSuccess DeleteOutcome = "success"
	DeleteOutcomeFailed  DeleteOutcome = "failed"
	DeleteOutcomeSkipped DeleteOutcome = "skipped"
)

// DeleteReport maps integration name to the result of propagating a task
// deletion. The local row is gone by the time this is returned.
type DeleteReport struct {
	TaskID   string                   `json:"task_id"`
	Outcomes map[string]DeleteOutcome `json:"outcomes"`
}
