package models

import "time"

type ProcessingStatus string

const (
	ProcessingStatusPending    ProcessingStatus = "pending"
	ProcessingStatusProcessing ProcessingStatus = "processing"
	ProcessingStatusCompleted  ProcessingStatus = "completed"
	ProcessingStatusFailed     ProcessingStatus = "failed"
)

// Terminal reports whether the status can no longer change without an
// explicit reprocess request.
func (s ProcessingStatus) Terminal() bool {
	return s == ProcessingStatusCompleted || s == ProcessingStatusFailed
}

type Transcript struct {
	ID           string           `json:"id"`
	Content      string           `json:"content,omitempty"`
	Source       string           `json:"source"`
	MeetingDate  *time.Time       `json:"meeting_date,omitempty"`
	Status       ProcessingStatus `json:"processing_status"`
	Progress     int              `json:"processing_progress"`
	ErrorMessage string           `json:"error_message,omitempty"`
	UploadedAt   time.Time        `json:"uploaded_at"`
}
