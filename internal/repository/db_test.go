package repository

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/minutemate/task-engine/internal/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := InitDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func newTestTranscript(id string) models.Transcript {
	return models.Transcript{
		ID:         id,
		Content:    "Alice will send the report by Friday.",
		Source:     "standup",
		Status:     models.ProcessingStatusProcessing,
		UploadedAt: time.Date(2025, time.November, 10, 9, 0, 0, 0, time.UTC),
	}
}

func newTestTask(id, transcriptID string) models.Task {
	deadline := time.Date(2025, time.November, 17, 0, 0, 0, 0, time.UTC)
	task := models.Task{
		ID:          id,
		Description: "Send the report",
		Type:        models.TaskTypeAction,
		Assignee:    "Alice",
		Deadline:    &deadline,
		Priority:    models.PriorityMedium,
		Status:      models.TaskStatusPending,
		Origin:      models.TaskOriginManual,
		CreatedAt:   time.Date(2025, time.November, 10, 9, 5, 0, 0, time.UTC),
	}
	if transcriptID != "" {
		task.TranscriptID = &transcriptID
		task.Origin = models.TaskOriginExtracted
	}
	return task
}
