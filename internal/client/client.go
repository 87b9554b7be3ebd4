package client

import (
	"context"
	"io"

	"github.com/minutemate/task-engine/internal/models"
)

// IntegrationClient mirrors tasks into one external system. Implementations
// return the remote object's id from CreateTask; the engine persists it and
// treats its presence as proof the remote object exists.
type IntegrationClient interface {
	Name() string
	CreateTask(ctx context.Context, task models.Task) (string, error)
	DeleteTask(ctx context.Context, externalID string) error
}

// Extractor turns transcript text into structured candidate tasks and groups
// existing tasks into named clusters. Both calls go out to a language model
// and can be slow, rate limited or return unusable output.
type Extractor interface {
	ExtractTasks(ctx context.Context, transcript string, dateContext string) (*models.ExtractionResult, error)
	ClusterTasks(ctx context.Context, tasks []models.ClusterTask) ([]models.Cluster, error)
}

// Transcriber converts recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error)
}
