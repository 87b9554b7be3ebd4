package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/minutemate/task-engine/internal/models"
	"github.com/minutemate/task-engine/internal/repository"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := repository.InitDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

// fakeExtractor delegates to function fields so each test scripts exactly the
// behavior it needs. Calls are counted under a lock because extraction runs on
// a background goroutine.
type fakeExtractor struct {
	mu           sync.Mutex
	extractCalls int
	clusterCalls int

	extractFn func(transcript, dateContext string) (*models.ExtractionResult, error)
	clusterFn func(tasks []models.ClusterTask) ([]models.Cluster, error)
}

func (f *fakeExtractor) ExtractTasks(ctx context.Context, transcript, dateContext string) (*models.ExtractionResult, error) {
	f.mu.Lock()
	f.extractCalls++
	f.mu.Unlock()
	if f.extractFn == nil {
		return &models.ExtractionResult{}, nil
	}
	return f.extractFn(transcript, dateContext)
}

func (f *fakeExtractor) ClusterTasks(ctx context.Context, tasks []models.ClusterTask) ([]models.Cluster, error) {
	f.mu.Lock()
	f.clusterCalls++
	f.mu.Unlock()
	if f.clusterFn == nil {
		return nil, nil
	}
	return f.clusterFn(tasks)
}

func (f *fakeExtractor) calls() (extract, cluster int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.extractCalls, f.clusterCalls
}

type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	return f.text, f.err
}

// fakeIntegration mirrors tasks into an in-memory map. failTaskIDs makes
// CreateTask fail for specific tasks; failDeletes makes every delete fail.
type fakeIntegration struct {
	mu          sync.Mutex
	name        string
	nextID      int
	created     map[string]string
	createCalls int
	deleted     []string
	failTaskIDs map[string]bool
	failDeletes bool
}

func newFakeIntegration(name string) *fakeIntegration {
	return &fakeIntegration{
		name:        name,
		created:     make(map[string]string),
		failTaskIDs: make(map[string]bool),
	}
}

func (f *fakeIntegration) Name() string { return f.name }

func (f *fakeIntegration) CreateTask(ctx context.Context, task models.Task) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.failTaskIDs[task.ID] {
		return "", fmt.Errorf("%s rejected the request", f.name)
	}
	f.nextID++
	externalID := fmt.Sprintf("%s-ext-%d", f.name, f.nextID)
	f.created[task.ID] = externalID
	return externalID, nil
}

func (f *fakeIntegration) DeleteTask(ctx context.Context, externalID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDeletes {
		return fmt.Errorf("%s delete failed", f.name)
	}
	f.deleted = append(f.deleted, externalID)
	return nil
}

func testLogger() *zap.Logger { return zap.NewNop() }
