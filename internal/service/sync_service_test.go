package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minutemate/task-engine/internal/client"
	"github.com/minutemate/task-engine/internal/models"
	"github.com/minutemate/task-engine/internal/repository"
)

func newSyncFixture(t *testing.T, integrations map[string]client.IntegrationClient) (*SyncService, *repository.TaskRepository, *repository.ProfileRepository) {
	t.Helper()

	db := newTestDB(t)
	tasks := repository.NewTaskRepository(db)
	profiles := repository.NewProfileRepository(db)

	require.NoError(t, profiles.EnsureProfile(repository.DefaultProfileID, "Default"))
	for name := range integrations {
		require.NoError(t, profiles.UpsertIntegration(repository.DefaultProfileID, name, true, nil))
	}

	svc := NewSyncService(tasks, profiles, integrations, testLogger())
	return svc, tasks, profiles
}

func createPendingTasks(t *testing.T, tasks *repository.TaskRepository, n int) []models.Task {
	t.Helper()

	created := make([]models.Task, 0, n)
	for i := 0; i < n; i++ {
		task := models.Task{
			ID:          fmt.Sprintf("task-%d", i+1),
			Description: fmt.Sprintf("task number %d", i+1),
			Type:        models.TaskTypeAction,
			Priority:    models.PriorityMedium,
			Status:      models.TaskStatusPending,
			Origin:      models.TaskOriginManual,
		}
		require.NoError(t, tasks.Create(&task))
		created = append(created, task)
	}
	return created
}

func TestSyncAllContinuesPastFailures(t *testing.T) {
	asana := newFakeIntegration("asana")
	asana.failTaskIDs["task-3"] = true
	svc, tasks, _ := newSyncFixture(t, map[string]client.IntegrationClient{"asana": asana})

	createPendingTasks(t, tasks, 5)

	report, err := svc.SyncAll(context.Background(), "asana")
	require.NoError(t, err)
	assert.Equal(t, 4, report.Synced)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "task-3", report.Errors[0].TaskID)

	// The four successes are recorded; the failure left no link behind.
	for _, id := range []string{"task-1", "task-2", "task-4", "task-5"} {
		task, err := tasks.Get(id)
		require.NoError(t, err)
		assert.NotEmpty(t, task.ExternalIDs["asana"], "task %s should be linked", id)
	}
	failed, err := tasks.Get("task-3")
	require.NoError(t, err)
	assert.Empty(t, failed.ExternalIDs["asana"])
}

func TestRetryOnlyTouchesUnsyncedTasks(t *testing.T) {
	asana := newFakeIntegration("asana")
	asana.failTaskIDs["task-3"] = true
	svc, tasks, _ := newSyncFixture(t, map[string]client.IntegrationClient{"asana": asana})

	createPendingTasks(t, tasks, 5)

	_, err := svc.SyncAll(context.Background(), "asana")
	require.NoError(t, err)
	assert.Equal(t, 5, asana.createCalls)

	delete(asana.failTaskIDs, "task-3")

	report, err := svc.RetryFailed(context.Background(), "asana")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Synced)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, 6, asana.createCalls, "only the previously failed task is retried")
}

func TestSyncAllIdempotent(t *testing.T) {
	asana := newFakeIntegration("asana")
	svc, tasks, _ := newSyncFixture(t, map[string]client.IntegrationClient{"asana": asana})

	createPendingTasks(t, tasks, 3)

	first, err := svc.SyncAll(context.Background(), "asana")
	require.NoError(t, err)
	assert.Equal(t, 3, first.Synced)

	second, err := svc.SyncAll(context.Background(), "asana")
	require.NoError(t, err)
	assert.Zero(t, second.Synced)
	assert.Zero(t, second.Failed)
	assert.Equal(t, 3, asana.createCalls, "already-mirrored tasks make no remote calls")
}

func TestSyncIndependentPerIntegration(t *testing.T) {
	asana := newFakeIntegration("asana")
	clickup := newFakeIntegration("clickup")
	svc, tasks, _ := newSyncFixture(t, map[string]client.IntegrationClient{
		"asana":   asana,
		"clickup": clickup,
	})

	createPendingTasks(t, tasks, 2)

	_, err := svc.SyncAll(context.Background(), "asana")
	require.NoError(t, err)

	report, err := svc.SyncAll(context.Background(), "clickup")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Synced, "asana links do not satisfy clickup")

	task, err := tasks.Get("task-1")
	require.NoError(t, err)
	assert.Len(t, task.ExternalIDs, 2)
}

func TestSyncUnknownIntegration(t *testing.T) {
	svc, _, _ := newSyncFixture(t, map[string]client.IntegrationClient{})

	_, err := svc.SyncAll(context.Background(), "jira")
	assert.ErrorIs(t, err, ErrUnknownIntegration)
}

func TestSyncDisabledIntegration(t *testing.T) {
	asana := newFakeIntegration("asana")
	svc, _, profiles := newSyncFixture(t, map[string]client.IntegrationClient{"asana": asana})

	require.NoError(t, profiles.UpsertIntegration(repository.DefaultProfileID, "asana", false, nil))

	_, err := svc.SyncAll(context.Background(), "asana")
	assert.ErrorIs(t, err, ErrIntegrationDisabled)
	assert.Zero(t, asana.createCalls)
}

func TestSyncSkipsUnconfirmedTasks(t *testing.T) {
	asana := newFakeIntegration("asana")
	svc, tasks, _ := newSyncFixture(t, map[string]client.IntegrationClient{"asana": asana})

	unconfirmed := models.Task{
		ID:                "task-unconfirmed",
		Description:       "ambiguous owner",
		Type:              models.TaskTypeAction,
		Priority:          models.PriorityMedium,
		Status:            models.TaskStatusPending,
		NeedsConfirmation: true,
		Origin:            models.TaskOriginExtracted,
	}
	require.NoError(t, tasks.Create(&unconfirmed))

	report, err := svc.SyncAll(context.Background(), "asana")
	require.NoError(t, err)
	assert.Zero(t, report.Synced)
	assert.Zero(t, asana.createCalls)
}

func TestDeleteTaskPropagatesAndStaysAuthoritative(t *testing.T) {
	asana := newFakeIntegration("asana")
	clickup := newFakeIntegration("clickup")
	clickup.failDeletes = true
	calendar := newFakeIntegration("calendar")
	svc, tasks, _ := newSyncFixture(t, map[string]client.IntegrationClient{
		"asana":    asana,
		"clickup":  clickup,
		"calendar": calendar,
	})

	created := createPendingTasks(t, tasks, 1)
	taskID := created[0].ID
	require.NoError(t, tasks.SetExternalID(taskID, "asana", "gid-1"))
	require.NoError(t, tasks.SetExternalID(taskID, "clickup", "cu-1"))

	report, err := svc.DeleteTask(context.Background(), taskID)
	require.NoError(t, err)

	assert.Equal(t, models.DeleteOutcomeSuccess, report.Outcomes["asana"])
	assert.Equal(t, models.DeleteOutcomeFailed, report.Outcomes["clickup"])
	assert.Equal(t, models.DeleteOutcomeSkipped, report.Outcomes["calendar"])
	assert.Equal(t, []string{"gid-1"}, asana.deleted)

	// Local deletion happens regardless of the failed remote delete.
	_, err = tasks.Get(taskID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteTaskNotFound(t *testing.T) {
	svc, _, _ := newSyncFixture(t, map[string]client.IntegrationClient{})

	_, err := svc.DeleteTask(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestIntegrationsListing(t *testing.T) {
	asana := newFakeIntegration("asana")
	clickup := newFakeIntegration("clickup")
	svc, _, profiles := newSyncFixture(t, map[string]client.IntegrationClient{
		"asana":   asana,
		"clickup": clickup,
	})
	require.NoError(t, profiles.UpsertIntegration(repository.DefaultProfileID, "clickup", false, nil))

	statuses, err := svc.Integrations(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, IntegrationStatus{Name: "asana", Enabled: true}, statuses[0])
	assert.Equal(t, IntegrationStatus{Name: "clickup", Enabled: false}, statuses[1])
}
