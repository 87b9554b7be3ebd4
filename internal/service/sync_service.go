package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/minutemate/task-engine/internal/client"
	"github.com/minutemate/task-engine/internal/models"
	"github.com/minutemate/task-engine/internal/repository"
)

// SyncService keeps every task mirrored in the configured integrations. The
// stored external id is the single source of sync truth: present means the
// remote object exists, absent means sync is still owed. Every operation
// here is a restatement of that predicate, which is what makes them all
// idempotent and safe to repeat after partial failures.
type SyncService struct {
	tasks        *repository.TaskRepository
	profiles     *repository.ProfileRepository
	integrations map[string]client.IntegrationClient
	logger       *zap.Logger
}

func NewSyncService(
	tasks *repository.TaskRepository,
	profiles *repository.ProfileRepository,
	integrations map[string]client.IntegrationClient,
	logger *zap.Logger,
) *SyncService {
	return &SyncService{
		tasks:        tasks,
		profiles:     profiles,
		integrations: integrations,
		logger:       logger,
	}
}

func (s *SyncService) integrationFor(name string) (client.IntegrationClient, error) {
	integration, ok := s.integrations[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIntegration, name)
	}
	enabled, err := s.profiles.IsEnabled(repository.DefaultProfileID, name)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, fmt.Errorf("%w: %s", ErrIntegrationDisabled, name)
	}
	return integration, nil
}

// EnsureSynced creates the task's remote counterpart in one integration
// unless an external id is already recorded, in which case nothing is done.
func (s *SyncService) EnsureSynced(ctx context.Context, task models.Task, integrationName string) (string, error) {
	if id, ok := task.ExternalIDs[integrationName]; ok && id != "" {
		return id, nil
	}

	integration, err := s.integrationFor(integrationName)
	if err != nil {
		return "", err
	}

	externalID, err := integration.CreateTask(ctx, task)
	if err != nil {
		return "", err
	}
	if err := s.tasks.SetExternalID(task.ID, integrationName, externalID); err != nil {
		return "", err
	}
	return externalID, nil
}

// SyncAll mirrors every eligible task into one integration, sequentially to
// stay inside external rate limits. Individual failures are collected into
// the report and the batch continues; nothing spans more than one task.
func (s *SyncService) SyncAll(ctx context.Context, integrationName string) (models.SyncReport, error) {
	report := models.SyncReport{Integration: integrationName}

	if _, err := s.integrationFor(integrationName); err != nil {
		return report, err
	}

	pending, err := s.tasks.ListEligibleForSync(integrationName)
	if err != nil {
		return report, err
	}

	for _, task := range pending {
		if _, err := s.EnsureSynced(ctx, task, integrationName); err != nil {
			report.Failed++
			report.Errors = append(report.Errors, models.SyncError{
				TaskID:  task.ID,
				Message: err.Error(),
			})
			s.logger.Warn("task sync failed",
				zap.String("integration", integrationName),
				zap.String("task_id", task.ID),
				zap.Error(err))
			continue
		}
		report.Synced++
	}

	s.logger.Info("sync batch finished",
		zap.String("integration", integrationName),
		zap.Int("synced", report.Synced),
		zap.Int("failed", report.Failed))

	return report, nil
}

// RetryFailed re-runs the sync batch. A task whose earlier sync failed is
// exactly a task still lacking an external id, so the SyncAll traversal is
// the retry; tasks already mirrored are skipped by the same predicate.
func (s *SyncService) RetryFailed(ctx context.Context, integrationName string) (models.SyncReport, error) {
	return s.SyncAll(ctx, integrationName)
}

// DeleteTask propagates a deletion to every integration holding a mirror of
// the task, then deletes the local row. Local deletion is authoritative and
// happens no matter how many remote deletes fail; the report tells the
// caller which mirrors are orphaned.
func (s *SyncService) DeleteTask(ctx context.Context, taskID string) (models.DeleteReport, error) {
	task, err := s.tasks.Get(taskID)
	if err != nil {
		return models.DeleteReport{}, err
	}

	report := models.DeleteReport{
		TaskID:   taskID,
		Outcomes: make(map[string]models.DeleteOutcome, len(s.integrations)),
	}

	for name, integration := range s.integrations {
		externalID, linked := task.ExternalIDs[name]
		if !linked || externalID == "" {
			report.Outcomes[name] = models.DeleteOutcomeSkipped
			continue
		}

		enabled, err := s.profiles.IsEnabled(repository.DefaultProfileID, name)
		if err != nil || !enabled {
			report.Outcomes[name] = models.DeleteOutcomeFailed
			s.logger.Warn("delete not propagated",
				zap.String("integration", name),
				zap.String("task_id", taskID),
				zap.Bool("enabled", enabled),
				zap.Error(err))
			continue
		}

		if err := integration.DeleteTask(ctx, externalID); err != nil {
			report.Outcomes[name] = models.DeleteOutcomeFailed
			s.logger.Warn("remote delete failed",
				zap.String("integration", name),
				zap.String("task_id", taskID),
				zap.Error(err))
			continue
		}
		report.Outcomes[name] = models.DeleteOutcomeSuccess
	}

	if err := s.tasks.Delete(taskID); err != nil {
		return report, err
	}
	return report, nil
}

type IntegrationStatus struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// Integrations lists the configured integrations and whether the profile has
// them switched on.
func (s *SyncService) Integrations(ctx context.Context) ([]IntegrationStatus, error) {
	names := make([]string, 0, len(s.integrations))
	for name := range s.integrations {
		names = append(names, name)
	}
	sort.Strings(names)

	statuses := make([]IntegrationStatus, 0, len(names))
	for _, name := range names {
		enabled, err := s.profiles.IsEnabled(repository.DefaultProfileID, name)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, IntegrationStatus{Name: name, Enabled: enabled})
	}
	return statuses, nil
}
