package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/minutemate/task-engine/internal/client"
	"github.com/minutemate/task-engine/internal/models"
	"github.com/minutemate/task-engine/internal/repository"
)

// ClusterService groups pending tasks into named clusters with the help of
// the extraction collaborator.
type ClusterService struct {
	tasks     *repository.TaskRepository
	extractor client.Extractor
	logger    *zap.Logger
}

func NewClusterService(tasks *repository.TaskRepository, extractor client.Extractor, logger *zap.Logger) *ClusterService {
	return &ClusterService{tasks: tasks, extractor: extractor, logger: logger}
}

// ClusterPending runs one clustering pass over every eligible task. Tasks
// that are completed or still awaiting confirmation never reach the
// collaborator. Label writes are independent per member; one failed write
// does not block the rest, and the report carries the partial outcome.
func (s *ClusterService) ClusterPending(ctx context.Context) (models.ClusterReport, error) {
	eligible, err := s.tasks.ListEligibleForClustering()
	if err != nil {
		return models.ClusterReport{}, err
	}
	if len(eligible) < 2 {
		return models.ClusterReport{}, fmt.Errorf("%w: have %d", ErrTooFewTasks, len(eligible))
	}

	input := make([]models.ClusterTask, len(eligible))
	for i, t := range eligible {
		input[i] = models.ClusterTask{
			Index:       i,
			Description: t.Description,
			Deadline:    t.Deadline,
		}
	}

	clusters, err := s.extractor.ClusterTasks(ctx, input)
	if err != nil {
		return models.ClusterReport{}, fmt.Errorf("cluster tasks: %w", err)
	}

	report := models.ClusterReport{
		Requested: len(eligible),
		Clusters:  len(clusters),
	}
	if len(clusters) == 0 {
		s.logger.Info("no grouping possible", zap.Int("tasks", len(eligible)))
		return report, nil
	}

	for _, cluster := range clusters {
		for _, idx := range cluster.TaskIndices {
			if idx < 0 || idx >= len(eligible) {
				report.Failed++
				report.Errors = append(report.Errors,
					fmt.Sprintf("cluster %q refers to unknown task index %d", cluster.Name, idx))
				continue
			}
			if err := s.tasks.UpdateClusterGroup(eligible[idx].ID, cluster.Name); err != nil {
				report.Failed++
				report.Errors = append(report.Errors,
					fmt.Sprintf("label task %s: %v", eligible[idx].ID, err))
				continue
			}
			report.Updated++
		}
	}

	s.logger.Info("clustering finished",
		zap.Int("requested", report.Requested),
		zap.Int("updated", report.Updated),
		zap.Int("failed", report.Failed))

	return report, nil
}
