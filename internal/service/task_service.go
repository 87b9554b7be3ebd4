package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/minutemate/task-engine/internal/models"
	"github.com/minutemate/task-engine/internal/repository"
)

// TaskService covers manual task creation and the confirmation workflow.
type TaskService struct {
	tasks  *repository.TaskRepository
	logger *zap.Logger
}

func NewTaskService(tasks *repository.TaskRepository, logger *zap.Logger) *TaskService {
	return &TaskService{tasks: tasks, logger: logger}
}

type CreateTaskInput struct {
	Description  string          `json:"description"`
	Type         models.TaskType `json:"task_type"`
	Assignee     string          `json:"assignee"`
	Deadline     *time.Time      `json:"deadline"`
	Priority     models.Priority `json:"priority"`
	TranscriptID *string         `json:"transcript_id"`
}

func (s *TaskService) CreateManual(ctx context.Context, input CreateTaskInput) (models.Task, error) {
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return models.Task{}, fmt.Errorf("%w: description is required", ErrValidation)
	}

	taskType := input.Type
	switch taskType {
	case "":
		taskType = models.TaskTypeAction
	case models.TaskTypeCommitment, models.TaskTypeAction, models.TaskTypeFollowUp, models.TaskTypeRisk:
	default:
		return models.Task{}, fmt.Errorf("%w: unknown task type %q", ErrValidation, input.Type)
	}

	priority := input.Priority
	switch priority {
	case "":
		priority = models.PriorityMedium
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityHighest:
	default:
		return models.Task{}, fmt.Errorf("%w: unknown priority %q", ErrValidation, input.Priority)
	}

	deadline := input.Deadline
	if deadline == nil {
		now := time.Now().UTC()
		d := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).
			AddDate(0, 0, deadlineFallbackDays)
		deadline = &d
	}

	task := models.Task{
		ID:           uuid.NewString(),
		TranscriptID: input.TranscriptID,
		Description:  description,
		Type:         taskType,
		Assignee:     strings.TrimSpace(input.Assignee),
		Deadline:     deadline,
		Priority:     priority,
		Status:       models.TaskStatusPending,
		Origin:       models.TaskOriginManual,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.tasks.Create(&task); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// Confirm resolves a needs-confirmation task by clearing the flag. No other
// field changes. Confirming twice is harmless.
func (s *TaskService) Confirm(ctx context.Context, id string) error {
	return s.tasks.Confirm(id)
}

// Reject resolves a needs-confirmation task by deleting it permanently.
// Rejecting an id that no longer exists is a not-found error.
func (s *TaskService) Reject(ctx context.Context, id string) error {
	if err := s.tasks.Delete(id); err != nil {
		return err
	}
	s.logger.Info("task rejected", zap.String("task_id", id))
	return nil
}

func (s *TaskService) Complete(ctx context.Context, id string, note string) error {
	return s.tasks.Complete(id, note)
}

func (s *TaskService) Get(ctx context.Context, id string) (models.Task, error) {
	return s.tasks.Get(id)
}

func (s *TaskService) List(ctx context.Context, filter repository.TaskFilter) ([]models.Task, error) {
	return s.tasks.List(filter)
}
