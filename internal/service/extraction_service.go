package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/minutemate/task-engine/internal/client"
	"github.com/minutemate/task-engine/internal/models"
	"github.com/minutemate/task-engine/internal/repository"
)

const (
	progressTranscribed = 20
	progressPromptReady = 50

	// Items the collaborator returns without a deadline get meeting date
	// plus this many days. Extracted tasks never carry a null deadline.
	deadlineFallbackDays = 7

	DefaultPollInterval = time.Second
	DefaultPollAttempts = 120
)

// ExtractionService drives a transcript from upload to a terminal state. The
// extraction itself runs out of band; Submit returns as soon as the row
// exists and callers observe progress through Status or WaitForCompletion.
type ExtractionService struct {
	transcripts *repository.TranscriptRepository
	tasks       *repository.TaskRepository
	extractor   client.Extractor
	transcriber client.Transcriber
	logger      *zap.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewExtractionService(
	transcripts *repository.TranscriptRepository,
	tasks *repository.TaskRepository,
	extractor client.Extractor,
	transcriber client.Transcriber,
	logger *zap.Logger,
) *ExtractionService {
	return &ExtractionService{
		transcripts: transcripts,
		tasks:       tasks,
		extractor:   extractor,
		transcriber: transcriber,
		logger:      logger,
		inFlight:    make(map[string]struct{}),
	}
}

// acquire registers an active run for the transcript. At most one run per
// transcript id may be active; a second acquire fails until release.
func (s *ExtractionService) acquire(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, active := s.inFlight[id]; active {
		return false
	}
	s.inFlight[id] = struct{}{}
	return true
}

func (s *ExtractionService) release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, id)
}

// Submit stores the transcript and kicks off extraction in the background.
func (s *ExtractionService) Submit(ctx context.Context, content, source string, meetingDate *time.Time) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: transcript content is required", ErrValidation)
	}

	t := models.Transcript{
		ID:          uuid.NewString(),
		Content:     content,
		Source:      source,
		MeetingDate: meetingDate,
		Status:      models.ProcessingStatusProcessing,
		Progress:    0,
		UploadedAt:  time.Now().UTC(),
	}
	if err := s.transcripts.Create(&t); err != nil {
		return "", err
	}

	s.acquire(t.ID)
	go s.runExtraction(t, nil, "")

	return t.ID, nil
}

// SubmitAudio stores an audio upload and runs transcription before
// extraction. The transcribed text is persisted so a later reprocess can
// skip the audio step.
func (s *ExtractionService) SubmitAudio(ctx context.Context, audio []byte, filename, source string, meetingDate *time.Time) (string, error) {
	if s.transcriber == nil {
		return "", fmt.Errorf("%w: audio transcription is not configured", ErrValidation)
	}
	if len(audio) == 0 {
		return "", fmt.Errorf("%w: audio content is required", ErrValidation)
	}

	t := models.Transcript{
		ID:          uuid.NewString(),
		Source:      source,
		MeetingDate: meetingDate,
		Status:      models.ProcessingStatusProcessing,
		Progress:    0,
		UploadedAt:  time.Now().UTC(),
	}
	if err := s.transcripts.Create(&t); err != nil {
		return "", err
	}

	s.acquire(t.ID)
	go s.runExtraction(t, audio, filename)

	return t.ID, nil
}

// Reprocess re-runs extraction on an existing transcript. Rejected while a
// run is active; otherwise the transcript drops back to processing/0 and the
// previous generation of extracted tasks is replaced when the run finishes.
func (s *ExtractionService) Reprocess(ctx context.Context, id string) error {
	t, err := s.transcripts.Get(id)
	if err != nil {
		return err
	}
	if t.Status == models.ProcessingStatusProcessing {
		return ErrAlreadyProcessing
	}
	if !s.acquire(id) {
		return ErrAlreadyProcessing
	}

	if err := s.transcripts.ResetForProcessing(id); err != nil {
		s.release(id)
		return err
	}

	t.Status = models.ProcessingStatusProcessing
	t.Progress = 0
	go s.runExtraction(t, nil, "")

	return nil
}

// runExtraction is the background pipeline. It owns the transcript row until
// it reaches a terminal state; any failure is terminal for this run and
// leaves zero task rows behind.
func (s *ExtractionService) runExtraction(t models.Transcript, audio []byte, filename string) {
	defer s.release(t.ID)

	// Deliberately not tied to the submitting request: the run outlives it.
	ctx := context.Background()

	text := t.Content
	if len(audio) > 0 {
		transcribed, err := s.transcriber.Transcribe(ctx, bytes.NewReader(audio), filename)
		if err != nil {
			s.fail(t.ID, fmt.Errorf("transcribe audio: %w", err))
			return
		}
		text = transcribed
		if err := s.transcripts.UpdateContent(t.ID, text); err != nil {
			s.fail(t.ID, fmt.Errorf("store transcription: %w", err))
			return
		}
		s.checkpoint(t.ID, progressTranscribed)
	}

	dateContext := dateContext(t.MeetingDate)
	s.checkpoint(t.ID, progressPromptReady)

	result, err := s.extractor.ExtractTasks(ctx, text, dateContext)
	if err != nil {
		s.fail(t.ID, fmt.Errorf("extract tasks: %w", err))
		return
	}

	tasks := s.buildTasks(t, result)
	if err := s.tasks.ReplaceExtracted(t.ID, tasks); err != nil {
		s.fail(t.ID, fmt.Errorf("persist tasks: %w", err))
		return
	}

	if err := s.transcripts.MarkCompleted(t.ID); err != nil {
		s.logger.Error("mark transcript completed",
			zap.String("transcript_id", t.ID), zap.Error(err))
		return
	}

	s.logger.Info("extraction completed",
		zap.String("transcript_id", t.ID),
		zap.Int("tasks", len(tasks)))
}

func (s *ExtractionService) checkpoint(id string, progress int) {
	if err := s.transcripts.UpdateProgress(id, progress); err != nil {
		s.logger.Warn("update progress",
			zap.String("transcript_id", id), zap.Error(err))
	}
}

func (s *ExtractionService) fail(id string, err error) {
	s.logger.Warn("extraction failed",
		zap.String("transcript_id", id), zap.Error(err))
	if mErr := s.transcripts.MarkFailed(id, err.Error()); mErr != nil {
		s.logger.Error("mark transcript failed",
			zap.String("transcript_id", id), zap.Error(mErr))
	}
}

func dateContext(meetingDate *time.Time) string {
	if meetingDate == nil {
		return fmt.Sprintf("No meeting date was given; assume the meeting took place today, %s.",
			time.Now().UTC().Format("2006-01-02"))
	}
	return fmt.Sprintf("The meeting took place on %s.", meetingDate.Format("2006-01-02"))
}

func isAmbiguousAssignee(assignee string) bool {
	a := strings.TrimSpace(assignee)
	return a == "" || strings.EqualFold(a, "tbd") || strings.EqualFold(a, "unknown")
}

func (s *ExtractionService) buildTasks(t models.Transcript, result *models.ExtractionResult) []models.Task {
	base := t.UploadedAt
	if t.MeetingDate != nil {
		base = *t.MeetingDate
	}
	fallback := time.Date(base.Year(), base.Month(), base.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, deadlineFallbackDays)

	now := time.Now().UTC()
	tasks := make([]models.Task, 0, result.Total())

	appendItems := func(items []models.ExtractedItem, taskType models.TaskType) {
		for _, item := range items {
			deadline := item.Deadline
			if deadline == nil {
				d := fallback
				deadline = &d
			}
			transcriptID := t.ID
			tasks = append(tasks, models.Task{
				ID:                uuid.NewString(),
				TranscriptID:      &transcriptID,
				Description:       item.Description,
				Type:              taskType,
				Assignee:          item.Assignee,
				Deadline:          deadline,
				Priority:          item.Priority,
				Status:            models.TaskStatusPending,
				NeedsConfirmation: item.NeedsConfirmation || isAmbiguousAssignee(item.Assignee),
				SuggestedApproach: item.SuggestedApproach,
				Origin:            models.TaskOriginExtracted,
				CreatedAt:         now,
			})
		}
	}

	appendItems(result.Commitments, models.TaskTypeCommitment)
	appendItems(result.ActionItems, models.TaskTypeAction)
	appendItems(result.FollowUps, models.TaskTypeFollowUp)
	appendItems(result.Risks, models.TaskTypeRisk)

	return tasks
}

func (s *ExtractionService) Status(ctx context.Context, id string) (models.Transcript, error) {
	return s.transcripts.Get(id)
}

func (s *ExtractionService) List(ctx context.Context) ([]models.Transcript, error) {
	return s.transcripts.List()
}

// DeleteTranscript removes the transcript and cascades to its tasks.
func (s *ExtractionService) DeleteTranscript(ctx context.Context, id string) error {
	return s.transcripts.Delete(id)
}

// WaitForCompletion polls the durable status until it turns terminal or the
// attempt budget runs out. Giving up never mutates stored state; a run that
// finishes after the budget is observed by the next poll.
func (s *ExtractionService) WaitForCompletion(ctx context.Context, id string, interval time.Duration, maxAttempts int) (models.Transcript, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		t, err := s.transcripts.Get(id)
		if err != nil {
			return models.Transcript{}, err
		}
		if t.Status.Terminal() {
			return t, nil
		}

		select {
		case <-ctx.Done():
			return models.Transcript{}, ctx.Err()
		case <-time.After(interval):
		}
	}
	return models.Transcript{}, ErrStillProcessing
}
