package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/minutemate/task-engine/internal/models"
)

type TranscriptRepository struct {
	db *sql.DB
}

func NewTranscriptRepository(db *sql.DB) *TranscriptRepository {
	return &TranscriptRepository{db: db}
}

func (r *TranscriptRepository) Create(t *models.Transcript) error {
	query := `
		INSERT INTO transcripts (id, content, source, meeting_date, processing_status, processing_progress, error_message, uploaded_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		t.ID,
		t.Content,
		t.Source,
		t.MeetingDate,
		t.Status,
		t.Progress,
		t.ErrorMessage,
		t.UploadedAt,
	)

	if err != nil {
		return fmt.Errorf("create transcript: %w", err)
	}

	return nil
}

func (r *TranscriptRepository) Get(id string) (models.Transcript, error) {
	query := `
		SELECT id, content, source, meeting_date, processing_status, processing_progress, error_message, uploaded_at
		FROM transcripts WHERE id = ?
	`

	var t models.Transcript
	err := r.db.QueryRow(query, id).Scan(
		&t.ID,
		&t.Content,
		&t.Source,
		&t.MeetingDate,
		&t.Status,
		&t.Progress,
		&t.ErrorMessage,
		&t.UploadedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Transcript{}, fmt.Errorf("transcript %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Transcript{}, fmt.Errorf("get transcript: %w", err)
	}

	return t, nil
}

func (r *TranscriptRepository) List() ([]models.Transcript, error) {
	query := `
		SELECT id, content, source, meeting_date, processing_status, processing_progress, error_message, uploaded_at
		FROM transcripts ORDER BY uploaded_at DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list transcripts: %w", err)
	}
	defer rows.Close()

	var transcripts []models.Transcript
	for rows.Next() {
		var t models.Transcript
		err := rows.Scan(
			&t.ID,
			&t.Content,
			&t.Source,
			&t.MeetingDate,
			&t.Status,
			&t.Progress,
			&t.ErrorMessage,
			&t.UploadedAt,
		)
		if err != nil {
			return nil, err
		}
		transcripts = append(transcripts, t)
	}

	return transcripts, rows.Err()
}

// UpdateProgress advances processing_progress. Progress never decreases and is
// only written while the transcript is still processing, so a late checkpoint
// from an abandoned run cannot roll a newer value back.
func (r *TranscriptRepository) UpdateProgress(id string, progress int) error {
	query := `
		UPDATE transcripts
		SET processing_progress = MAX(processing_progress, ?)
		WHERE id = ? AND processing_status = ?
	`
	_, err := r.db.Exec(query, progress, id, models.ProcessingStatusProcessing)
	return err
}

// UpdateContent stores transcript text obtained from the transcription
// collaborator, so audio uploads can be reprocessed without re-transcribing.
func (r *TranscriptRepository) UpdateContent(id string, content string) error {
	_, err := r.db.Exec(`UPDATE transcripts SET content = ? WHERE id = ?`, content, id)
	return err
}

func (r *TranscriptRepository) MarkCompleted(id string) error {
	query := `UPDATE transcripts SET processing_status = ?, processing_progress = 100, error_message = '' WHERE id = ?`
	_, err := r.db.Exec(query, models.ProcessingStatusCompleted, id)
	return err
}

func (r *TranscriptRepository) MarkFailed(id string, message string) error {
	query := `UPDATE transcripts SET processing_status = ?, error_message = ? WHERE id = ?`
	_, err := r.db.Exec(query, models.ProcessingStatusFailed, message, id)
	return err
}

// ResetForProcessing puts a transcript back into processing with progress 0,
// clearing any previous failure. Used by reprocess requests.
func (r *TranscriptRepository) ResetForProcessing(id string) error {
	query := `UPDATE transcripts SET processing_status = ?, processing_progress = 0, error_message = '' WHERE id = ?`
	result, err := r.db.Exec(query, models.ProcessingStatusProcessing, id)
	if err != nil {
		return fmt.Errorf("reset transcript: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("transcript %s: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes a transcript together with every task extracted from it and
// their external-id links. Explicit user deletes cascade; nothing else does.
func (r *TranscriptRepository) Delete(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin delete transcript: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`DELETE FROM task_external_ids WHERE task_id IN (SELECT id FROM tasks WHERE transcript_id = ?)`, id,
	); err != nil {
		return fmt.Errorf("delete task links: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM tasks WHERE transcript_id = ?`, id); err != nil {
		return fmt.Errorf("delete transcript tasks: %w", err)
	}

	result, err := tx.Exec(`DELETE FROM transcripts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transcript: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("transcript %s: %w", id, ErrNotFound)
	}

	return tx.Commit()
}
