package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/minutemate/task-engine/internal/models"
)

const taskColumns = `id, transcript_id, description, task_type, assignee, deadline, priority, status,
	needs_confirmation, cluster_group, suggested_approach, completion_note, completed_date, origin, created_at`

type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// TaskFilter narrows List. Zero values mean "no constraint".
type TaskFilter struct {
	TranscriptID      string
	Status            models.TaskStatus
	NeedsConfirmation *bool
}

func scanTask(row interface{ Scan(...any) error }) (models.Task, error) {
	var t models.Task
	err := row.Scan(
		&t.ID,
		&t.TranscriptID,
		&t.Description,
		&t.Type,
		&t.Assignee,
		&t.Deadline,
		&t.Priority,
		&t.Status,
		&t.NeedsConfirmation,
		&t.ClusterGroup,
		&t.SuggestedApproach,
		&t.CompletionNote,
		&t.CompletedDate,
		&t.Origin,
		&t.CreatedAt,
	)
	return t, err
}

func (r *TaskRepository) insertTask(tx *sql.Tx, task *models.Task) error {
	query := `
		INSERT INTO tasks (` + taskColumns + `)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := tx.Exec(query,
		task.ID,
		task.TranscriptID,
		task.Description,
		task.Type,
		task.Assignee,
		task.Deadline,
		task.Priority,
		task.Status,
		task.NeedsConfirmation,
		task.ClusterGroup,
		task.SuggestedApproach,
		task.CompletionNote,
		task.CompletedDate,
		task.Origin,
		task.CreatedAt,
	)
	return err
}

func (r *TaskRepository) Create(task *models.Task) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin create task: %w", err)
	}
	defer tx.Rollback()

	if err := r.insertTask(tx, task); err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	return tx.Commit()
}

func (r *TaskRepository) Get(id string) (models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`

	t, err := scanTask(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}

	t.ExternalIDs, err = r.externalIDs(id)
	if err != nil {
		return models.Task{}, err
	}
	return t, nil
}

func (r *TaskRepository) queryTasks(query string, args ...any) ([]models.Task, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range tasks {
		tasks[i].ExternalIDs, err = r.externalIDs(tasks[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return tasks, nil
}

func (r *TaskRepository) List(filter TaskFilter) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE 1=1`
	var args []any

	if filter.TranscriptID != "" {
		query += ` AND transcript_id = ?`
		args = append(args, filter.TranscriptID)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.NeedsConfirmation != nil {
		query += ` AND needs_confirmation = ?`
		args = append(args, *filter.NeedsConfirmation)
	}
	query += ` ORDER BY created_at, id`

	return r.queryTasks(query, args...)
}

// ListEligibleForSync returns pending, confirmed tasks that have no external
// id for the given integration. "No external id" is the one and only sync
// predicate, which is what makes repeated sync runs idempotent.
func (r *TaskRepository) ListEligibleForSync(integration string) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE status = ? AND needs_confirmation = 0
		AND id NOT IN (SELECT task_id FROM task_external_ids WHERE integration = ?)
		ORDER BY created_at, id`
	return r.queryTasks(query, models.TaskStatusPending, integration)
}

// ListEligibleForClustering returns pending tasks not awaiting confirmation.
func (r *TaskRepository) ListEligibleForClustering() ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE status = ? AND needs_confirmation = 0
		ORDER BY created_at, id`
	return r.queryTasks(query, models.TaskStatusPending)
}

// Confirm clears needs_confirmation and changes nothing else. Confirming an
// already-confirmed task is a no-op, not an error.
func (r *TaskRepository) Confirm(id string) error {
	result, err := r.db.Exec(`UPDATE tasks SET needs_confirmation = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("confirm task: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *TaskRepository) Complete(id string, note string) error {
	query := `UPDATE tasks SET status = ?, completion_note = ?, completed_date = CURRENT_TIMESTAMP WHERE id = ?`
	result, err := r.db.Exec(query, models.TaskStatusCompleted, note, id)
	if err != nil {
		return fmt.Errorf("complete task: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *TaskRepository) UpdateClusterGroup(id string, name string) error {
	result, err := r.db.Exec(`UPDATE tasks SET cluster_group = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("update cluster group: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *TaskRepository) Delete(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin delete task: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM task_external_ids WHERE task_id = ?`, id); err != nil {
		return fmt.Errorf("delete task links: %w", err)
	}

	result, err := tx.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}

	return tx.Commit()
}

// SetExternalID records the id of the mirrored object in one integration.
// The write is scoped to (task, integration); concurrent syncs of different
// integrations touch disjoint rows.
func (r *TaskRepository) SetExternalID(taskID, integration, externalID string) error {
	query := `INSERT OR REPLACE INTO task_external_ids (task_id, integration, external_id) VALUES (?, ?, ?)`
	if _, err := r.db.Exec(query, taskID, integration, externalID); err != nil {
		return fmt.Errorf("set external id: %w", err)
	}
	return nil
}

func (r *TaskRepository) externalIDs(taskID string) (map[string]string, error) {
	rows, err := r.db.Query(`SELECT integration, external_id FROM task_external_ids WHERE task_id = ?`, taskID)
	if err != nil {
		return nil, fmt.Errorf("get external ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]string)
	for rows.Next() {
		var integration, externalID string
		if err := rows.Scan(&integration, &externalID); err != nil {
			return nil, err
		}
		ids[integration] = externalID
	}
	return ids, rows.Err()
}

// ReplaceExtracted swaps the pipeline-generated tasks of a transcript for a
// fresh extraction result in one transaction, so a reprocess never leaves two
// generations behind. Manually created tasks and tasks the user already
// completed are left untouched.
func (r *TaskRepository) ReplaceExtracted(transcriptID string, tasks []models.Task) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin replace tasks: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`DELETE FROM task_external_ids WHERE task_id IN
			(SELECT id FROM tasks WHERE transcript_id = ? AND origin = ? AND status = ?)`,
		transcriptID, models.TaskOriginExtracted, models.TaskStatusPending,
	); err != nil {
		return fmt.Errorf("clear old task links: %w", err)
	}

	if _, err := tx.Exec(
		`DELETE FROM tasks WHERE transcript_id = ? AND origin = ? AND status = ?`,
		transcriptID, models.TaskOriginExtracted, models.TaskStatusPending,
	); err != nil {
		return fmt.Errorf("clear old tasks: %w", err)
	}

	for i := range tasks {
		if err := r.insertTask(tx, &tasks[i]); err != nil {
			return fmt.Errorf("insert extracted task: %w", err)
		}
	}

	return tx.Commit()
}
