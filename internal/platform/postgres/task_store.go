package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/smart-extract/internal/platform/logger"
	"github.com/phrazzld/smart-extract/internal/task"
)

// TaskStore implements task.TaskStore using PostgreSQL
type TaskStore struct {
	db  DBTX
	now func() time.Time
}

var _ task.TaskStore = (*TaskStore)(nil)

// NewTaskStore creates a new TaskStore
func NewTaskStore(db DBTX) *TaskStore {
	return &TaskStore{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// SaveTask persists a task record
func (s *TaskStore) SaveTask(ctx context.Context, record task.TaskRecord) error {
	log := logger.FromContext(ctx)

	if record.Status == "" {
		record.Status = task.TaskStatusPending
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.now()
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = record.CreatedAt
	}

	query := `
		INSERT INTO tasks (id, name, status, error_message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.Name,
		string(record.Status),
		record.Error,
		record.CreatedAt.UTC(),
		record.UpdatedAt.UTC(),
	)
	if err != nil {
		log.Error("failed to save task",
			"task_id", record.ID,
			"error", err)
		return fmt.Errorf("failed to save task: %w", MapError(err))
	}

	return nil
}

// UpdateTaskStatus updates the status of a task in the database
func (s *TaskStore) UpdateTaskStatus(
	ctx context.Context,
	taskID uuid.UUID,
	status task.TaskStatus,
	errorMsg string,
) error {
	log := logger.FromContext(ctx)

	query := `
		UPDATE tasks
		SET status = $1, error_message = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(ctx, query, string(status), errorMsg, s.now(), taskID)
	if err != nil {
		log.Error("failed to update task status",
			"task_id", taskID,
			"status", status,
			"error", err)
		return fmt.Errorf("failed to update task status: %w", MapError(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", task.ErrTaskNotFound, taskID)
	}

	return nil
}

// ListTasks returns the most recently updated tasks, newest first.
func (s *TaskStore) ListTasks(ctx context.Context, limit int) ([]task.TaskRecord, error) {
	query := `
		SELECT id, name, status, error_message, created_at, updated_at
		FROM tasks
		ORDER BY updated_at DESC, created_at DESC
	`
	var args []any
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var records []task.TaskRecord
	for rows.Next() {
		var (
			r      task.TaskRecord
			status string
		)
		if err := rows.Scan(&r.ID, &r.Name, &status, &r.Error, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		r.Status = task.TaskStatus(status)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}

	return records, nil
}
