package task

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// WorkFunc is the unit of work executed by the queue.
// The context is cancelled when the task times out or the queue is force-stopped.
type WorkFunc func(ctx context.Context) (any, error)

// SuccessFunc receives the result of a task whose work succeeded.
type SuccessFunc func(result any)

// ErrorFunc receives the failure of a task whose work failed, panicked or timed out.
type ErrorFunc func(err error)

// DiscardFunc is told that Clear dropped the task, so neither OnSuccess nor
// OnError will ever fire for it. err wraps ErrTaskCleared.
type DiscardFunc func(err error)

// TaskOption customizes a single enqueued task.
type TaskOption func(*queuedTask)

// OnSuccess registers the callback invoked with the work's result.
func OnSuccess(fn SuccessFunc) TaskOption {
	return func(t *queuedTask) {
		t.onSuccess = fn
	}
}

// OnError registers the callback invoked with the work's failure.
func OnError(fn ErrorFunc) TaskOption {
	return func(t *queuedTask) {
		t.onError = fn
	}
}

// OnDiscard registers the callback invoked when Clear drops the task, either
// before it started or while it was running.
func OnDiscard(fn DiscardFunc) TaskOption {
	return func(t *queuedTask) {
		t.onDiscard = fn
	}
}

// WithTimeout bounds the task's run time, overriding the queue default.
// A zero duration disables the timeout for this task.
func WithTimeout(d time.Duration) TaskOption {
	return func(t *queuedTask) {
		t.timeout = d
		t.timeoutSet = true
	}
}

// WithName labels the task in logs and in the task store.
func WithName(name string) TaskOption {
	return func(t *queuedTask) {
		t.name = name
	}
}

// queuedTask is a Task as owned by the queue: pending, then running, then dropped
// once its callback has fired.
type queuedTask struct {
	id         uuid.UUID
	name       string
	work       WorkFunc
	onSuccess  SuccessFunc
	onError    ErrorFunc
	onDiscard  DiscardFunc
	timeout    time.Duration
	timeoutSet bool
	enqueuedAt time.Time

	// generation is the queue generation the task was admitted under.
	generation uint64
}

// TaskRecord is the persisted view of a task's lifecycle.
type TaskRecord struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Status    TaskStatus `json:"status"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TaskStore defines the interface for persisting task status transitions
type TaskStore interface {
	// SaveTask persists a newly enqueued task
	SaveTask(ctx context.Context, record TaskRecord) error

	// UpdateTaskStatus updates the status of a task.
	// errorMsg is empty unless the task failed.
	UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error

	// ListTasks returns the most recently updated tasks, newest first.
	// A non-positive limit returns all tasks.
	ListTasks(ctx context.Context, limit int) ([]TaskRecord, error)
}
