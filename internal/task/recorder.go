package task

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/smart-extract/internal/redact"
)

// storeOp is one pending TaskStore write. A non-nil record is saved; otherwise
// the status of id is updated.
type storeOp struct {
	record *TaskRecord
	id     uuid.UUID
	status TaskStatus
	errMsg string
}

// recorder applies TaskStore writes in submission order on its own goroutine,
// so neither Enqueue nor task completion waits on the store.
type recorder struct {
	store  TaskStore
	logger *slog.Logger

	mu      sync.Mutex
	ops     []storeOp
	running bool
	idle    chan struct{}
}

func newRecorder(store TaskStore, logger *slog.Logger) *recorder {
	idle := make(chan struct{})
	close(idle)
	return &recorder{
		store:  store,
		logger: logger,
		idle:   idle,
	}
}

// push queues op and starts the writer goroutine if it is not running.
func (r *recorder) push(op storeOp) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ops = append(r.ops, op)
	if !r.running {
		r.running = true
		r.idle = make(chan struct{})
		go r.drain()
	}
}

func (r *recorder) drain() {
	for {
		r.mu.Lock()
		if len(r.ops) == 0 {
			r.running = false
			close(r.idle)
			r.mu.Unlock()
			return
		}
		op := r.ops[0]
		r.ops[0] = storeOp{}
		r.ops = r.ops[1:]
		r.mu.Unlock()

		r.apply(op)
	}
}

func (r *recorder) apply(op storeOp) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if op.record != nil {
		if err := r.store.SaveTask(ctx, *op.record); err != nil {
			r.logger.Error("failed to save task record",
				"task_id", op.record.ID,
				"error", redact.Error(err))
		}
		return
	}

	if err := r.store.UpdateTaskStatus(ctx, op.id, op.status, op.errMsg); err != nil {
		r.logger.Error("failed to update task status",
			"task_id", op.id,
			"status", op.status,
			"error", redact.Error(err))
	}
}

// flush waits until every queued write has been applied or ctx is done.
func (r *recorder) flush(ctx context.Context) error {
	r.mu.Lock()
	idle := r.idle
	r.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
