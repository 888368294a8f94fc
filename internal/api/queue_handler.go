package api

import (
	"context"
	"net/http"

	"github.com/phrazzld/smart-extract/internal/api/shared"
	"github.com/phrazzld/smart-extract/internal/task"
)

const (
	defaultTaskLimit = 50
	maxTaskLimit     = 500
)

// QueueInspector reports the state of the task queue; *task.Queue implements it.
type QueueInspector interface {
	QueueLength() int
	ActiveCount() int
	MaxConcurrent() int
}

// TaskLister lists recorded tasks; every task.TaskStore implements it.
type TaskLister interface {
	ListTasks(ctx context.Context, limit int) ([]task.TaskRecord, error)
}

// QueueHandler exposes the task queue and its history.
type QueueHandler struct {
	queue QueueInspector
	tasks TaskLister
}

// NewQueueHandler creates a new QueueHandler
func NewQueueHandler(queue QueueInspector, tasks TaskLister) *QueueHandler {
	return &QueueHandler{queue: queue, tasks: tasks}
}

// GetQueue handles GET /api/queue.
func (h *QueueHandler) GetQueue(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, QueueStatusResponse{
		Pending:       h.queue.QueueLength(),
		Active:        h.queue.ActiveCount(),
		MaxConcurrent: h.queue.MaxConcurrent(),
	})
}

// ListTasks handles GET /api/tasks?limit=N.
func (h *QueueHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	limit, err := getQueryInt(r, "limit", defaultTaskLimit, maxTaskLimit)
	if err != nil {
		HandleAPIError(w, r, err, "Invalid limit")
		return
	}

	records, err := h.tasks.ListTasks(r.Context(), limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}
	if records == nil {
		records = []task.TaskRecord{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, records)
}
