package api

import (
	"github.com/google/uuid"

	"github.com/phrazzld/smart-extract/internal/batch"
)

// ExtractRequest is the payload of POST /api/extract.
type ExtractRequest struct {
	Text       string `json:"text"        validate:"required"`
	SourcePath string `json:"source_path"`
}

// TaskAcceptedResponse is returned when a task was queued.
type TaskAcceptedResponse struct {
	TaskID uuid.UUID `json:"task_id"`
}

// BatchRequest is the payload of POST /api/batches.
type BatchRequest struct {
	Folder    string `json:"folder"`
	Operation string `json:"operation" validate:"required,oneof=tag metadata rewrite"`
}

// BatchAcceptedResponse is returned when a batch run was started.
type BatchAcceptedResponse struct {
	RunID uuid.UUID `json:"run_id"`
	Total int       `json:"total"`
}

// BatchProgressResponse reports a batch run.
type BatchProgressResponse struct {
	RunID     uuid.UUID       `json:"run_id"`
	Operation string          `json:"operation"`
	Processed int             `json:"processed"`
	Skipped   int             `json:"skipped"`
	Failed    int             `json:"failed"`
	Total     int             `json:"total"`
	Done      bool            `json:"done"`
	ElapsedMS int64           `json:"elapsed_ms"`
	Failures  []batch.Failure `json:"failures,omitempty"`
}

// QueueStatusResponse reports the task queue.
type QueueStatusResponse struct {
	Pending       int `json:"pending"`
	Active        int `json:"active"`
	MaxConcurrent int `json:"max_concurrent"`
}

func progressToResponse(p batch.Progress, summary *batch.Summary) BatchProgressResponse {
	resp := BatchProgressResponse{
		RunID:     p.RunID,
		Operation: p.Operation,
		Processed: p.Processed,
		Skipped:   p.Skipped,
		Failed:    p.Failed,
		Total:     p.Total,
		Done:      p.Done,
		ElapsedMS: p.Elapsed.Milliseconds(),
	}
	if summary != nil {
		resp.Failures = summary.Failures
	}
	return resp
}
