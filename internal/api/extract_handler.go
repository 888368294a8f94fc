package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/phrazzld/smart-extract/internal/api/shared"
	"github.com/phrazzld/smart-extract/internal/platform/logger"
	"github.com/phrazzld/smart-extract/internal/redact"
	"github.com/phrazzld/smart-extract/internal/task"
)

// Submitter queues work; *task.Queue implements it.
type Submitter interface {
	Enqueue(work task.WorkFunc, opts ...task.TaskOption) (uuid.UUID, error)
}

// Extractor creates a note from a selection.
type Extractor interface {
	CreateFromSelection(ctx context.Context, text, sourcePath string) (string, error)
}

// ExtractHandler queues selections for extraction.
type ExtractHandler struct {
	queue     Submitter
	extractor Extractor
	logger    *slog.Logger
}

// NewExtractHandler creates a new ExtractHandler
func NewExtractHandler(queue Submitter, extractor Extractor, logger *slog.Logger) *ExtractHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractHandler{
		queue:     queue,
		extractor: extractor,
		logger:    logger.With("component", "extract_handler"),
	}
}

// Extract handles POST /api/extract. The note is created asynchronously; the
// response carries the task ID to look up in /api/tasks.
func (h *ExtractHandler) Extract(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	log := logger.FromContextOrDefault(r.Context(), h.logger)
	sourcePath := req.SourcePath

	id, err := h.queue.Enqueue(
		func(ctx context.Context) (any, error) {
			return h.extractor.CreateFromSelection(ctx, req.Text, sourcePath)
		},
		task.WithName("extract "+sourcePath),
		task.OnSuccess(func(result any) {
			log.Info("selection extracted", "path", result, "source_path", sourcePath)
		}),
		task.OnError(func(err error) {
			log.Error("selection extraction failed",
				"source_path", sourcePath,
				"error", redact.Error(err))
		}),
	)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, TaskAcceptedResponse{TaskID: id})
}
