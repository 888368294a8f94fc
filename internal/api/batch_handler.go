package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/phrazzld/smart-extract/internal/api/shared"
	"github.com/phrazzld/smart-extract/internal/batch"
	"github.com/phrazzld/smart-extract/internal/domain"
)

// BatchRunner starts and looks up batch runs; *batch.Driver implements it.
type BatchRunner interface {
	Start(ctx context.Context, operation string, paths []string, process batch.ProcessFunc) (*batch.Run, error)
	Lookup(id uuid.UUID) (*batch.Run, error)
}

// FolderLister lists the notes of a folder; *vault.Vault implements it.
type FolderLister interface {
	ListMarkdown(folder string) ([]string, error)
}

// Processors resolves the per-file handler of an operation; *service.Services
// implements it.
type Processors interface {
	ProcessFunc(op domain.Operation) (batch.ProcessFunc, error)
}

// BatchHandler starts folder-wide batch runs and reports their progress.
type BatchHandler struct {
	runner     BatchRunner
	folders    FolderLister
	processors Processors
	logger     *slog.Logger
}

// NewBatchHandler creates a new BatchHandler
func NewBatchHandler(runner BatchRunner, folders FolderLister, processors Processors, logger *slog.Logger) *BatchHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchHandler{
		runner:     runner,
		folders:    folders,
		processors: processors,
		logger:     logger.With("component", "batch_handler"),
	}
}

// StartBatch handles POST /api/batches.
func (h *BatchHandler) StartBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	op, err := domain.ParseOperation(req.Operation)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	process, err := h.processors.ProcessFunc(op)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	paths, err := h.folders.ListMarkdown(req.Folder)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	// The run outlives the request.
	run, err := h.runner.Start(context.WithoutCancel(r.Context()), string(op), paths, process)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.logger.InfoContext(r.Context(), "batch run accepted",
		"run_id", run.ID,
		"operation", op,
		"folder", req.Folder,
		"total", run.Total)

	shared.RespondWithJSON(w, r, http.StatusAccepted, BatchAcceptedResponse{RunID: run.ID, Total: run.Total})
}

// GetBatch handles GET /api/batches/{id}.
func (h *BatchHandler) GetBatch(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "Invalid run ID")
		return
	}

	run, err := h.runner.Lookup(id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, progressToResponse(run.Progress(), run.Summary()))
}
