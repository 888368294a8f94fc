package batch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/phrazzld/smart-extract/internal/events"
)

// StatusLine renders progress events as a single, continuously rewritten terminal line.
type StatusLine struct {
	mu sync.Mutex
	w  io.Writer
}

// NewStatusLine creates a StatusLine writing to w, typically stderr.
func NewStatusLine(w io.Writer) *StatusLine {
	return &StatusLine{w: w}
}

// HandleEvent implements events.EventHandler.
func (s *StatusLine) HandleEvent(ctx context.Context, e *events.ProgressEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	switch e.Type {
	case events.BatchStarted:
		_, err = fmt.Fprintf(s.w, "\rStarting %s (0/%d)", e.Operation, e.Total)
	case events.ItemSucceeded, events.ItemFailed:
		_, err = fmt.Fprintf(s.w, "\rProcessing files (%d/%d) - %d%%", e.Settled(), e.Total, e.Percent())
	case events.BatchCompleted:
		_, err = fmt.Fprintln(s.w)
	}
	return err
}

// LogHandler reports individual failures and run boundaries through a logger.
type LogHandler struct {
	logger *slog.Logger
}

// NewLogHandler creates a LogHandler.
func NewLogHandler(logger *slog.Logger) *LogHandler {
	return &LogHandler{logger: logger.With("component", "batch_progress")}
}

// HandleEvent implements events.EventHandler.
func (h *LogHandler) HandleEvent(ctx context.Context, e *events.ProgressEvent) error {
	switch e.Type {
	case events.ItemFailed:
		h.logger.ErrorContext(ctx, "failed to process file",
			"run_id", e.RunID,
			"path", e.Path,
			"error", e.Err)
	case events.ItemSucceeded:
		h.logger.DebugContext(ctx, "file processed",
			"run_id", e.RunID,
			"path", e.Path,
			"progress", fmt.Sprintf("%d/%d", e.Settled(), e.Total))
	case events.BatchStarted, events.BatchCompleted:
		h.logger.DebugContext(ctx, "batch run event",
			"run_id", e.RunID,
			"event_type", e.Type,
			"processed", e.Processed,
			"failed", e.Failed,
			"total", e.Total)
	}
	return nil
}
