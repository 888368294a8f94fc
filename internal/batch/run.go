package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/smart-extract/internal/events"
	"github.com/phrazzld/smart-extract/internal/redact"
)

// Failure records a file whose task failed.
type Failure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Summary is the final report of a run, produced once every task has settled.
type Summary struct {
	RunID     uuid.UUID     `json:"run_id"`
	Operation string        `json:"operation"`
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	Failures  []Failure     `json:"failures,omitempty"`
	Elapsed   time.Duration `json:"elapsed"`
}

// FailedPaths returns the paths of failed files in settle order.
func (s *Summary) FailedPaths() []string {
	paths := make([]string, 0, len(s.Failures))
	for _, f := range s.Failures {
		paths = append(paths, f.Path)
	}
	return paths
}

// String renders the completion message shown to the user.
func (s *Summary) String() string {
	msg := fmt.Sprintf("Done: %s processed %d of %d files in %.1fs",
		s.Operation, s.Succeeded, s.Total, s.Elapsed.Seconds())
	if s.Skipped > 0 {
		msg += fmt.Sprintf(", %d skipped", s.Skipped)
	}
	if s.Failed > 0 {
		msg += fmt.Sprintf(", %d failed", s.Failed)
	}
	return msg
}

// Progress is a point-in-time view of a run.
type Progress struct {
	RunID     uuid.UUID     `json:"run_id"`
	Operation string        `json:"operation"`
	Processed int           `json:"processed"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	Total     int           `json:"total"`
	Done      bool          `json:"done"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Run tracks the outcome of one batch started by a Driver.
type Run struct {
	ID        uuid.UUID
	Operation string
	Total     int
	StartedAt time.Time

	// emitMu keeps event emission in settle order.
	emitMu sync.Mutex

	mu        sync.Mutex
	processed int
	skipped   int
	failed    int
	failures  []Failure
	summary   *Summary
	done      chan struct{}

	ctx     context.Context
	emitter events.EventEmitter
	logger  *slog.Logger
}

func newRun(
	ctx context.Context,
	operation string,
	total int,
	emitter events.EventEmitter,
	logger *slog.Logger,
) *Run {
	id := uuid.New()
	return &Run{
		ID:        id,
		Operation: operation,
		Total:     total,
		StartedAt: time.Now(),
		done:      make(chan struct{}),
		ctx:       context.WithoutCancel(ctx),
		emitter:   emitter,
		logger:    logger.With("run_id", id, "operation", operation),
	}
}

// Done is closed once every task of the run has settled.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the run completes or ctx is done.
func (r *Run) Wait(ctx context.Context) (*Summary, error) {
	select {
	case <-r.done:
		return r.Summary(), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for batch run %s: %w", r.ID, ctx.Err())
	}
}

// Summary returns the completion summary, or nil while the run is in progress.
func (r *Run) Summary() *Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summary
}

// Progress returns a snapshot of the run's counters.
func (r *Run) Progress() Progress {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := Progress{
		RunID:     r.ID,
		Operation: r.Operation,
		Processed: r.processed,
		Skipped:   r.skipped,
		Failed:    r.failed,
		Total:     r.Total,
		Done:      r.summary != nil,
		Elapsed:   time.Since(r.StartedAt),
	}
	if r.summary != nil {
		p.Elapsed = r.summary.Elapsed
	}
	return p
}

func (r *Run) start() {
	r.emit(r.event(events.BatchStarted, "", nil))

	if r.Total == 0 {
		r.emitMu.Lock()
		defer r.emitMu.Unlock()

		r.mu.Lock()
		summary := r.completeLocked()
		r.mu.Unlock()
		r.finish(summary)
	}
}

// settle records the outcome of one file and completes the run after the last one.
func (r *Run) settle(path string, err error) {
	r.emitMu.Lock()
	defer r.emitMu.Unlock()

	r.mu.Lock()
	eventType := events.ItemSucceeded
	switch {
	case err == nil:
		r.processed++
	case errors.Is(err, ErrSkipped):
		r.processed++
		r.skipped++
	default:
		r.failed++
		r.failures = append(r.failures, Failure{Path: path, Error: redact.Error(err)})
		eventType = events.ItemFailed
	}
	item := r.eventLocked(eventType, path, err)

	var summary *Summary
	if r.processed+r.failed == r.Total {
		summary = r.completeLocked()
	}
	r.mu.Unlock()

	if err != nil && !errors.Is(err, ErrSkipped) {
		r.logger.Warn("batch item failed", "path", path, "error", redact.Error(err))
	}

	r.emit(item)
	if summary != nil {
		r.finish(summary)
	}
}

func (r *Run) completeLocked() *Summary {
	r.summary = &Summary{
		RunID:     r.ID,
		Operation: r.Operation,
		Total:     r.Total,
		Succeeded: r.processed,
		Skipped:   r.skipped,
		Failed:    r.failed,
		Failures:  append([]Failure(nil), r.failures...),
		Elapsed:   time.Since(r.StartedAt),
	}
	return r.summary
}

func (r *Run) finish(summary *Summary) {
	r.logger.Info("batch run completed",
		"total", summary.Total,
		"succeeded", summary.Succeeded,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"elapsed", summary.Elapsed)

	r.emit(r.event(events.BatchCompleted, "", nil))
	close(r.done)
}

func (r *Run) event(eventType events.EventType, path string, err error) *events.ProgressEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.eventLocked(eventType, path, err)
}

func (r *Run) eventLocked(eventType events.EventType, path string, err error) *events.ProgressEvent {
	e := events.NewProgressEvent(r.ID, eventType, r.Operation)
	e.Path = path
	e.Processed = r.processed
	e.Failed = r.failed
	e.Total = r.Total
	e.Elapsed = time.Since(r.StartedAt)
	if r.summary != nil {
		e.Elapsed = r.summary.Elapsed
	}
	if err != nil && !errors.Is(err, ErrSkipped) {
		e.Err = redact.Error(err)
	}
	return e
}

func (r *Run) emit(e *events.ProgressEvent) {
	if r.emitter == nil {
		return
	}
	if err := r.emitter.EmitEvent(r.ctx, e); err != nil {
		r.logger.Debug("progress event not delivered",
			"event_type", e.Type,
			"error", err)
	}
}
