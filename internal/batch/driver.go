package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/smart-extract/internal/events"
	"github.com/phrazzld/smart-extract/internal/task"
)

// maxTrackedRuns bounds how many finished runs stay available to Lookup.
const maxTrackedRuns = 100

// Enqueuer is the part of task.Queue the driver depends on.
type Enqueuer interface {
	Enqueue(work task.WorkFunc, opts ...task.TaskOption) (uuid.UUID, error)
	SetMaxConcurrent(n int)
	SetInterTaskDelay(d time.Duration)
}

// ProcessFunc handles a single file. Returning an error wrapping ErrSkipped marks
// the file as intentionally left untouched.
type ProcessFunc func(ctx context.Context, path string) error

// Settings are the batch tunables copied into the queue at the start of every run.
type Settings struct {
	MaxConcurrent     int
	InterTaskDelay    time.Duration
	DelayBetweenFiles time.Duration
}

// Driver enqueues one task per file and tracks the resulting runs.
type Driver struct {
	queue   Enqueuer
	emitter events.EventEmitter
	logger  *slog.Logger

	mu       sync.Mutex
	settings Settings
	runs     map[uuid.UUID]*Run
	order    []uuid.UUID
}

// NewDriver creates a batch driver on top of queue. emitter may be nil.
func NewDriver(queue Enqueuer, emitter events.EventEmitter, settings Settings, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		queue:    queue,
		emitter:  emitter,
		logger:   logger.With("component", "batch_driver"),
		settings: settings,
		runs:     make(map[uuid.UUID]*Run),
	}
}

// Settings returns the settings the next run will use.
func (d *Driver) Settings() Settings {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.settings
}

// UpdateSettings replaces the settings used by subsequent runs.
func (d *Driver) UpdateSettings(s Settings) {
	d.mu.Lock()
	d.settings = s
	d.mu.Unlock()

	d.logger.Debug("batch settings updated",
		"max_concurrent", s.MaxConcurrent,
		"inter_task_delay", s.InterTaskDelay,
		"delay_between_files", s.DelayBetweenFiles)
}

// Start begins a run over paths and returns immediately. Enqueueing happens in the
// background; cancelling ctx stops further enqueues and fails the files not yet
// enqueued, while tasks already queued run to completion.
func (d *Driver) Start(ctx context.Context, operation string, paths []string, process ProcessFunc) (*Run, error) {
	if process == nil {
		return nil, ErrNoProcessFunc
	}

	settings := d.Settings()
	d.queue.SetMaxConcurrent(settings.MaxConcurrent)
	d.queue.SetInterTaskDelay(settings.InterTaskDelay)

	items := append([]string(nil), paths...)
	run := newRun(ctx, operation, len(items), d.emitter, d.logger)
	d.track(run)

	run.logger.Info("batch run started",
		"total", run.Total,
		"max_concurrent", settings.MaxConcurrent,
		"delay_between_files", settings.DelayBetweenFiles)
	run.start()

	if len(items) > 0 {
		go d.enqueueAll(ctx, run, items, process, settings.DelayBetweenFiles)
	}

	return run, nil
}

// Run starts a batch and blocks until every file has settled or ctx is done.
func (d *Driver) Run(ctx context.Context, operation string, paths []string, process ProcessFunc) (*Summary, error) {
	run, err := d.Start(ctx, operation, paths, process)
	if err != nil {
		return nil, err
	}
	return run.Wait(ctx)
}

// Lookup returns a run started by this driver.
func (d *Driver) Lookup(id uuid.UUID) (*Run, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	run, ok := d.runs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, nil
}

func (d *Driver) enqueueAll(ctx context.Context, run *Run, paths []string, process ProcessFunc, delay time.Duration) {
	for i, path := range paths {
		if i > 0 && delay > 0 {
			if err := sleep(ctx, delay); err != nil {
				d.abandon(run, paths[i:], err)
				return
			}
		}
		if err := ctx.Err(); err != nil {
			d.abandon(run, paths[i:], err)
			return
		}

		path := path
		_, err := d.queue.Enqueue(
			func(taskCtx context.Context) (any, error) {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				return nil, process(taskCtx, path)
			},
			task.WithName(run.Operation+" "+path),
			task.OnSuccess(func(any) { run.settle(path, nil) }),
			task.OnError(func(err error) { run.settle(path, err) }),
			task.OnDiscard(func(err error) { run.settle(path, err) }),
		)
		if err != nil {
			d.abandon(run, paths[i:], err)
			return
		}
	}
}

// abandon fails every path that could not be enqueued.
func (d *Driver) abandon(run *Run, paths []string, cause error) {
	run.logger.Warn("batch run stopped enqueueing",
		"remaining", len(paths),
		"error", cause)

	for _, path := range paths {
		run.settle(path, fmt.Errorf("not processed: %w", cause))
	}
}

// track registers run and evicts the oldest finished runs beyond maxTrackedRuns.
// Runs still in progress are never evicted.
func (d *Driver) track(run *Run) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.runs[run.ID] = run
	d.order = append(d.order, run.ID)

	excess := len(d.order) - maxTrackedRuns
	kept := d.order[:0]
	for _, id := range d.order {
		if excess > 0 && finished(d.runs[id]) {
			delete(d.runs, id)
			excess--
			continue
		}
		kept = append(kept, id)
	}
	clear(d.order[len(kept):])
	d.order = kept
}

func finished(run *Run) bool {
	select {
	case <-run.Done():
		return true
	default:
		return false
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
