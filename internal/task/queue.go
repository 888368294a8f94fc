package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/smart-extract/internal/redact"
)

// storeTimeout bounds every TaskStore call made by the queue.
const storeTimeout = 5 * time.Second

// Config holds the queue's tunables. The queue keeps its own copy; callers change
// it only through the setters.
type Config struct {
	// MaxConcurrent is the ceiling on simultaneously running tasks.
	MaxConcurrent int

	// InterTaskDelay pauses admissions after each task start.
	InterTaskDelay time.Duration

	// TaskTimeout is the default per-task run limit. Zero means no limit.
	TaskTimeout time.Duration
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		MaxConcurrent: 2,
	}
}

// QueueOption configures optional queue collaborators.
type QueueOption func(*Queue)

// WithStore records task status transitions in store.
func WithStore(store TaskStore) QueueOption {
	return func(q *Queue) {
		q.store = store
	}
}

// Queue is a bounded-concurrency FIFO scheduler for asynchronous work.
//
// A single dispatch goroutine admits pending tasks while fewer than MaxConcurrent
// are active, and exits once nothing is pending or running. Each admitted task runs
// on its own goroutine; when it settles it invokes exactly one callback, releases
// its slot and wakes the dispatcher.
type Queue struct {
	mu          sync.Mutex
	cfg         Config
	pending     []*queuedTask
	active      int
	running     bool
	closed      bool
	generation  uint64
	loopEntries int64

	// wake carries "a task settled" and "capacity changed" signals to the dispatcher.
	wake chan struct{}

	// idle is closed whenever nothing is pending or active.
	idle       chan struct{}
	idleClosed bool

	ctx    context.Context
	cancel context.CancelFunc

	store   TaskStore
	records *recorder
	logger  *slog.Logger
}

// NewQueue creates a queue with a copy of cfg.
func NewQueue(cfg Config, logger *slog.Logger, opts ...QueueOption) *Queue {
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	idle := make(chan struct{})
	close(idle)

	q := &Queue{
		wake:       make(chan struct{}, 1),
		idle:       idle,
		idleClosed: true,
		ctx:        ctx,
		cancel:     cancel,
		logger:     logger.With("component", "task_queue"),
	}
	q.cfg.MaxConcurrent = q.clampConcurrency(cfg.MaxConcurrent)
	q.cfg.InterTaskDelay = clampDelay(cfg.InterTaskDelay)
	q.cfg.TaskTimeout = clampDelay(cfg.TaskTimeout)

	for _, opt := range opts {
		opt(q)
	}
	if q.store != nil {
		q.records = newRecorder(q.store, q.logger)
	}

	return q
}

// Enqueue appends work to the pending queue and starts the dispatcher if it is idle.
// It returns the task's ID, or an error if work is nil or the queue has been shut down.
func (q *Queue) Enqueue(work WorkFunc, opts ...TaskOption) (uuid.UUID, error) {
	if work == nil {
		return uuid.Nil, ErrNilWork
	}

	t := &queuedTask{
		id:         uuid.New(),
		work:       work,
		enqueuedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(t)
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return uuid.Nil, ErrQueueClosed
	}

	// Saved under the lock so the record precedes any status update.
	q.saveRecord(t)
	q.pending = append(q.pending, t)
	q.updateIdleLocked()
	queueLen := len(q.pending)
	q.startLocked()
	q.mu.Unlock()

	q.logger.Debug("task enqueued",
		"task_id", t.id,
		"task_name", t.name,
		"queue_len", queueLen)

	return t.id, nil
}

// SetMaxConcurrent changes the concurrency ceiling. Values below 1 are clamped to 1.
// Lowering the ceiling never interrupts running tasks; admissions pause until the
// active count drops below the new value.
func (q *Queue) SetMaxConcurrent(n int) {
	n = q.clampConcurrency(n)

	q.mu.Lock()
	old := q.cfg.MaxConcurrent
	q.cfg.MaxConcurrent = n
	q.mu.Unlock()

	if old != n {
		q.logger.Info("max concurrency changed", "old", old, "new", n)
		q.signal()
	}
}

// SetInterTaskDelay changes the pause inserted after each admission.
// Negative values are clamped to zero.
func (q *Queue) SetInterTaskDelay(d time.Duration) {
	if d < 0 {
		q.logger.Warn("negative inter-task delay clamped to zero", "delay", d)
		d = 0
	}

	q.mu.Lock()
	q.cfg.InterTaskDelay = d
	q.mu.Unlock()
}

// QueueLength returns the number of tasks that have not started yet.
func (q *Queue) QueueLength() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// ActiveCount returns the number of tasks currently executing.
func (q *Queue) ActiveCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.active
}

// MaxConcurrent returns the current concurrency ceiling.
func (q *Queue) MaxConcurrent() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.cfg.MaxConcurrent
}

// InterTaskDelay returns the current admission delay.
func (q *Queue) InterTaskDelay() time.Duration {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.cfg.InterTaskDelay
}

// LoopEntries reports how many times a dispatch loop has been started.
func (q *Queue) LoopEntries() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.loopEntries
}

// Clear discards every pending task without invoking its success or error
// callbacks and resets the active count. Tasks already running are not
// interrupted, but their outcomes are dropped: callbacks of tasks admitted before
// Clear never fire. Every dropped task gets its OnDiscard callback instead, once
// for pending tasks right away and for running tasks when their work returns.
func (q *Queue) Clear() {
	q.mu.Lock()
	dropped := q.pending
	q.pending = nil
	q.active = 0
	q.generation++
	q.updateIdleLocked()
	q.mu.Unlock()

	for _, t := range dropped {
		err := fmt.Errorf("%w before start", ErrTaskCleared)
		q.recordStatus(t, TaskStatusFailed, err)
		q.invokeDiscard(t, err)
	}

	q.logger.Info("task queue cleared", "discarded", len(dropped))
	q.signal()
}

// Wait blocks until nothing is pending or active, or ctx is done.
func (q *Queue) Wait(ctx context.Context) error {
	q.mu.Lock()
	idle := q.idle
	q.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting tasks and waits for pending and running tasks to finish.
// If ctx expires first, tasks that have not started are failed with ErrQueueClosed,
// running tasks have their contexts cancelled, and the context error is returned.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	q.logger.Info("task queue shutting down")

	if err := q.Wait(ctx); err != nil {
		q.mu.Lock()
		dropped := q.pending
		q.pending = nil
		q.updateIdleLocked()
		q.mu.Unlock()

		for _, t := range dropped {
			q.recordStatus(t, TaskStatusFailed, ErrQueueClosed)
			q.invokeError(t, ErrQueueClosed)
		}
		q.cancel()
		q.flushRecords()

		q.logger.Warn("task queue shutdown interrupted",
			"dropped", len(dropped),
			"error", err)
		return fmt.Errorf("task queue shutdown: %w", err)
	}

	q.cancel()
	q.flushRecords()
	q.logger.Info("task queue shut down")
	return nil
}

// flushRecords waits, bounded by storeTimeout, for queued store writes.
func (q *Queue) flushRecords() {
	if q.records == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := q.records.flush(ctx); err != nil {
		q.logger.Warn("task records not flushed before shutdown", "error", err)
	}
}

// startLocked launches the dispatch loop unless one is already running.
func (q *Queue) startLocked() {
	if q.running {
		q.signalLocked()
		return
	}
	q.running = true
	q.loopEntries++
	go q.dispatch()
}

// dispatch admits pending tasks until the queue is empty and no task is active.
func (q *Queue) dispatch() {
	for {
		q.mu.Lock()

		if len(q.pending) > 0 && q.active < q.cfg.MaxConcurrent {
			t := q.pending[0]
			q.pending[0] = nil
			q.pending = q.pending[1:]
			q.active++
			t.generation = q.generation
			if !t.timeoutSet {
				t.timeout = q.cfg.TaskTimeout
			}
			delay := q.cfg.InterTaskDelay
			q.mu.Unlock()

			go q.execute(t)

			if delay > 0 {
				q.pause(delay)
			}
			continue
		}

		if len(q.pending) == 0 && q.active == 0 {
			q.running = false
			q.mu.Unlock()
			return
		}
		q.mu.Unlock()

		<-q.wake
	}
}

// pause sleeps for d, returning early if the queue is force-stopped.
func (q *Queue) pause(d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-q.ctx.Done():
	}
}

// execute runs a single admitted task and settles it.
func (q *Queue) execute(t *queuedTask) {
	log := q.logger.With("task_id", t.id)
	if t.name != "" {
		log = log.With("task_name", t.name)
	}

	q.recordStatus(t, TaskStatusProcessing, nil)
	log.Debug("task started", "waited", time.Since(t.enqueuedAt))

	start := time.Now()
	result, running, err := q.run(t)
	elapsed := time.Since(start)

	stale := q.isStale(t)
	switch {
	case stale:
		// Discarded below, once the work has returned.
	case err != nil:
		log.Warn("task failed", "duration", elapsed, "error", redact.Error(err))
		q.invokeError(t, err)
	default:
		log.Debug("task completed", "duration", elapsed)
		q.invokeSuccess(t, result)
	}

	if err != nil {
		q.recordStatus(t, TaskStatusFailed, err)
	} else {
		q.recordStatus(t, TaskStatusCompleted, nil)
	}

	// Work that ignored its cancelled context keeps the slot until it returns, so
	// abandoned work never pushes the running count past MaxConcurrent.
	if running != nil {
		<-running
		log.Warn("abandoned task work returned", "duration", time.Since(start))
	}
	if stale {
		log.Debug("dropping outcome of task admitted before clear", "duration", time.Since(start))
		q.invokeDiscard(t, fmt.Errorf("%w while running", ErrTaskCleared))
	}

	q.settle(t)
}

// run executes the task's work under its timeout, converting panics to errors.
// When the timeout fires or the queue is force-stopped before the work returns,
// run reports that failure at once and also returns a channel that is closed
// when the work finally returns.
func (q *Queue) run(t *queuedTask) (any, <-chan struct{}, error) {
	ctx := q.ctx
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	type outcome struct {
		result any
		err    error
	}
	done := make(chan outcome, 1)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		result, err := q.safeCall(ctx, t)
		done <- outcome{result: result, err: err}
	}()

	select {
	case o := <-done:
		return o.result, nil, timeoutError(ctx, t, o.err)
	case <-ctx.Done():
		// Work that finished right at the deadline still counts.
		select {
		case o := <-done:
			return o.result, nil, timeoutError(ctx, t, o.err)
		default:
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, finished, fmt.Errorf("%w after %s", ErrTaskTimeout, t.timeout)
		}
		return nil, finished, fmt.Errorf("task aborted: %w", ctx.Err())
	}
}

// timeoutError reports work that gave up on its own expired deadline as a timeout.
func timeoutError(ctx context.Context, t *queuedTask, err error) error {
	if err != nil && t.timeout > 0 &&
		errors.Is(err, context.DeadlineExceeded) &&
		errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s: %w", ErrTaskTimeout, t.timeout, err)
	}
	return err
}

// safeCall invokes the work function, recovering a panic into ErrTaskPanicked.
func (q *Queue) safeCall(ctx context.Context, t *queuedTask) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("task panicked",
				"task_id", t.id,
				"panic", r,
				"stack", string(debug.Stack()))
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
	}()

	return t.work(ctx)
}

func (q *Queue) invokeSuccess(t *queuedTask, result any) {
	if t.onSuccess == nil {
		return
	}
	defer q.recoverCallback(t, "success")
	t.onSuccess(result)
}

func (q *Queue) invokeError(t *queuedTask, err error) {
	if t.onError == nil {
		return
	}
	defer q.recoverCallback(t, "error")
	t.onError(err)
}

func (q *Queue) invokeDiscard(t *queuedTask, err error) {
	if t.onDiscard == nil {
		return
	}
	defer q.recoverCallback(t, "discard")
	t.onDiscard(err)
}

func (q *Queue) recoverCallback(t *queuedTask, kind string) {
	if r := recover(); r != nil {
		q.logger.Error("task callback panicked",
			"task_id", t.id,
			"callback", kind,
			"panic", r,
			"stack", string(debug.Stack()))
	}
}

// settle releases the task's slot and wakes the dispatcher.
func (q *Queue) settle(t *queuedTask) {
	q.mu.Lock()
	if t.generation == q.generation && q.active > 0 {
		q.active--
	}
	q.updateIdleLocked()
	q.mu.Unlock()

	q.signal()
}

func (q *Queue) isStale(t *queuedTask) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return t.generation != q.generation
}

func (q *Queue) signal() {
	q.mu.Lock()
	q.signalLocked()
	q.mu.Unlock()
}

func (q *Queue) signalLocked() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// updateIdleLocked keeps the idle channel in step with pending and active counts.
func (q *Queue) updateIdleLocked() {
	busy := len(q.pending) > 0 || q.active > 0
	switch {
	case busy && q.idleClosed:
		q.idle = make(chan struct{})
		q.idleClosed = false
	case !busy && !q.idleClosed:
		close(q.idle)
		q.idleClosed = true
	}
}

func (q *Queue) clampConcurrency(n int) int {
	if n < 1 {
		q.logger.Warn("max concurrency must be at least 1, clamping", "requested", n)
		return 1
	}
	return n
}

func clampDelay(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

func (q *Queue) saveRecord(t *queuedTask) {
	if q.records == nil {
		return
	}
	q.records.push(storeOp{record: &TaskRecord{
		ID:        t.id,
		Name:      t.name,
		Status:    TaskStatusPending,
		CreatedAt: t.enqueuedAt,
		UpdatedAt: t.enqueuedAt,
	}})
}

func (q *Queue) recordStatus(t *queuedTask, status TaskStatus, taskErr error) {
	if q.records == nil {
		return
	}
	errMsg := ""
	if taskErr != nil {
		errMsg = redact.Error(taskErr)
	}
	q.records.push(storeOp{id: t.id, status: status, errMsg: errMsg})
}
