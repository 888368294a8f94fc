package task

import "errors"

// Common errors returned or delivered by the Queue
var (
	ErrQueueClosed  = errors.New("task queue is closed")
	ErrNilWork      = errors.New("task work cannot be nil")
	ErrTaskPanicked = errors.New("task panicked")
	ErrTaskTimeout  = errors.New("task timed out")
	ErrTaskNotFound = errors.New("task not found")
	ErrTaskCleared  = errors.New("task cleared from queue")
)
