package batch

import "errors"

var (
	// ErrSkipped is returned by a ProcessFunc that intentionally left a file untouched.
	// Skipped files count as processed.
	ErrSkipped = errors.New("file skipped")

	// ErrNoProcessFunc is returned when a run is started without a ProcessFunc.
	ErrNoProcessFunc = errors.New("batch process function cannot be nil")

	// ErrRunNotFound is returned when looking up an unknown run.
	ErrRunNotFound = errors.New("batch run not found")
)
