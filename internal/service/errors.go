package service

import (
	"errors"
	"fmt"
)

// Service errors. Skips use batch.ErrSkipped so the batch driver counts them as
// processed.
var (
	// ErrNoNotes is returned when a folder holds no notes to summarize.
	ErrNoNotes = errors.New("no notes to summarize")

	// ErrUnsupportedOperation is returned for operations that do not run per file.
	ErrUnsupportedOperation = errors.New("operation does not run per file")
)

// Error wraps a failure of one service operation on one note.
type Error struct {
	// Operation is the operation that failed, e.g. "tag" or "rewrite".
	Operation string
	// Path is the vault-relative path of the note, if any.
	Path string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Operation, e.Path, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

func wrapError(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Operation: operation, Path: path, Err: err}
}
