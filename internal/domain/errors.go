// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrUnknownOperation is returned when an operation name is not recognized.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrUnknownFieldType is returned when a metadata field type is not recognized.
	ErrUnknownFieldType = errors.New("unknown metadata field type")
)
