package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/phrazzld/smart-extract/internal/api/shared"
	"github.com/phrazzld/smart-extract/internal/batch"
	"github.com/phrazzld/smart-extract/internal/domain"
	"github.com/phrazzld/smart-extract/internal/service"
	"github.com/phrazzld/smart-extract/internal/task"
	"github.com/phrazzld/smart-extract/internal/vault"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Queue no longer accepting work
	case errors.Is(err, task.ErrQueueClosed):
		return http.StatusServiceUnavailable

	// Not found errors
	case errors.Is(err, batch.ErrRunNotFound),
		errors.Is(err, vault.ErrNotFound):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrEmptyContent),
		errors.Is(err, domain.ErrUnknownOperation),
		errors.Is(err, service.ErrUnsupportedOperation),
		errors.Is(err, vault.ErrOutsideVault),
		errors.Is(err, vault.ErrNotDirectory):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, task.ErrQueueClosed):
		return "Task queue is shutting down"
	case errors.Is(err, batch.ErrRunNotFound):
		return "Batch run not found"
	case errors.Is(err, vault.ErrNotFound):
		return "Folder not found"
	case errors.Is(err, vault.ErrNotDirectory):
		return "Not a folder"
	case errors.Is(err, vault.ErrOutsideVault):
		return "Path is outside the vault"
	case errors.Is(err, domain.ErrEmptyContent):
		return "Text cannot be empty"
	case errors.Is(err, domain.ErrUnknownOperation),
		errors.Is(err, service.ErrUnsupportedOperation):
		return "Unsupported operation"
	case errors.Is(err, domain.ErrValidation):
		return "Validation error"
	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the status and safe message for err. A non-empty
// message replaces the safe message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := MapErrorToStatusCode(err)
	if message == "" {
		message = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example format: "Key: 'BatchRequest.Operation' Error:Field validation for 'Operation' failed on the 'oneof' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "oneof":
		return "invalid value"
	case "min":
		return "too short"
	case "max":
		return "too long"
	default:
		return "validation failed"
	}
}
