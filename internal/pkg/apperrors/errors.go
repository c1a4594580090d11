package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")

	// ErrPreconditionFailed is a conflict raised when a workflow step is
	// attempted from the wrong state.
	ErrPreconditionFailed = fmt.Errorf("%w: precondition failed", ErrConflict)

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")

	// ErrBusy is returned when an entity lock or transaction deadline expires.
	ErrBusy = errors.New("resource busy")

	// ErrInternal marks unexpected failures, e.g. the durable store being unreachable.
	ErrInternal = errors.New("internal error")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewPreconditionError creates a conflict error for a disallowed state transition
func NewPreconditionError(message string) error {
	return &CustomError{
		Err:     ErrPreconditionFailed,
		Message: message,
	}
}

// NewValidationError creates a new custom error for invalid input with a message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// NewMissingFieldsError reports required fields that were left empty.
func NewMissingFieldsError(fields ...string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: "Missing required fields: " + strings.Join(fields, ", "),
		Details: map[string]interface{}{"fields": fields},
	}
}

// NewBusyError creates a new custom error for lock or deadline expiry
func NewBusyError(message string) error {
	return &CustomError{
		Err:     ErrBusy,
		Message: message,
	}
}

// NewInternalError wraps an unexpected failure so it is classified as internal.
func NewInternalError(message string, cause error) error {
	return &CustomError{
		Err:     fmt.Errorf("%w: %w", ErrInternal, cause),
		Message: message,
	}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// Message returns the user-facing message carried by err, falling back to
// fallback when err carries none.
func Message(err error, fallback string) string {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return fallback
}
