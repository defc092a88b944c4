package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidActor = errors.New("invalid actor")
	ErrUnavailable  = errors.New("store unavailable")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s %s", resource, message),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// InvalidActor returns an AppError indicating that the acting user referenced
// by a lock or release request does not exist, or belongs to the wrong group.
// HTTP handlers map this to 403 Forbidden.
func InvalidActor(message string) *AppError {
	return &AppError{
		Err:     ErrInvalidActor,
		Message: message,
	}
}

// Unavailable wraps a transient storage failure (connectivity, timeout).
// The core never retries these; they surface to the handler as a 500.
func Unavailable(err error) *AppError {
	return &AppError{
		Err:     errors.Join(ErrUnavailable, err),
		Message: "storage is temporarily unavailable",
	}
}
