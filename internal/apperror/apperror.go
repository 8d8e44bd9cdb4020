// Package apperror defines the application's error taxonomy.
//
// Services return these errors; the HTTP layer maps them to status codes
// (validation → 400, unauthorized → 401, not found → 404, conflict → 409).
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
)

type AppError struct {
	Err     error  // sentinel, for errors.Is
	Message string // human-readable error message
	Field   string // optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource string, id int64) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %d", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Unauthorized returns an AppError for failed authentication. The message is
// deliberately generic so the error text never reveals whether the username
// or the password was wrong.
func Unauthorized() *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: "invalid username or password",
	}
}

func Conflict(resource, detail string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict: %s", resource, detail),
	}
}
