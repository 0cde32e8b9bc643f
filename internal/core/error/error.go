package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// DatabaseErrorMessage describes MongoDB related failures.
	DatabaseErrorMessage = "database operation failed"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// LLMErrorMessage describes failures of the language model provider.
	LLMErrorMessage = "language model request failed"
	// NotFoundMessage is the default message for missing resources.
	NotFoundMessage = "resource not found"
)

// AppError wraps an underlying error with an HTTP status and safe message.
type AppError struct {
	Err     error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// NotFound reports a missing resource with the given safe message.
func NotFound(message string) *AppError {
	if message == "" {
		message = NotFoundMessage
	}
	return New(nil, http.StatusNotFound, message)
}

// BadRequest reports invalid client input.
func BadRequest(err error, message string) *AppError {
	return New(err, http.StatusBadRequest, message)
}

// Conflict reports a write that collides with existing data.
func Conflict(err error, message string) *AppError {
	return New(err, http.StatusConflict, message)
}

// WrapLLM maps a model provider failure to a gateway error.
func WrapLLM(err error) error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusBadGateway, LLMErrorMessage)
}

// StatusOf returns the HTTP status carried by err, or 500 when err is not an AppError.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status != 0 {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// IsNotFound reports whether err carries a 404 status.
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}
