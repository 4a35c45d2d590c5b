package apperror

import (
	"fmt"
	"net/http"
)

// AppError carries an HTTP status and a client-safe message alongside the
// underlying cause. The cause is for logs only and never leaves the server.
type AppError struct {
	Status  int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Sentinel session/pipeline errors shared across services and controllers.
var (
	ErrSessionNotFound = &AppError{
		Status:  http.StatusNotFound,
		Message: "Session not found",
	}
	ErrNoDocumentsUploaded = &AppError{
		Status:  http.StatusBadRequest,
		Message: "No documents uploaded. Please upload documents first.",
	}
	ErrNoDocumentsLoaded = &AppError{
		Status:  http.StatusBadRequest,
		Message: "No documents could be loaded",
	}
)

// Validation builds a 400 for malformed input.
func Validation(message string) *AppError {
	return &AppError{
		Status:  http.StatusBadRequest,
		Message: message,
	}
}

// Provider wraps an embedding/generation/index backend failure as a 500.
// The op names the failing stage for logs; the raw cause is kept for Unwrap.
func Provider(op string, err error) *AppError {
	return &AppError{
		Status:  http.StatusInternalServerError,
		Message: fmt.Sprintf("%s failed", op),
		Err:     err,
	}
}
