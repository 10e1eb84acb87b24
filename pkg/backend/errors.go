package backend

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	// ErrTranscriptionFailed is returned when speech recognition
	// produced no usable text.
	ErrTranscriptionFailed = errors.New("backend: transcription failed")

	// ErrUnknownModel is returned when switching to a model the
	// backend does not have.
	ErrUnknownModel = errors.New("backend: unknown model")

	// ErrUnknownEngine is returned when switching to a synthesis
	// engine the backend does not have.
	ErrUnknownEngine = errors.New("backend: unknown engine")

	// ErrUnavailable is returned when the backend cannot be reached.
	ErrUnavailable = errors.New("backend: unavailable")
)

// APIError represents an error response from the backend.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Message is the error detail from the response body.
	Message string

	// Endpoint identifies which endpoint returned the error.
	Endpoint string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("backend [%s]: API error %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

// IsNotFound returns true if the resource was not found (HTTP 404).
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == 404
}

// IsServerError returns true if this is a server-side error (HTTP 5xx).
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// IsRetryable returns true if the request may succeed on retry.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode == 429 || e.IsServerError()
}

// EndpointError wraps a transport error with endpoint context.
type EndpointError struct {
	Endpoint string
	Err      error
}

// Error implements the error interface.
func (e *EndpointError) Error() string {
	return fmt.Sprintf("backend [%s]: %v", e.Endpoint, e.Err)
}

// Unwrap returns the underlying error.
func (e *EndpointError) Unwrap() error {
	return e.Err
}

// wrapErr wraps an error with endpoint context.
func wrapErr(endpoint string, err error) error {
	if err == nil {
		return nil
	}
	return &EndpointError{Endpoint: endpoint, Err: err}
}
