package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeInvalidRequest  ErrorType = "invalid_request"
	ErrorTypeUpstream        ErrorType = "upstream"
	ErrorTypeUpstreamTimeout ErrorType = "upstream_timeout"
	ErrorTypeUpstreamParse   ErrorType = "upstream_parse"
	ErrorTypeCrop            ErrorType = "crop"
	ErrorTypeInternal        ErrorType = "internal"
)

// Messages surfaced to clients. Causes are logged, never returned.
const (
	MsgNoImage        = "No image file provided"
	MsgNotAnImage     = "Uploaded file is not an image"
	MsgUploadTooLarge = "Uploaded file is too large"
	MsgAnalyzeFailed  = "Failed to analyze image."
	MsgParseFailed    = "Failed to parse AI response"
	MsgRequestTimeout = "Request timeout"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	StatusCode int       `json:"status_code"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewInvalidRequestError creates a client error (400)
func NewInvalidRequestError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidRequest,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewUploadTooLargeError creates a client error for oversized uploads (413)
func NewUploadTooLargeError(cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidRequest,
		Message:    MsgUploadTooLarge,
		StatusCode: http.StatusRequestEntityTooLarge,
		Cause:      cause,
	}
}

// NewUpstreamError creates an error for a failed model call
func NewUpstreamError(cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeUpstream,
		Message:    MsgAnalyzeFailed,
		Details:    "model request failed",
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NewUpstreamTimeoutError creates an error for a model call that exceeded its deadline
func NewUpstreamTimeoutError(cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeUpstreamTimeout,
		Message:    MsgAnalyzeFailed,
		Details:    "model request timed out",
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NewUpstreamParseError creates an error for a model reply that is not valid JSON
func NewUpstreamParseError(cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeUpstreamParse,
		Message:    MsgParseFailed,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NewCropError creates an error for a single failed crop. It never reaches the client.
func NewCropError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeCrop,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
		Cause:      cause,
	}
}

// NewInternalError creates a new internal error. message describes the failed step for
// the logs only; clients see the generic message.
func NewInternalError(message string, cause error) *AppError {
	if cause != nil {
		cause = fmt.Errorf("%s: %w", message, cause)
	} else {
		cause = errors.New(message)
	}
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    MsgAnalyzeFailed,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// FromModelError classifies an error returned by the model client
func FromModelError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return NewUpstreamTimeoutError(err)
	}
	return NewUpstreamError(err)
}

// IsType checks if the error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// GetStatusCode extracts the HTTP status code from an error
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
