package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestFromModelError(t *testing.T) {
	parseErr := NewUpstreamParseError(errors.New("bad json"))

	tests := []struct {
		name         string
		err          error
		expectedType ErrorType
		expectedCode int
	}{
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), ErrorTypeUpstreamTimeout, http.StatusInternalServerError},
		{"net timeout", fmt.Errorf("call: %w", timeoutErr{}), ErrorTypeUpstreamTimeout, http.StatusInternalServerError},
		{"generic", errors.New("boom"), ErrorTypeUpstream, http.StatusInternalServerError},
		{"app error passes through", fmt.Errorf("wrapped: %w", parseErr), ErrorTypeUpstreamParse, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromModelError(tt.err)
			if got.Type != tt.expectedType {
				t.Errorf("Expected type %s, got %s", tt.expectedType, got.Type)
			}
			if got.StatusCode != tt.expectedCode {
				t.Errorf("Expected status %d, got %d", tt.expectedCode, got.StatusCode)
			}
		})
	}
}

func TestGetStatusCode(t *testing.T) {
	if code := GetStatusCode(NewInvalidRequestError(MsgNoImage, nil)); code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", code)
	}
	if code := GetStatusCode(fmt.Errorf("x: %w", NewUploadTooLargeError(nil))); code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected 413, got %d", code)
	}
	if code := GetStatusCode(errors.New("plain")); code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", code)
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := NewInternalError("failed to store upload", cause)

	if !errors.Is(err, cause) {
		t.Error("Expected errors.Is to find the cause")
	}
	if err.Message != MsgAnalyzeFailed {
		t.Errorf("Expected generic message, got %q", err.Message)
	}
	if err.Details != "" {
		t.Errorf("Expected no client-facing details, got %q", err.Details)
	}
	if !strings.Contains(err.Error(), "failed to store upload") {
		t.Errorf("Expected the failed step in the logged error, got %q", err.Error())
	}
}
