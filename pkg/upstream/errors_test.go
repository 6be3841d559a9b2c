package upstream

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		err        error
		expected   ErrorClass
	}{
		{"transport error", 0, errors.New("connection refused"), ErrorClassNetwork},
		{"bad request", http.StatusBadRequest, nil, ErrorClassClient},
		{"not found", http.StatusNotFound, nil, ErrorClassClient},
		{"too many requests", http.StatusTooManyRequests, nil, ErrorClassRateLimit},
		{"internal error", http.StatusInternalServerError, nil, ErrorClassServer},
		{"bad gateway", http.StatusBadGateway, nil, ErrorClassServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp *http.Response
			if tt.err == nil {
				resp = &http.Response{StatusCode: tt.statusCode}
			}
			if got := Classify(resp, tt.err); got != tt.expected {
				t.Errorf("Classify() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		class    ErrorClass
		expected bool
	}{
		{ErrorClassClient, false},
		{ErrorClassServer, true},
		{ErrorClassRateLimit, true},
		{ErrorClassNetwork, true},
		{ErrorClass("unknown"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.class), func(t *testing.T) {
			if got := shouldRetry(tt.class); got != tt.expected {
				t.Errorf("shouldRetry(%q) = %v, want %v", tt.class, got, tt.expected)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Service:    "content",
		StatusCode: 502,
		Class:      ErrorClassServer,
		Message:    "502 Bad Gateway",
		Err:        cause,
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is() should find the wrapped cause")
	}

	wrapped := fmt.Errorf("generate intro: %w", err)
	var upErr *Error
	if !errors.As(wrapped, &upErr) {
		t.Fatal("errors.As() should find the *Error through wrapping")
	}
	if upErr.StatusCode != 502 {
		t.Errorf("StatusCode = %d, want 502", upErr.StatusCode)
	}
}
