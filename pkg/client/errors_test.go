package client

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestExtractErrorMessage(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{
			name:   "json message field",
			status: 400,
			body:   `{"message": "Startup name is required"}`,
			want:   "Startup name is required",
		},
		{
			name:   "json without message uses first line",
			status: 400,
			body:   `{"error": "bad"}`,
			want:   `{"error": "bad"}`,
		},
		{
			name:   "json with non-string message",
			status: 422,
			body:   `{"message": 42}`,
			want:   `{"message": 42}`,
		},
		{
			name:   "plain text multi line",
			status: 502,
			body:   "\n  Bad Gateway  \nupstream closed connection\n",
			want:   "Bad Gateway",
		},
		{
			name:   "empty body",
			status: 503,
			body:   "",
			want:   "Request failed (503)",
		},
		{
			name:   "whitespace body",
			status: 500,
			body:   "   \n\t ",
			want:   "Request failed (500)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractErrorMessage(tt.status, []byte(tt.body)); got != tt.want {
				t.Errorf("extractErrorMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequestFailedError(t *testing.T) {
	err := &RequestFailedError{
		StatusCode: http.StatusNotFound,
		Method:     "GET",
		URL:        "https://api.example.com/api/v1/startups/1",
		Message:    "Startup not found",
	}

	if err.Error() != "Startup not found" {
		t.Errorf("Error() = %q", err.Error())
	}

	wrapped := fmt.Errorf("load startup: %w", err)

	var reqErr *RequestFailedError
	if !errors.As(wrapped, &reqErr) {
		t.Fatal("errors.As failed to find RequestFailedError")
	}
	if !IsStatus(wrapped, http.StatusNotFound) {
		t.Error("IsStatus(404) = false, want true")
	}
	if IsStatus(wrapped, http.StatusForbidden) {
		t.Error("IsStatus(403) = true, want false")
	}
	if IsStatus(errors.New("other"), http.StatusNotFound) {
		t.Error("IsStatus on unrelated error = true")
	}
}

func TestConfigurationError(t *testing.T) {
	var err error = &ConfigurationError{Message: "API base URL is not configured"}

	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatal("errors.As failed to find ConfigurationError")
	}
	if err.Error() != "API base URL is not configured" {
		t.Errorf("Error() = %q", err.Error())
	}
}
