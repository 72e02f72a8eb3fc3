package client

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPayload is returned when a response body is not valid JSON or
// fails validation for the requested type.
var ErrInvalidPayload = errors.New("invalid API payload")

// ConfigurationError reports a client that cannot issue requests, most
// commonly because no API base URL is configured.
type ConfigurationError struct {
	Message string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return e.Message
}

// RequestFailedError represents a non-2xx API response.
type RequestFailedError struct {
	StatusCode int
	Method     string
	URL        string
	Message    string
}

// Error implements the error interface.
func (e *RequestFailedError) Error() string {
	return e.Message
}

// IsStatus reports whether err is a RequestFailedError with the given status.
func IsStatus(err error, status int) bool {
	var reqErr *RequestFailedError
	return errors.As(err, &reqErr) && reqErr.StatusCode == status
}

// extractErrorMessage picks a human-readable message out of an error body:
// the JSON "message" field, else the first non-empty line, else a generic text.
func extractErrorMessage(status int, body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 {
		var parsed struct {
			Message any `json:"message"`
		}
		if err := json.Unmarshal(trimmed, &parsed); err == nil {
			if msg, ok := parsed.Message.(string); ok && strings.TrimSpace(msg) != "" {
				return strings.TrimSpace(msg)
			}
		}

		scanner := bufio.NewScanner(bytes.NewReader(trimmed))
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				return line
			}
		}
	}
	return fmt.Sprintf("Request failed (%d)", status)
}
