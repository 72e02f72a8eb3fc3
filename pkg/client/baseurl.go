package client

import (
	"regexp"
	"strings"
)

var versionedAPISuffix = regexp.MustCompile(`/api/v\d+$`)

// NormalizeBaseURL turns a configured API origin into the versioned API root.
//
//	https://api.example.com        -> https://api.example.com/api/v1
//	https://api.example.com/api    -> https://api.example.com/api/v1
//	https://api.example.com/api/v2 -> https://api.example.com/api/v2
//
// It returns false for a blank value.
func NormalizeBaseURL(raw string) (string, bool) {
	base := strings.TrimRight(strings.TrimSpace(raw), "/")
	if base == "" {
		return "", false
	}

	switch {
	case versionedAPISuffix.MatchString(base):
		return base, true
	case strings.HasSuffix(base, "/api"):
		return base + "/v1", true
	default:
		return base + "/api/v1", true
	}
}

// normalizePath ensures the request path starts with a single slash.
func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") {
		return "/" + path
	}
	return path
}
