package logging

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func TestWithRequestID_AssignsID(t *testing.T) {
	var seen string
	handler := WithRequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/workspace", nil))

	if _, err := uuid.Parse(seen); err != nil {
		t.Fatalf("Expected a generated uuid, got %q", seen)
	}
	if got := rec.Header().Get(RequestIDHeader); got != seen {
		t.Errorf("Response %s = %q, want %q", RequestIDHeader, got, seen)
	}
}

func TestWithRequestID_KeepsExisting(t *testing.T) {
	var seen string
	handler := WithRequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/workspace", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen != "req-123" {
		t.Errorf("RequestID = %q, want req-123", seen)
	}
}

// debugLevel lifts the global level for tests that log through raw loggers.
func debugLevel(t *testing.T) {
	t.Helper()
	previous := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(previous) })
}

func TestWithRequest(t *testing.T) {
	debugLevel(t)
	buf := &bytes.Buffer{}
	base := zerolog.New(buf)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.Header.Set(RequestIDHeader, "req-7")

	logger := WithRequest(base, req)
	logger.Info().Msg("hello")

	output := buf.String()
	for _, want := range []string{`"method":"POST"`, `"path":"/auth/login"`, `"request_id":"req-7"`} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %s, got %q", want, output)
		}
	}
}

func TestWithRequest_NoID(t *testing.T) {
	debugLevel(t)
	buf := &bytes.Buffer{}
	logger := WithRequest(zerolog.New(buf), httptest.NewRequest(http.MethodGet, "/", nil))
	logger.Info().Msg("hello")

	if strings.Contains(buf.String(), "request_id") {
		t.Errorf("Expected no request_id field, got %q", buf.String())
	}
}
