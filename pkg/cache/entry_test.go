package cache

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"
)

func TestEntry_IsExpiredAt(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{
			name:      "expired entry",
			expiresAt: now.Add(-1 * time.Hour),
			want:      true,
		},
		{
			name:      "valid entry",
			expiresAt: now.Add(1 * time.Hour),
			want:      false,
		},
		{
			name:      "expires exactly now",
			expiresAt: now,
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &Entry{ExpiresAt: tt.expiresAt}
			if got := entry.IsExpiredAt(now); got != tt.want {
				t.Errorf("IsExpiredAt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEntry_TTL(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		wantMin   time.Duration
		wantMax   time.Duration
	}{
		{
			name:      "five minutes remaining",
			expiresAt: time.Now().Add(5 * time.Minute),
			wantMin:   4*time.Minute + 59*time.Second,
			wantMax:   5*time.Minute + 1*time.Second,
		},
		{
			name:      "already expired",
			expiresAt: time.Now().Add(-1 * time.Hour),
			wantMin:   0,
			wantMax:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &Entry{ExpiresAt: tt.expiresAt}
			got := entry.TTL()
			if got < tt.wantMin || got > tt.wantMax {
				t.Errorf("TTL() = %v, want between %v and %v", got, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestNewEntry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entry := NewEntry(`"v1"`, json.RawMessage(`{"id":1}`), now, DefaultTTL)

	if !entry.ExpiresAt.Equal(now.Add(DefaultTTL)) {
		t.Errorf("ExpiresAt = %v, want %v", entry.ExpiresAt, now.Add(DefaultTTL))
	}
	if !entry.StoredAt.Equal(now) {
		t.Errorf("StoredAt = %v, want %v", entry.StoredAt, now)
	}
	if string(entry.Payload) != `{"id":1}` {
		t.Errorf("Payload = %s", entry.Payload)
	}
}

func TestAddConditionalHeaders(t *testing.T) {
	tests := []struct {
		name  string
		entry *Entry
		want  string
	}{
		{
			name:  "entry with ETag",
			entry: &Entry{ETag: `"abc123"`},
			want:  `"abc123"`,
		},
		{
			name:  "entry without ETag",
			entry: &Entry{},
			want:  "",
		},
		{
			name:  "nil entry",
			entry: nil,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest("GET", "https://example.com", nil)
			AddConditionalHeaders(req, tt.entry)

			if got := req.Header.Get("If-None-Match"); got != tt.want {
				t.Errorf("If-None-Match = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAddConditionalHeaders_NilInputs(t *testing.T) {
	// Should not panic with nil inputs
	AddConditionalHeaders(nil, &Entry{ETag: "test"})
	AddConditionalHeaders(&http.Request{}, nil)
}
