package cache

import (
	"encoding/json"
	"net/http"
	"time"
)

// DefaultTTL is how long an entry stays live after it is written or refreshed.
const DefaultTTL = 5 * time.Minute

// Entry represents one cached API response for one (URL, caller) pair.
type Entry struct {
	// ETag is the opaque validator returned by the API
	ETag string `json:"etag"`

	// Payload is the last successfully decoded JSON body ("null" for empty bodies)
	Payload json.RawMessage `json:"payload"`

	// ExpiresAt is the absolute expiry; the entry is never served at or after it
	ExpiresAt time.Time `json:"expires_at"`

	// StoredAt is when the entry was last written
	StoredAt time.Time `json:"stored_at"`
}

// NewEntry builds an entry that expires ttl after now.
func NewEntry(etag string, payload json.RawMessage, now time.Time, ttl time.Duration) *Entry {
	return &Entry{
		ETag:      etag,
		Payload:   payload,
		ExpiresAt: now.Add(ttl),
		StoredAt:  now,
	}
}

// IsExpiredAt reports whether the entry is dead at the given instant.
func (e *Entry) IsExpiredAt(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// TTL returns the time until expiration.
// Returns 0 if already expired.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.ExpiresAt)
	if ttl < 0 {
		return 0
	}
	return ttl
}

// AddConditionalHeaders sets If-None-Match from the entry's ETag.
func AddConditionalHeaders(req *http.Request, entry *Entry) {
	if entry == nil || req == nil || entry.ETag == "" {
		return
	}
	req.Header.Set("If-None-Match", entry.ETag)
}
