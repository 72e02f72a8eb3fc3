package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrCacheMiss indicates the requested key was not found or has expired
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Store holds conditional-GET entries.
//
// Implementations must never return an entry whose ExpiresAt has passed.
type Store interface {
	// Get returns a live entry or ErrCacheMiss.
	Get(ctx context.Context, key Key) (*Entry, error)

	// Set stores or overwrites the entry for key.
	Set(ctx context.Context, key Key, entry *Entry) error

	// Delete removes the entry for key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key Key) error

	// Touch moves the expiry of a live entry. Returns ErrCacheMiss if the entry is gone.
	Touch(ctx context.Context, key Key, expiresAt time.Time) error

	// Len returns the number of stored entries, including not yet pruned expired ones.
	Len() int
}
