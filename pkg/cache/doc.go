// Package cache stores validated API responses for conditional GET requests.
//
// Entries are keyed by the normalized request URL plus a short hash of the
// caller's access token, so two callers never share a payload and raw tokens
// are never kept in memory.
//
// # Basic Usage
//
//	store := cache.NewMemoryStore(cache.WithCapacity(1000))
//
//	key := cache.NewKey("https://api.example.com/api/v1/startups", accessToken)
//
//	entry, err := store.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// Unconditional request
//	}
//
// # Conditional Requests
//
//	if entry != nil {
//		cache.AddConditionalHeaders(req, entry)
//		// The API answers 304 Not Modified when the ETag still matches
//	}
//
// # Stores
//
// MemoryStore is the process-local default. It bounds memory by capacity:
// before a write that would exceed the bound, expired entries are dropped
// first, then the oldest-inserted entries until the write fits.
//
// RedisStore shares entries across edge replicas. Expiry uses native Redis
// TTLs and capacity is left to the server's maxmemory policy.
//
// # Metrics
//
//   - portal_cache_hits_total{store} - Live entries returned
//   - portal_cache_misses_total{store} - Absent or expired lookups
//   - portal_cache_entries{store} - Current entry count
//   - portal_cache_evictions_total{reason} - Prune removals (expired, capacity)
//   - portal_cache_errors_total{operation} - Store operation errors
package cache
