package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore shares cache entries across edge replicas.
type RedisStore struct {
	redis *redis.Client
	now   func() time.Time
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithRedisClock replaces time.Now when computing TTLs (for testing).
func WithRedisClock(now func() time.Time) RedisOption {
	return func(s *RedisStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewRedisStore creates a store on top of an existing Redis client.
func NewRedisStore(redisClient *redis.Client, opts ...RedisOption) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	s := &RedisStore{
		redis: redisClient,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get retrieves a live entry.
func (s *RedisStore) Get(ctx context.Context, key Key) (*Entry, error) {
	data, err := s.redis.Get(ctx, key.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			CacheMisses.WithLabelValues(storeRedis).Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	// Redis expiry has millisecond precision; double check against our clock
	if entry.IsExpiredAt(s.now()) {
		_ = s.Delete(ctx, key)
		CacheMisses.WithLabelValues(storeRedis).Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues(storeRedis).Inc()
	return &entry, nil
}

// Set stores an entry with a TTL derived from its ExpiresAt.
func (s *RedisStore) Set(ctx context.Context, key Key, entry *Entry) error {
	if entry == nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("%w: entry cannot be nil", ErrInvalidEntry)
	}

	ttl := entry.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		// Already expired, don't cache
		return s.Delete(ctx, key)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := s.redis.Set(ctx, key.String(), data, ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes a cache entry.
func (s *RedisStore) Delete(ctx context.Context, key Key) error {
	if err := s.redis.Del(ctx, key.String()).Err(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Touch re-saves a live entry with a new expiry.
func (s *RedisStore) Touch(ctx context.Context, key Key, expiresAt time.Time) error {
	entry, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	entry.ExpiresAt = expiresAt
	if err := s.Set(ctx, key, entry); err != nil {
		CacheErrors.WithLabelValues("touch").Inc()
		return err
	}
	return nil
}

// Len counts portal cache keys with SCAN. It is meant for diagnostics.
func (s *RedisStore) Len() int {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count := 0
	iter := s.redis.Scan(ctx, 0, "portal:*", 500).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		CacheErrors.WithLabelValues("len").Inc()
	}
	CacheEntries.WithLabelValues(storeRedis).Set(float64(count))
	return count
}
