package cache

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultCapacity bounds the number of entries held by a MemoryStore.
const DefaultCapacity = 1000

// MemoryStore is a bounded in-process Store.
//
// Entries are kept in write order. Overwriting a key moves it to the newest
// position, so capacity pruning approximates LRU without tracking reads.
type MemoryStore struct {
	mu       sync.Mutex
	entries  map[string]*list.Element
	order    *list.List // front is the oldest write
	capacity int
	now      func() time.Time
}

type memoryItem struct {
	key   string
	entry Entry
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithCapacity sets the entry bound. Values below 1 keep the default.
func WithCapacity(n int) MemoryOption {
	return func(s *MemoryStore) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithClock replaces time.Now (for testing).
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		entries:  make(map[string]*list.Element),
		order:    list.New(),
		capacity: DefaultCapacity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Capacity returns the configured entry bound.
func (s *MemoryStore) Capacity() int {
	return s.capacity
}

// Get returns a live entry. Expired entries are deleted on read.
func (s *MemoryStore) Get(_ context.Context, key Key) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.entries[key.String()]
	if !ok {
		CacheMisses.WithLabelValues(storeMemory).Inc()
		return nil, ErrCacheMiss
	}

	item := el.Value.(*memoryItem)
	if item.entry.IsExpiredAt(s.now()) {
		s.removeElement(el)
		CacheMisses.WithLabelValues(storeMemory).Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues(storeMemory).Inc()
	entry := item.entry
	return &entry, nil
}

// Set stores the entry, pruning first when the write would exceed capacity.
func (s *MemoryStore) Set(_ context.Context, key Key, entry *Entry) error {
	if entry == nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("%w: entry cannot be nil", ErrInvalidEntry)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := key.String()
	if el, ok := s.entries[k]; ok {
		s.removeElement(el)
	} else if len(s.entries)+1 > s.capacity {
		s.prune(s.capacity - 1)
	}

	s.entries[k] = s.order.PushBack(&memoryItem{key: k, entry: *entry})
	CacheEntries.WithLabelValues(storeMemory).Set(float64(len(s.entries)))
	return nil
}

// Delete removes the entry for key.
func (s *MemoryStore) Delete(_ context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.entries[key.String()]; ok {
		s.removeElement(el)
	}
	return nil
}

// Touch moves the expiry of a live entry.
func (s *MemoryStore) Touch(_ context.Context, key Key, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.entries[key.String()]
	if !ok {
		return ErrCacheMiss
	}

	item := el.Value.(*memoryItem)
	if item.entry.IsExpiredAt(s.now()) {
		s.removeElement(el)
		return ErrCacheMiss
	}
	item.entry.ExpiresAt = expiresAt
	return nil
}

// Len returns the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Prune drops expired entries and then the oldest entries until at most
// capacity remain. It returns the number of entries removed.
func (s *MemoryStore) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prune(s.capacity)
}

// prune must be called with mu held.
func (s *MemoryStore) prune(limit int) int {
	removed := 0
	now := s.now()

	for el := s.order.Front(); el != nil; {
		next := el.Next()
		if el.Value.(*memoryItem).entry.IsExpiredAt(now) {
			s.removeElement(el)
			CacheEvictions.WithLabelValues("expired").Inc()
			removed++
		}
		el = next
	}

	for len(s.entries) > limit {
		oldest := s.order.Front()
		if oldest == nil {
			break
		}
		s.removeElement(oldest)
		CacheEvictions.WithLabelValues("capacity").Inc()
		removed++
	}

	CacheEntries.WithLabelValues(storeMemory).Set(float64(len(s.entries)))
	return removed
}

// removeElement must be called with mu held.
func (s *MemoryStore) removeElement(el *list.Element) {
	item := s.order.Remove(el).(*memoryItem)
	delete(s.entries, item.key)
}
