package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Store labels for metrics.
const (
	storeMemory = "memory"
	storeRedis  = "redis"
)

var (
	// CacheHits tracks live entries returned by store
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_cache_hits_total",
			Help: "Total number of API cache hits",
		},
		[]string{"store"}, // "memory", "redis"
	)

	// CacheMisses tracks absent or expired lookups by store
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_cache_misses_total",
			Help: "Total number of API cache misses",
		},
		[]string{"store"},
	)

	// CacheEntries tracks the current number of entries by store
	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "portal_cache_entries",
			Help: "Current number of API cache entries",
		},
		[]string{"store"},
	)

	// CacheEvictions tracks entries removed by pruning
	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_cache_evictions_total",
			Help: "Total number of API cache entries removed by pruning",
		},
		[]string{"reason"}, // "expired", "capacity"
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete", "touch"
	)
)
