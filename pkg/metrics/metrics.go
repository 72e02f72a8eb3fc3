// Package metrics exposes the Prometheus registry used by the edge service.
// All metrics are defined in their respective packages (cache, client, edge)
// to maintain modularity and avoid circular dependencies.
//
// This package provides the scrape handler and a reference for all metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the edge service.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - portal_cache_hits_total{store} (Counter): Live entries returned (memory, redis)
//   - portal_cache_misses_total{store} (Counter): Absent or expired lookups
//   - portal_cache_entries{store} (Gauge): Current number of entries
//   - portal_cache_evictions_total{reason} (Counter): Prune removals (expired, capacity)
//   - portal_cache_errors_total{operation} (Counter): Store operation errors
//
// Request Metrics (pkg/client):
//   - portal_api_requests_total{method, status} (Counter): API requests by method and HTTP status
//   - portal_api_request_duration_seconds{method} (Histogram): API request duration
//   - portal_api_conditional_requests_total (Counter): Requests sent with If-None-Match
//   - portal_api_not_modified_total (Counter): 304 responses served from cache
//   - portal_api_errors_total{class} (Counter): Errors by class (config, network, status, decode)
//
// Route Metrics (internal/edge):
//   - portal_route_decisions_total{source, outcome} (Counter): Decisions by call site
//     (interceptor, guard) and outcome (allow, redirect)
//   - portal_membership_checks_total{result} (Counter): Membership lookups (cookie, api, error)
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(portal_cache_hits_total[5m])) /
//   (sum(rate(portal_cache_hits_total[5m])) + sum(rate(portal_cache_misses_total[5m])))
//
//   # 304 Response Rate
//   rate(portal_api_not_modified_total[5m]) / rate(portal_api_requests_total{method="GET"}[5m])
//
//   # Share of requests the guard had to redirect (stale interceptor answers)
//   rate(portal_route_decisions_total{source="guard",outcome="redirect"}[5m])
//
//   # P95 API Latency
//   histogram_quantile(0.95, rate(portal_api_request_duration_seconds_bucket[5m]))
