// Package client provides the REST API client with an application-level
// ETag cache and graceful degradation when the API is unreachable.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/portal-edge/pkg/cache"
	"github.com/Sternrassler/portal-edge/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for API client operations.
var (
	apiRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_api_requests_total",
		Help: "Total API requests by method and status",
	}, []string{"method", "status"})

	apiRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "portal_api_request_duration_seconds",
		Help:    "API request duration in seconds by method",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"method"})

	apiConditionalRequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portal_api_conditional_requests_total",
		Help: "Total API requests sent with If-None-Match",
	})

	apiNotModifiedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portal_api_not_modified_total",
		Help: "Total 304 Not Modified responses served from cache",
	})

	apiErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_api_errors_total",
		Help: "Total API errors by class",
	}, []string{"class"})
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassConfig represents a client that cannot issue requests.
	ErrorClassConfig ErrorClass = "config"

	// ErrorClassNetwork represents transport failures.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassStatus represents non-2xx responses.
	ErrorClassStatus ErrorClass = "status"

	// ErrorClassDecode represents malformed or invalid payloads.
	ErrorClassDecode ErrorClass = "decode"
)

var allowedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPatch:  true,
	http.MethodPut:    true,
	http.MethodDelete: true,
}

// Request describes one API call.
type Request struct {
	// Path is relative to the versioned API root (e.g. "/startups")
	Path string

	// Method defaults to GET
	Method string

	// AccessToken is sent as a bearer token. Empty means anonymous.
	AccessToken string

	// Body is JSON-encoded when non-nil
	Body any

	// ThrowOnError returns failures instead of absorbing them into a nil result
	ThrowOnError bool
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the API origin; it is normalized with NormalizeBaseURL.
	// Blank leaves the client unconfigured.
	BaseURL string

	// Store holds conditional-GET entries (default: MemoryStore)
	Store cache.Store

	// HTTPClient performs the requests (default: 10s timeout)
	HTTPClient *http.Client

	// TTL is the lifetime of a cache entry after each write or refresh
	TTL time.Duration

	// Logger overrides the component logger
	Logger *zerolog.Logger

	// Now replaces time.Now (for testing)
	Now func() time.Time
}

// DefaultConfig returns a configuration with the standard cache sizing.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:    baseURL,
		Store:      cache.NewMemoryStore(cache.WithCapacity(cache.DefaultCapacity)),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		TTL:        cache.DefaultTTL,
	}
}

// Client issues authenticated JSON requests against the API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	configured bool
	store      cache.Store
	ttl        time.Duration
	now        func() time.Time
	logger     zerolog.Logger
}

// New creates a client. It never fails: an unconfigured base URL makes every
// call degrade to "unavailable".
func New(cfg Config) *Client {
	baseURL, configured := NormalizeBaseURL(cfg.BaseURL)

	c := &Client{
		httpClient: cfg.HTTPClient,
		baseURL:    baseURL,
		configured: configured,
		store:      cfg.Store,
		ttl:        cfg.TTL,
		now:        cfg.Now,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if c.store == nil {
		c.store = cache.NewMemoryStore()
	}
	if c.ttl <= 0 {
		c.ttl = cache.DefaultTTL
	}
	if c.now == nil {
		c.now = time.Now
	}
	if cfg.Logger != nil {
		c.logger = *cfg.Logger
	} else {
		c.logger = logging.NewLogger("api-client")
	}

	if !configured {
		c.logger.Warn().Msg("API base URL not configured - requests will be unavailable")
	}
	return c
}

// BaseURL returns the normalized API root ("" when unconfigured).
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Configured reports whether a base URL is set.
func (c *Client) Configured() bool {
	return c.configured
}

// Store returns the cache store (for testing and diagnostics).
func (c *Client) Store() cache.Store {
	return c.store
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Do performs one API call and returns the raw JSON payload.
//
// A nil payload means the body was empty or JSON null, or, when
// ThrowOnError is false, that the call failed. Callers must treat nil as
// "data unavailable", not as an empty value.
func (c *Client) Do(ctx context.Context, req Request) (json.RawMessage, error) {
	payload, err := c.do(ctx, req)
	if err != nil {
		if req.ThrowOnError {
			return nil, err
		}
		c.logger.Warn().
			Err(err).
			Str("method", methodOf(req)).
			Str("path", normalizePath(req.Path)).
			Msg("API request failed - returning unavailable")
		return nil, nil
	}
	return payload, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path, accessToken string) (json.RawMessage, error) {
	return c.Do(ctx, Request{Path: path, AccessToken: accessToken})
}

func methodOf(req Request) string {
	if req.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(req.Method)
}

// do is the cache-aware request flow. Errors are always returned.
func (c *Client) do(ctx context.Context, req Request) (json.RawMessage, error) {
	method := methodOf(req)
	if !allowedMethods[method] {
		apiErrorsTotal.WithLabelValues(string(ErrorClassConfig)).Inc()
		return nil, &ConfigurationError{Message: fmt.Sprintf("unsupported method %q", req.Method)}
	}

	if !c.configured {
		apiErrorsTotal.WithLabelValues(string(ErrorClassConfig)).Inc()
		return nil, &ConfigurationError{Message: "API base URL is not configured"}
	}

	url := c.baseURL + normalizePath(req.Path)
	isGet := method == http.MethodGet

	var key cache.Key
	var cached *cache.Entry
	if isGet {
		key = cache.NewKey(url, req.AccessToken)
		entry, err := c.store.Get(ctx, key)
		switch {
		case err == nil:
			cached = entry
		case !errors.Is(err, cache.ErrCacheMiss):
			c.logger.Warn().Err(err).Str("url", url).Msg("Cache get error")
		}
	}

	// At most two attempts: the second one runs unconditionally after a 304
	// whose cache entry disappeared in the meantime.
	for attempt := 0; attempt < 2; attempt++ {
		conditional := attempt == 0 && cached != nil

		resp, err := c.send(ctx, method, url, req, cached, conditional)
		if err != nil {
			apiErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			apiRequestsTotal.WithLabelValues(method, "network_error").Inc()
			return nil, err
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		apiRequestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()
		if readErr != nil {
			apiErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			return nil, fmt.Errorf("read response body: %w", readErr)
		}

		if resp.StatusCode == http.StatusNotModified && conditional {
			entry, err := c.store.Get(ctx, key)
			if err == nil {
				if err := c.store.Touch(ctx, key, c.now().Add(c.ttl)); err != nil {
					c.logger.Debug().Err(err).Str("url", url).Msg("Failed to refresh cache entry")
				}
				apiNotModifiedTotal.Inc()
				c.logger.Debug().Str("url", url).Str("etag", entry.ETag).Msg("304 Not Modified - using cache")
				return nullable(entry.Payload), nil
			}

			c.logger.Debug().Str("url", url).Msg("304 for vanished cache entry - retrying unconditionally")
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			apiErrorsTotal.WithLabelValues(string(ErrorClassStatus)).Inc()
			return nil, &RequestFailedError{
				StatusCode: resp.StatusCode,
				Method:     method,
				URL:        url,
				Message:    extractErrorMessage(resp.StatusCode, body),
			}
		}

		payload, err := parsePayload(body)
		if err != nil {
			apiErrorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
			return nil, err
		}

		if isGet {
			c.updateCache(ctx, key, resp.Header.Get("ETag"), payload)
		}
		return payload, nil
	}

	// Unreachable: the second attempt never sends a conditional request.
	return nil, &RequestFailedError{
		StatusCode: http.StatusNotModified,
		Method:     method,
		URL:        url,
		Message:    extractErrorMessage(http.StatusNotModified, nil),
	}
}

// send builds and executes one HTTP request.
func (c *Client) send(ctx context.Context, method, url string, req Request, cached *cache.Entry, conditional bool) (*http.Response, error) {
	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if req.AccessToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.AccessToken)
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if conditional {
		cache.AddConditionalHeaders(httpReq, cached)
		apiConditionalRequestsTotal.Inc()
		c.logger.Debug().Str("url", url).Str("etag", cached.ETag).Msg("Making conditional request")
	}

	start := c.now()
	defer func() {
		apiRequestDuration.WithLabelValues(method).Observe(c.now().Sub(start).Seconds())
	}()

	return c.httpClient.Do(httpReq)
}

// updateCache stores a fresh entry when the API sent an ETag and drops any
// stale entry when it did not.
func (c *Client) updateCache(ctx context.Context, key cache.Key, etag string, payload json.RawMessage) {
	if etag == "" {
		if err := c.store.Delete(ctx, key); err != nil {
			c.logger.Warn().Err(err).Str("key", key.String()).Msg("Failed to drop stale cache entry")
		}
		return
	}

	entry := cache.NewEntry(etag, payload, c.now(), c.ttl)
	if err := c.store.Set(ctx, key, entry); err != nil {
		c.logger.Warn().Err(err).Str("key", key.String()).Msg("Failed to cache response")
		return
	}
	c.logger.Debug().Str("key", key.String()).Str("etag", etag).Dur("ttl", c.ttl).Msg("Cached response")
}

// parsePayload validates a JSON body. Empty bodies and JSON null yield nil.
func parsePayload(body []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("%w: response body is not valid JSON", ErrInvalidPayload)
	}
	return nullable(json.RawMessage(trimmed)), nil
}

func nullable(payload json.RawMessage) json.RawMessage {
	if len(payload) == 0 || string(payload) == "null" {
		return nil
	}
	return payload
}
