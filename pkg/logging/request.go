package logging

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestIDHeader carries the request id between the edge and the frontend.
const RequestIDHeader = "X-Request-ID"

// RequestID returns the request id of r ("" if none was assigned).
func RequestID(r *http.Request) string {
	return r.Header.Get(RequestIDHeader)
}

// WithRequestID assigns a request id to inbound requests that lack one and
// echoes it on the response.
func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := RequestID(r)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(RequestIDHeader, id)
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// WithRequest returns a child logger carrying the request's method, path and id.
func WithRequest(logger zerolog.Logger, r *http.Request) zerolog.Logger {
	ctx := logger.With().
		Str("method", r.Method).
		Str("path", r.URL.Path)
	if id := RequestID(r); id != "" {
		ctx = ctx.Str("request_id", id)
	}
	return ctx.Logger()
}
