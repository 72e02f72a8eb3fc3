package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/portal-edge/internal/config"
	"github.com/Sternrassler/portal-edge/internal/edge"
	"github.com/Sternrassler/portal-edge/pkg/auth"
	"github.com/Sternrassler/portal-edge/pkg/cache"
	"github.com/Sternrassler/portal-edge/pkg/client"
	"github.com/Sternrassler/portal-edge/pkg/logging"
	"github.com/Sternrassler/portal-edge/pkg/metrics"
)

// ContinuePath finishes a sign-in: see edge.Guard.PostAuthRedirect.
const ContinuePath = "/_edge/continue"

func newServeCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the edge proxy",
		Long: `Run the edge proxy.

Requests under /auth, /workspace, /onboarding and /admin pass the route
interceptor before they are proxied to UPSTREAM_URL. Admin pages are
re-checked by the page guard. /metrics and /healthz are served locally.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts.cfg)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger := logging.NewLogger("server")

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	store, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	handler, err := newHandler(cfg, store)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", cfg.Server.ListenAddr).
			Str("upstream", cfg.Server.UpstreamURL).
			Bool("production", cfg.Production()).
			Msg("Starting edge server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down edge server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newStore picks the API cache store: Redis when REDIS_URL is set,
// otherwise a process-local MemoryStore.
func newStore(ctx context.Context, cfg *config.Config) (cache.Store, func(), error) {
	if cfg.RedisURL == "" {
		return cache.NewMemoryStore(cache.WithCapacity(cfg.API.CacheCapacity)), func() {}, nil
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		redisClient.Close()
		return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger := logging.NewLogger("server")
	logger.Info().Str("addr", redisOpts.Addr).Msg("Connected to Redis")
	return cache.NewRedisStore(redisClient), func() { redisClient.Close() }, nil
}

// newHandler wires the API client, the session verifier and the route
// policy in front of the upstream proxy.
func newHandler(cfg *config.Config, store cache.Store) (http.Handler, error) {
	var verifierOpts []auth.VerifierOption
	if cfg.Auth.Audience != "" {
		verifierOpts = append(verifierOpts, auth.WithAudience(cfg.Auth.Audience))
	}
	verifier, err := auth.NewVerifier(cfg.Auth.JWTSecret, verifierOpts...)
	if err != nil {
		return nil, err
	}

	upstream, err := url.Parse(cfg.Server.UpstreamURL)
	if err != nil || upstream.Scheme == "" || upstream.Host == "" {
		return nil, fmt.Errorf("invalid UPSTREAM_URL %q", cfg.Server.UpstreamURL)
	}

	apiClient := client.New(client.Config{
		BaseURL: cfg.API.BaseURL,
		Store:   store,
		TTL:     cfg.API.CacheTTL,
	})
	membership := edge.NewAPIMembershipChecker(apiClient)
	admins := auth.ParseAdminList(cfg.Auth.AdminEmails)

	interceptor := edge.NewInterceptor(verifier, membership, admins, edge.WithSecureCookies(cfg.Production()))
	guard := edge.NewGuard(verifier, membership, admins)

	proxy := newProxy(upstream, logging.NewLogger("proxy"))

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", healthHandler)
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle(ContinuePath, guard.PostAuthRedirect())
	mux.Handle("/admin", interceptor.Wrap(guard.Require(proxy)))
	mux.Handle("/admin/", interceptor.Wrap(guard.Require(proxy)))
	mux.Handle("/", interceptor.Wrap(proxy))

	return logging.WithRequestID(mux), nil
}

// newProxy forwards requests to the frontend.
func newProxy(upstream *url.URL, logger zerolog.Logger) *httputil.ReverseProxy {
	proxy := httputil.NewSingleHostReverseProxy(upstream)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		l := logging.WithRequest(logger, r)
		l.Error().Err(err).Msg("Upstream request failed")
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}
	return proxy
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}
