package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/portal-edge/internal/config"
	"github.com/Sternrassler/portal-edge/internal/testutil"
	"github.com/Sternrassler/portal-edge/pkg/auth"
	"github.com/Sternrassler/portal-edge/pkg/cache"
	"github.com/Sternrassler/portal-edge/pkg/logging"
)

const testSecret = "serve-test-secret"

var testUser = uuid.MustParse("5b0c7e1a-2d3f-4e5a-8b6c-7d8e9f0a1b2c")

func signedToken(t *testing.T, email string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   testUser.String(),
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

// runCLI executes the root command with an isolated env file.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true

	root := newRootCmd()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "none.env")}, args...))

	err := root.Execute()
	return out.String(), err
}

func TestHealthEndpoint(t *testing.T) {
	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()

	healthHandler(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	if string(body) != "OK" {
		t.Errorf("Expected body 'OK', got %s", string(body))
	}
}

func TestDecideCmd(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"anonymous workspace", []string{"decide", "/workspace"}, "REDIRECT /workspace -> /auth/login"},
		{"anonymous home", []string{"decide", "/"}, "ALLOW /"},
		{"member admin", []string{"decide", "/admin", "--user", "u1", "--member"}, "REDIRECT /admin -> /workspace"},
		{"admin onboarding", []string{"decide", "/onboarding", "--user", "u1", "--admin"}, "REDIRECT /onboarding -> /admin"},
		{"member workspace", []string{"decide", "/workspace", "--user", "u1", "--member"}, "ALLOW /workspace"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, tt.args...)
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestDecideCmd_RequiresPath(t *testing.T) {
	_, err := runCLI(t, "decide")
	assert.Error(t, err)
}

func TestFetchCmd(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetHandler("/api/v1/startups", testutil.NewConditionalHandler(`"v1"`, `[{"id":"s1"}]`))

	out, err := runCLI(t, "fetch", "/startups", "--api-url", mock.URL(), "--token", "token-a", "--repeat", "2")
	require.NoError(t, err)

	assert.Contains(t, out, `"id": "s1"`)
	assert.Equal(t, 2, mock.RequestCount())
	assert.Equal(t, 1, mock.ConditionalCount())
	assert.Equal(t, "Bearer token-a", mock.LastRequest().Authorization)
}

func TestFetchCmd_Failure(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()

	_, err := runCLI(t, "fetch", "/missing", "--api-url", mock.URL())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Not found")
}

func testConfig(upstream, api string) *config.Config {
	return &config.Config{
		API: config.APIConfig{
			BaseURL:       api,
			CacheTTL:      time.Minute,
			CacheCapacity: 10,
		},
		Auth: config.AuthConfig{
			JWTSecret:   testSecret,
			AdminEmails: "ops@example.com",
		},
		Server: config.ServerConfig{
			ListenAddr:  "127.0.0.1:0",
			UpstreamURL: upstream,
		},
		Logging: logging.DefaultConfig(),
	}
}

func TestNewHandler(t *testing.T) {
	frontend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("frontend:" + r.URL.Path))
	}))
	defer frontend.Close()

	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/api/v1/organizations/membership", testutil.NewJSONResponse(`{"hasMembership": true}`, ""))

	handler, err := newHandler(testConfig(frontend.URL, mock.URL()), cache.NewMemoryStore())
	require.NoError(t, err)

	memberToken := signedToken(t, "founder@example.com")
	adminToken := signedToken(t, "ops@example.com")

	tests := []struct {
		name         string
		target       string
		token        string
		wantStatus   int
		wantBody     string
		wantLocation string
	}{
		{name: "health", target: "/healthz", wantStatus: http.StatusOK, wantBody: "OK"},
		{name: "public page proxied", target: "/pricing", wantStatus: http.StatusOK, wantBody: "frontend:/pricing"},
		{name: "anonymous workspace", target: "/workspace", wantStatus: http.StatusTemporaryRedirect, wantLocation: "/auth/login?next=%2Fworkspace"},
		{name: "member workspace proxied", target: "/workspace/startups", token: memberToken, wantStatus: http.StatusOK, wantBody: "frontend:/workspace/startups"},
		{name: "member on login", target: "/auth/login", token: memberToken, wantStatus: http.StatusTemporaryRedirect, wantLocation: "/workspace"},
		{name: "member on admin", target: "/admin/users", token: memberToken, wantStatus: http.StatusTemporaryRedirect, wantLocation: "/workspace"},
		{name: "admin on admin", target: "/admin", token: adminToken, wantStatus: http.StatusOK, wantBody: "frontend:/admin"},
		{name: "continue after sign in", target: ContinuePath + "?next=%2Fworkspace%2Fadvisors", token: memberToken, wantStatus: http.StatusTemporaryRedirect, wantLocation: "/workspace/advisors"},
		{name: "continue for admin", target: ContinuePath, token: adminToken, wantStatus: http.StatusTemporaryRedirect, wantLocation: "/admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.token != "" {
				req.AddCookie(&http.Cookie{Name: auth.AccessTokenCookie, Value: tt.token})
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.NotEmpty(t, rec.Header().Get(logging.RequestIDHeader))
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
			}
		})
	}
}

func TestNewHandler_Metrics(t *testing.T) {
	handler, err := newHandler(testConfig("http://127.0.0.1:1", ""), cache.NewMemoryStore())
	require.NoError(t, err)

	// Produce at least one decision so the edge metric is exported
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/workspace", nil))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "portal_route_decisions_total")
}

func TestNewHandler_UpstreamDown(t *testing.T) {
	handler, err := newHandler(testConfig("http://127.0.0.1:1", ""), cache.NewMemoryStore())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pricing", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestNewHandler_InvalidConfig(t *testing.T) {
	missingSecret := testConfig("http://localhost:3000", "")
	missingSecret.Auth.JWTSecret = ""
	_, err := newHandler(missingSecret, cache.NewMemoryStore())
	assert.ErrorIs(t, err, auth.ErrMissingSecret)

	badUpstream := testConfig("localhost", "")
	_, err = newHandler(badUpstream, cache.NewMemoryStore())
	assert.ErrorContains(t, err, "UPSTREAM_URL")
}

func TestRunServe_InvalidConfig(t *testing.T) {
	cfg := testConfig("", "")
	err := runServe(context.Background(), cfg)
	assert.ErrorIs(t, err, config.ErrMissingUpstream)
}

func TestRunServe_Shutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- runServe(ctx, testConfig("http://localhost:3000", ""))
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestNewStore(t *testing.T) {
	t.Run("memory by default", func(t *testing.T) {
		store, closeStore, err := newStore(context.Background(), testConfig("", ""))
		require.NoError(t, err)
		defer closeStore()

		mem, ok := store.(*cache.MemoryStore)
		require.True(t, ok)
		assert.Equal(t, 10, mem.Capacity())
	})

	t.Run("invalid redis url", func(t *testing.T) {
		cfg := testConfig("", "")
		cfg.RedisURL = "not a url"
		_, _, err := newStore(context.Background(), cfg)
		assert.ErrorContains(t, err, "REDIS_URL")
	})
}

func TestRootCmd_HelpShowsSubcommands(t *testing.T) {
	out, err := runCLI(t, "--help")
	require.NoError(t, err)

	for _, sub := range []string{"serve", "decide", "fetch"} {
		if !strings.Contains(out, sub) {
			t.Errorf("expected help to list %q, got:\n%s", sub, out)
		}
	}
}
