// Package config loads the edge service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Sternrassler/portal-edge/pkg/cache"
	"github.com/Sternrassler/portal-edge/pkg/logging"
)

// EnvProduction enables secure cookies.
const EnvProduction = "production"

var (
	// ErrMissingUpstream is returned when the frontend origin is not configured
	ErrMissingUpstream = errors.New("UPSTREAM_URL is not configured")

	// ErrMissingAuthSecret is returned when the token secret is not configured
	ErrMissingAuthSecret = errors.New("AUTH_JWT_SECRET is not configured")
)

// Config holds application configuration
type Config struct {
	API      APIConfig
	Auth     AuthConfig
	Server   ServerConfig
	Logging  logging.Config
	RedisURL string // empty = process-local cache
	Env      string
}

// APIConfig holds the remote API client configuration
type APIConfig struct {
	BaseURL       string
	CacheTTL      time.Duration
	CacheCapacity int
}

// AuthConfig holds session verification configuration
type AuthConfig struct {
	JWTSecret   string
	Audience    string
	AdminEmails string // comma separated
}

// ServerConfig holds server configuration
type ServerConfig struct {
	ListenAddr  string
	UpstreamURL string
}

// Load reads the configuration. Values from the given .env files (default
// ".env") fill in variables that are not already set; missing files are
// ignored.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}

	ttl, err := time.ParseDuration(getEnv("API_CACHE_TTL", cache.DefaultTTL.String()))
	if err != nil {
		return nil, fmt.Errorf("parse API_CACHE_TTL: %w", err)
	}
	capacity, err := strconv.Atoi(getEnv("API_CACHE_CAPACITY", strconv.Itoa(cache.DefaultCapacity)))
	if err != nil {
		return nil, fmt.Errorf("parse API_CACHE_CAPACITY: %w", err)
	}
	pretty, err := strconv.ParseBool(getEnv("LOG_PRETTY", "false"))
	if err != nil {
		return nil, fmt.Errorf("parse LOG_PRETTY: %w", err)
	}

	return &Config{
		API: APIConfig{
			BaseURL:       getEnv("API_URL", ""),
			CacheTTL:      ttl,
			CacheCapacity: capacity,
		},
		Auth: AuthConfig{
			JWTSecret:   getEnv("AUTH_JWT_SECRET", ""),
			Audience:    getEnv("AUTH_JWT_AUDIENCE", ""),
			AdminEmails: getEnv("PLATFORM_ADMIN_EMAILS", ""),
		},
		Server: ServerConfig{
			ListenAddr:  getEnv("LISTEN_ADDR", ":8080"),
			UpstreamURL: getEnv("UPSTREAM_URL", ""),
		},
		Logging: logging.Config{
			Level:  logging.LogLevel(getEnv("LOG_LEVEL", string(logging.LevelInfo))),
			Pretty: pretty,
			Output: os.Stderr,
		},
		RedisURL: getEnv("REDIS_URL", ""),
		Env:      strings.ToLower(getEnv("APP_ENV", "development")),
	}, nil
}

// Validate checks what the server cannot start without. A missing API URL
// is allowed: the client degrades to "unavailable".
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		errs = append(errs, ErrMissingAuthSecret)
	}
	if strings.TrimSpace(c.Server.UpstreamURL) == "" {
		errs = append(errs, ErrMissingUpstream)
	}
	if c.API.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("API_CACHE_TTL must be positive, got %s", c.API.CacheTTL))
	}
	if c.API.CacheCapacity <= 0 {
		errs = append(errs, fmt.Errorf("API_CACHE_CAPACITY must be positive, got %d", c.API.CacheCapacity))
	}
	return errors.Join(errs...)
}

// Production reports whether cookies must be Secure.
func (c *Config) Production() bool {
	return c.Env == EnvProduction
}

// getEnv gets environment variable or returns default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
