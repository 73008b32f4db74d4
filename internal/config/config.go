// Package config handles loading application configuration from environment
// variables. All config is centralized here so no other package reads env
// vars directly. Sensible defaults are provided for development; a .env
// file in the working directory is loaded when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration. Populated from environment
// variables at startup and passed to other packages via dependency injection.
type Config struct {
	// Env is the runtime environment: "development" or "production".
	Env string

	// Port is the HTTP listen port (default: 3000).
	Port int

	// BaseURL is the public-facing URL used for CORS and links.
	BaseURL string

	// LogLevel controls log verbosity: "debug", "info", "warn", "error".
	LogLevel string

	// DataDir is the directory holding the flat JSON collections and the
	// persisted JWT secret (default: "./data").
	DataDir string

	// PublicDir is the directory the static SPA frontend is served from.
	PublicDir string

	// Auth holds authentication-related settings.
	Auth AuthConfig

	// Redis holds the optional proxy-cache settings.
	Redis RedisConfig
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	// TokenTTL is how long issued JWTs stay valid. Long by default
	// (90 days) -- tokens survive server restarts, which is why the
	// session key cache can be empty for a request carrying a valid token.
	TokenTTL time.Duration

	// BcryptCost is the bcrypt work factor for password hashes.
	BcryptCost int
}

// RedisConfig holds Redis connection parameters for the marketplace proxy
// cache. An empty URL disables caching -- the server stays single-process.
type RedisConfig struct {
	// URL is the Redis connection URL (e.g., "redis://localhost:6379").
	URL string

	// CacheTTL is how long proxied marketplace responses are cached.
	CacheTTL time.Duration
}

// Load reads configuration from the environment with sensible defaults.
// A .env file is applied first when one exists (never overriding real
// env vars).
func Load() (*Config, error) {
	// Ignore a missing .env -- it is a development convenience.
	_ = godotenv.Load()

	cfg := &Config{
		Env:       getEnv("ENV", "development"),
		Port:      getEnvInt("PORT", 3000),
		BaseURL:   getEnv("BASE_URL", "http://localhost:3000"),
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		DataDir:   getEnv("DATA_DIR", "./data"),
		PublicDir: getEnv("PUBLIC_DIR", "./public"),

		Auth: AuthConfig{
			TokenTTL:   getEnvDuration("TOKEN_TTL", 90*24*time.Hour),
			BcryptCost: getEnvInt("BCRYPT_COST", 10),
		},

		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			CacheTTL: getEnvDuration("PROXY_CACHE_TTL", 24*time.Hour),
		},
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid PORT %d", cfg.Port)
	}
	if cfg.DataDir == "" {
		return nil, fmt.Errorf("DATA_DIR must not be empty")
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Env)
	return env == "development" || env == "dev"
}

// --- Helper functions for reading environment variables ---

// getEnv reads a string env var or returns the default.
func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// getEnvInt reads an integer env var or returns the default.
func getEnvInt(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvDuration reads a duration env var (e.g., "2160h") or returns the default.
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
