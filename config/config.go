// Package config loads daemon configuration from the environment. Every
// knob has a default good enough for local use; production deployments
// override through EZSCRAPE_* variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all daemon configuration.
type Config struct {
	Server    ServerConfig
	Scraper   ScraperConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// ScraperConfig bounds what API clients may request and tunes rendering.
type ScraperConfig struct {
	// MaxTimeout caps client-supplied per-fetch timeouts.
	MaxTimeout time.Duration // default: 120s

	// MaxPages caps client-supplied pagination limits.
	MaxPages int // default: 50

	// BlockedResourceTypes lists resource types blocked during
	// rendering. default: ["Image", "Stylesheet", "Font", "Media"]
	BlockedResourceTypes []string

	// LocalOnly restricts the check endpoint to local addresses.
	LocalOnly bool // default: false
}

// AuthConfig controls API-key authentication.
type AuthConfig struct {
	// APIKeys is the list of accepted keys. Empty leaves the API open.
	APIKeys []string
}

// RateLimitConfig controls per-client rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per client IP.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per client IP.
	Burst int // default: 10
}

// CacheConfig controls the scrape response cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached responses.
	// Zero disables the cache entirely.
	MaxEntries int // default: 1000
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads the full configuration from the environment. Malformed
// values fall back to their defaults rather than failing startup.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: str("EZSCRAPE_HOST", "0.0.0.0"),
			Port: integer("EZSCRAPE_PORT", 8080),
			Mode: str("EZSCRAPE_MODE", "release"),
		},
		Scraper: ScraperConfig{
			MaxTimeout:           duration("EZSCRAPE_MAX_TIMEOUT", 120*time.Second),
			MaxPages:             integer("EZSCRAPE_MAX_PAGES", 50),
			BlockedResourceTypes: list("EZSCRAPE_BLOCKED_RESOURCES", []string{"Image", "Stylesheet", "Font", "Media"}),
			LocalOnly:            boolean("EZSCRAPE_LOCAL_ONLY", false),
		},
		Auth: AuthConfig{
			APIKeys: list("EZSCRAPE_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: float("EZSCRAPE_RATE_RPS", 5.0),
			Burst:             integer("EZSCRAPE_RATE_BURST", 10),
		},
		Cache: CacheConfig{
			MaxEntries: integer("EZSCRAPE_CACHE_ENTRIES", 1000),
		},
		Log: LogConfig{
			Level:  str("EZSCRAPE_LOG_LEVEL", "info"),
			Format: str("EZSCRAPE_LOG_FORMAT", "json"),
		},
	}
}

func str(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func integer(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func boolean(key string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func float(key string, def float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return def
	}
	return v
}

func duration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

// list splits a comma-separated variable, dropping empty items. Unset or
// blank variables keep the default.
func list(key string, def []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
