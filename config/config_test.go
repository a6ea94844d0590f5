package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ericziethen/ez-scrape/config"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"EZSCRAPE_HOST", "EZSCRAPE_PORT", "EZSCRAPE_MODE",
		"EZSCRAPE_MAX_TIMEOUT", "EZSCRAPE_MAX_PAGES", "EZSCRAPE_BLOCKED_RESOURCES",
		"EZSCRAPE_LOCAL_ONLY", "EZSCRAPE_API_KEYS", "EZSCRAPE_RATE_RPS",
		"EZSCRAPE_RATE_BURST", "EZSCRAPE_CACHE_ENTRIES",
		"EZSCRAPE_LOG_LEVEL", "EZSCRAPE_LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}

	cfg := config.Load()

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, 120*time.Second, cfg.Scraper.MaxTimeout)
	assert.Equal(t, 50, cfg.Scraper.MaxPages)
	assert.Equal(t, []string{"Image", "Stylesheet", "Font", "Media"}, cfg.Scraper.BlockedResourceTypes)
	assert.False(t, cfg.Scraper.LocalOnly)
	assert.Empty(t, cfg.Auth.APIKeys)
	assert.InDelta(t, 5.0, cfg.RateLimit.RequestsPerSecond, 0.001)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
	assert.Equal(t, 1000, cfg.Cache.MaxEntries)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("EZSCRAPE_PORT", "9090")
	t.Setenv("EZSCRAPE_MODE", "debug")
	t.Setenv("EZSCRAPE_MAX_TIMEOUT", "30s")
	t.Setenv("EZSCRAPE_BLOCKED_RESOURCES", "Image, Font")
	t.Setenv("EZSCRAPE_LOCAL_ONLY", "true")
	t.Setenv("EZSCRAPE_API_KEYS", "alpha,beta")
	t.Setenv("EZSCRAPE_RATE_RPS", "2.5")
	t.Setenv("EZSCRAPE_CACHE_ENTRIES", "0")

	cfg := config.Load()

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, 30*time.Second, cfg.Scraper.MaxTimeout)
	assert.Equal(t, []string{"Image", "Font"}, cfg.Scraper.BlockedResourceTypes)
	assert.True(t, cfg.Scraper.LocalOnly)
	assert.Equal(t, []string{"alpha", "beta"}, cfg.Auth.APIKeys)
	assert.InDelta(t, 2.5, cfg.RateLimit.RequestsPerSecond, 0.001)
	assert.Equal(t, 0, cfg.Cache.MaxEntries)
}

func TestLoad_IgnoresMalformedValues(t *testing.T) {
	t.Setenv("EZSCRAPE_PORT", "not-a-number")
	t.Setenv("EZSCRAPE_MAX_TIMEOUT", "soon")
	t.Setenv("EZSCRAPE_RATE_RPS", "fast")

	cfg := config.Load()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 120*time.Second, cfg.Scraper.MaxTimeout)
	assert.InDelta(t, 5.0, cfg.RateLimit.RequestsPerSecond, 0.001)
}
