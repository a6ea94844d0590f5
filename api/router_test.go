package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericziethen/ez-scrape/api"
	"github.com/ericziethen/ez-scrape/config"
	"github.com/ericziethen/ez-scrape/models"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Mode: "test"},
		Scraper: config.ScraperConfig{
			MaxTimeout: 120 * time.Second,
			MaxPages:   50,
		},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 100, Burst: 100},
	}
}

func TestRouter(t *testing.T) {
	t.Run("serves health", func(t *testing.T) {
		r := api.NewRouter(testConfig(), time.Now())

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

		require.Equal(t, http.StatusOK, w.Code)

		var resp models.HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp.Status)
	})

	t.Run("unknown routes answer 404", func(t *testing.T) {
		r := api.NewRouter(testConfig(), time.Now())

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("rate limits scrape requests per client", func(t *testing.T) {
		cfg := testConfig()
		cfg.RateLimit = config.RateLimitConfig{RequestsPerSecond: 0.1, Burst: 2}
		r := api.NewRouter(cfg, time.Now())

		// A closed loopback port keeps the check itself instant.
		probe := "/api/v1/check?url=http://127.0.0.1:1/"

		codes := make([]int, 0, 3)
		for i := 0; i < 3; i++ {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, probe, nil)
			req.RemoteAddr = "10.1.2.3:4000"
			r.ServeHTTP(w, req)
			codes = append(codes, w.Code)
		}

		// Burst of 2 admits the first two, the third is turned away.
		assert.NotEqual(t, http.StatusTooManyRequests, codes[0])
		assert.NotEqual(t, http.StatusTooManyRequests, codes[1])
		assert.Equal(t, http.StatusTooManyRequests, codes[2])

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, probe, nil)
		req.RemoteAddr = "10.9.9.9:4000"
		r.ServeHTTP(w, req)
		assert.NotEqual(t, http.StatusTooManyRequests, w.Code, "a different client has its own bucket")
	})

	t.Run("health is not rate limited", func(t *testing.T) {
		cfg := testConfig()
		cfg.RateLimit = config.RateLimitConfig{RequestsPerSecond: 0.1, Burst: 1}
		r := api.NewRouter(cfg, time.Now())

		for i := 0; i < 5; i++ {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
			req.RemoteAddr = "10.1.2.3:4000"
			r.ServeHTTP(w, req)
			require.Equal(t, http.StatusOK, w.Code)
		}
	})

	t.Run("configured API keys guard the scrape routes", func(t *testing.T) {
		cfg := testConfig()
		cfg.Auth = config.AuthConfig{APIKeys: []string{"sekrit"}}
		r := api.NewRouter(cfg, time.Now())

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/check?url=http://127.0.0.1:1/", nil))
		require.Equal(t, http.StatusUnauthorized, w.Code)

		var resp models.ScrapeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, models.ErrCodeUnauthorized, resp.Error.Code)

		w = httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/check?url=http://127.0.0.1:1/", nil)
		req.Header.Set("X-API-Key", "sekrit")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		req = httptest.NewRequest(http.MethodGet, "/api/v1/check?url=http://127.0.0.1:1/", nil)
		req.Header.Set("Authorization", "Bearer sekrit")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "bearer tokens are accepted too")

		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
		assert.Equal(t, http.StatusOK, w.Code, "health stays open")
	})

	t.Run("without keys the API is open", func(t *testing.T) {
		r := api.NewRouter(testConfig(), time.Now())

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/check?url=http://127.0.0.1:1/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
