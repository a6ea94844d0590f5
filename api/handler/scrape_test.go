package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericziethen/ez-scrape/api/handler"
	"github.com/ericziethen/ez-scrape/cache"
	"github.com/ericziethen/ez-scrape/config"
	"github.com/ericziethen/ez-scrape/engine"
	"github.com/ericziethen/ez-scrape/models"
)

func testScraperConfig() config.ScraperConfig {
	return config.ScraperConfig{
		MaxTimeout: 120 * time.Second,
		MaxPages:   50,
	}
}

// scrapeRouter builds a minimal router carrying only the scrape route.
func scrapeRouter(cfg config.ScraperConfig) *gin.Engine {
	return scrapeRouterWithCache(cfg, nil)
}

func scrapeRouterWithCache(cfg config.ScraperConfig, cc *cache.Cache) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/v1/scrape", handler.Scrape(cfg, cc))
	return r
}

func doScrape(t *testing.T, r *gin.Engine, body string) (*httptest.ResponseRecorder, models.ScrapeResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scrape", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp models.ScrapeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestScrapeHandler(t *testing.T) {
	t.Run("scrapes a static page", func(t *testing.T) {
		target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html><head><title>Target</title></head><body>served</body></html>"))
		}))
		defer target.Close()

		_, resp := doScrape(t, scrapeRouter(testScraperConfig()),
			`{"url": "`+target.URL+`"}`)

		assert.True(t, resp.Success)
		assert.Equal(t, "http", resp.Backend)
		require.Len(t, resp.Pages, 1)
		assert.Equal(t, "Target", resp.Pages[0].Title)
		assert.Contains(t, resp.Pages[0].HTML, "served")
		assert.Greater(t, resp.RequestTimeMs, 0.0)
	})

	t.Run("an operational failure still answers 200", func(t *testing.T) {
		target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusForbidden)
		}))
		defer target.Close()

		w, resp := doScrape(t, scrapeRouter(testScraperConfig()),
			`{"url": "`+target.URL+`"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.False(t, resp.Success)
		assert.Equal(t, "HTTP Error: 403 - Forbidden", resp.ErrorMsg)
		assert.Empty(t, resp.Pages)
		assert.Nil(t, resp.Error)
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		w, resp := doScrape(t, scrapeRouter(testScraperConfig()), `{"url": `)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, models.ErrCodeInvalidInput, resp.Error.Code)
	})

	t.Run("rejects a missing url", func(t *testing.T) {
		w, resp := doScrape(t, scrapeRouter(testScraperConfig()), `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, models.ErrCodeInvalidInput, resp.Error.Code)
	})

	t.Run("rejects feature combinations the backend cannot honor", func(t *testing.T) {
		w, resp := doScrape(t, scrapeRouter(testScraperConfig()),
			`{"url": "http://example.com", "backend": "http", "javascript": true}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, models.ErrCodeConfig, resp.Error.Code)
		assert.Contains(t, resp.Error.Message, "javascript")
	})

	t.Run("reports a missing browser executable as a setup failure", func(t *testing.T) {
		t.Setenv(engine.BrowserBinEnv, "")

		w, resp := doScrape(t, scrapeRouter(testScraperConfig()),
			`{"url": "http://example.com", "backend": "browser"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, models.ErrCodeSetup, resp.Error.Code)
	})

	t.Run("caps client limits at the server ceilings", func(t *testing.T) {
		target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte("slow"))
		}))
		defer target.Close()

		cfg := testScraperConfig()
		cfg.MaxTimeout = 50 * time.Millisecond

		// The client asks for 60s, the server cap cuts it to 50ms, so
		// the slow target reads as a timeout.
		_, resp := doScrape(t, scrapeRouter(cfg),
			`{"url": "`+target.URL+`", "request_timeout_s": 60}`)

		assert.False(t, resp.Success)
		assert.Equal(t, models.StatusTimeout, resp.Status)
	})

	t.Run("serves repeat requests from the cache", func(t *testing.T) {
		var fetches atomic.Int32
		target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fetches.Add(1)
			_, _ = w.Write([]byte("<html><body>cached</body></html>"))
		}))
		defer target.Close()

		r := scrapeRouterWithCache(testScraperConfig(), cache.New(10))
		body := `{"url": "` + target.URL + `", "cache_max_age_s": 60}`

		_, first := doScrape(t, r, body)
		assert.Equal(t, "miss", first.CacheStatus)

		_, second := doScrape(t, r, body)
		assert.Equal(t, "hit", second.CacheStatus)
		assert.True(t, second.Success)
		require.Len(t, second.Pages, 1)

		assert.Equal(t, int32(1), fetches.Load(), "the second response must come from the cache")
	})

	t.Run("requests without cache opt-in always fetch", func(t *testing.T) {
		var fetches atomic.Int32
		target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fetches.Add(1)
			_, _ = w.Write([]byte("<html><body>fresh</body></html>"))
		}))
		defer target.Close()

		r := scrapeRouterWithCache(testScraperConfig(), cache.New(10))
		body := `{"url": "` + target.URL + `"}`

		_, first := doScrape(t, r, body)
		_, second := doScrape(t, r, body)

		assert.Empty(t, first.CacheStatus)
		assert.Empty(t, second.CacheStatus)
		assert.Equal(t, int32(2), fetches.Load())
	})
}
