package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ericziethen/ez-scrape/cache"
	"github.com/ericziethen/ez-scrape/config"
	"github.com/ericziethen/ez-scrape/engine"
	"github.com/ericziethen/ez-scrape/models"
)

// Scrape returns the handler for POST /api/v1/scrape.
//
// Flow:
//  1. Parse and validate the request, apply defaults and server caps.
//  2. Serve from cache when the request opted in and a fresh entry exists.
//  3. Convert to a ScrapeConfig and pick an engine.
//  4. Run the scrape, store successes in the cache, return the wire form.
//
// Config and setup failures reject the request (400/500); a scrape that
// ran always answers 200 and reports its own outcome in the status and
// error_msg fields, whether or not the fetch succeeded.
func Scrape(cfg config.ScraperConfig, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ScrapeResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()
		req.Clamp(cfg.MaxTimeout, cfg.MaxPages)

		maxAge := time.Duration(req.CacheMaxAgeS * float64(time.Second))
		if cc != nil && maxAge > 0 {
			if cached, hit := cc.Get(cache.Key(&req), maxAge); hit {
				cached.CacheStatus = "hit"
				c.JSON(http.StatusOK, cached)
				return
			}
		}

		scrapeCfg, err := req.ToConfig()
		if err != nil {
			respondError(c, err)
			return
		}

		scraper, err := engine.NewScraper(scrapeCfg,
			engine.WithBlockedResources(cfg.BlockedResourceTypes))
		if err != nil {
			respondError(c, err)
			return
		}

		result, err := scraper.Scrape(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}

		slog.Info("scrape finished",
			"url", result.URL,
			"backend", result.Backend,
			"status", result.Status.String(),
			"pages", result.Len(),
		)

		resp := models.NewScrapeResponse(result)
		if cc != nil && maxAge > 0 && result.OK() {
			cc.Set(cache.Key(&req), resp)
			resp.CacheStatus = "miss"
		}
		c.JSON(http.StatusOK, resp)
	}
}

// respondError maps the error taxonomy to HTTP statuses: config
// rejections are the client's fault, setup problems are the server's.
func respondError(c *gin.Context, err error) {
	var cfgErr *models.ConfigError
	var setupErr *models.SetupError

	switch {
	case errors.As(err, &cfgErr):
		c.JSON(http.StatusBadRequest, models.ScrapeResponse{
			Success: false,
			Error: &models.ErrorDetail{
				Code:    models.ErrCodeConfig,
				Message: cfgErr.Message,
			},
		})
	case errors.As(err, &setupErr):
		slog.Error("scrape setup failed", "error", err)
		c.JSON(http.StatusInternalServerError, models.ScrapeResponse{
			Success: false,
			Error: &models.ErrorDetail{
				Code:    models.ErrCodeSetup,
				Message: setupErr.Message,
			},
		})
	case errors.Is(err, models.ErrNilConfig):
		c.JSON(http.StatusBadRequest, models.ScrapeResponse{
			Success: false,
			Error: &models.ErrorDetail{
				Code:    models.ErrCodeInvalidInput,
				Message: err.Error(),
			},
		})
	default:
		slog.Error("scrape failed unexpectedly", "error", err)
		c.JSON(http.StatusInternalServerError, models.ScrapeResponse{
			Success: false,
			Error: &models.ErrorDetail{
				Code:    models.ErrCodeInternal,
				Message: err.Error(),
			},
		})
	}
}
