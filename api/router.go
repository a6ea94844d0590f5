package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ericziethen/ez-scrape/api/handler"
	"github.com/ericziethen/ez-scrape/api/middleware"
	"github.com/ericziethen/ez-scrape/cache"
	"github.com/ericziethen/ez-scrape/config"
)

// NewRouter creates a configured Gin engine with all routes and
// middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if keys are configured) → RateLimit
//
// Health stays outside auth and the rate limit so monitoring probes
// always work.
func NewRouter(cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	var cc *cache.Cache
	if cfg.Cache.MaxEntries > 0 {
		cc = cache.New(cfg.Cache.MaxEntries)
	}

	v1 := r.Group("/api/v1")

	v1.GET("/health", handler.Health(startTime))

	protected := v1.Group("")
	protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	protected.POST("/scrape", handler.Scrape(cfg.Scraper, cc))
	protected.GET("/check", handler.Check(cfg.Scraper))

	return r
}
