package engine

import (
	"context"

	"github.com/ericziethen/ez-scrape/models"
)

// NewScraper selects and constructs the engine for cfg.
//
// An explicit cfg.Backend wins. On auto, configs that need script
// execution or pagination get the render engine and everything else the
// plain HTTP engine; the browser engine is only ever chosen explicitly,
// being the slowest and the only one needing an external executable.
func NewScraper(cfg *models.ScrapeConfig, opts ...Option) (Scraper, error) {
	if cfg == nil {
		return nil, models.ErrNilConfig
	}

	switch cfg.Backend {
	case models.BackendHTTP:
		return NewHTTPEngine(cfg)
	case models.BackendRender:
		return NewRenderEngine(cfg, opts...)
	case models.BackendBrowser:
		return NewBrowserEngine(cfg, opts...)
	case models.BackendAuto:
		if cfg.Javascript || cfg.AttemptMultiPage {
			return NewRenderEngine(cfg, opts...)
		}
		return NewHTTPEngine(cfg)
	default:
		return nil, models.NewConfigError("unknown backend %q", string(cfg.Backend))
	}
}

// ScrapeURL is the uniform entry point: pick an engine for cfg, validate
// it, and run the scrape.
func ScrapeURL(ctx context.Context, cfg *models.ScrapeConfig, opts ...Option) (*models.ScrapeResult, error) {
	s, err := NewScraper(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return s.Scrape(ctx)
}
