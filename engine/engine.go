// Package engine implements the fetch backends and the dispatcher that
// selects between them.
//
// Three engines cover the trade-off between speed and fidelity:
//
//   - HTTPEngine: one plain GET. Fastest, no script execution.
//   - RenderEngine: a session-based fetch loop with optional JavaScript
//     rendering and next-page link following.
//   - BrowserEngine: full browser automation for pages that refuse
//     anything less.
//
// Every engine validates its ScrapeConfig before any network traffic: a
// requested feature the engine lacks is a ConfigError at construction
// time, not a broken scrape at run time.
package engine

import (
	"context"

	"github.com/ericziethen/ez-scrape/models"
)

// Scraper is the interface all fetch engines implement.
//
// Scrape runs one scrape to completion. Operational failures (timeouts,
// unreachable hosts, non-200 responses) are reported inside the
// ScrapeResult; the error return is reserved for config and setup
// problems that prevent the scrape from running at all.
type Scraper interface {
	// Name returns the engine identifier ("http", "render", "browser").
	Name() string

	// Scrape fetches according to the engine's config.
	Scrape(ctx context.Context) (*models.ScrapeResult, error)
}

// capabilities is an engine's feature matrix. Validation is a pure
// function of the config against this value.
type capabilities struct {
	name            string
	javascript      bool
	multiPage       bool
	waitForSelector bool
}

// validate rejects configs requesting features the engine does not have.
func (c capabilities) validate(cfg *models.ScrapeConfig) error {
	if cfg == nil {
		return models.ErrNilConfig
	}
	if cfg.URL() == "" {
		return models.NewConfigError("url cannot be blank")
	}
	if cfg.Javascript && !c.javascript {
		return models.NewConfigError("%s engine: javascript rendering is not supported", c.name)
	}
	if cfg.AttemptMultiPage && !c.multiPage {
		return models.NewConfigError("%s engine: multi-page scraping is not supported", c.name)
	}
	if cfg.WaitForXPath != "" && !c.waitForSelector {
		return models.NewConfigError("%s engine: waiting on a page element is not supported", c.name)
	}
	return nil
}
