package engine

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/time/rate"

	"github.com/ericziethen/ez-scrape/models"
)

// renderCaps: the render engine executes scripts and follows next-page
// links; element waits belong to full browser automation.
var renderCaps = capabilities{
	name:            "render",
	javascript:      true,
	multiPage:       true,
	waitForSelector: false,
}

// ValidateRenderConfig checks a config against the render engine's
// capability set without constructing the engine.
func ValidateRenderConfig(cfg *models.ScrapeConfig) error {
	return renderCaps.validate(cfg)
}

// RenderEngine drives a session-based fetch loop: pages are fetched over
// a shared cookie-carrying client, optionally rendered in a scoped
// headless browser, and followed page to page while next links keep
// appearing.
type RenderEngine struct {
	cfg    *models.ScrapeConfig
	opts   engineOptions
	client *http.Client
}

// NewRenderEngine validates cfg and builds the engine. The cookie jar
// lives for the engine's lifetime, so session cookies set on page one
// reach every follow-up page.
func NewRenderEngine(cfg *models.ScrapeConfig, opts ...Option) (*RenderEngine, error) {
	if err := ValidateRenderConfig(cfg); err != nil {
		return nil, err
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &RenderEngine{
		cfg:  cfg,
		opts: newEngineOptions(opts),
		client: &http.Client{
			Transport: &http.Transport{Proxy: proxyFunc(cfg)},
			Jar:       jar,
		},
	}, nil
}

func (e *RenderEngine) Name() string { return "render" }

// Scrape runs the fetch loop.
//
// Loop contract: each page is fetched and timed individually, rendering
// included. HTTP 200 appends a page and marks the result successful;
// non-200 records the failure but still looks for a next link; a
// transport or render failure records its classification and ends the
// loop with earlier pages intact. The page cap is checked after the
// fetch, then multi-page mode, then link discovery decides whether to
// continue.
func (e *RenderEngine) Scrape(ctx context.Context) (*models.ScrapeResult, error) {
	defer e.client.CloseIdleConnections()

	result := models.NewScrapeResult(e.cfg.URL())
	result.Backend = e.Name()

	var rnd *renderer
	if e.cfg.Javascript {
		var err error
		rnd, err = newRenderer(e.opts.browserBin, e.opts.blockedResources)
		if err != nil {
			return nil, err
		}
		defer rnd.close()
	}

	// Politeness limiter: the initial token makes the first fetch free,
	// every later fetch waits out the configured delay.
	var pager *rate.Limiter
	if e.cfg.NextPageDelay > 0 {
		pager = rate.NewLimiter(rate.Every(e.cfg.NextPageDelay), 1)
	}

	nextURL := e.cfg.URL()
	count := 0
	for nextURL != "" {
		count++

		if pager != nil {
			if err := pager.Wait(ctx); err != nil {
				result.ErrorMsg = transportErrorMsg(err)
				result.Status = classifyFetchError(err, "")
				break
			}
		}

		slog.Debug("fetching page", "url", nextURL, "page", count)

		start := time.Now()
		page, err := doFetch(ctx, e.client, e.cfg, nextURL)
		if err != nil {
			result.ErrorMsg = transportErrorMsg(err)
			result.Status = classifyFetchError(err, proxyForScheme(e.cfg, nextURL))
			break
		}

		html := page.body
		if e.cfg.Javascript {
			rendered, rerr := rnd.render(ctx, e.cfg, nextURL, html)
			if rerr != nil {
				result.ErrorMsg = transportErrorMsg(rerr)
				result.Status = classifyFetchError(rerr, "")
				break
			}
			html = rendered
		}

		if page.statusCode == http.StatusOK {
			result.Status = models.StatusSuccess
			result.AddPage(models.ScrapePage{
				HTML:          html,
				Title:         extractTitle(html),
				RequestTimeMs: elapsedMs(start),
				Status:        models.StatusSuccess,
			})
		} else {
			result.ErrorMsg = httpErrorMsg(page.statusCode)
			result.Status = models.StatusError
		}

		if count > e.cfg.MaxPages {
			slog.Debug("page cap reached, stopping", "maxPages", e.cfg.MaxPages)
			break
		}
		if !e.cfg.AttemptMultiPage {
			break
		}

		next, derr := discoverNextLinkTimeout(ctx, e.cfg.NextPageTimeout, html, nextURL, e.cfg.NextPageSelector)
		if derr != nil {
			slog.Warn("next-link discovery failed, stopping pagination",
				"url", nextURL, "error", derr)
			break
		}
		nextURL = next
	}

	return result, nil
}
