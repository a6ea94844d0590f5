package engine

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/ericziethen/ez-scrape/models"
)

// BrowserBinEnv names the environment variable holding the browser
// executable for full browser automation. It is read once per scrape
// call, so the binary can be installed or swapped without a restart.
const BrowserBinEnv = "EZSCRAPE_BROWSER_BIN"

// browserCaps: scripts always run in a real browser; pagination is not
// implemented on this engine. Element-wait selectors are accepted but
// nothing consumes them yet.
var browserCaps = capabilities{
	name:            "browser",
	javascript:      true,
	multiPage:       false,
	waitForSelector: true,
}

// ValidateBrowserConfig checks a config against the browser engine's
// capability set without constructing the engine.
func ValidateBrowserConfig(cfg *models.ScrapeConfig) error {
	return browserCaps.validate(cfg)
}

// BrowserEngine fetches a single page by driving a real headless browser.
// The browser process is acquired per scrape call and always torn down
// before the call returns.
type BrowserEngine struct {
	cfg  *models.ScrapeConfig
	opts engineOptions
}

// NewBrowserEngine validates cfg and builds the engine. The browser
// executable itself is resolved at scrape time. Proxy settings are not
// plumbed into the browser and are ignored with a warning.
func NewBrowserEngine(cfg *models.ScrapeConfig, opts ...Option) (*BrowserEngine, error) {
	if err := ValidateBrowserConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.ProxyHTTP != "" || cfg.ProxyHTTPS != "" {
		slog.Warn("browser engine ignores proxy settings", "url", cfg.URL())
	}
	return &BrowserEngine{cfg: cfg, opts: newEngineOptions(opts)}, nil
}

func (e *BrowserEngine) Name() string { return "browser" }

// Scrape navigates the browser to the target URL and captures the
// rendered page source. Exactly one page is appended on success.
func (e *BrowserEngine) Scrape(ctx context.Context) (*models.ScrapeResult, error) {
	bin, err := e.resolveBin()
	if err != nil {
		return nil, err
	}

	l := launcher.New().
		Bin(bin).
		Headless(true).
		Leakless(true).
		Set("disable-dev-shm-usage").
		Set("no-first-run")

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewSetupError("failed to launch browser", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, models.NewSetupError("failed to connect to browser", err)
	}
	defer func() {
		if cerr := browser.Close(); cerr != nil {
			slog.Warn("browser close failed", "error", cerr)
		}
		l.Kill()
	}()

	result := models.NewScrapeResult(e.cfg.URL())
	result.Backend = e.Name()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		result.ErrorMsg = transportErrorMsg(err)
		result.Status = models.StatusError
		return result, nil
	}
	defer func() { _ = page.Close() }()

	// Stealth must be injected before navigation to take effect.
	if e.cfg.Stealth {
		if _, serr := page.EvalOnNewDocument(stealth.JS); serr != nil {
			slog.Warn("stealth injection failed, proceeding without it", "error", serr)
		}
	}
	applyPageHeaders(page, e.cfg)

	navCtx, cancel := context.WithTimeout(ctx, e.cfg.RequestTimeout+e.cfg.JavascriptWait)
	defer cancel()
	p := page.Context(navCtx)

	start := time.Now()
	if nerr := p.Navigate(e.cfg.URL()); nerr != nil {
		result.ErrorMsg = transportErrorMsg(nerr)
		result.Status = classifyFetchError(nerr, "")
		return result, nil
	}
	if serr := p.WaitDOMStable(300*time.Millisecond, 0.1); serr != nil {
		slog.Debug("DOM did not settle, capturing current state", "error", serr)
	}

	html, herr := p.HTML()
	if herr != nil {
		result.ErrorMsg = transportErrorMsg(herr)
		result.Status = classifyFetchError(herr, "")
		return result, nil
	}

	result.Status = models.StatusSuccess
	result.AddPage(models.ScrapePage{
		HTML:          html,
		Title:         extractTitle(html),
		RequestTimeMs: elapsedMs(start),
		Status:        models.StatusSuccess,
	})
	return result, nil
}

// resolveBin finds the browser executable: explicit option first, then
// the environment.
func (e *BrowserEngine) resolveBin() (string, error) {
	if e.opts.browserBin != "" {
		return e.opts.browserBin, nil
	}
	if bin := os.Getenv(BrowserBinEnv); bin != "" {
		return bin, nil
	}
	return "", models.NewSetupError("browser executable not found, set "+BrowserBinEnv, nil)
}
