package engine

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/ericziethen/ez-scrape/models"
	"github.com/ericziethen/ez-scrape/useragent"
)

// renderer is a scoped headless browser used to execute page scripts for
// one scrape call. It is launched when the first page needs rendering and
// torn down when the scrape returns.
type renderer struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	blocked  map[proto.NetworkResourceType]struct{}
}

// newRenderer launches a headless browser. bin overrides the launcher's
// browser lookup when non-empty.
func newRenderer(bin string, blockedResources []string) (*renderer, error) {
	l := launcher.New().
		Headless(true).
		Leakless(true).
		Set("disable-dev-shm-usage").
		Set("disable-background-timer-throttling").
		Set("no-first-run")
	if bin != "" {
		l = l.Bin(bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewSetupError("failed to launch render browser", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, models.NewSetupError("failed to connect to render browser", err)
	}

	return &renderer{
		browser:  browser,
		launcher: l,
		blocked:  blockedResourceSet(blockedResources),
	}, nil
}

// close tears the browser down. Safe on every exit path.
func (r *renderer) close() {
	if err := r.browser.Close(); err != nil {
		slog.Warn("render browser close failed", "error", err)
	}
	r.launcher.Kill()
}

// render loads fetchedHTML into a fresh page as the document for pageURL
// and lets its scripts run. The document request itself is answered from
// the already-downloaded body, so the network sees only the page's own
// subresource and XHR traffic. After the settle delay the mutated DOM is
// returned.
//
// Stealth and the hijack router are both installed before navigation;
// they only take effect for navigations that happen after them.
func (r *renderer) render(ctx context.Context, cfg *models.ScrapeConfig, pageURL, fetchedHTML string) (string, error) {
	page, err := r.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer func() { _ = page.Close() }()

	if cfg.Stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, rendering without it", "error", evalErr)
		}
	}
	applyPageHeaders(page, cfg)

	router := r.serveDocument(page, fetchedHTML)
	defer func() { _ = router.Stop() }()

	// The render budget covers navigation plus the settle delay.
	renderCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout+cfg.JavascriptWait)
	defer cancel()
	p := page.Context(renderCtx)

	if err := p.Navigate(pageURL); err != nil {
		return "", err
	}
	if err := p.WaitLoad(); err != nil {
		return "", err
	}
	if cfg.JavascriptWait > 0 {
		select {
		case <-time.After(cfg.JavascriptWait):
		case <-renderCtx.Done():
			return "", renderCtx.Err()
		}
	}

	return p.HTML()
}

// serveDocument mounts a hijack router that answers the first document
// request with body and applies resource-type blocking to everything
// else. Returns the running router so the caller can defer router.Stop().
func (r *renderer) serveDocument(page *rod.Page, body string) *rod.HijackRouter {
	var served atomic.Bool
	router := page.HijackRequests()

	// Pattern "*" + empty resourceType = intercept ALL requests, then
	// decide per-request whether to serve, block or continue.
	_ = router.Add("*", "", func(h *rod.Hijack) {
		if h.Request.Type() == proto.NetworkResourceTypeDocument && served.CompareAndSwap(false, true) {
			h.Response.Payload().ResponseCode = http.StatusOK
			h.Response.SetHeader("Content-Type", "text/html; charset=utf-8")
			h.Response.SetBody(body)
			return
		}
		if _, shouldBlock := r.blocked[h.Request.Type()]; shouldBlock {
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		h.ContinueRequest(&proto.FetchContinueRequest{})
	})

	// router.Run() blocks, so it must live in its own goroutine. It
	// exits when router.Stop() is called.
	go router.Run()

	return router
}

// applyPageHeaders pushes the config's user agent and extra headers into
// the browser so every request the page makes carries them.
func applyPageHeaders(page *rod.Page, cfg *models.ScrapeConfig) {
	headers := make(map[string]string, len(cfg.Headers)+1)
	ua := cfg.UserAgent
	if ua == "" {
		ua = useragent.Chrome()
	}
	headers["User-Agent"] = ua
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	_ = proto.NetworkSetExtraHTTPHeaders{Headers: toHeadersMap(headers)}.Call(page)
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders
// type (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
