package models

import "time"

// Defaults applied by NewScrapeConfig.
const (
	DefaultRequestTimeout  = 5 * time.Second
	DefaultJavascriptWait  = 3 * time.Second
	DefaultNextPageTimeout = 3 * time.Second
	DefaultMaxPages        = 15
)

// ScrapeBackend selects which engine executes a scrape.
type ScrapeBackend string

const (
	// BackendAuto lets the dispatcher pick an engine from the config:
	// render when javascript or multi-page is requested, plain HTTP
	// otherwise. The browser engine is never picked automatically.
	BackendAuto ScrapeBackend = ""

	// BackendHTTP forces the plain HTTP engine.
	BackendHTTP ScrapeBackend = "http"

	// BackendRender forces the session-based rendering engine.
	BackendRender ScrapeBackend = "render"

	// BackendBrowser forces the browser-automation engine.
	BackendBrowser ScrapeBackend = "browser"
)

// ScrapeConfig describes a single scrape: what to fetch and how.
//
// The URL is validated eagerly, so a blank URL surfaces at construction
// instead of deep inside a scrape. Everything else carries a safe default
// and may be set freely before the scrape; whether a field combination is
// acceptable is decided by the engine that consumes the config, because
// each engine supports a different feature set.
type ScrapeConfig struct {
	url string

	// RequestTimeout bounds each individual page fetch.
	RequestTimeout time.Duration

	// ProxyHTTP and ProxyHTTPS are optional proxy endpoints, applied to
	// requests of the matching URL scheme.
	ProxyHTTP  string
	ProxyHTTPS string

	// Javascript requests script execution before content is captured.
	Javascript bool

	// JavascriptWait is the settle delay after a page starts rendering,
	// giving scripts time to mutate the DOM. A fixed sleep, not a poll.
	JavascriptWait time.Duration

	// UserAgent overrides the default Chrome user agent.
	UserAgent string

	// Headers are extra request headers sent with every fetch.
	Headers map[string]string

	// AttemptMultiPage follows discovered next-page links.
	AttemptMultiPage bool

	// WaitForXPath is a selector an engine must wait on before paging.
	// Only browser automation accepts it; see each engine's validator.
	WaitForXPath string

	// MaxPages caps pagination. The cap is checked after a page has been
	// fetched, so it bounds the loop rather than the page count exactly.
	MaxPages int

	// NextPageTimeout bounds the discovery of each next-page link.
	NextPageTimeout time.Duration

	// NextPageSelector, when set, replaces heuristic next-link discovery
	// with a CSS selector pointing at the next-page anchor.
	NextPageSelector string

	// NextPageDelay inserts a politeness pause between the page fetches
	// of a multi-page scrape.
	NextPageDelay time.Duration

	// Backend pins the engine; leave empty to let the dispatcher decide.
	Backend ScrapeBackend

	// Stealth masks common automation fingerprints on rendered paths.
	Stealth bool

	// Impersonate presents a Chrome TLS ClientHello on plain HTTP
	// fetches. Useful against TLS-fingerprinting bot walls.
	Impersonate bool
}

// NewScrapeConfig creates a config for url with all defaults applied.
// A blank url fails immediately with a ConfigError.
func NewScrapeConfig(url string) (*ScrapeConfig, error) {
	cfg := &ScrapeConfig{
		RequestTimeout:  DefaultRequestTimeout,
		JavascriptWait:  DefaultJavascriptWait,
		MaxPages:        DefaultMaxPages,
		NextPageTimeout: DefaultNextPageTimeout,
	}
	if err := cfg.SetURL(url); err != nil {
		return nil, err
	}
	return cfg, nil
}

// URL returns the target URL.
func (c *ScrapeConfig) URL() string {
	return c.url
}

// SetURL replaces the target URL. A blank url fails with a ConfigError.
func (c *ScrapeConfig) SetURL(url string) error {
	if url == "" {
		return NewConfigError("url cannot be blank")
	}
	c.url = url
	return nil
}
