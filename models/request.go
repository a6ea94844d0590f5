package models

import "time"

// ScrapeRequest is the payload for POST /api/v1/scrape. Durations arrive
// as seconds and are converted to a ScrapeConfig by ToConfig.
type ScrapeRequest struct {
	// URL is the target page to scrape. Required.
	URL string `json:"url" binding:"required,url"`

	// Backend pins an engine: "http", "render" or "browser".
	// Empty lets the server pick one from the other fields.
	Backend string `json:"backend,omitempty" binding:"omitempty,oneof=http render browser"`

	// RequestTimeoutS bounds each page fetch, in seconds. Default: 5.
	RequestTimeoutS float64 `json:"request_timeout_s,omitempty" binding:"omitempty,gt=0"`

	// Javascript requests script execution before content is captured.
	// Default: false.
	Javascript bool `json:"javascript,omitempty"`

	// JavascriptWaitS is the render settle delay in seconds. Default: 3.
	JavascriptWaitS float64 `json:"javascript_wait_s,omitempty" binding:"omitempty,gte=0"`

	// AttemptMultiPage follows discovered next-page links. Default: false.
	AttemptMultiPage bool `json:"attempt_multi_page,omitempty"`

	// MaxPages caps pagination. Default: 15.
	MaxPages int `json:"max_pages,omitempty" binding:"omitempty,min=1"`

	// NextPageTimeoutS bounds each next-link discovery, in seconds.
	// Default: 3.
	NextPageTimeoutS float64 `json:"next_page_timeout_s,omitempty" binding:"omitempty,gt=0"`

	// NextPageSelector replaces heuristic next-link discovery with a CSS
	// selector pointing at the next-page anchor.
	NextPageSelector string `json:"next_page_selector,omitempty"`

	// NextPageDelayS is a politeness pause between page fetches of a
	// multi-page scrape, in seconds. Default: 0.
	NextPageDelayS float64 `json:"next_page_delay_s,omitempty" binding:"omitempty,gte=0"`

	// ProxyHTTP and ProxyHTTPS are per-scheme proxy endpoints.
	ProxyHTTP  string `json:"proxy_http,omitempty" binding:"omitempty,url"`
	ProxyHTTPS string `json:"proxy_https,omitempty" binding:"omitempty,url"`

	// UserAgent overrides the default Chrome user agent.
	UserAgent string `json:"user_agent,omitempty"`

	// Headers are extra request headers sent with every fetch.
	Headers map[string]string `json:"headers,omitempty"`

	// WaitForXPath is a selector to wait on before capturing content.
	// Only the browser backend accepts it.
	WaitForXPath string `json:"wait_for_xpath,omitempty"`

	// Stealth masks automation fingerprints on rendered paths.
	// Default: false.
	Stealth bool `json:"stealth,omitempty"`

	// Impersonate presents a Chrome TLS ClientHello on plain fetches.
	// Default: false.
	Impersonate bool `json:"impersonate,omitempty"`

	// CacheMaxAgeS opts into the response cache: a cached result no
	// older than this many seconds satisfies the request. Default: 0,
	// never served from cache.
	CacheMaxAgeS float64 `json:"cache_max_age_s,omitempty" binding:"omitempty,gte=0"`
}

// Defaults applies default values to unset fields.
func (r *ScrapeRequest) Defaults() {
	if r.RequestTimeoutS == 0 {
		r.RequestTimeoutS = DefaultRequestTimeout.Seconds()
	}
	if r.JavascriptWaitS == 0 {
		r.JavascriptWaitS = DefaultJavascriptWait.Seconds()
	}
	if r.MaxPages == 0 {
		r.MaxPages = DefaultMaxPages
	}
	if r.NextPageTimeoutS == 0 {
		r.NextPageTimeoutS = DefaultNextPageTimeout.Seconds()
	}
}

// Clamp caps client-supplied limits at the server's ceilings. Zero
// ceilings leave the request untouched.
func (r *ScrapeRequest) Clamp(maxTimeout time.Duration, maxPages int) {
	if maxTimeout > 0 && r.RequestTimeoutS > maxTimeout.Seconds() {
		r.RequestTimeoutS = maxTimeout.Seconds()
	}
	if maxPages > 0 && r.MaxPages > maxPages {
		r.MaxPages = maxPages
	}
}

// ToConfig converts the request into a ScrapeConfig. A blank URL comes
// back as a ConfigError.
func (r *ScrapeRequest) ToConfig() (*ScrapeConfig, error) {
	cfg, err := NewScrapeConfig(r.URL)
	if err != nil {
		return nil, err
	}
	cfg.Backend = ScrapeBackend(r.Backend)
	cfg.RequestTimeout = secondsToDuration(r.RequestTimeoutS)
	cfg.Javascript = r.Javascript
	cfg.JavascriptWait = secondsToDuration(r.JavascriptWaitS)
	cfg.AttemptMultiPage = r.AttemptMultiPage
	cfg.MaxPages = r.MaxPages
	cfg.NextPageTimeout = secondsToDuration(r.NextPageTimeoutS)
	cfg.NextPageSelector = r.NextPageSelector
	cfg.NextPageDelay = secondsToDuration(r.NextPageDelayS)
	cfg.ProxyHTTP = r.ProxyHTTP
	cfg.ProxyHTTPS = r.ProxyHTTPS
	cfg.UserAgent = r.UserAgent
	cfg.Headers = r.Headers
	cfg.WaitForXPath = r.WaitForXPath
	cfg.Stealth = r.Stealth
	cfg.Impersonate = r.Impersonate
	return cfg, nil
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
