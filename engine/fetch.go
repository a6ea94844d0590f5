package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ericziethen/ez-scrape/models"
	"github.com/ericziethen/ez-scrape/useragent"
)

// maxBody caps how much of a response body is read (10 MB) to prevent
// unbounded memory use.
const maxBody = 10 << 20

// fetchedPage is the raw outcome of a single GET before classification.
type fetchedPage struct {
	body       string
	statusCode int
	elapsedMs  float64
}

// doFetch performs one GET with the config's timeout and headers, timing
// the call. Transport failures come back as the error; HTTP-level
// failures come back in statusCode with the body intact.
func doFetch(ctx context.Context, client *http.Client, cfg *models.ScrapeConfig, target string) (*fetchedPage, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	applyHeaders(req, cfg)

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, err
	}

	return &fetchedPage{
		body:       string(body),
		statusCode: resp.StatusCode,
		elapsedMs:  elapsedMs(start),
	}, nil
}

// applyHeaders sets a browser-like header baseline, then the config's user
// agent and extra headers on top.
func applyHeaders(req *http.Request, cfg *models.ScrapeConfig) {
	ua := cfg.UserAgent
	if ua == "" {
		ua = useragent.Chrome()
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	for k, v := range cfg.Headers {
		req.Header.Set(k, v)
	}
}

// elapsedMs returns the wall-clock milliseconds since start.
func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}

// transportErrorMsg renders a transport failure in the stable
// "EXCEPTION: <type> - <message>" form carried by ScrapeResult.ErrorMsg.
func transportErrorMsg(err error) string {
	return fmt.Sprintf("EXCEPTION: %T - %v", err, err)
}

// httpErrorMsg renders a non-200 response in the stable
// "HTTP Error: <code> - <reason>" form carried by ScrapeResult.ErrorMsg.
func httpErrorMsg(code int) string {
	return fmt.Sprintf("HTTP Error: %d - %s", code, http.StatusText(code))
}

// classifyFetchError maps a transport failure to a scrape status.
// proxyAddr is the proxy endpoint configured for the request's scheme, if
// any; a failure pointing at it reads as a proxy error rather than a
// generic one.
func classifyFetchError(err error, proxyAddr string) models.ScrapeStatus {
	if errors.Is(err, context.DeadlineExceeded) {
		return models.StatusTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return models.StatusTimeout
	}
	if isProxyError(err, proxyAddr) {
		return models.StatusProxyError
	}
	return models.StatusError
}

// isProxyError reports whether err points at the proxy rather than the
// target: the transport's proxyconnect marker, or a dial failure naming
// the configured proxy host.
func isProxyError(err error, proxyAddr string) bool {
	msg := err.Error()
	if strings.Contains(msg, "proxyconnect") {
		return true
	}
	if proxyAddr == "" {
		return false
	}
	if u, parseErr := url.Parse(proxyAddr); parseErr == nil && u.Host != "" {
		return strings.Contains(msg, u.Host)
	}
	return strings.Contains(msg, proxyAddr)
}

// proxyForScheme returns the configured proxy endpoint for the target
// URL's scheme, or "".
func proxyForScheme(cfg *models.ScrapeConfig, target string) string {
	u, err := url.Parse(target)
	if err != nil {
		return ""
	}
	if u.Scheme == "https" {
		return cfg.ProxyHTTPS
	}
	return cfg.ProxyHTTP
}

// proxyFunc builds an http.Transport proxy callback honoring the
// per-scheme proxy fields. Nil when no proxy is configured.
func proxyFunc(cfg *models.ScrapeConfig) func(*http.Request) (*url.URL, error) {
	if cfg.ProxyHTTP == "" && cfg.ProxyHTTPS == "" {
		return nil
	}
	return func(req *http.Request) (*url.URL, error) {
		raw := cfg.ProxyHTTP
		if req.URL.Scheme == "https" {
			raw = cfg.ProxyHTTPS
		}
		if raw == "" {
			return nil, nil
		}
		return url.Parse(raw)
	}
}
