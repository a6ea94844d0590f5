// Package probe provides lightweight URL checks: local-address
// classification and a plain-HTTP reachability test.
package probe

import (
	"context"
	"errors"
	"net/netip"
	"net/url"
	"strings"

	"github.com/ericziethen/ez-scrape/engine"
	"github.com/ericziethen/ez-scrape/models"
)

// ErrNotLocal is returned by CheckURL when local-only mode is requested
// for a URL that does not point at the local machine.
var ErrNotLocal = errors.New("url is not a local address")

// specialLocalHosts are hostnames treated as local without address
// parsing. "0.0" and "127.1" are shorthand spellings of 0.0.0.0 and
// 127.0.0.1.
var specialLocalHosts = map[string]struct{}{
	"localhost": {},
	"0.0":       {},
	"127.1":     {},
}

// IsLocalAddress reports whether rawURL points at the local machine or a
// private network: a known local hostname, or an address in the private,
// loopback, link-local or unspecified ranges. Malformed input is never an
// error, just not local.
func IsLocalAddress(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	// Hostname strips the port and any IPv6 brackets. Scheme-less input
	// like "localhost" has no host at all and lands in other fields.
	host := parsed.Hostname()
	if host == "" {
		raw := parsed.Path
		if parsed.Opaque != "" {
			raw = parsed.Scheme
		}
		host = strings.Split(raw, ":")[0]
	}
	host = strings.ToLower(host)

	if _, ok := specialLocalHosts[host]; ok {
		return true
	}

	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	return addr.IsPrivate() || addr.IsLoopback() || addr.IsLinkLocalUnicast() || addr.IsUnspecified()
}

// CheckURL fetches rawURL once over plain HTTP and reports whether it
// answered with HTTP 200. With localOnly, non-local URLs fail with
// ErrNotLocal before any fetch.
func CheckURL(ctx context.Context, rawURL string, localOnly bool) (bool, error) {
	if localOnly && !IsLocalAddress(rawURL) {
		return false, ErrNotLocal
	}

	cfg, err := models.NewScrapeConfig(rawURL)
	if err != nil {
		return false, err
	}
	scraper, err := engine.NewHTTPEngine(cfg)
	if err != nil {
		return false, err
	}
	result, err := scraper.Scrape(ctx)
	if err != nil {
		return false, err
	}
	return result.OK(), nil
}
