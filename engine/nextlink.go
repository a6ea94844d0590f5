package engine

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// nextLinkWords are the anchor texts treated as next-page links when no
// explicit selector is configured, in priority order.
var nextLinkWords = []string{"next", "more", "older"}

// discoverNextLink finds the next-page URL inside rawHTML.
//
// With a selector the first match's href wins; the selector syntax is
// checked up front so a typo reads as an error instead of "no more
// pages". Without one, discovery falls back to the common conventions:
// rel="next" on <link> or <a>, then anchors whose text contains one of
// nextLinkWords. Relative URLs resolve against pageURL. Returns "" when
// the page has no next link.
func discoverNextLink(rawHTML, pageURL, selector string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", err
	}

	var href string
	if selector != "" {
		if _, err := cascadia.Parse(selector); err != nil {
			return "", err
		}
		href = firstHref(doc.Find(selector))
	} else {
		href = heuristicNextHref(doc)
	}
	if href == "" {
		return "", nil
	}
	return resolveRef(pageURL, href)
}

// heuristicNextHref applies the default next-link conventions.
func heuristicNextHref(doc *goquery.Document) string {
	for _, sel := range []string{`link[rel="next"]`, `a[rel="next"]`} {
		if href := firstHref(doc.Find(sel)); href != "" {
			return href
		}
	}
	for _, word := range nextLinkWords {
		var found string
		doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := strings.ToLower(strings.TrimSpace(s.Text()))
			if strings.Contains(text, word) {
				found, _ = s.Attr("href")
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}

// firstHref returns the first non-empty href in the selection.
func firstHref(sel *goquery.Selection) string {
	var href string
	sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if h, ok := s.Attr("href"); ok && h != "" {
			href = h
			return false
		}
		return true
	})
	return href
}

// resolveRef resolves href against base, returning an absolute URL.
func resolveRef(base, href string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	refURL, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(refURL).String(), nil
}

// discoverNextLinkTimeout runs discovery under the per-transition budget.
// An expired budget comes back as the context error; callers treat any
// failure as "stop paginating".
func discoverNextLinkTimeout(ctx context.Context, timeout time.Duration, rawHTML, pageURL, selector string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type linkResult struct {
		url string
		err error
	}
	ch := make(chan linkResult, 1)
	go func() {
		u, err := discoverNextLink(rawHTML, pageURL, selector)
		ch <- linkResult{url: u, err: err}
	}()

	select {
	case res := <-ch:
		return res.url, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
