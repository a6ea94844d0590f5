package models

// ScrapePage is one fetched page inside a ScrapeResult.
type ScrapePage struct {
	// HTML is the raw page content, post-render when rendering was on.
	HTML string

	// Title is the <title> text, best effort.
	Title string

	// RequestTimeMs is the wall-clock duration of this page's fetch in
	// milliseconds, rendering included.
	RequestTimeMs float64

	// Status classifies this page's fetch.
	Status ScrapeStatus
}

// ScrapeResult is the outcome of one scrape call: zero or more pages in
// fetch order plus an overall classification.
//
// The engine owns the result while scraping and hands it over on return;
// callers treat it as read-only afterwards.
type ScrapeResult struct {
	// URL echoes the requested URL.
	URL string

	// Status classifies the operation as a whole. It starts Unknown and
	// tracks the most recent page classification.
	Status ScrapeStatus

	// ErrorMsg is the human-readable cause of the most recent failure.
	// Empty for a clean success.
	ErrorMsg string

	// Backend names the engine that produced the result.
	Backend string

	pages []ScrapePage
}

// NewScrapeResult creates an empty result for url with status Unknown.
func NewScrapeResult(url string) *ScrapeResult {
	return &ScrapeResult{URL: url, Status: StatusUnknown}
}

// AddPage appends a fetched page, preserving fetch order.
func (r *ScrapeResult) AddPage(page ScrapePage) {
	r.pages = append(r.pages, page)
}

// Pages returns the fetched pages in fetch order.
func (r *ScrapeResult) Pages() []ScrapePage {
	return r.pages
}

// Len returns the number of fetched pages.
func (r *ScrapeResult) Len() int {
	return len(r.pages)
}

// RequestTimeMs is the combined fetch duration across all pages, computed
// on demand. Zero when nothing was fetched.
func (r *ScrapeResult) RequestTimeMs() float64 {
	var total float64
	for _, p := range r.pages {
		total += p.RequestTimeMs
	}
	return total
}

// OK reports whether the scrape succeeded. Only StatusSuccess counts: a
// result holding pages under a failure status is not OK.
func (r *ScrapeResult) OK() bool {
	return r.Status == StatusSuccess
}
