package models

// Error codes used in API responses.
const (
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeConfig       = "CONFIG_REJECTED"
	ErrCodeSetup        = "SETUP_FAILED"
	ErrCodeNotLocal     = "URL_NOT_LOCAL"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PageResponse is one scraped page inside a ScrapeResponse.
type PageResponse struct {
	HTML          string       `json:"html"`
	Title         string       `json:"title,omitempty"`
	RequestTimeMs float64      `json:"request_time_ms"`
	Status        ScrapeStatus `json:"status"`
}

// ScrapeResponse is the response for POST /api/v1/scrape.
//
// A response with success=false and no error detail is a scrape that ran
// but failed operationally; the cause is in status and error_msg. The
// error field is reserved for requests the server refused to run at all.
type ScrapeResponse struct {
	// Success indicates whether the scrape finished with status success.
	Success bool `json:"success"`

	// URL echoes the requested URL.
	URL string `json:"url"`

	// Status classifies the scrape as a whole.
	Status ScrapeStatus `json:"status"`

	// Backend names the engine that produced the result.
	Backend string `json:"backend,omitempty"`

	// ErrorMsg carries the most recent operational failure, if any.
	ErrorMsg string `json:"error_msg,omitempty"`

	// RequestTimeMs is the combined fetch duration across all pages.
	RequestTimeMs float64 `json:"request_time_ms"`

	// Pages holds the fetched pages in fetch order.
	Pages []PageResponse `json:"pages"`

	// CacheStatus is "hit" or "miss" when the request opted into
	// caching, empty otherwise.
	CacheStatus string `json:"cache_status,omitempty"`

	// Error is populated only when the request was rejected.
	Error *ErrorDetail `json:"error,omitempty"`
}

// NewScrapeResponse converts a ScrapeResult into its wire form.
func NewScrapeResponse(res *ScrapeResult) *ScrapeResponse {
	pages := make([]PageResponse, 0, res.Len())
	for _, p := range res.Pages() {
		pages = append(pages, PageResponse{
			HTML:          p.HTML,
			Title:         p.Title,
			RequestTimeMs: p.RequestTimeMs,
			Status:        p.Status,
		})
	}
	return &ScrapeResponse{
		Success:       res.OK(),
		URL:           res.URL,
		Status:        res.Status,
		Backend:       res.Backend,
		ErrorMsg:      res.ErrorMsg,
		RequestTimeMs: res.RequestTimeMs(),
		Pages:         pages,
	}
}

// CheckResponse is the response for GET /api/v1/check.
type CheckResponse struct {
	URL       string `json:"url"`
	Local     bool   `json:"local"`
	Reachable bool   `json:"reachable"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status  string `json:"status"` // always "healthy" while serving
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}
