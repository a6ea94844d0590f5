package engine

// Option tunes engine construction beyond what the scrape config carries.
// Options hold server-side knobs; per-scrape behavior belongs on the
// ScrapeConfig itself.
type Option func(*engineOptions)

type engineOptions struct {
	browserBin       string
	blockedResources []string
}

// WithBrowserBin overrides browser executable discovery for engines that
// launch one.
func WithBrowserBin(path string) Option {
	return func(o *engineOptions) { o.browserBin = path }
}

// WithBlockedResources blocks the named resource types (e.g. "Image",
// "Font") during rendering, cutting page weight.
func WithBlockedResources(types []string) Option {
	return func(o *engineOptions) { o.blockedResources = types }
}

func newEngineOptions(opts []Option) engineOptions {
	var o engineOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
