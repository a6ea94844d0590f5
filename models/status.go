package models

import "encoding/json"

// ScrapeStatus classifies the outcome of a fetch, either for a single page
// or for the scrape operation as a whole.
type ScrapeStatus int

const (
	// StatusUnknown is the initial state before any fetch completes.
	// A finished scrape never reports it.
	StatusUnknown ScrapeStatus = iota

	// StatusSuccess means the fetch answered with HTTP 200.
	StatusSuccess

	// StatusTimeout means the fetch exceeded its deadline.
	StatusTimeout

	// StatusError covers transport failures and non-200 HTTP responses.
	StatusError

	// StatusProxyError means the configured proxy could not be reached.
	StatusProxyError
)

var statusNames = map[ScrapeStatus]string{
	StatusUnknown:    "unknown",
	StatusSuccess:    "success",
	StatusTimeout:    "timeout",
	StatusError:      "error",
	StatusProxyError: "proxy_error",
}

func (s ScrapeStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON renders the status as its string name.
func (s ScrapeStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts the names produced by MarshalJSON. Names it does
// not recognize decode as StatusUnknown.
func (s *ScrapeStatus) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for status, n := range statusNames {
		if n == name {
			*s = status
			return nil
		}
	}
	*s = StatusUnknown
	return nil
}
