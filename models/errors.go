package models

import (
	"errors"
	"fmt"
)

// ErrNilConfig is returned when a scraper is constructed without a config.
var ErrNilConfig = errors.New("scrape config must be provided")

// ConfigError reports a scrape config that is structurally invalid or that
// requests a feature the chosen engine cannot honor. It is always raised
// before any network traffic happens.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return "scrape config: " + e.Message
}

// NewConfigError creates a ConfigError with a formatted message.
func NewConfigError(format string, args ...any) *ConfigError {
	return &ConfigError{Message: fmt.Sprintf(format, args...)}
}

// SetupError reports missing or broken external tooling, typically the
// browser executable. It wraps the underlying cause when there is one.
type SetupError struct {
	Message string
	Err     error
}

func (e *SetupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scrape setup: %s: %v", e.Message, e.Err)
	}
	return "scrape setup: " + e.Message
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// NewSetupError creates a SetupError wrapping err. A nil err is fine.
func NewSetupError(message string, err error) *SetupError {
	return &SetupError{Message: message, Err: err}
}
