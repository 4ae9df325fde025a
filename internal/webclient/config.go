package webclient

import "time"

type Backend string

const (
	BackendNetHTTP  Backend = "nethttp"
	BackendChromedp Backend = "chromedp"
)

// Config is the minimal configuration required for constructing a WebClient.
type Config struct {
	Backend Backend

	// Timeout bounds a single fetch, including rendering for the chromedp
	// backend.
	Timeout time.Duration

	// UserAgent is sent on plain HTTP fetches. Empty means the Go default.
	UserAgent string
}

// DefaultConfig returns a plain-HTTP client configuration.
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendNetHTTP,
		Timeout: 30 * time.Second,
	}
}
