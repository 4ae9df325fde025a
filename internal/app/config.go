package app

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/phishguard/phishguard/internal/webclient"
)

// Config contains the runtime configuration for the application. Values come
// from defaults, an optional .env file and PHISHGUARD_* environment
// variables, in that order of precedence.
type Config struct {
	// ListenAddr is the HTTP listen address for the API server.
	ListenAddr string

	// StoragePath is the directory for the verdict history database.
	StoragePath string

	// FetchBackend selects the web client: "nethttp" or "chromedp".
	FetchBackend webclient.Backend

	// FetchTimeout bounds a single content fetch, rendering included.
	FetchTimeout time.Duration

	// UserAgent is sent on plain HTTP fetches.
	UserAgent string

	// ForceOffline disables fetching and connectivity probing entirely,
	// pinning the engine to URL-only analysis.
	ForceOffline bool

	// DisableHistory skips the SQLite store, for ephemeral CLI runs.
	DisableHistory bool
}

// DefaultConfig returns a Config with development defaults.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:   ":8080",
		StoragePath:  ".",
		FetchBackend: webclient.BackendNetHTTP,
		FetchTimeout: 30 * time.Second,
	}
}

// LoadConfig builds the effective configuration. A missing .env file is not
// an error.
func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	if v := os.Getenv("PHISHGUARD_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("PHISHGUARD_STORAGE_PATH"); v != "" {
		cfg.StoragePath = v
	}
	if v := os.Getenv("PHISHGUARD_FETCH_BACKEND"); v != "" {
		cfg.FetchBackend = webclient.Backend(v)
	}
	if v := os.Getenv("PHISHGUARD_FETCH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.FetchTimeout = d
		}
	}
	if v := os.Getenv("PHISHGUARD_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("PHISHGUARD_OFFLINE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.ForceOffline = b
		}
	}
	return cfg
}
