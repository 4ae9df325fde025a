package webclient

import (
	"fmt"
	"strings"

	"github.com/phishguard/phishguard/internal/logging"
)

// New constructs the configured WebClient backend.
func New(cfg *Config, logger logging.Logger) (WebClient, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	switch Backend(strings.ToLower(strings.TrimSpace(string(cfg.Backend)))) {
	case BackendNetHTTP, "":
		return NewNetHTTPClient(cfg, logger, nil)
	case BackendChromedp:
		return NewChromeDPClient(cfg, logger)
	default:
		return nil, fmt.Errorf("webclient: unknown backend %q", cfg.Backend)
	}
}
