package connectivity

import (
	"context"
	"net"
	"sync/atomic"
	"time"

	"github.com/phishguard/phishguard/internal/logging"
)

// Monitor answers "is the process online right now?" with a cached,
// point-in-time boolean. It probes well-known DNS endpoints over TCP, which
// is faster than an HTTP round trip and just as reliable.
//
// The cached status lives in an atomic pointer: readers never block, and a
// concurrent refresh is idempotent: two goroutines probing at once simply
// store the same answer twice. The fusion engine's mode selection tolerates
// a slightly stale read.
type Monitor struct {
	cfg    *Config
	dial   func(ctx context.Context, network, addr string) (net.Conn, error)
	status atomic.Pointer[probeResult]
	logger logging.Logger
}

type probeResult struct {
	online    bool
	checkedAt time.Time
}

// Config carries the probe endpoints and cache policy.
type Config struct {
	// Endpoints are host:port targets tried in order until one accepts a
	// TCP connection.
	Endpoints []string

	// ProbeTimeout bounds each individual connection attempt.
	ProbeTimeout time.Duration

	// CacheDuration is how long a probe result stays fresh.
	CacheDuration time.Duration
}

// DefaultConfig probes public DNS resolvers, which are always up and answer
// on port 53 in well under a second.
func DefaultConfig() *Config {
	return &Config{
		Endpoints: []string{
			"1.1.1.1:53",        // Cloudflare
			"8.8.8.8:53",        // Google
			"208.67.222.222:53", // OpenDNS
		},
		ProbeTimeout:  2 * time.Second,
		CacheDuration: 30 * time.Second,
	}
}

// NewMonitor constructs a Monitor. cfg and logger may be nil.
func NewMonitor(cfg *Config, logger logging.Logger) *Monitor {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	d := &net.Dialer{}
	return &Monitor{
		cfg:    cfg,
		dial:   d.DialContext,
		logger: logger.With(logging.Field{Key: "component", Value: "connectivity-monitor"}),
	}
}

// IsOnline returns the cached connectivity status, probing first if the
// cache is stale or empty.
func (m *Monitor) IsOnline(ctx context.Context) bool {
	if s := m.status.Load(); s != nil && time.Since(s.checkedAt) < m.cfg.CacheDuration {
		return s.online
	}
	return m.Refresh(ctx)
}

// Refresh probes the endpoints now and updates the cache regardless of its
// age.
func (m *Monitor) Refresh(ctx context.Context) bool {
	online := m.probe(ctx)
	m.status.Store(&probeResult{online: online, checkedAt: time.Now()})
	m.logger.Debug("connectivity refreshed", logging.Field{Key: "online", Value: online})
	return online
}

func (m *Monitor) probe(ctx context.Context) bool {
	for _, ep := range m.cfg.Endpoints {
		probeCtx, cancel := context.WithTimeout(ctx, m.cfg.ProbeTimeout)
		conn, err := m.dial(probeCtx, "tcp", ep)
		cancel()
		if err == nil {
			conn.Close()
			return true
		}
	}
	return false
}
