package connectivity

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"
)

func fakeDial(ok bool) func(ctx context.Context, network, addr string) (net.Conn, error) {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		if !ok {
			return nil, errors.New("unreachable")
		}
		c, s := net.Pipe()
		go s.Close()
		return c, nil
	}
}

func TestIsOnlineCachesResult(t *testing.T) {
	t.Parallel()

	m := NewMonitor(&Config{
		Endpoints:     []string{"192.0.2.1:53"},
		ProbeTimeout:  time.Second,
		CacheDuration: time.Hour,
	}, nil)

	calls := 0
	m.dial = func(ctx context.Context, network, addr string) (net.Conn, error) {
		calls++
		return fakeDial(true)(ctx, network, addr)
	}

	if !m.IsOnline(context.Background()) {
		t.Fatal("expected online")
	}
	if !m.IsOnline(context.Background()) {
		t.Fatal("expected cached online")
	}
	if calls != 1 {
		t.Errorf("dial calls = %d, want 1 (second read cached)", calls)
	}
}

func TestIsOnlineAllEndpointsDown(t *testing.T) {
	t.Parallel()

	m := NewMonitor(&Config{
		Endpoints:     []string{"192.0.2.1:53", "192.0.2.2:53"},
		ProbeTimeout:  time.Second,
		CacheDuration: time.Hour,
	}, nil)
	m.dial = fakeDial(false)

	if m.IsOnline(context.Background()) {
		t.Fatal("expected offline when every endpoint refuses")
	}
}

func TestRefreshBypassesCache(t *testing.T) {
	t.Parallel()

	m := NewMonitor(&Config{
		Endpoints:     []string{"192.0.2.1:53"},
		ProbeTimeout:  time.Second,
		CacheDuration: time.Hour,
	}, nil)

	m.dial = fakeDial(false)
	if m.Refresh(context.Background()) {
		t.Fatal("expected offline")
	}

	// Link comes back; Refresh must see it despite the fresh cache entry.
	m.dial = fakeDial(true)
	if !m.Refresh(context.Background()) {
		t.Fatal("expected online after refresh")
	}
	if !m.IsOnline(context.Background()) {
		t.Fatal("cached status should now be online")
	}
}
