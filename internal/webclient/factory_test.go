package webclient_test

import (
	"testing"

	"github.com/phishguard/phishguard/internal/webclient"
)

func TestFactoryDefaultsToNetHTTP(t *testing.T) {
	t.Parallel()

	for _, cfg := range []*webclient.Config{
		nil,
		{Backend: ""},
		{Backend: webclient.BackendNetHTTP},
		{Backend: " NetHTTP "}, // backend names are case- and space-insensitive
	} {
		client, err := webclient.New(cfg, nil)
		if err != nil {
			t.Fatalf("New(%+v): %v", cfg, err)
		}
		_ = client.Close()
	}
}

func TestFactoryUnknownBackend(t *testing.T) {
	t.Parallel()

	_, err := webclient.New(&webclient.Config{Backend: "curl"}, nil)
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
