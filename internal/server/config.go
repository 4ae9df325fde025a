package server

import "github.com/phishguard/phishguard/internal/logging"

type Config struct {
	// ListenAddr is the HTTP listen address for the API server.
	ListenAddr string

	Logger logging.Logger
}
