// Command server runs the phishguard JSON API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phishguard/phishguard/internal/app"
	"github.com/phishguard/phishguard/internal/logging"
	"github.com/phishguard/phishguard/internal/server"
)

func main() {
	logger := logging.NewStdoutLogger("server")

	cfg := app.LoadConfig()
	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("startup failed", logging.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}
	defer application.Close()

	srv, err := server.NewServer(server.Config{
		ListenAddr: cfg.ListenAddr,
		Logger:     logger,
	}, application)
	if err != nil {
		logger.Error("startup failed", logging.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}

	httpSrv := srv.HTTPServer()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", logging.Field{Key: "addr", Value: cfg.ListenAddr})
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", logging.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}
}
