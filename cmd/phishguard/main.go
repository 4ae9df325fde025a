// Command phishguard analyzes URLs for phishing indicators from the command
// line.
//
// Usage:
//
//	phishguard -url https://example.com/login
//	phishguard -file urls.txt -offline -pretty
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/phishguard/phishguard/internal/app"
	"github.com/phishguard/phishguard/internal/cli"
	"github.com/phishguard/phishguard/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	args, err := cli.ParseArgs(argv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "phishguard: %v\n", err)
		return 2
	}

	cfg := app.LoadConfig()
	if args.Offline {
		cfg.ForceOffline = true
	}
	if args.NoHistory {
		cfg.DisableHistory = true
	}

	application, err := app.New(cfg, logging.NewStdoutLogger("phishguard"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "phishguard: %v\n", err)
		return 1
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	urls := []string{args.URL}
	if args.File != "" {
		urls, err = cli.ReadURLFile(args.File)
		if err != nil {
			fmt.Fprintf(os.Stderr, "phishguard: %v\n", err)
			return 1
		}
	}

	enc := json.NewEncoder(os.Stdout)
	if args.Pretty {
		enc.SetIndent("", "  ")
	}

	code := 0
	for _, u := range urls {
		res, err := application.Scan(ctx, u)
		if err != nil {
			fmt.Fprintf(os.Stderr, "phishguard: scanning %s: %v\n", u, err)
			code = 1
			continue
		}
		if err := enc.Encode(res); err != nil {
			fmt.Fprintf(os.Stderr, "phishguard: %v\n", err)
			code = 1
		}
		if ctx.Err() != nil {
			break
		}
	}
	return code
}
