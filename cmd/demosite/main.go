// Command demosite starts a local server with simulated phishing pages for
// demonstrating the detection pipeline.
// Usage: go run ./cmd/demosite [port]
// Default port: 9999
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/phishguard/phishguard/internal/demosite"
)

func main() {
	cfg := demosite.DefaultConfig()

	if len(os.Args) > 1 {
		port, err := strconv.Atoi(os.Args[1])
		if err != nil || port < 1 || port > 65535 {
			log.Fatalf("Invalid port: %s", os.Args[1])
		}
		cfg.Port = port
	}

	fmt.Printf("Demo site starting on http://localhost:%d\n", cfg.Port)
	fmt.Println("Pages: /gophish /harvest /proxy /corporate")
	fmt.Println("Try: phishguard -url http://localhost:9999/gophish")

	srv := demosite.NewServer(cfg)
	if err := srv.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
