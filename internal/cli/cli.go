// Package cli parses the command-line arguments for the phishguard binary.
package cli

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

// Args are the command-line arguments for a scan run.
type Args struct {
	// URL is a single URL to analyze.
	URL string

	// File is a path to a newline-separated list of URLs. Mutually
	// exclusive with URL.
	File string

	// Offline pins the engine to URL-only analysis.
	Offline bool

	// NoHistory skips persisting verdicts.
	NoHistory bool

	// Pretty switches from JSON lines to indented JSON output.
	Pretty bool
}

// ParseArgs parses a slice of args. Deterministic and does not read os.Args,
// so tests can pass arbitrary slices.
func ParseArgs(args []string) (*Args, error) {
	fs := flag.NewFlagSet("phishguard", flag.ContinueOnError)
	var (
		url       = fs.String("url", "", "URL to analyze")
		file      = fs.String("file", "", "Path to a newline-separated list of URLs")
		offline   = fs.Bool("offline", false, "Skip content fetching, URL-only analysis")
		noHistory = fs.Bool("no-history", false, "Do not persist verdicts")
		pretty    = fs.Bool("pretty", false, "Indent JSON output")
	)
	fs.SetOutput(io.Discard)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	u := strings.TrimSpace(*url)
	f := strings.TrimSpace(*file)
	if u == "" && f == "" {
		return nil, fmt.Errorf("one of -url or -file is required")
	}
	if u != "" && f != "" {
		return nil, fmt.Errorf("-url and -file are mutually exclusive")
	}

	return &Args{
		URL:       u,
		File:      f,
		Offline:   *offline,
		NoHistory: *noHistory,
		Pretty:    *pretty,
	}, nil
}

// ReadURLFile reads a newline-separated URL list, skipping blank lines and
// lines starting with '#'.
func ReadURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening url file: %w", err)
	}
	defer f.Close()

	var urls []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading url file: %w", err)
	}
	return urls, nil
}
