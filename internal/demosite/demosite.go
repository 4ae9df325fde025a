// Package demosite serves simulated phishing pages for local demos and
// integration tests. Nothing here performs any real attack; the pages only
// reproduce the artifacts the detection pipeline looks for.
package demosite

import (
	"fmt"
	"net/http"
	"sync"
)

type Config struct {
	Port int
}

func DefaultConfig() Config {
	return Config{Port: 9999}
}

// Server serves the demo pages. Pages can be swapped at runtime for tests.
type Server struct {
	cfg   Config
	mu    sync.RWMutex
	pages map[string]Page
}

func NewServer(cfg Config) *Server {
	pages := make(map[string]Page)
	for _, p := range Pages() {
		pages[p.Path] = p
	}
	return &Server{cfg: cfg, pages: pages}
}

// SetPage installs or replaces a page.
func (s *Server) SetPage(p Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[p.Path] = p
}

// Handler returns the http.Handler serving all pages, for use with httptest
// as well as ListenAndServe.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.servePage)
	return mux
}

// Start serves on the configured port, blocking.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) servePage(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	p, ok := s.pages[r.URL.Path]
	s.mu.RUnlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	for k, v := range p.Headers {
		w.Header().Set(k, v)
	}
	for _, c := range p.Cookies {
		http.SetCookie(w, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	ct := p.ContentType
	if ct == "" {
		ct = "text/html"
	}
	w.Header().Set("Content-Type", ct)
	fmt.Fprint(w, p.Body)
}
