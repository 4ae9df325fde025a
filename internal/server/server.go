// Package server exposes the detection pipeline over a small JSON API.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/phishguard/phishguard/docs/swagger" // registers the generated API spec
	"github.com/phishguard/phishguard/internal/app"
	"github.com/phishguard/phishguard/internal/history"
	"github.com/phishguard/phishguard/internal/logging"
)

const maxBatchSize = 100

// Server is the HTTP API surface in front of an Application.
type Server struct {
	cfg    Config
	app    *app.Application
	router chi.Router
	logger logging.Logger
}

func NewServer(cfg Config, application *app.Application) (*Server, error) {
	if application == nil {
		return nil, errors.New("server: nil application")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("server")
	}

	s := &Server{
		cfg:    cfg,
		app:    application,
		router: chi.NewRouter(),
		logger: logger,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	r.Options("/api/v1/scan", s.optionsHandler("POST"))
	r.Options("/api/v1/scan/batch", s.optionsHandler("POST"))
	r.Options("/api/v1/scans", s.optionsHandler("GET"))
	r.Options("/api/v1/scans/{id}", s.optionsHandler("GET"))

	r.Get("/healthz", s.handleHealth)
	r.Post("/api/v1/scan", s.handleScan)
	r.Post("/api/v1/scan/batch", s.handleScanBatch)
	r.Get("/api/v1/scans", s.handleListScans)
	r.Get("/api/v1/scans/{id}", s.handleGetScan)

	r.Get("/swagger/*", httpSwagger.Handler())
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("http_request",
		logging.Field{Key: "method", Value: r.Method},
		logging.Field{Key: "path", Value: r.URL.Path})
	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute, // batch scans can be slow
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// handleHealth godoc
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScan godoc
// @Summary Analyze a single URL
// @Tags scan
// @Accept json
// @Produce json
// @Param request body ScanRequest true "URL to analyze"
// @Success 200 {object} app.ScanResult
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/scan [post]
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var body ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(body.URL) == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	res, err := s.app.Scan(r.Context(), body.URL)
	if err != nil {
		s.logger.Warn("scan failed", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleScanBatch godoc
// @Summary Analyze up to 100 URLs in one call
// @Tags scan
// @Accept json
// @Produce json
// @Param request body BatchScanRequest true "URLs to analyze"
// @Success 200 {array} app.ScanResult
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/scan/batch [post]
func (s *Server) handleScanBatch(w http.ResponseWriter, r *http.Request) {
	var body BatchScanRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(body.URLs) == 0 {
		writeError(w, http.StatusBadRequest, "urls is required")
		return
	}
	if len(body.URLs) > maxBatchSize {
		writeError(w, http.StatusBadRequest, "too many urls (max "+strconv.Itoa(maxBatchSize)+")")
		return
	}

	results, err := s.app.ScanBatch(r.Context(), body.URLs)
	if err != nil {
		s.logger.Warn("batch scan aborted", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// handleListScans godoc
// @Summary List stored verdicts, newest first
// @Tags scans
// @Produce json
// @Param limit query int false "maximum records to return"
// @Param url query string false "filter by exact URL"
// @Success 200 {array} history.Record
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/scans [get]
func (s *Server) handleListScans(w http.ResponseWriter, r *http.Request) {
	store := s.app.History()
	if store == nil {
		writeError(w, http.StatusNotFound, "history is disabled")
		return
	}

	if u := r.URL.Query().Get("url"); u != "" {
		recs, err := store.ListByURL(r.Context(), u)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, recs)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	recs, err := store.List(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// handleGetScan godoc
// @Summary Fetch one stored verdict by id
// @Tags scans
// @Produce json
// @Param id path string true "scan record id"
// @Success 200 {object} history.Record
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/scans/{id} [get]
func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	store := s.app.History()
	if store == nil {
		writeError(w, http.StatusNotFound, "history is disabled")
		return
	}

	rec, err := store.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, history.ErrNotFound) {
		writeError(w, http.StatusNotFound, "scan not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
