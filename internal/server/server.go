// Package server exposes the scanner over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Alias1177/TrendScanner/internal/model"
	"github.com/Alias1177/TrendScanner/internal/report"
	"github.com/Alias1177/TrendScanner/internal/scan"
)

// Scanner is the scan service the API drives
type Scanner interface {
	Start(ctx context.Context, settings model.Settings, universe []string) (*scan.Handle, error)
	Snapshot() scan.Snapshot
	Busy() bool
}

// Options configures the API
type Options struct {
	// BaseContext bounds background scans; it is canceled on shutdown
	BaseContext context.Context
	Settings    model.Settings
	Universe    []string
	Gatherer    prometheus.Gatherer
}

// Server serves the scan API
type Server struct {
	scanner Scanner
	opts    Options
	logger  zerolog.Logger
}

// startRequest overrides parts of the configured settings for one scan
type startRequest struct {
	Settings model.Settings `json:"settings"`
	Universe []string       `json:"universe"`
}

type startResponse struct {
	ScanID string     `json:"scan_id"`
	State  scan.State `json:"state"`
}

// New creates the API server
func New(scanner Scanner, opts Options, logger zerolog.Logger) *Server {
	if opts.BaseContext == nil {
		opts.BaseContext = context.Background()
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if len(opts.Universe) == 0 {
		opts.Universe = model.DefaultUniverse
	}
	return &Server{
		scanner: scanner,
		opts:    opts,
		logger:  logger.With().Str("component", "api_server").Logger(),
	}
}

// Handler returns the routed handler
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/scans", func(r chi.Router) {
		r.Post("/", s.handleStartScan)
		r.Get("/latest", s.handleLatest)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"scanning": s.scanner.Busy(),
	})
}

func (s *Server) handleStartScan(w http.ResponseWriter, r *http.Request) {
	req := startRequest{Settings: s.opts.Settings}
	req.Settings.Timeframes = append([]string(nil), s.opts.Settings.Timeframes...)

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	universe := model.NormalizeSymbols(req.Universe)
	if len(universe) == 0 {
		universe = s.opts.Universe
	}

	h, err := s.scanner.Start(s.opts.BaseContext, req.Settings, universe)
	switch {
	case errors.Is(err, scan.ErrScanInProgress):
		writeError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, model.ErrInvalidSettings):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.logger.Error().Err(err).Msg("Failed to start scan")
		writeError(w, http.StatusInternalServerError, "failed to start scan")
		return
	}

	s.logger.Info().Str("scan_id", h.ID).Int("assets", len(universe)).Msg("Scan accepted")
	writeJSON(w, http.StatusAccepted, startResponse{ScanID: h.ID, State: scan.StateRunning})
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	snap := s.scanner.Snapshot()

	q := r.URL.Query()
	results := report.Filter(snap.Results, q.Get("q"))
	snap.Results = report.Sort(results, report.ParseSortKey(q.Get("sort")))

	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error JSON response
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
