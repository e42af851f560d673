package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/smoke-zone-etl/internal/adapter/geojson"
	"github.com/couchcryptid/smoke-zone-etl/internal/domain"
	"github.com/couchcryptid/smoke-zone-etl/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// ReadinessChecks is ready only when every check passes. The first failure is returned.
type ReadinessChecks []ReadinessChecker

func (rc ReadinessChecks) CheckReadiness(ctx context.Context) error {
	for _, c := range rc {
		if err := c.CheckReadiness(ctx); err != nil {
			return err
		}
	}
	return nil
}

// ZoneSource returns the most recent zone batch.
type ZoneSource interface {
	Latest(ctx context.Context) (domain.ZoneBatch, error)
}

// Server exposes health, readiness, metrics, and zone HTTP endpoints, plus
// the optional report intake and air quality proxy.
type Server struct {
	httpServer *http.Server
	zones      ZoneSource
	reports    ReportStore
	aqi        AQILookup
	metrics    *observability.Metrics
	clock      clockwork.Clock
	logger     *slog.Logger
}

// Option enables optional routes.
type Option func(*Server)

// WithReports serves POST and GET /reports backed by store.
func WithReports(store ReportStore) Option {
	return func(s *Server) { s.reports = store }
}

// WithAQI serves POST /aqi through lookup.
func WithAQI(lookup AQILookup) Option {
	return func(s *Server) { s.aqi = lookup }
}

// WithMetrics counts report and lookup outcomes.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithClock sets the clock used to stamp received reports.
func WithClock(c clockwork.Clock) Option {
	return func(s *Server) { s.clock = c }
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and /zones routes.
func NewServer(addr string, ready ReadinessChecker, zones ZoneSource, logger *slog.Logger, opts ...Option) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		zones:  zones,
		clock:  clockwork.NewRealClock(),
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /zones", s.handleZones)

	if s.reports != nil {
		mux.Handle("POST /reports", withCORS(http.HandlerFunc(s.handleCreateReport)))
		mux.Handle("GET /reports", withCORS(http.HandlerFunc(s.handleListReports)))
		mux.Handle("OPTIONS /reports", withCORS(http.HandlerFunc(handlePreflight)))
	}
	if s.aqi != nil {
		mux.Handle("POST /aqi", withCORS(http.HandlerFunc(s.handleAQI)))
		mux.Handle("OPTIONS /aqi", withCORS(http.HandlerFunc(handlePreflight)))
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// handleZones serves the latest batch as GeoJSON, or as the raw batch with ?format=json.
func (s *Server) handleZones(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format != "" && format != "json" && format != "geojson" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "format must be json or geojson"})
		return
	}

	batch, err := s.zones.Latest(r.Context())
	if errors.Is(err, domain.ErrNoBatch) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	if err != nil {
		s.logger.Error("load latest zones", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load zones"})
		return
	}

	if format == "json" {
		writeJSON(w, http.StatusOK, batch)
		return
	}

	body, err := geojson.FeatureCollection(batch).MarshalJSON()
	if err != nil {
		s.logger.Error("encode geojson", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to encode zones"})
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	w.Write(body) //nolint:errcheck // client disconnects are not actionable
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
