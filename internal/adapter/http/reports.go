package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/smoke-zone-etl/internal/adapter/aqi"
	"github.com/couchcryptid/smoke-zone-etl/internal/domain"
)

const (
	maxReportBody      = 16 << 10
	defaultReportLimit = 100
	maxReportLimit     = 1000
	defaultReportSince = 24 * time.Hour
)

// ReportStore persists citizen smoke reports.
type ReportStore interface {
	SaveReport(ctx context.Context, r domain.SmokeReport) (int64, error)
	RecentReports(ctx context.Context, since time.Time, limit int) ([]domain.SmokeReport, error)
}

// AQILookup returns the upstream air quality document for a location.
type AQILookup interface {
	Lookup(ctx context.Context, q aqi.Query) (json.RawMessage, error)
}

// reportRequest is the body accepted by POST /reports.
type reportRequest struct {
	Report struct {
		HeardWildfire    bool   `json:"heard_wildfire"`
		AirQuality       string `json:"air_quality"`
		SmokeIntensity   int    `json:"smoke_intensity"`
		SmokeDescription string `json:"smoke_description"`
	} `json:"report"`
	UserLocation *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"user_location"`
	Timestamp json.RawMessage `json:"timestamp"`
}

func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxReportBody)).Decode(&req); err != nil {
		s.rejectReport(w, "malformed report: "+err.Error())
		return
	}
	if req.UserLocation == nil {
		s.rejectReport(w, "user_location is required")
		return
	}

	now := s.clock.Now().UTC()
	reportedAt, err := domain.ParseTimestamp(req.Timestamp)
	if err != nil {
		s.rejectReport(w, "invalid timestamp: "+err.Error())
		return
	}
	if reportedAt.IsZero() {
		reportedAt = now
	}

	report := domain.SmokeReport{
		HeardWildfire:    req.Report.HeardWildfire,
		AirQuality:       req.Report.AirQuality,
		SmokeIntensity:   req.Report.SmokeIntensity,
		SmokeDescription: req.Report.SmokeDescription,
		Latitude:         req.UserLocation.Latitude,
		Longitude:        req.UserLocation.Longitude,
		ReportedAt:       reportedAt,
		ReceivedAt:       now,
	}
	report.Normalize()
	if err := report.Validate(); err != nil {
		s.rejectReport(w, err.Error())
		return
	}

	id, err := s.reports.SaveReport(r.Context(), report)
	if err != nil {
		s.countReport("error")
		s.logger.Error("save smoke report", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "unable to store report"})
		return
	}
	report.ID = id

	s.countReport("accepted")
	s.logger.Info("smoke report stored", "id", id, "smoke_intensity", report.SmokeIntensity)
	writeJSON(w, http.StatusCreated, map[string]any{"status": "success", "report": report})
}

func (s *Server) rejectReport(w http.ResponseWriter, msg string) {
	s.countReport("rejected")
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

// handleListReports returns recent reports. Query: since (duration, default 24h), limit.
func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	window := defaultReportSince
	if v := q.Get("since"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "since must be a positive duration"})
			return
		}
		window = d
	}
	limit := defaultReportLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxReportLimit {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be between 1 and 1000"})
			return
		}
		limit = n
	}

	reports, err := s.reports.RecentReports(r.Context(), s.clock.Now().Add(-window), limit)
	if err != nil {
		s.logger.Error("list smoke reports", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load reports"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": reports})
}

func (s *Server) handleAQI(w http.ResponseWriter, r *http.Request) {
	var q aqi.Query
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxReportBody)).Decode(&q); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed lookup: " + err.Error()})
		return
	}
	if err := q.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	raw, err := s.aqi.Lookup(r.Context(), q)
	if err != nil {
		s.countLookup("error")
		s.logger.Warn("air quality lookup failed", "error", err)
		status := http.StatusBadGateway
		if !errors.Is(err, aqi.ErrUpstream) {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, map[string]string{"error": "error while retrieving AQI data"})
		return
	}
	s.countLookup("ok")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw) //nolint:errcheck // client disconnects are not actionable
}

func (s *Server) countReport(result string) {
	if s.metrics != nil {
		s.metrics.ReportsReceived.WithLabelValues(result).Inc()
	}
}

func (s *Server) countLookup(result string) {
	if s.metrics != nil {
		s.metrics.AQILookups.WithLabelValues(result).Inc()
	}
}

// withCORS allows browser clients on other origins to call the public routes.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		h.Set("Access-Control-Max-Age", "3600")
		next.ServeHTTP(w, r)
	})
}

func handlePreflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
