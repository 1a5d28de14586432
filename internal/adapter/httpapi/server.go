// Package httpapi serves the JSON read API plus health and metrics routes.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/seismonet/quake-risk-service/internal/adapter/postgres"
	"github.com/seismonet/quake-risk-service/internal/domain"
)

const (
	defaultLookbackDays = 30
	defaultListLimit    = 1000
	defaultRadiusKm     = 100.0
	statsRecentWindow   = 7 * 24 * time.Hour
)

// Config holds the server's collaborators. A zero Clock means real time.
type Config struct {
	Store   Store
	Ingest  Trigger
	Refresh Trigger
	Ready   ReadinessChecker
	Clock   clockwork.Clock
}

// Server exposes the earthquake read API along with health, readiness,
// and metrics endpoints.
type Server struct {
	httpServer *http.Server
	store      Store
	ingest     Trigger
	refresh    Trigger
	logger     *slog.Logger
	clock      clockwork.Clock
}

// NewServer creates an HTTP server with the API routes mounted under /api.
func NewServer(addr string, cfg Config, logger *slog.Logger) *Server {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	s := &Server{
		store:   cfg.Store,
		ingest:  cfg.Ingest,
		refresh: cfg.Refresh,
		logger:  logger,
		clock:   clock,
	}

	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", handleReady(cfg.Ready))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/earthquakes", s.handleListEarthquakes)
		r.Get("/earthquakes/{usgs_id}", s.handleGetEarthquake)
		r.Get("/risk-zones", s.handleListRiskZones)
		r.Get("/statistics", s.handleStatistics)
		r.Get("/probability", s.handleProbability)
		r.Post("/fetch-data", s.handleTrigger("fetch", s.ingest))
		r.Post("/update-predictions", s.handleTrigger("refresh", s.refresh))
	})

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
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

func (s *Server) handleListEarthquakes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	days, err := intParam(q.Get("days"), defaultLookbackDays)
	if err != nil || days < 0 {
		writeError(w, http.StatusBadRequest, "invalid days parameter")
		return
	}
	limit, err := intParam(q.Get("limit"), defaultListLimit)
	if err != nil || limit <= 0 {
		writeError(w, http.StatusBadRequest, "invalid limit parameter")
		return
	}

	filter := postgres.EventFilter{
		Region: q.Get("region"),
		Limit:  limit,
	}
	// days=0 disables the time filter.
	if days > 0 {
		filter.Since = s.clock.Now().UTC().Add(-time.Duration(days) * 24 * time.Hour)
	}
	if filter.MinMagnitude, err = floatParamPtr(q.Get("magnitude_min")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid magnitude_min parameter")
		return
	}
	if filter.MaxMagnitude, err = floatParamPtr(q.Get("magnitude_max")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid magnitude_max parameter")
		return
	}

	events, err := s.store.SearchEvents(r.Context(), filter)
	if err != nil {
		s.logger.Error("list earthquakes failed", "error", err)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	if events == nil {
		events = []domain.Earthquake{}
	}
	writeJSON(w, http.StatusOK, earthquakeListResponse{Success: true, Count: len(events), Earthquakes: events})
}

func (s *Server) handleGetEarthquake(w http.ResponseWriter, r *http.Request) {
	usgsID := chi.URLParam(r, "usgs_id")

	event, err := s.store.EventByUSGSID(r.Context(), usgsID)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			writeError(w, http.StatusNotFound, "earthquake not found")
			return
		}
		s.logger.Error("get earthquake failed", "usgs_id", usgsID, "error", err)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeJSON(w, http.StatusOK, earthquakeResponse{Success: true, Earthquake: event})
}

func (s *Server) handleListRiskZones(w http.ResponseWriter, r *http.Request) {
	minRisk := domain.SignificanceThreshold
	if raw := r.URL.Query().Get("min_risk"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid min_risk parameter")
			return
		}
		minRisk = parsed
	}

	zones, err := s.store.ZonesAbove(r.Context(), minRisk)
	if err != nil {
		s.logger.Error("list risk zones failed", "error", err)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	if zones == nil {
		zones = []domain.RiskZone{}
	}
	writeJSON(w, http.StatusOK, riskZoneListResponse{Success: true, Count: len(zones), RiskZones: zones})
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	cutoff := s.clock.Now().UTC().Add(-statsRecentWindow)

	stats, err := s.store.Statistics(r.Context(), cutoff)
	if err != nil {
		s.logger.Error("statistics query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	stats.AverageMagnitude = math.Round(stats.AverageMagnitude*100) / 100
	writeJSON(w, http.StatusOK, statisticsResponse{Success: true, Statistics: stats})
}

func (s *Server) handleProbability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "lat and lon are required")
		return
	}
	lon, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "lat and lon are required")
		return
	}
	radiusKm := defaultRadiusKm
	if raw := q.Get("radius_km"); raw != "" {
		if radiusKm, err = strconv.ParseFloat(raw, 64); err != nil || radiusKm <= 0 {
			writeError(w, http.StatusBadRequest, "invalid radius_km parameter")
			return
		}
	}

	events, err := s.store.EventsNear(r.Context(), lat, lon, radiusKm/domain.KmPerDegree)
	if err != nil {
		s.logger.Error("probability query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	writeJSON(w, http.StatusOK, probabilityResponse{
		Success:   true,
		Latitude:  lat,
		Longitude: lon,
		RadiusKm:  radiusKm,
		Estimate:  domain.EstimateProbability(events),
	})
}

func (s *Server) handleTrigger(name string, trigger Trigger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := trigger(r.Context())
		if err != nil {
			s.logger.Error("manual trigger failed", "job", name, "error", err)
			writeError(w, http.StatusInternalServerError, name+" failed")
			return
		}
		writeJSON(w, http.StatusOK, triggerResponse{
			Success: true,
			Message: name + " completed",
			Count:   n,
		})
	}
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func floatParamPtr(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}
