package httpapi

import (
	"context"
	"time"

	"github.com/seismonet/quake-risk-service/internal/adapter/postgres"
	"github.com/seismonet/quake-risk-service/internal/domain"
)

// Store is the read-side slice of the event and zone store the API needs.
type Store interface {
	SearchEvents(ctx context.Context, filter postgres.EventFilter) ([]domain.Earthquake, error)
	EventByUSGSID(ctx context.Context, usgsID string) (domain.Earthquake, error)
	EventsNear(ctx context.Context, lat, lon, radiusDeg float64) ([]domain.Earthquake, error)
	Statistics(ctx context.Context, recentCutoff time.Time) (domain.Statistics, error)
	ZonesAbove(ctx context.Context, minRisk float64) ([]domain.RiskZone, error)
}

// Trigger kicks off an on-demand ingest or refresh run.
type Trigger func(ctx context.Context) (int, error)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

type earthquakeListResponse struct {
	Success     bool                `json:"success"`
	Count       int                 `json:"count"`
	Earthquakes []domain.Earthquake `json:"earthquakes"`
}

type earthquakeResponse struct {
	Success    bool              `json:"success"`
	Earthquake domain.Earthquake `json:"earthquake"`
}

type riskZoneListResponse struct {
	Success   bool              `json:"success"`
	Count     int               `json:"count"`
	RiskZones []domain.RiskZone `json:"risk_zones"`
}

type statisticsResponse struct {
	Success    bool              `json:"success"`
	Statistics domain.Statistics `json:"statistics"`
}

type probabilityResponse struct {
	Success   bool                       `json:"success"`
	Latitude  float64                    `json:"latitude"`
	Longitude float64                    `json:"longitude"`
	RadiusKm  float64                    `json:"radius_km"`
	Estimate  domain.ProbabilityEstimate `json:"estimate"`
}

type triggerResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Count   int    `json:"count"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
