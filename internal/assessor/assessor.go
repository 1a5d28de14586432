// Package assessor materializes risk zones from stored earthquake history.
package assessor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/seismonet/quake-risk-service/internal/domain"
	"github.com/seismonet/quake-risk-service/internal/observability"
)

// EventSource provides the lookback window of events for a refresh run.
type EventSource interface {
	EventsSince(ctx context.Context, since time.Time) ([]domain.Earthquake, error)
}

// ZoneStore replaces the full risk zone set atomically.
type ZoneStore interface {
	ReplaceZones(ctx context.Context, zones []domain.RiskZone) error
}

// Config holds assessment parameters. A zero Clock means real time.
type Config struct {
	GridSize float64
	Lookback time.Duration
	Clock    clockwork.Clock
}

// Assessor runs the partition-score-replace cycle. It holds no internal
// lock: callers are expected to serialize Refresh invocations (the
// scheduler and the admin endpoint share one entry point).
type Assessor struct {
	source  EventSource
	zones   ZoneStore
	logger  *slog.Logger
	metrics *observability.Metrics
	clock   clockwork.Clock

	gridSize float64
	lookback time.Duration
	ready    atomic.Bool
}

// New creates an Assessor with the given collaborators.
func New(source EventSource, zones ZoneStore, logger *slog.Logger, metrics *observability.Metrics, cfg Config) *Assessor {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	gridSize := cfg.GridSize
	if gridSize <= 0 {
		gridSize = domain.DefaultGridSize
	}
	lookback := cfg.Lookback
	if lookback <= 0 {
		lookback = 365 * 24 * time.Hour
	}
	return &Assessor{
		source:   source,
		zones:    zones,
		logger:   logger,
		metrics:  metrics,
		clock:    clock,
		gridSize: gridSize,
		lookback: lookback,
	}
}

// CheckReadiness returns nil once a refresh has completed, or an error
// describing why the service is not yet ready.
func (a *Assessor) CheckReadiness(_ context.Context) error {
	if !a.ready.Load() {
		return errors.New("risk zones have not been assessed yet")
	}
	return nil
}

// Refresh recomputes the entire risk zone set from the lookback window and
// commits it as one atomic replacement. It returns the number of zones
// created. A window with no events is a no-op that leaves the existing zone
// set untouched; a store failure aborts the run with prior state intact.
func (a *Assessor) Refresh(ctx context.Context) (int, error) {
	start := time.Now()
	a.metrics.RefreshRunning.Set(1)
	defer a.metrics.RefreshRunning.Set(0)

	since := a.clock.Now().Add(-a.lookback)
	events, err := a.source.EventsSince(ctx, since)
	if err != nil {
		a.metrics.RefreshErrors.Inc()
		return 0, fmt.Errorf("fetch events: %w", err)
	}

	scorable := a.filterScorable(events)
	if len(scorable) == 0 {
		a.logger.Warn("no earthquake data available for risk assessment", "since", since)
		return 0, nil
	}

	zones := a.buildZones(scorable)
	if err := a.zones.ReplaceZones(ctx, zones); err != nil {
		a.metrics.RefreshErrors.Inc()
		return 0, fmt.Errorf("replace zones: %w", err)
	}

	a.metrics.ZonesCreated.Set(float64(len(zones)))
	a.metrics.RefreshDuration.Observe(time.Since(start).Seconds())
	a.ready.Store(true)
	a.logger.Info("risk zones refreshed",
		"zones", len(zones),
		"events", len(scorable),
		"skipped", len(events)-len(scorable),
	)
	return len(zones), nil
}

// filterScorable drops events with out-of-range coordinates. Per-event
// anomalies are isolated and skipped; they never abort the run.
func (a *Assessor) filterScorable(events []domain.Earthquake) []domain.Earthquake {
	scorable := make([]domain.Earthquake, 0, len(events))
	for _, e := range events {
		if !e.HasValidCoordinates() {
			a.logger.Warn("skipping event with malformed coordinates",
				"usgs_id", e.USGSID, "lat", e.Latitude, "lon", e.Longitude)
			a.metrics.EventsSkipped.Inc()
			continue
		}
		scorable = append(scorable, e)
	}
	return scorable
}

// buildZones partitions events into grid cells and scores each. Cells are
// visited in sorted key order so zone ids and logs are deterministic.
func (a *Assessor) buildZones(events []domain.Earthquake) []domain.RiskZone {
	cells := domain.PartitionEvents(a.gridSize, events)

	keys := make([]domain.GridCell, 0, len(cells))
	for cell := range cells {
		keys = append(keys, cell)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Lat != keys[j].Lat {
			return keys[i].Lat < keys[j].Lat
		}
		return keys[i].Lon < keys[j].Lon
	})

	zones := make([]domain.RiskZone, 0, len(keys))
	for _, cell := range keys {
		if zone, ok := domain.AssessCell(a.gridSize, cell, cells[cell]); ok {
			zones = append(zones, zone)
		}
	}
	return zones
}
