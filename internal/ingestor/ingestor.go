// Package ingestor pulls earthquake events from the USGS feed into storage.
package ingestor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/seismonet/quake-risk-service/internal/domain"
	"github.com/seismonet/quake-risk-service/internal/observability"
)

// FeedClient fetches earthquake events from the upstream feed.
type FeedClient interface {
	FetchEvents(ctx context.Context, start, end time.Time, minMagnitude float64, limit int) ([]domain.Earthquake, error)
}

// EventStore persists fetched events, returning the subset that was new.
type EventStore interface {
	InsertEarthquakes(ctx context.Context, events []domain.Earthquake) ([]domain.Earthquake, error)
}

// EventSink receives newly stored events. The sink is best-effort: publish
// failures are logged and never fail an ingest run.
type EventSink interface {
	PublishEvents(ctx context.Context, events []domain.Earthquake) error
}

// Config holds ingestion parameters. A zero Clock means real time.
type Config struct {
	Lookback     time.Duration
	MinMagnitude float64
	FetchLimit   int
	Clock        clockwork.Clock
}

// Ingestor orchestrates one fetch-and-store cycle. Pass a nil sink to
// disable downstream publishing.
type Ingestor struct {
	feed    FeedClient
	store   EventStore
	sink    EventSink
	logger  *slog.Logger
	metrics *observability.Metrics
	clock   clockwork.Clock

	lookback     time.Duration
	minMagnitude float64
	fetchLimit   int
}

// New creates an Ingestor with the given collaborators.
func New(feed FeedClient, store EventStore, sink EventSink, logger *slog.Logger, metrics *observability.Metrics, cfg Config) *Ingestor {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	lookback := cfg.Lookback
	if lookback <= 0 {
		lookback = 7 * 24 * time.Hour
	}
	fetchLimit := cfg.FetchLimit
	if fetchLimit <= 0 {
		fetchLimit = 20000
	}
	return &Ingestor{
		feed:         feed,
		store:        store,
		sink:         sink,
		logger:       logger,
		metrics:      metrics,
		clock:        clock,
		lookback:     lookback,
		minMagnitude: cfg.MinMagnitude,
		fetchLimit:   fetchLimit,
	}
}

// FetchAndStore fetches the lookback window from the feed, stores events
// not already present (dedupe on usgs_id), publishes the new ones to the
// sink, and returns the number of new records.
func (i *Ingestor) FetchAndStore(ctx context.Context) (int, error) {
	end := i.clock.Now()
	start := end.Add(-i.lookback)

	i.logger.Info("fetching earthquakes", "start", start, "end", end, "min_magnitude", i.minMagnitude)
	events, err := i.feed.FetchEvents(ctx, start, end, i.minMagnitude, i.fetchLimit)
	if err != nil {
		i.metrics.FetchErrors.Inc()
		return 0, fmt.Errorf("fetch feed: %w", err)
	}
	i.metrics.QuakesFetched.Add(float64(len(events)))

	stored, err := i.store.InsertEarthquakes(ctx, events)
	if err != nil {
		i.metrics.FetchErrors.Inc()
		return 0, fmt.Errorf("store events: %w", err)
	}
	i.metrics.QuakesStored.Add(float64(len(stored)))

	if i.sink != nil && len(stored) > 0 {
		if err := i.sink.PublishEvents(ctx, stored); err != nil {
			i.logger.Warn("sink publish failed", "events", len(stored), "error", err)
			i.metrics.SinkErrors.Inc()
		} else {
			i.metrics.SinkPublished.Add(float64(len(stored)))
		}
	}

	i.logger.Info("stored new earthquakes", "fetched", len(events), "new", len(stored))
	return len(stored), nil
}
