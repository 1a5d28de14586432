// Package scheduler drives periodic ingestion and risk refresh runs.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// Job is a unit of scheduled work returning how many records it touched.
type Job func(ctx context.Context) (int, error)

// Config holds the run intervals. A zero Clock means real time.
type Config struct {
	FetchInterval   time.Duration
	RefreshInterval time.Duration
	Clock           clockwork.Clock
}

// Scheduler runs the fetch and refresh jobs on their intervals. Both jobs
// run on one goroutine, so a refresh never overlaps a fetch.
type Scheduler struct {
	fetch   Job
	refresh Job
	logger  *slog.Logger
	clock   clockwork.Clock

	fetchInterval   time.Duration
	refreshInterval time.Duration
}

// New creates a Scheduler for the given jobs.
func New(fetch, refresh Job, logger *slog.Logger, cfg Config) *Scheduler {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	fetchInterval := cfg.FetchInterval
	if fetchInterval <= 0 {
		fetchInterval = 30 * time.Minute
	}
	refreshInterval := cfg.RefreshInterval
	if refreshInterval <= 0 {
		refreshInterval = time.Hour
	}
	return &Scheduler{
		fetch:           fetch,
		refresh:         refresh,
		logger:          logger,
		clock:           clock,
		fetchInterval:   fetchInterval,
		refreshInterval: refreshInterval,
	}
}

// Run executes both jobs once, then keeps them on their tickers until the
// context is cancelled. Job errors are logged and the loop continues.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler started",
		"fetch_interval", s.fetchInterval,
		"refresh_interval", s.refreshInterval,
	)

	// Prime on startup so a fresh deployment serves data without waiting
	// out a full interval.
	s.runJob(ctx, "fetch", s.fetch)
	s.runJob(ctx, "refresh", s.refresh)

	fetchTicker := s.clock.NewTicker(s.fetchInterval)
	defer fetchTicker.Stop()
	refreshTicker := s.clock.NewTicker(s.refreshInterval)
	defer refreshTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopping", "reason", ctx.Err())
			return nil
		case <-fetchTicker.Chan():
			s.runJob(ctx, "fetch", s.fetch)
		case <-refreshTicker.Chan():
			s.runJob(ctx, "refresh", s.refresh)
		}
	}
}

func (s *Scheduler) runJob(ctx context.Context, name string, job Job) {
	if ctx.Err() != nil {
		return
	}
	start := s.clock.Now()
	n, err := job(ctx)
	if err != nil {
		s.logger.Error("scheduled job failed", "job", name, "error", err)
		return
	}
	s.logger.Info("scheduled job finished",
		"job", name,
		"records", n,
		"duration", s.clock.Since(start),
	)
}
