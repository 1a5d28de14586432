package scheduler_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seismonet/quake-risk-service/internal/scheduler"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// countingJob signals every invocation on runs.
func countingJob(runs chan struct{}, err error) scheduler.Job {
	return func(context.Context) (int, error) {
		runs <- struct{}{}
		return 1, err
	}
}

func waitForRun(t *testing.T, runs chan struct{}, job string) {
	t.Helper()
	select {
	case <-runs:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s run", job)
	}
}

func TestRun_PrimesBothJobsOnStartup(t *testing.T) {
	clock := clockwork.NewFakeClock()
	fetchRuns := make(chan struct{}, 8)
	refreshRuns := make(chan struct{}, 8)

	s := scheduler.New(countingJob(fetchRuns, nil), countingJob(refreshRuns, nil), testLogger(), scheduler.Config{
		FetchInterval:   30 * time.Minute,
		RefreshInterval: time.Hour,
		Clock:           clock,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	waitForRun(t, fetchRuns, "fetch")
	waitForRun(t, refreshRuns, "refresh")

	cancel()
	require.NoError(t, <-done)
}

func TestRun_FiresFetchOnItsInterval(t *testing.T) {
	clock := clockwork.NewFakeClock()
	fetchRuns := make(chan struct{}, 8)
	refreshRuns := make(chan struct{}, 8)

	s := scheduler.New(countingJob(fetchRuns, nil), countingJob(refreshRuns, nil), testLogger(), scheduler.Config{
		FetchInterval:   30 * time.Minute,
		RefreshInterval: time.Hour,
		Clock:           clock,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	waitForRun(t, fetchRuns, "fetch")
	waitForRun(t, refreshRuns, "refresh")

	// Both tickers are registered once Run blocks in its select.
	clock.BlockUntil(2)
	clock.Advance(30 * time.Minute)
	waitForRun(t, fetchRuns, "fetch")
	assert.Empty(t, refreshRuns)

	cancel()
	require.NoError(t, <-done)
}

func TestRun_JobErrorKeepsLoopAlive(t *testing.T) {
	clock := clockwork.NewFakeClock()
	fetchRuns := make(chan struct{}, 8)
	refreshRuns := make(chan struct{}, 8)

	s := scheduler.New(
		countingJob(fetchRuns, errors.New("feed unavailable")),
		countingJob(refreshRuns, nil),
		testLogger(),
		scheduler.Config{
			FetchInterval:   30 * time.Minute,
			RefreshInterval: time.Hour,
			Clock:           clock,
		},
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	waitForRun(t, fetchRuns, "fetch")
	waitForRun(t, refreshRuns, "refresh")

	clock.BlockUntil(2)
	clock.Advance(30 * time.Minute)
	waitForRun(t, fetchRuns, "fetch")

	clock.BlockUntil(2)
	clock.Advance(30 * time.Minute)
	waitForRun(t, fetchRuns, "fetch")

	cancel()
	require.NoError(t, <-done)
}
