package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEstimateProbability_SmallSampleFloor(t *testing.T) {
	freezeClock(t)
	recent := riskTestNow.Add(-1 * 24 * time.Hour)

	tests := []struct {
		name   string
		events []Earthquake
	}{
		{"no events", nil},
		{"one very recent strong event", quakeSeries(1, 34, -118, 7.9, 2, "X", recent)},
		{"four recent events", quakeSeries(4, 34, -118, 7.9, 2, "X", recent)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := EstimateProbability(tt.events)
			assert.Equal(t, 0.1, est.Probability)
			assert.Equal(t, ConfidenceLow, est.Confidence)
			assert.Equal(t, len(tt.events), est.BasedOnEvents)
			assert.Zero(t, est.RecentActivity)
		})
	}
}

func TestEstimateProbability(t *testing.T) {
	freezeClock(t)
	recent := riskTestNow.Add(-10 * 24 * time.Hour)
	old := riskTestNow.Add(-200 * 24 * time.Hour)

	t.Run("frequency plus recent boost", func(t *testing.T) {
		events := append(
			quakeSeries(3, 34, -118, 4, 10, "X", recent),
			quakeSeries(7, 34, -118, 4, 10, "X", old)...,
		)

		est := EstimateProbability(events)
		// 10/365 per day + 3 recent * 0.1, rounded to 3 decimals.
		assert.Equal(t, 0.327, est.Probability)
		assert.Equal(t, ConfidenceLow, est.Confidence)
		assert.Equal(t, 10, est.BasedOnEvents)
		assert.Equal(t, 3, est.RecentActivity)
	})

	t.Run("medium confidence above 20 events", func(t *testing.T) {
		est := EstimateProbability(quakeSeries(21, 34, -118, 4, 10, "X", old))
		assert.Equal(t, ConfidenceMedium, est.Confidence)
	})

	t.Run("high confidence above 50 events", func(t *testing.T) {
		est := EstimateProbability(quakeSeries(51, 34, -118, 4, 10, "X", old))
		assert.Equal(t, ConfidenceHigh, est.Confidence)
	})

	t.Run("probability capped at 1", func(t *testing.T) {
		est := EstimateProbability(quakeSeries(60, 34, -118, 4, 10, "X", recent))
		assert.Equal(t, 1.0, est.Probability)
		assert.Equal(t, ConfidenceHigh, est.Confidence)
	})

	t.Run("thirty-one day old events do not boost", func(t *testing.T) {
		stale := riskTestNow.Add(-31 * 24 * time.Hour)
		est := EstimateProbability(quakeSeries(10, 34, -118, 4, 10, "X", stale))
		assert.Zero(t, est.RecentActivity)
		assert.Equal(t, 0.027, est.Probability)
	})
}
