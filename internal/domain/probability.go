package domain

import (
	"math"
	"time"
)

// KmPerDegree is the rough conversion used to turn a radius in kilometers
// into a degree box for the point probability query.
const KmPerDegree = 111.0

// Confidence labels for probability estimates, driven by sample size.
const (
	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
	ConfidenceHigh   = "high"
)

const (
	minEventsForEstimate = 5
	recentActivityWindow = 30 * 24 * time.Hour
	recentActivityBoost  = 0.1
)

// ProbabilityEstimate is the naive point+radius earthquake likelihood answer.
type ProbabilityEstimate struct {
	Probability    float64 `json:"probability"`
	Confidence     string  `json:"confidence"`
	BasedOnEvents  int     `json:"based_on_events"`
	RecentActivity int     `json:"recent_activity,omitempty"`
}

// EstimateProbability derives a daily earthquake probability for a region
// from the historical events matched by the caller's point+radius query.
// Probability is historical frequency per day plus a linear boost from
// events in the last 30 days, capped at 1.0 and rounded to 3 decimals.
// Fewer than 5 matching events yields a fixed low-confidence floor of 0.1.
func EstimateProbability(events []Earthquake) ProbabilityEstimate {
	if len(events) < minEventsForEstimate {
		return ProbabilityEstimate{
			Probability:   0.1,
			Confidence:    ConfidenceLow,
			BasedOnEvents: len(events),
		}
	}

	now := clock.Now()
	recent := 0
	for _, e := range events {
		if now.Sub(e.Time) <= recentActivityWindow {
			recent++
		}
	}

	historicalFrequency := float64(len(events)) / 365.0
	probability := math.Min(historicalFrequency+float64(recent)*recentActivityBoost, 1.0)

	confidence := ConfidenceLow
	switch {
	case len(events) > 50:
		confidence = ConfidenceHigh
	case len(events) > 20:
		confidence = ConfidenceMedium
	}

	return ProbabilityEstimate{
		Probability:    math.Round(probability*1000) / 1000,
		Confidence:     confidence,
		BasedOnEvents:  len(events),
		RecentActivity: recent,
	}
}
