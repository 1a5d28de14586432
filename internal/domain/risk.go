package domain

import (
	"math"
	"time"
)

const (
	// MinCellEvents is the minimum sample size for a cell to be scored at all.
	MinCellEvents = 3

	// SignificanceThreshold is the minimum score for a cell to produce a zone.
	SignificanceThreshold = 0.3

	// UnknownRegion labels a zone whose events carry no region text.
	UnknownRegion = "Unknown Region"

	recencyWindow = 90 * 24 * time.Hour

	weightFrequency = 0.30
	weightMagnitude = 0.40
	weightRecency   = 0.20
	weightDepth     = 0.10
)

// AssessCell applies both eligibility gates to a cell's events and, when the
// cell qualifies, builds its RiskZone centered on the cell midpoint. The two
// gates are independent: a cell can clear the sample-size minimum and still
// be dropped for a low score.
func AssessCell(gridSize float64, cell GridCell, events []Earthquake) (RiskZone, bool) {
	if len(events) < MinCellEvents {
		return RiskZone{}, false
	}

	score := ScoreCell(events)
	if score <= SignificanceThreshold {
		return RiskZone{}, false
	}

	centerLat, centerLon := cell.Center(gridSize)
	return RiskZone{
		Latitude:        centerLat,
		Longitude:       centerLon,
		RiskLevel:       score,
		RegionName:      RepresentativeRegion(events),
		EarthquakeCount: len(events),
		LastUpdated:     clock.Now().UTC(),
	}, true
}

// ScoreCell computes the risk score in [0,1] for one cell's events as a
// weighted sum of four independently normalized factors. The magnitude
// factor's 1.5x boost is applied after its own clamp and may exceed 1.0;
// only the final weighted sum is capped.
func ScoreCell(events []Earthquake) float64 {
	if len(events) == 0 {
		return 0
	}

	score := frequencyFactor(events)*weightFrequency +
		magnitudeFactor(events)*weightMagnitude +
		recencyFactor(events)*weightRecency +
		depthFactor(events)*weightDepth

	return math.Min(score, 1.0)
}

// frequencyFactor normalizes events-per-month against 10/month, assuming the
// events span the standard 365-day lookback window.
func frequencyFactor(events []Earthquake) float64 {
	perMonth := float64(len(events)) / 12.0
	return math.Min(perMonth/10.0, 1.0)
}

// magnitudeFactor maps the mean magnitude from [2,8] onto [0,1]. Cells whose
// strongest event reaches magnitude 6.0 get a 1.5x boost with no re-clamp.
// Events without a magnitude are ignored; if none carry one the factor is 0.
func magnitudeFactor(events []Earthquake) float64 {
	var sum, maxMag float64
	var n int
	for _, e := range events {
		if e.Magnitude == nil {
			continue
		}
		sum += *e.Magnitude
		maxMag = math.Max(maxMag, *e.Magnitude)
		n++
	}
	if n == 0 {
		return 0
	}

	mean := sum / float64(n)
	factor := math.Min((mean-2.0)/6.0, 1.0)
	factor = math.Max(factor, 0.0)
	if maxMag >= 6.0 {
		factor *= 1.5
	}
	return factor
}

// recencyFactor is the fraction of the cell's events within the last 90 days.
func recencyFactor(events []Earthquake) float64 {
	now := clock.Now()
	recent := 0
	for _, e := range events {
		if now.Sub(e.Time) <= recencyWindow {
			recent++
		}
	}
	return float64(recent) / float64(len(events))
}

// depthFactor scores shallowness: shallow quakes (< 70km) are more dangerous.
// Events without a depth are ignored; a non-positive mean or an all-absent
// cell falls back to a neutral 0.5.
func depthFactor(events []Earthquake) float64 {
	var sum float64
	var n int
	for _, e := range events {
		if e.DepthKm == nil {
			continue
		}
		sum += *e.DepthKm
		n++
	}
	if n == 0 {
		return 0.5
	}

	mean := sum / float64(n)
	if mean <= 0 {
		return 0.5
	}
	return math.Max(0, (70-mean)/70)
}

// RepresentativeRegion returns the most frequent non-empty region label among
// the cell's events, breaking ties by first occurrence in input order.
// Returns UnknownRegion when no event carries a region.
func RepresentativeRegion(events []Earthquake) string {
	counts := make(map[string]int)
	var order []string
	for _, e := range events {
		if e.Region == "" {
			continue
		}
		if counts[e.Region] == 0 {
			order = append(order, e.Region)
		}
		counts[e.Region]++
	}

	best := UnknownRegion
	bestCount := 0
	for _, region := range order {
		if counts[region] > bestCount {
			best = region
			bestCount = counts[region]
		}
	}
	return best
}
