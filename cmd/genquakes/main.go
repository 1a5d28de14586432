// Command genquakes generates a synthetic USGS GeoJSON feed fixture plus the
// risk zones the assessment pass would derive from it. It uses the actual
// domain package so the zone fixture matches real scoring behavior.
//
// Usage:
//
//	go run ./cmd/genquakes \
//	  -feed-out data/mock/usgs_feed.json \
//	  -zones-out data/mock/risk_zones.json \
//	  -seed 1
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/seismonet/quake-risk-service/internal/domain"
)

var baseDate = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

// cluster describes a seismically active patch to scatter events around.
type cluster struct {
	name     string
	lat, lon float64
	events   int
	meanMag  float64
	depthKm  float64
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	feedOut := flag.String("feed-out", "", "output path for USGS GeoJSON feed fixture")
	zonesOut := flag.String("zones-out", "", "output path for derived risk zone fixture")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	if *feedOut == "" || *zonesOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -feed-out, -zones-out")
	}

	// Fix the clock so recency scoring is reproducible.
	domain.SetClock(clockwork.NewFakeClockAt(baseDate))
	defer domain.SetClock(nil)

	rng := rand.New(rand.NewSource(*seed))

	clusters := []cluster{
		{name: "Southern California", lat: 34.2, lon: -117.4, events: 40, meanMag: 3.8, depthKm: 9},
		{name: "Central Alaska", lat: 63.1, lon: -150.9, events: 25, meanMag: 4.4, depthKm: 95},
		{name: "Honshu, Japan", lat: 38.3, lon: 142.4, events: 18, meanMag: 5.2, depthKm: 35},
		{name: "Puerto Rico region", lat: 17.9, lon: -66.8, events: 6, meanMag: 3.1, depthKm: 12},
		{name: "Kermadec Islands", lat: -29.7, lon: -177.8, events: 2, meanMag: 6.1, depthKm: 210},
	}

	events := make([]domain.Earthquake, 0, 128)
	for _, c := range clusters {
		events = append(events, generate(rng, c, len(events))...)
	}
	log.Printf("generated %d events across %d clusters", len(events), len(clusters))

	if err := writeJSON(*feedOut, toFeed(events)); err != nil {
		return fmt.Errorf("writing feed fixture: %w", err)
	}
	log.Printf("wrote feed fixture: %s", *feedOut)

	zones := deriveZones(events)
	if err := writeJSON(*zonesOut, zones); err != nil {
		return fmt.Errorf("writing zone fixture: %w", err)
	}
	log.Printf("wrote zone fixture: %s (%d zones)", *zonesOut, len(zones))

	for _, z := range zones {
		log.Printf("zone %s (%.1f, %.1f): risk %.3f over %d events",
			z.RegionName, z.Latitude, z.Longitude, z.RiskLevel, z.EarthquakeCount)
	}
	return nil
}

func generate(rng *rand.Rand, c cluster, offset int) []domain.Earthquake {
	events := make([]domain.Earthquake, 0, c.events)
	for i := 0; i < c.events; i++ {
		mag := c.meanMag + rng.NormFloat64()*0.6
		if mag < 1.0 {
			mag = 1.0
		}
		depth := c.depthKm + rng.NormFloat64()*c.depthKm*0.3
		if depth < 1.0 {
			depth = 1.0
		}
		age := time.Duration(rng.Intn(300*24)) * time.Hour

		events = append(events, domain.Earthquake{
			USGSID:    fmt.Sprintf("gen%08d", offset+i),
			Latitude:  c.lat + rng.Float64()*0.8 - 0.4,
			Longitude: c.lon + rng.Float64()*0.8 - 0.4,
			Magnitude: &mag,
			DepthKm:   &depth,
			Region:    c.name,
			Time:      baseDate.Add(-age),
		})
	}
	return events
}

// feed mirrors the USGS fdsnws GeoJSON envelope closely enough for the
// client parser and external tooling.
type feed struct {
	Type     string        `json:"type"`
	Features []feedFeature `json:"features"`
}

type feedFeature struct {
	Type       string         `json:"type"`
	ID         string         `json:"id"`
	Properties feedProperties `json:"properties"`
	Geometry   feedGeometry   `json:"geometry"`
}

type feedProperties struct {
	Mag   *float64 `json:"mag"`
	Place string   `json:"place"`
	Time  int64    `json:"time"`
}

type feedGeometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

func toFeed(events []domain.Earthquake) feed {
	features := make([]feedFeature, 0, len(events))
	for _, e := range events {
		features = append(features, feedFeature{
			Type: "Feature",
			ID:   e.USGSID,
			Properties: feedProperties{
				Mag:   e.Magnitude,
				Place: e.Region,
				Time:  e.Time.UnixMilli(),
			},
			Geometry: feedGeometry{
				Type:        "Point",
				Coordinates: []float64{e.Longitude, e.Latitude, *e.DepthKm},
			},
		})
	}
	return feed{Type: "FeatureCollection", Features: features}
}

func deriveZones(events []domain.Earthquake) []domain.RiskZone {
	cells := domain.PartitionEvents(domain.DefaultGridSize, events)

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
		if zone, ok := domain.AssessCell(domain.DefaultGridSize, cell, cells[cell]); ok {
			zones = append(zones, zone)
		}
	}
	return zones
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
