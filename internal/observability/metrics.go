package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingest and assessment loops.
type Metrics struct {
	QuakesFetched prometheus.Counter
	QuakesStored  prometheus.Counter
	FetchErrors   prometheus.Counter
	SinkPublished prometheus.Counter
	SinkErrors    prometheus.Counter

	// Risk assessment metrics.
	ZonesCreated    prometheus.Gauge
	EventsSkipped   prometheus.Counter
	RefreshRunning  prometheus.Gauge
	RefreshDuration prometheus.Histogram
	RefreshErrors   prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		QuakesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_risk",
			Name:      "quakes_fetched_total",
			Help:      "Total earthquake features returned by the USGS feed.",
		}),
		QuakesStored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_risk",
			Name:      "quakes_stored_total",
			Help:      "Total new earthquake records inserted.",
		}),
		FetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_risk",
			Name:      "fetch_errors_total",
			Help:      "Total failed USGS fetch runs.",
		}),
		SinkPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_risk",
			Name:      "sink_published_total",
			Help:      "Total stored earthquakes published to the Kafka sink.",
		}),
		SinkErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_risk",
			Name:      "sink_errors_total",
			Help:      "Total Kafka sink publish failures.",
		}),
		ZonesCreated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quake_risk",
			Name:      "zones_created",
			Help:      "Risk zones materialized by the most recent refresh.",
		}),
		EventsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_risk",
			Name:      "events_skipped_total",
			Help:      "Events skipped during assessment for malformed coordinates.",
		}),
		RefreshRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quake_risk",
			Name:      "refresh_running",
			Help:      "1 while a risk zone refresh is in flight, 0 otherwise.",
		}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quake_risk",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a complete fetch-partition-score-replace cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		RefreshErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_risk",
			Name:      "refresh_errors_total",
			Help:      "Total risk zone refresh runs aborted by a store failure.",
		}),
	}

	prometheus.MustRegister(
		m.QuakesFetched,
		m.QuakesStored,
		m.FetchErrors,
		m.SinkPublished,
		m.SinkErrors,
		m.ZonesCreated,
		m.EventsSkipped,
		m.RefreshRunning,
		m.RefreshDuration,
		m.RefreshErrors,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		QuakesFetched:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "quake_risk", Name: "quakes_fetched_total"}),
		QuakesStored:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "quake_risk", Name: "quakes_stored_total"}),
		FetchErrors:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "quake_risk", Name: "fetch_errors_total"}),
		SinkPublished:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "quake_risk", Name: "sink_published_total"}),
		SinkErrors:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "quake_risk", Name: "sink_errors_total"}),
		ZonesCreated:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "quake_risk", Name: "zones_created"}),
		EventsSkipped:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "quake_risk", Name: "events_skipped_total"}),
		RefreshRunning:  prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "quake_risk", Name: "refresh_running"}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "quake_risk", Name: "refresh_duration_seconds"}),
		RefreshErrors:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "quake_risk", Name: "refresh_errors_total"}),
	}
}
