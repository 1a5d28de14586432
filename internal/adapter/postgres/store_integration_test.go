//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/seismonet/quake-risk-service/internal/domain"
)

var testStore *Store

func TestMain(m *testing.M) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("quakes"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		panic(err)
	}
	defer pgContainer.Terminate(ctx)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		panic(err)
	}

	testStore, err = Connect(ctx, Config{
		ConnString:     connStr,
		MigrationsPath: "./migrations",
	})
	if err != nil {
		panic(err)
	}

	m.Run()

	testStore.Close()
	pgContainer.Terminate(ctx)
}

func resetTables(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	_, err := testStore.pool.Exec(ctx, "TRUNCATE earthquakes, risk_zones RESTART IDENTITY")
	require.NoError(t, err)
}

func f64(v float64) *float64 { return &v }

func quakeAt(id string, lat, lon, magnitude float64, region string, at time.Time) domain.Earthquake {
	return domain.Earthquake{
		USGSID:    id,
		Latitude:  lat,
		Longitude: lon,
		Magnitude: f64(magnitude),
		DepthKm:   f64(10),
		Region:    region,
		Time:      at,
	}
}

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestInsertEarthquakes_DeduplicatesOnUSGSID(t *testing.T) {
	resetTables(t)
	ctx := context.Background()

	first := []domain.Earthquake{
		quakeAt("us1", 34.0, -118.0, 4.1, "Southern California", baseTime),
		quakeAt("us2", 35.0, -117.5, 3.2, "Southern California", baseTime.Add(-time.Hour)),
	}
	stored, err := testStore.InsertEarthquakes(ctx, first)
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	// Re-inserting an overlapping batch only stores the new record.
	second := []domain.Earthquake{
		quakeAt("us2", 35.0, -117.5, 3.2, "Southern California", baseTime.Add(-time.Hour)),
		quakeAt("us3", 36.0, -117.0, 5.0, "Central California", baseTime.Add(-2*time.Hour)),
	}
	stored, err = testStore.InsertEarthquakes(ctx, second)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "us3", stored[0].USGSID)

	all, err := testStore.EventsSince(ctx, baseTime.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestInsertEarthquakes_PreservesAbsentMagnitude(t *testing.T) {
	resetTables(t)
	ctx := context.Background()

	event := quakeAt("usnull", 40.0, -120.0, 0, "Nevada", baseTime)
	event.Magnitude = nil
	event.DepthKm = nil

	stored, err := testStore.InsertEarthquakes(ctx, []domain.Earthquake{event})
	require.NoError(t, err)
	require.Len(t, stored, 1)

	got, err := testStore.EventByUSGSID(ctx, "usnull")
	require.NoError(t, err)
	assert.Nil(t, got.Magnitude)
	assert.Nil(t, got.DepthKm)
}

func TestEventsSince_OrdersAscendingAndCutsOff(t *testing.T) {
	resetTables(t)
	ctx := context.Background()

	_, err := testStore.InsertEarthquakes(ctx, []domain.Earthquake{
		quakeAt("old", 34.0, -118.0, 4.0, "Southern California", baseTime.Add(-400*24*time.Hour)),
		quakeAt("mid", 34.1, -118.1, 4.2, "Southern California", baseTime.Add(-48*time.Hour)),
		quakeAt("new", 34.2, -118.2, 4.4, "Southern California", baseTime.Add(-time.Hour)),
	})
	require.NoError(t, err)

	got, err := testStore.EventsSince(ctx, baseTime.Add(-365*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "mid", got[0].USGSID)
	assert.Equal(t, "new", got[1].USGSID)
}

func TestSearchEvents_Filters(t *testing.T) {
	resetTables(t)
	ctx := context.Background()

	_, err := testStore.InsertEarthquakes(ctx, []domain.Earthquake{
		quakeAt("a", 34.0, -118.0, 2.5, "Southern California", baseTime.Add(-time.Hour)),
		quakeAt("b", 34.1, -118.1, 4.5, "Southern California", baseTime.Add(-2*time.Hour)),
		quakeAt("c", 63.0, -151.0, 6.2, "Central Alaska", baseTime.Add(-3*time.Hour)),
	})
	require.NoError(t, err)

	t.Run("magnitude range", func(t *testing.T) {
		got, err := testStore.SearchEvents(ctx, EventFilter{
			MinMagnitude: f64(4.0),
			MaxMagnitude: f64(6.0),
			Limit:        10,
		})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "b", got[0].USGSID)
	})

	t.Run("region substring is case-insensitive", func(t *testing.T) {
		got, err := testStore.SearchEvents(ctx, EventFilter{Region: "california", Limit: 10})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("ordered by time descending with limit", func(t *testing.T) {
		got, err := testStore.SearchEvents(ctx, EventFilter{Limit: 2})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "a", got[0].USGSID)
		assert.Equal(t, "b", got[1].USGSID)
	})
}

func TestEventByUSGSID_NotFound(t *testing.T) {
	resetTables(t)

	_, err := testStore.EventByUSGSID(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestEventsNear_BoundingBox(t *testing.T) {
	resetTables(t)
	ctx := context.Background()

	_, err := testStore.InsertEarthquakes(ctx, []domain.Earthquake{
		quakeAt("inside", 34.2, -118.1, 3.0, "Southern California", baseTime),
		quakeAt("edge", 34.9, -118.9, 3.0, "Southern California", baseTime),
		quakeAt("outside", 36.5, -118.0, 3.0, "Central California", baseTime),
	})
	require.NoError(t, err)

	got, err := testStore.EventsNear(ctx, 34.0, -118.0, 1.0)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestStatistics_Buckets(t *testing.T) {
	resetTables(t)
	ctx := context.Background()

	_, err := testStore.InsertEarthquakes(ctx, []domain.Earthquake{
		quakeAt("minor", 34.0, -118.0, 3.0, "Southern California", baseTime.Add(-time.Hour)),
		quakeAt("moderate", 34.1, -118.1, 4.0, "Southern California", baseTime.Add(-10*24*time.Hour)),
		quakeAt("major", 38.3, 142.4, 7.0, "Honshu, Japan", baseTime.Add(-30*24*time.Hour)),
	})
	require.NoError(t, err)

	stats, err := testStore.Statistics(ctx, baseTime.Add(-7*24*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Recent)
	assert.Equal(t, 1, stats.Major)
	assert.Equal(t, 1, stats.Moderate)
	assert.Equal(t, 1, stats.Minor)
	assert.InDelta(t, (3.0+4.0+7.0)/3, stats.AverageMagnitude, 1e-9)
}

func TestReplaceZones_SwapsTheWholeSet(t *testing.T) {
	resetTables(t)
	ctx := context.Background()

	first := []domain.RiskZone{
		{Latitude: 35, Longitude: -117, RiskLevel: 0.7, RegionName: "Southern California", EarthquakeCount: 12, LastUpdated: baseTime},
		{Latitude: 39, Longitude: 143, RiskLevel: 0.5, RegionName: "Honshu, Japan", EarthquakeCount: 6, LastUpdated: baseTime},
	}
	require.NoError(t, testStore.ReplaceZones(ctx, first))

	second := []domain.RiskZone{
		{Latitude: 63, Longitude: -151, RiskLevel: 0.4, RegionName: "Central Alaska", EarthquakeCount: 8, LastUpdated: baseTime},
	}
	require.NoError(t, testStore.ReplaceZones(ctx, second))

	got, err := testStore.ZonesAbove(ctx, 0.0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Central Alaska", got[0].RegionName)
}

func TestReplaceZones_EmptySetClearsTable(t *testing.T) {
	resetTables(t)
	ctx := context.Background()

	require.NoError(t, testStore.ReplaceZones(ctx, []domain.RiskZone{
		{Latitude: 35, Longitude: -117, RiskLevel: 0.7, RegionName: "Southern California", EarthquakeCount: 12, LastUpdated: baseTime},
	}))
	require.NoError(t, testStore.ReplaceZones(ctx, []domain.RiskZone{}))

	got, err := testStore.ZonesAbove(ctx, 0.0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestZonesAbove_ThresholdAndOrder(t *testing.T) {
	resetTables(t)
	ctx := context.Background()

	require.NoError(t, testStore.ReplaceZones(ctx, []domain.RiskZone{
		{Latitude: 35, Longitude: -117, RiskLevel: 0.72, RegionName: "Southern California", EarthquakeCount: 12, LastUpdated: baseTime},
		{Latitude: 63, Longitude: -151, RiskLevel: 0.31, RegionName: "Central Alaska", EarthquakeCount: 4, LastUpdated: baseTime},
		{Latitude: 39, Longitude: 143, RiskLevel: 0.55, RegionName: "Honshu, Japan", EarthquakeCount: 7, LastUpdated: baseTime},
	}))

	got, err := testStore.ZonesAbove(ctx, 0.5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Southern California", got[0].RegionName)
	assert.Equal(t, "Honshu, Japan", got[1].RegionName)
}
