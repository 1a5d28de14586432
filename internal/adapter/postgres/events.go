package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/georgysavva/scany/pgxscan"
	"github.com/jackc/pgx/v4"

	"github.com/seismonet/quake-risk-service/internal/domain"
)

// InsertEarthquakes stores events, deduplicating on usgs_id, and returns the
// subset that was actually new. The whole batch commits or rolls back as one
// transaction.
func (s *Store) InsertEarthquakes(ctx context.Context, events []domain.Earthquake) (stored []domain.Earthquake, err error) {
	const fn = "Store:InsertEarthquakes"
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s:%w:%w", fn, ErrTransactionStartFailed, err)
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		} else if err = tx.Commit(ctx); err != nil {
			stored = nil
			err = fmt.Errorf("%s:%w:%w", fn, ErrInsertFailed, err)
		}
	}()

	for _, event := range events {
		ct, execErr := tx.Exec(ctx, `
			INSERT INTO earthquakes (
				usgs_id,
				latitude,
				longitude,
				magnitude,
				depth_km,
				region,
				event_time
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (usgs_id) DO NOTHING
		`, event.USGSID, event.Latitude, event.Longitude, event.Magnitude,
			event.DepthKm, event.Region, event.Time)
		if execErr != nil {
			err = fmt.Errorf("%s:%w:%w", fn, ErrInsertFailed, execErr)
			return nil, err
		}
		if ct.RowsAffected() > 0 {
			stored = append(stored, event)
		}
	}
	return stored, nil
}

// EventsSince returns all events with event_time at or after the cutoff.
// Ordering is oldest first; callers that care about order within a cell get
// a deterministic sequence.
func (s *Store) EventsSince(ctx context.Context, since time.Time) ([]domain.Earthquake, error) {
	const fn = "Store:EventsSince"
	var events []domain.Earthquake
	err := pgxscan.Select(ctx, s.pool, &events, `
			SELECT id, usgs_id, latitude, longitude, magnitude, depth_km, region, event_time, created_at
			FROM earthquakes
			WHERE event_time >= $1
			ORDER BY event_time ASC
		`, since)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.Earthquake{}, nil
		}
		return nil, fmt.Errorf("%s:%w:%w", fn, ErrSelectFailed, err)
	}
	return events, nil
}

// EventFilter narrows SearchEvents results. Zero values disable a filter.
type EventFilter struct {
	Since        time.Time
	MinMagnitude *float64
	MaxMagnitude *float64
	Region       string
	Limit        int
}

// SearchEvents returns events matching the filter, newest first.
func (s *Store) SearchEvents(ctx context.Context, filter EventFilter) ([]domain.Earthquake, error) {
	const fn = "Store:SearchEvents"

	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !filter.Since.IsZero() {
		conds = append(conds, "event_time >= "+arg(filter.Since))
	}
	if filter.MinMagnitude != nil {
		conds = append(conds, "magnitude >= "+arg(*filter.MinMagnitude))
	}
	if filter.MaxMagnitude != nil {
		conds = append(conds, "magnitude <= "+arg(*filter.MaxMagnitude))
	}
	if filter.Region != "" {
		conds = append(conds, "region ILIKE "+arg("%"+filter.Region+"%"))
	}

	query := `
		SELECT id, usgs_id, latitude, longitude, magnitude, depth_km, region, event_time, created_at
		FROM earthquakes`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY event_time DESC"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}

	var events []domain.Earthquake
	if err := pgxscan.Select(ctx, s.pool, &events, query, args...); err != nil {
		return nil, fmt.Errorf("%s:%w:%w", fn, ErrSelectFailed, err)
	}
	return events, nil
}

// EventByUSGSID returns a single event, or ErrNotFound.
func (s *Store) EventByUSGSID(ctx context.Context, usgsID string) (domain.Earthquake, error) {
	const fn = "Store:EventByUSGSID"
	var event domain.Earthquake
	err := pgxscan.Get(ctx, s.pool, &event, `
			SELECT id, usgs_id, latitude, longitude, magnitude, depth_km, region, event_time, created_at
			FROM earthquakes
			WHERE usgs_id = $1
		`, usgsID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Earthquake{}, fmt.Errorf("%s:%w", fn, ErrNotFound)
		}
		return domain.Earthquake{}, fmt.Errorf("%s:%w:%w", fn, ErrSelectFailed, err)
	}
	return event, nil
}

// EventsNear returns all events within a square degree box around a point,
// the same |Δlat|,|Δlon| match the probability estimator was designed for.
func (s *Store) EventsNear(ctx context.Context, lat, lon, radiusDeg float64) ([]domain.Earthquake, error) {
	const fn = "Store:EventsNear"
	var events []domain.Earthquake
	err := pgxscan.Select(ctx, s.pool, &events, `
			SELECT id, usgs_id, latitude, longitude, magnitude, depth_km, region, event_time, created_at
			FROM earthquakes
			WHERE abs(latitude - $1) <= $3
			AND abs(longitude - $2) <= $3
			ORDER BY event_time ASC
		`, lat, lon, radiusDeg)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.Earthquake{}, nil
		}
		return nil, fmt.Errorf("%s:%w:%w", fn, ErrSelectFailed, err)
	}
	return events, nil
}

// Statistics aggregates the magnitude distribution over all stored events.
func (s *Store) Statistics(ctx context.Context, recentCutoff time.Time) (domain.Statistics, error) {
	const fn = "Store:Statistics"
	var stats domain.Statistics
	err := pgxscan.Get(ctx, s.pool, &stats, `
			SELECT
				count(*) AS total,
				count(*) FILTER (WHERE event_time >= $1) AS recent,
				count(*) FILTER (WHERE magnitude >= 6.0) AS major,
				count(*) FILTER (WHERE magnitude >= 4.0 AND magnitude < 6.0) AS moderate,
				count(*) FILTER (WHERE magnitude < 4.0) AS minor,
				coalesce(avg(magnitude), 0) AS average_magnitude
			FROM earthquakes
		`, recentCutoff)
	if err != nil {
		return domain.Statistics{}, fmt.Errorf("%s:%w:%w", fn, ErrSelectFailed, err)
	}
	return stats, nil
}
