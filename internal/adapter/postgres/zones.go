package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/pgxscan"
	"github.com/jackc/pgx/v4"

	"github.com/seismonet/quake-risk-service/internal/domain"
)

// ReplaceZones swaps the entire risk zone set for the given one inside a
// single transaction: readers never observe an empty-but-stale or
// half-populated table. An empty slice is a valid replacement (all prior
// zones deleted).
func (s *Store) ReplaceZones(ctx context.Context, zones []domain.RiskZone) (err error) {
	const fn = "Store:ReplaceZones"
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s:%w:%w", fn, ErrTransactionStartFailed, err)
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM risk_zones`); err != nil {
		err = fmt.Errorf("%s:%w:%w", fn, ErrReplaceFailed, err)
		return err
	}

	for _, zone := range zones {
		_, err = tx.Exec(ctx, `
			INSERT INTO risk_zones (
				latitude,
				longitude,
				risk_level,
				region_name,
				earthquake_count,
				last_updated
			) VALUES ($1, $2, $3, $4, $5, $6)
		`, zone.Latitude, zone.Longitude, zone.RiskLevel, zone.RegionName,
			zone.EarthquakeCount, zone.LastUpdated)
		if err != nil {
			err = fmt.Errorf("%s:%w:%w", fn, ErrReplaceFailed, err)
			return err
		}
	}
	return nil
}

// ZonesAbove returns zones with risk at or above the threshold, highest
// risk first.
func (s *Store) ZonesAbove(ctx context.Context, minRisk float64) ([]domain.RiskZone, error) {
	const fn = "Store:ZonesAbove"
	var zones []domain.RiskZone
	err := pgxscan.Select(ctx, s.pool, &zones, `
			SELECT id, latitude, longitude, risk_level, region_name, earthquake_count, last_updated
			FROM risk_zones
			WHERE risk_level >= $1
			ORDER BY risk_level DESC
		`, minRisk)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.RiskZone{}, nil
		}
		return nil, fmt.Errorf("%s:%w:%w", fn, ErrSelectFailed, err)
	}
	return zones, nil
}
