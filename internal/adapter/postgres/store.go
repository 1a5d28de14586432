// Package postgres persists earthquake events and risk zones.
package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

var (
	ErrTransactionStartFailed = errors.New("transaction start failed")
	ErrInsertFailed           = errors.New("insert operation failed")
	ErrSelectFailed           = errors.New("select operation failed")
	ErrReplaceFailed          = errors.New("zone replace failed")
	ErrNotFound               = errors.New("record not found")
)

// Config holds connection and migration settings for the store.
type Config struct {
	ConnString     string
	MigrationsPath string
}

// Store wraps a pgx connection pool over the earthquakes and risk_zones
// tables. It is the only writer of risk_zones.
type Store struct {
	pool           *pgxpool.Pool
	connString     string
	migrationsPath string
}

// Connect opens the pool and runs pending migrations.
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	pool, err := pgxpool.Connect(ctx, cfg.ConnString)
	if err != nil {
		return nil, err
	}

	s := &Store{
		pool:           pool,
		connString:     cfg.ConnString,
		migrationsPath: cfg.MigrationsPath,
	}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	slog.InfoContext(ctx, "running database migrations", "path", s.migrationsPath)
	m, err := migrate.New("file://"+s.migrationsPath, s.connString)
	if err != nil {
		return err
	}
	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

func (s *Store) Close() {
	s.pool.Close()
}
