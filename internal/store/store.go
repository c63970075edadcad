// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

/*
Package store is the Postgres persistence layer.

It reads user lists, watch progress, reviews, profiles and the follow
graph, and owns the shows and episodes tables that cache TMDB metadata.
Queries go through database/sql with the pgx stdlib driver so tests can
substitute go-sqlmock.

Joins against the metadata cache are LEFT JOINs: a progress or review row
whose show or episode was never cached comes back with a nil Show or
Episode, and the hydration engine fills the gap from TMDB.
*/
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/rs/zerolog"

	"github.com/tomtom215/previouslyon/internal/config"
	"github.com/tomtom215/previouslyon/internal/metrics"
)

//go:embed schema.sql
var schemaSQL string

// Store wraps a *sql.DB. Safe for concurrent use.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

// Open connects with the pgx driver, applies pool limits and pings.
func Open(ctx context.Context, cfg *config.DatabaseConfig) (*sql.DB, error) {
	if cfg.URL == "" {
		return nil, errors.New("database url is empty")
	}
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// New wraps an open connection pool.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(db *sql.DB, logger zerolog.Logger) *Store {
	return &Store{db: db, logger: logger.With().Str("component", "store").Logger()}
}

// Close closes the pool.
func (s *Store) Close() error { return s.db.Close() }

// Ping checks connectivity for the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// EnsureSchema applies the embedded development schema. Every statement is
// idempotent.
func (s *Store) EnsureSchema(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("migrate", "schema", time.Since(start), err) }()

	if _, err = s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	s.logger.Info().Msg("Database schema ensured")
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func intPtrFromNull(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
