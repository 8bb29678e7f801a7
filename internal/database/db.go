// Package database persists validation run history to Postgres. It is
// optional: the CLI runs without a database, the server persists runs when
// a DATABASE_URL is configured.
package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	pool   *pgxpool.Pool
	poolMu sync.RWMutex
)

// Connect creates the connection pool (safe for concurrent use).
func Connect(ctx context.Context, connString string, maxConns, minConns int, maxLifetime, maxIdleTime time.Duration) error {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return fmt.Errorf("error parsing database config: %w", err)
	}

	config.MaxConns = int32(maxConns)
	config.MinConns = int32(minConns)
	config.MaxConnLifetime = maxLifetime
	config.MaxConnIdleTime = maxIdleTime
	config.HealthCheckPeriod = 1 * time.Minute

	newPool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("error creating connection pool: %w", err)
	}

	if err := newPool.Ping(ctx); err != nil {
		newPool.Close()
		return fmt.Errorf("error connecting to database: %w", err)
	}

	poolMu.Lock()
	defer poolMu.Unlock()
	if pool != nil {
		pool.Close()
	}
	pool = newPool
	return nil
}

// Close closes the connection pool.
func Close() {
	poolMu.Lock()
	defer poolMu.Unlock()
	if pool != nil {
		pool.Close()
		pool = nil
	}
}

// Pool returns the connection pool, or nil when not connected.
func Pool() *pgxpool.Pool {
	poolMu.RLock()
	defer poolMu.RUnlock()
	return pool
}

// Status pings the database.
func Status(ctx context.Context) error {
	p := Pool()
	if p == nil {
		return fmt.Errorf("database not connected")
	}
	return p.Ping(ctx)
}

// EnsureSchema creates the run-history tables if they do not exist.
func EnsureSchema(ctx context.Context) error {
	p := Pool()
	if p == nil {
		return fmt.Errorf("database not connected")
	}

	_, err := p.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS validation_runs (
			id           BIGSERIAL PRIMARY KEY,
			filename     TEXT NOT NULL,
			row_count    INT NOT NULL,
			issue_count  INT NOT NULL,
			status       TEXT NOT NULL,
			started_at   TIMESTAMPTZ NOT NULL,
			finished_at  TIMESTAMPTZ
		);
		CREATE TABLE IF NOT EXISTS validation_issues (
			id        BIGSERIAL PRIMARY KEY,
			run_id    BIGINT NOT NULL REFERENCES validation_runs(id) ON DELETE CASCADE,
			sku       TEXT NOT NULL,
			category  TEXT NOT NULL,
			code      TEXT NOT NULL,
			message   TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS validation_issues_run_idx ON validation_issues (run_id);
	`)
	if err != nil {
		return fmt.Errorf("error ensuring schema: %w", err)
	}
	return nil
}
