// Package database handles PostgreSQL connection management and migration
// execution using goose. It provides a Connect function that returns a
// tuned *sql.DB pool, a Migrate function for schema management, and the
// readiness check consulted by the health endpoint.
package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations
var embedMigrations embed.FS

const (
	// defaultMaxConns bounds the pool when configuration supplies nothing.
	defaultMaxConns = 25

	// connMaxLifetime recycles connections so load balancer and server
	// restarts don't pin the pool to dead backends.
	connMaxLifetime = 5 * time.Minute

	// pingTimeout bounds the startup reachability check.
	pingTimeout = 5 * time.Second
)

// Connect opens a PostgreSQL connection pool using the provided DSN and
// pool size. It verifies reachability with a bounded ping before
// returning.
func Connect(dsn string, maxConns int) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("database open: %w", err)
	}

	if maxConns <= 0 {
		maxConns = defaultMaxConns
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping: %w", err)
	}

	slog.Info("database connected", "max_conns", maxConns)
	return db, nil
}

// Ready reports whether the database is reachable. The health endpoint
// calls this on every readiness check.
func Ready(ctx context.Context, db *sql.DB) error {
	return db.PingContext(ctx)
}

// Migrate runs all pending goose migrations from the embedded SQL files.
// Already-applied migrations are skipped, so calling it on every startup
// is safe.
func Migrate(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	slog.Info("database migrations applied")
	return nil
}
