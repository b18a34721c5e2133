// Package database handles PostgreSQL connection management and migration
// execution using goose. It provides a Connect function that returns a
// ready-to-use *sql.DB pool and a Migrate function for schema management.
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
	// Batch rendering is sequential, so the pool mostly serves short API
	// reads plus the occasional FOR UPDATE template save. A small pool is
	// plenty and keeps connection headroom on shared Postgres instances.
	maxOpenConns = 16
	maxIdleConns = 8

	connMaxIdleTime = 5 * time.Minute
	pingTimeout     = 5 * time.Second
)

// Connect opens a PostgreSQL connection pool using the provided DSN and
// verifies it with a ping before returning.
func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("database open: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping: %w", err)
	}

	slog.Info("database connected", "max_open_conns", maxOpenConns)
	return db, nil
}

// Migrate runs all pending goose migrations from the embedded SQL files.
// Migrations are embedded at compile time so no external files are needed
// at runtime.
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
