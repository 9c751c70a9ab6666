package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

// PostgresOptions tunes connection start-up.
type PostgresOptions struct {
	ConnectAttempts int
	RetryDelay      time.Duration
}

// NewPostgresRepository connects to databaseURL, waiting for the server to
// accept connections, and applies pending migrations.
func NewPostgresRepository(ctx context.Context, databaseURL string, opts PostgresOptions) (*SQLRepository, error) {
	if opts.ConnectAttempts <= 0 {
		opts.ConnectAttempts = 10
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 2 * time.Second
	}

	cfg, err := pgx.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	db := stdlib.OpenDB(*cfg)
	for attempt := 1; ; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = db.PingContext(pingCtx)
		cancel()
		if err == nil {
			break
		}
		if attempt >= opts.ConnectAttempts {
			db.Close()
			return nil, fmt.Errorf("connect to database after %d attempts: %w", attempt, err)
		}
		slog.WarnContext(ctx, "Database not ready, retrying",
			"attempt", attempt,
			"max_attempts", opts.ConnectAttempts,
			"retry_in", opts.RetryDelay,
			"error", err)
		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(opts.RetryDelay):
		}
	}
	slog.InfoContext(ctx, "Database connection established", "host", cfg.Host, "database", cfg.Database)

	if err := RunPostgresMigrations(cfg); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLRepository{db: db, d: postgresDialect}, nil
}
