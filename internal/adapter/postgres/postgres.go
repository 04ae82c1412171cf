package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/adapter/metrics"
)

const schema = `
CREATE TABLE IF NOT EXISTS reviews (
	id          BIGSERIAL PRIMARY KEY,
	game_name   TEXT NOT NULL DEFAULT 'Unknown',
	review_text TEXT NOT NULL,
	sentiment   TEXT NOT NULL CHECK (sentiment IN ('positive', 'negative')),
	confidence  DOUBLE PRECISION NOT NULL CHECK (confidence >= 0 AND confidence <= 1),
	"timestamp" TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

const (
	// schemaLockID is a PostgreSQL advisory lock ID for coordinating schema setup.
	// Value: 0x67616d657276 ("gamerv" in ASCII hex)
	schemaLockID             = 0x67616d657276
	schemaLockReleaseTimeout = 5 * time.Second
)

// Connect opens a pool and pings it. When m is non-nil every statement is
// traced into it.
func Connect(ctx context.Context, databaseURL string, m *metrics.StoreMetrics) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	if m != nil {
		poolCfg.ConnConfig.Tracer = &queryTracer{metrics: m}
	}

	slog.Info("Database SSL mode", "sslmode", extractSSLMode(databaseURL))

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("Database connected", "min_conns", poolCfg.MinConns, "max_conns", poolCfg.MaxConns)
	return pool, nil
}

func extractSSLMode(databaseURL string) string {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "unknown"
	}
	mode := strings.ToLower(u.Query().Get("sslmode"))
	if mode == "" {
		return "prefer (default)"
	}
	return mode
}

// EnsureSchema creates the reviews table if it does not exist. Concurrent
// starters serialize on an advisory lock.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection for schema setup: %w", err)
	}
	defer conn.Release()

	release, err := schemaLock(ctx, conn.Conn(), schemaLockReleaseTimeout)
	if err != nil {
		return err
	}
	defer release()

	if _, err := conn.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create reviews table: %w", err)
	}
	return nil
}

func schemaLock(ctx context.Context, conn *pgx.Conn, releaseTimeout time.Duration) (func(), error) {
	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", schemaLockID); err != nil {
		return nil, fmt.Errorf("failed to acquire schema lock: %w", err)
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()

		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", schemaLockID); err != nil {
			slog.Error("Failed to release schema lock", "error", err)
		}
	}, nil
}
