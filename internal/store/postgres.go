package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

const createWidgetStateTable = `
CREATE TABLE IF NOT EXISTS widget_state (
    key        TEXT        PRIMARY KEY,
    value      BYTEA       NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// PgxPool is the slice of a pgx pool the store needs.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists snapshot state in a single key-value table, for
// hosts that already run the wallet backend's postgres.
type PostgresStore struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewPostgresStore(pool PgxPool, tracer trace.Tracer) *PostgresStore {
	return &PostgresStore{pool: pool, tracer: tracer}
}

func (s *PostgresStore) RunMigrations(ctx context.Context) error {
	_, span := s.tracer.Start(ctx, "widget-store.run-migrations")
	defer span.End()

	_, err := s.pool.Exec(ctx, createWidgetStateTable)
	return err
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	_, span := s.tracer.Start(ctx, "widget-store.get")
	defer span.End()

	var value []byte
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM widget_state WHERE key = $1`, key,
	).Scan(&value)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	_, span := s.tracer.Start(ctx, "widget-store.set")
	defer span.End()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO widget_state (key, value, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET
		     value = EXCLUDED.value,
		     updated_at = now()`,
		key, value,
	)
	return err
}
