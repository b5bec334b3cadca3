package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS settings (
		name       TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS drafts (
		draft_key  TEXT PRIMARY KEY,
		body       TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS sync_runs (
		id             UUID PRIMARY KEY,
		session_id     UUID NOT NULL,
		total          INTEGER NOT NULL,
		created        INTEGER NOT NULL,
		failed_index   INTEGER NOT NULL,
		failed_summary TEXT NOT NULL DEFAULT '',
		message        TEXT NOT NULL DEFAULT '',
		results        JSONB NOT NULL DEFAULT '[]',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS sync_runs_session_idx ON sync_runs (session_id, created_at)`,
}

// Migrate creates the tables the service needs if they are missing.
func (s *Store) Migrate(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
