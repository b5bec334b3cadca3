package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/syllabi/internal/drafts"
)

// Drafts exposes the drafts table as a drafts.Store.
func (s *Store) Drafts() drafts.Store {
	return draftStore{s}
}

type draftStore struct {
	s *Store
}

func (d draftStore) Get(ctx context.Context, key string) (string, bool, error) {
	var body string
	err := d.s.pool.QueryRow(ctx, `SELECT body FROM drafts WHERE draft_key = $1`, key).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read draft: %w", err)
	}
	return body, true, nil
}

func (d draftStore) Set(ctx context.Context, key, text string) error {
	_, err := d.s.pool.Exec(ctx, `
		INSERT INTO drafts (draft_key, body, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (draft_key) DO UPDATE SET body = EXCLUDED.body, updated_at = now()`,
		key, text,
	)
	if err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// Remove deletes the draft for key; a missing draft is not an error.
func (d draftStore) Remove(ctx context.Context, key string) error {
	if _, err := d.s.pool.Exec(ctx, `DELETE FROM drafts WHERE draft_key = $1`, key); err != nil {
		return fmt.Errorf("remove draft: %w", err)
	}
	return nil
}
