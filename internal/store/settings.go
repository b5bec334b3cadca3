package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/syllabi/internal/secrets"
)

const settingAPIKey = "groq_api_key"

// APIKeys exposes the settings table as a secrets.Store.
func (s *Store) APIKeys() secrets.Store {
	return apiKeyStore{s}
}

type apiKeyStore struct {
	s *Store
}

func (a apiKeyStore) Get(ctx context.Context) (string, error) {
	var key string
	err := a.s.pool.QueryRow(ctx, `SELECT value FROM settings WHERE name = $1`, settingAPIKey).Scan(&key)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read api key: %w", err)
	}
	return key, nil
}

func (a apiKeyStore) Set(ctx context.Context, key string) error {
	key, err := secrets.ValidateKey(key)
	if err != nil {
		return err
	}
	_, err = a.s.pool.Exec(ctx, `
		INSERT INTO settings (name, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		settingAPIKey, key,
	)
	if err != nil {
		return fmt.Errorf("save api key: %w", err)
	}
	return nil
}
