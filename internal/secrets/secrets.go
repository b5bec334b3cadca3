// Package secrets holds the completion-service API key.
package secrets

import (
	"context"
	"strings"
	"sync"

	"github.com/MikeSquared-Agency/syllabi/internal/apperr"
)

// KeyPrefix is the prefix every Groq API key carries.
const KeyPrefix = "gsk_"

// Store gets and sets the single API key value.
type Store interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, key string) error
}

// ValidateKey checks the key's shape before it is accepted.
func ValidateKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", apperr.Input("Please enter an API key")
	}
	if !strings.HasPrefix(key, KeyPrefix) {
		return "", apperr.Input("Invalid API key format. Groq keys start with %q", KeyPrefix)
	}
	return key, nil
}

// Memory is an in-process Store.
type Memory struct {
	mu  sync.RWMutex
	key string
}

// NewMemory returns a Memory store seeded with key, which may be empty.
// A seed that fails validation is ignored.
func NewMemory(key string) *Memory {
	m := &Memory{}
	if k, err := ValidateKey(key); err == nil {
		m.key = k
	}
	return m
}

func (m *Memory) Get(context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.key, nil
}

func (m *Memory) Set(_ context.Context, key string) error {
	k, err := ValidateKey(key)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.key = k
	m.mu.Unlock()
	return nil
}

// Configured reports whether s currently holds a key.
func Configured(ctx context.Context, s Store) (bool, error) {
	k, err := s.Get(ctx)
	if err != nil {
		return false, err
	}
	return k != "", nil
}
