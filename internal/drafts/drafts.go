// Package drafts keeps the last syllabus text a user typed so an input field
// can be restored. Nothing in the pipeline reads it.
package drafts

import (
	"context"
	"sync"
)

type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, text string) error
	Remove(ctx context.Context, key string) error
}

// Memory is an in-process Store.
type Memory struct {
	mu     sync.RWMutex
	drafts map[string]string
}

func NewMemory() *Memory {
	return &Memory{drafts: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	text, ok := m.drafts[key]
	return text, ok, nil
}

func (m *Memory) Set(_ context.Context, key, text string) error {
	m.mu.Lock()
	m.drafts[key] = text
	m.mu.Unlock()
	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.drafts, key)
	m.mu.Unlock()
	return nil
}
