package storage

import (
	"context"
	"sync"

	"github.com/sankalpiq/voice-agent/internal/models"
)

// MemoryStore holds registrations in memory for local testing
type MemoryStore struct {
	name string
	err  error

	mu   sync.RWMutex
	rows []models.Record
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore(name string) *MemoryStore {
	if name == "" {
		name = "memory"
	}
	return &MemoryStore{name: name}
}

// NewFailingStore returns a store whose appends always fail with err
func NewFailingStore(name string, err error) *MemoryStore {
	s := NewMemoryStore(name)
	s.err = err
	return s
}

func (m *MemoryStore) Name() string { return m.name }

func (m *MemoryStore) Append(ctx context.Context, rec models.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.err != nil {
		return m.err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, rec)
	return nil
}

// Records returns a copy of everything appended so far
func (m *MemoryStore) Records() []models.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Record(nil), m.rows...)
}
