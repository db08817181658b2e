package transaction

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryRepository keeps transactions in process memory. It is used when no
// database is configured and in tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]Transaction
	now   func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		items: make(map[string]Transaction),
		now:   time.Now,
	}
}

func (m *MemoryRepository) Save(_ context.Context, t *Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.items[t.ID]; exists {
		return fmt.Errorf("save transaction %s: duplicate id", t.ID)
	}

	now := m.now()
	t.CreatedAt = now
	t.UpdatedAt = now
	m.items[t.ID] = *t
	return nil
}

func (m *MemoryRepository) Retrieve(_ context.Context, id string) (*Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &t, nil
}

func (m *MemoryRepository) UpdateStatus(_ context.Context, t *Transaction, previous Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.items[t.ID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, t.ID)
	}
	if stored.Status != previous {
		return fmt.Errorf("%w: %s expected status %s", ErrConcurrentUpdate, t.ID, previous)
	}

	stored.Status = t.Status
	stored.UpdatedAt = m.now()
	t.UpdatedAt = stored.UpdatedAt
	m.items[t.ID] = stored
	return nil
}
