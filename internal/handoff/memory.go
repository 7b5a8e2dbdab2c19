package handoff

import (
	"context"
	"sync"
	"time"

	"github.com/Lllllllleong/pdfsplitflow/internal/models"
)

type memoryEntry struct {
	result  models.SplitResult
	created time.Time
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]memoryEntry
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now, entries: make(map[string]memoryEntry)}
}

func (m *MemoryStore) Put(_ context.Context, token string, result models.SplitResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[token] = memoryEntry{result: result, created: m.now()}
	return nil
}

func (m *MemoryStore) Take(_ context.Context, token string) (*models.SplitResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[token]
	if !ok {
		return nil, ErrNotFound
	}
	delete(m.entries, token)
	return &e.result, nil
}

func (m *MemoryStore) Sweep(_ context.Context, olderThan time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for token, e := range m.entries {
		if e.created.Before(olderThan) {
			delete(m.entries, token)
			removed++
		}
	}
	return removed, nil
}
