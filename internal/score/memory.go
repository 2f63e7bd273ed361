package score

import (
	"context"
	"sync"

	"attimuite/internal/domain"
)

// MemoryStore keeps the score in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	score domain.Score
	saved bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(ctx context.Context) (domain.Score, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.saved {
		return domain.Score{}, ErrNotFound
	}
	return m.score, nil
}

func (m *MemoryStore) Save(ctx context.Context, s domain.Score) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.score = s.Normalize()
	m.saved = true
	return nil
}
