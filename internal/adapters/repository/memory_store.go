package repository

import (
	"context"
	"sync"

	"github.com/craftshop/core/internal/domain/entities"
)

// MemoryStore keeps the craft collection in process memory
type MemoryStore struct {
	mu     sync.RWMutex
	crafts []entities.Craft
}

// NewMemoryStore creates a store seeded with a copy of crafts
func NewMemoryStore(crafts ...entities.Craft) *MemoryStore {
	return &MemoryStore{crafts: cloneAll(crafts)}
}

func (s *MemoryStore) Load(ctx context.Context) ([]entities.Craft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.crafts), nil
}

func (s *MemoryStore) Save(ctx context.Context, crafts []entities.Craft) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.crafts = cloneAll(crafts)
	return nil
}

func cloneAll(crafts []entities.Craft) []entities.Craft {
	out := make([]entities.Craft, 0, len(crafts))
	for _, c := range crafts {
		out = append(out, c.Clone())
	}
	return out
}
