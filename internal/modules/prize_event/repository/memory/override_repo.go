package memory

import (
	"context"
	"sync"
)

// OverrideRepository implements domain.OverrideRepository in memory
type OverrideRepository struct {
	overrides map[int64][]string // roundID -> item names, order preserved
	mu        sync.RWMutex
}

// NewOverrideRepository creates a new memory override repository
func NewOverrideRepository() *OverrideRepository {
	return &OverrideRepository{
		overrides: make(map[int64][]string),
	}
}

func (r *OverrideRepository) Get(ctx context.Context, roundID int64) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names, ok := r.overrides[roundID]
	if !ok {
		return nil, nil
	}
	out := make([]string, len(names))
	copy(out, names)
	return out, nil
}

func (r *OverrideRepository) Set(ctx context.Context, roundID int64, items []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := make([]string, len(items))
	copy(stored, items)
	r.overrides[roundID] = stored
	return nil
}

func (r *OverrideRepository) Delete(ctx context.Context, roundID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.overrides, roundID)
	return nil
}
