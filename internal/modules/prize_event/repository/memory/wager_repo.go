// Package memory provides in-memory repositories for the prize event module,
// used by tests and by the monolith when no Redis is configured.
package memory

import (
	"context"
	"sync"

	"github.com/jiyoung145900-png/daisy-vip/internal/modules/prize_event/domain"
)

// WagerRepository implements domain.WagerRepository in memory
type WagerRepository struct {
	wagers map[int64]*domain.Wager // userID -> pending wager
	mu     sync.RWMutex
}

// NewWagerRepository creates a new memory wager repository
func NewWagerRepository() *WagerRepository {
	return &WagerRepository{
		wagers: make(map[int64]*domain.Wager),
	}
}

func (r *WagerRepository) Save(ctx context.Context, wager *domain.Wager) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Save-if-absent under the write lock; concurrent placements race to
	// this point and exactly one wins.
	if _, exists := r.wagers[wager.UserID]; exists {
		return domain.ErrAlreadyPending
	}
	r.wagers[wager.UserID] = wager
	return nil
}

func (r *WagerRepository) Get(ctx context.Context, userID int64) (*domain.Wager, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.wagers[userID], nil
}

func (r *WagerRepository) Clear(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.wagers, userID)
	return nil
}

func (r *WagerRepository) PendingForRound(ctx context.Context, roundID int64) ([]*domain.Wager, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*domain.Wager, 0)
	for _, w := range r.wagers {
		if w.RoundID == roundID {
			matched = append(matched, w)
		}
	}
	return matched, nil
}

func (r *WagerRepository) AllPending(ctx context.Context) ([]*domain.Wager, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*domain.Wager, 0, len(r.wagers))
	for _, w := range r.wagers {
		all = append(all, w)
	}
	return all, nil
}
