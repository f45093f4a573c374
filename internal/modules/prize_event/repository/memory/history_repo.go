package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jiyoung145900-png/daisy-vip/internal/modules/prize_event/domain"
)

// OutcomeRepository implements domain.OutcomeRepository in memory
type OutcomeRepository struct {
	records map[int64]*domain.OutcomeRecord
	mu      sync.RWMutex
}

// NewOutcomeRepository creates a new memory outcome repository
func NewOutcomeRepository() *OutcomeRepository {
	return &OutcomeRepository{
		records: make(map[int64]*domain.OutcomeRecord),
	}
}

func (r *OutcomeRepository) Get(ctx context.Context, roundID int64) (*domain.OutcomeRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.records[roundID], nil
}

func (r *OutcomeRepository) Create(ctx context.Context, record *domain.OutcomeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// First writer wins; a duplicate append leaves the log unchanged.
	if _, exists := r.records[record.RoundID]; exists {
		return nil
	}
	r.records[record.RoundID] = record
	return nil
}

func (r *OutcomeRepository) Recent(ctx context.Context, limit int) ([]*domain.OutcomeRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*domain.OutcomeRecord, 0, len(r.records))
	for _, rec := range r.records {
		all = append(all, rec)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].RoundID > all[j].RoundID })

	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *OutcomeRepository) LatestRound(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest int64
	for roundID := range r.records {
		if roundID > latest {
			latest = roundID
		}
	}
	return latest, nil
}

// LedgerRepository implements domain.LedgerRepository in memory
type LedgerRepository struct {
	entries map[int64][]*domain.LedgerEntry // userID -> entries, append order
	mu      sync.RWMutex
}

// NewLedgerRepository creates a new memory ledger repository
func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{
		entries: make(map[int64][]*domain.LedgerEntry),
	}
}

func (r *LedgerRepository) Create(ctx context.Context, entry *domain.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries[entry.UserID] {
		if e.RoundID == entry.RoundID {
			return fmt.Errorf("ledger entry exists for user %d round %d", entry.UserID, entry.RoundID)
		}
	}
	r.entries[entry.UserID] = append(r.entries[entry.UserID], entry)
	return nil
}

func (r *LedgerRepository) GetByUserRound(ctx context.Context, userID, roundID int64) (*domain.LedgerEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.entries[userID] {
		if e.RoundID == roundID {
			return e, nil
		}
	}
	return nil, nil
}

func (r *LedgerRepository) Recent(ctx context.Context, userID int64, limit int) ([]*domain.LedgerEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	own := r.entries[userID]
	out := make([]*domain.LedgerEntry, 0, limit)
	for i := len(own) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, own[i])
	}
	return out, nil
}
