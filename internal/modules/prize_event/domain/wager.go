// Package domain holds the prize event's core types: catalog items, wagers,
// outcomes, ledger entries and the repository contracts they are stored behind.
package domain

import "time"

// Wager is a user's single pending bet for one round.
// A user holds at most one unsettled wager at a time; wagers are immutable
// once placed and are removed on settlement or cancellation.
type Wager struct {
	UserID       int64     `json:"user_id"`
	RoundID      int64     `json:"round_id"`
	Items        []string  `json:"items"` // 1..2 distinct catalog names
	StakePerItem int64     `json:"stake_per_item"`
	PlacedAt     time.Time `json:"placed_at"`
}

// NewWager creates a wager for the given round
func NewWager(userID, roundID int64, items []string, stakePerItem int64) *Wager {
	return &Wager{
		UserID:       userID,
		RoundID:      roundID,
		Items:        items,
		StakePerItem: stakePerItem,
		PlacedAt:     time.Now(),
	}
}

// TotalStake is stake_per_item × number of items
func (w *Wager) TotalStake() int64 {
	return w.StakePerItem * int64(len(w.Items))
}

// ValidateItems checks count, distinctness and catalog membership
func ValidateItems(items []string, catalog Catalog) error {
	if len(items) < 1 || len(items) > 2 {
		return ErrInvalidItems
	}
	seen := make(map[string]struct{}, len(items))
	for _, name := range items {
		if _, dup := seen[name]; dup {
			return ErrInvalidItems
		}
		seen[name] = struct{}{}
		if !catalog.Contains(name) {
			return ErrInvalidItems
		}
	}
	return nil
}
