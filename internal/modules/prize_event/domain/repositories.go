package domain

import "context"

// WagerRepository stores at most one pending wager per user
type WagerRepository interface {
	// Save stores a pending wager keyed by its user. Save is conditional:
	// it fails with ErrAlreadyPending when the user already holds one, so
	// the at-most-one invariant is enforced by the store, not the caller.
	Save(ctx context.Context, wager *Wager) error

	// Get returns the user's pending wager, or nil when none exists
	Get(ctx context.Context, userID int64) (*Wager, error)

	// Clear removes the user's pending wager (no-op when none exists)
	Clear(ctx context.Context, userID int64) error

	// PendingForRound returns all pending wagers placed for the given round
	PendingForRound(ctx context.Context, roundID int64) ([]*Wager, error)

	// AllPending returns every pending wager regardless of round
	AllPending(ctx context.Context) ([]*Wager, error)
}

// OverrideRepository stores administrator-forced results keyed by round
type OverrideRepository interface {
	// Get returns the overridden item names for a round, or nil when none
	Get(ctx context.Context, roundID int64) ([]string, error)

	// Set creates or replaces the override for a round
	Set(ctx context.Context, roundID int64, items []string) error

	// Delete removes the override for a round
	Delete(ctx context.Context, roundID int64) error
}

// OutcomeRepository is the global append-only outcome log
type OutcomeRepository interface {
	// Get returns the logged outcome for a round, or nil when not yet logged
	Get(ctx context.Context, roundID int64) (*OutcomeRecord, error)

	// Create appends an outcome. Appending a round that is already logged
	// must succeed without modifying the existing row (first writer wins).
	Create(ctx context.Context, record *OutcomeRecord) error

	// Recent returns the latest outcomes, newest first
	Recent(ctx context.Context, limit int) ([]*OutcomeRecord, error)

	// LatestRound returns the highest logged round id, 0 when the log is empty
	LatestRound(ctx context.Context) (int64, error)
}

// LedgerRepository is the per-user append-only settlement ledger
type LedgerRepository interface {
	// Create appends a ledger entry; a duplicate (user, round) pair must fail
	Create(ctx context.Context, entry *LedgerEntry) error

	// GetByUserRound returns the entry for a (user, round) pair, or nil
	GetByUserRound(ctx context.Context, userID, roundID int64) (*LedgerEntry, error)

	// Recent returns a user's latest entries, newest first
	Recent(ctx context.Context, userID int64, limit int) ([]*LedgerEntry, error)
}
