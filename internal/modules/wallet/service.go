// Package wallet owns diamond balance mutations. Every mutation is a single
// atomic increment or decrement against the backing store so concurrent
// sessions never lose updates.
package wallet

import (
	"context"
	"errors"
)

// ErrInsufficientFunds is returned when a deduction exceeds the balance
var ErrInsufficientFunds = errors.New("insufficient funds")

// Service defines wallet operations. Implementations must apply mutations
// atomically (no read-modify-write from caller memory).
type Service interface {
	// GetBalance returns the user's current balance
	GetBalance(ctx context.Context, userID int64) (int64, error)

	// DeductBalance atomically subtracts amount; fails with
	// ErrInsufficientFunds when the balance would go negative.
	// Returns the new balance.
	DeductBalance(ctx context.Context, userID int64, amount int64, reason string) (int64, error)

	// AddBalance atomically adds amount and returns the new balance
	AddBalance(ctx context.Context, userID int64, amount int64, reason string) (int64, error)
}
