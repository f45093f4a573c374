package domain

import "errors"

// Placement, cancellation and settlement errors. Compared with errors.Is;
// transient store failures are wrapped around ErrStoreUnavailable so callers
// can distinguish retryable failures from rejections.
var (
	ErrAlreadyPending      = errors.New("wager already pending")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrRoundClosed         = errors.New("round closed for wagering")
	ErrInvalidItems        = errors.New("invalid wager items")
	ErrInvalidStake        = errors.New("stake must be positive")
	ErrStoreUnavailable    = errors.New("store unavailable")
)
