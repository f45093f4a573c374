package wallet

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/jiyoung145900-png/daisy-vip/pkg/logger"
)

// DBService implements Service against the members table. Mutations are
// single UPDATE statements with the balance expression evaluated in the
// database, so concurrent sessions serialize on the row.
type DBService struct {
	db *gorm.DB
}

// NewDBService creates a wallet service over the given database
func NewDBService(db *gorm.DB) *DBService {
	return &DBService{db: db}
}

// GetBalance returns the user's balance
func (s *DBService) GetBalance(ctx context.Context, userID int64) (int64, error) {
	var balance int64
	err := s.db.WithContext(ctx).
		Table("members").
		Select("balance").
		Where("user_id = ?", userID).
		Scan(&balance).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read balance: %w", err)
	}
	return balance, nil
}

// DeductBalance subtracts amount, guarded so the balance never goes negative.
// The guard lives in the WHERE clause: zero rows affected means the funds
// were not there at commit time.
func (s *DBService) DeductBalance(ctx context.Context, userID int64, amount int64, reason string) (int64, error) {
	if amount <= 0 {
		return 0, errors.New("amount must be positive")
	}

	res := s.db.WithContext(ctx).
		Table("members").
		Where("user_id = ? AND balance >= ?", userID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return 0, fmt.Errorf("failed to deduct balance: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, ErrInsufficientFunds
	}

	logger.Debug(ctx).
		Int64("user_id", userID).
		Int64("amount", amount).
		Str("reason", reason).
		Msg("Balance deducted")

	return s.GetBalance(ctx, userID)
}

// AddBalance adds amount to the balance
func (s *DBService) AddBalance(ctx context.Context, userID int64, amount int64, reason string) (int64, error) {
	if amount < 0 {
		return 0, errors.New("amount must not be negative")
	}
	if amount == 0 {
		// Zero credits are recorded by the caller's ledger, nothing to move.
		return s.GetBalance(ctx, userID)
	}

	res := s.db.WithContext(ctx).
		Table("members").
		Where("user_id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", amount))
	if res.Error != nil {
		return 0, fmt.Errorf("failed to add balance: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, fmt.Errorf("user %d not found", userID)
	}

	logger.Debug(ctx).
		Int64("user_id", userID).
		Int64("amount", amount).
		Str("reason", reason).
		Msg("Balance credited")

	return s.GetBalance(ctx, userID)
}
