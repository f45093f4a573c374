package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/jiyoung145900-png/daisy-vip/internal/modules/prize_event/domain"
)

// LedgerRepository implements domain.LedgerRepository over postgres
type LedgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Create appends a ledger entry. The unique (user_id, round_id) index makes
// a duplicate settlement fail here, which the engine treats as already
// settled.
func (r *LedgerRepository) Create(ctx context.Context, entry *domain.LedgerEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("ledger entry exists for user %d round %d: %w", entry.UserID, entry.RoundID, err)
		}
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *LedgerRepository) GetByUserRound(ctx context.Context, userID, roundID int64) (*domain.LedgerEntry, error) {
	var entry domain.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND round_id = ?", userID, roundID).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return &entry, nil
}

func (r *LedgerRepository) Recent(ctx context.Context, userID int64, limit int) ([]*domain.LedgerEntry, error) {
	var entries []*domain.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("round_id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return entries, nil
}
