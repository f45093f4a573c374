// Package db provides the gorm-backed repositories for the prize event's
// durable records: the outcome log, the wager ledger and overrides.
package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jiyoung145900-png/daisy-vip/internal/modules/prize_event/domain"
)

// OutcomeRepository implements domain.OutcomeRepository over postgres
type OutcomeRepository struct {
	db *gorm.DB
}

// NewOutcomeRepository creates a new outcome repository
func NewOutcomeRepository(db *gorm.DB) *OutcomeRepository {
	return &OutcomeRepository{db: db}
}

func (r *OutcomeRepository) Get(ctx context.Context, roundID int64) (*domain.OutcomeRecord, error) {
	var rec domain.OutcomeRecord
	err := r.db.WithContext(ctx).Where("round_id = ?", roundID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return &rec, nil
}

// Create appends an outcome; a concurrent append for the same round leaves
// the first writer's row untouched.
func (r *OutcomeRepository) Create(ctx context.Context, record *domain.OutcomeRecord) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(record).Error
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *OutcomeRepository) Recent(ctx context.Context, limit int) ([]*domain.OutcomeRecord, error) {
	var records []*domain.OutcomeRecord
	err := r.db.WithContext(ctx).
		Order("round_id DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return records, nil
}

func (r *OutcomeRepository) LatestRound(ctx context.Context) (int64, error) {
	var latest int64
	err := r.db.WithContext(ctx).
		Model(&domain.OutcomeRecord{}).
		Select("COALESCE(MAX(round_id), 0)").
		Scan(&latest).Error
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return latest, nil
}
