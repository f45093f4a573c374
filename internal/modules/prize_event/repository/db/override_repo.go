package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jiyoung145900-png/daisy-vip/internal/modules/prize_event/domain"
)

// OverrideRepository implements domain.OverrideRepository over postgres
type OverrideRepository struct {
	db *gorm.DB
}

// NewOverrideRepository creates a new override repository
func NewOverrideRepository(db *gorm.DB) *OverrideRepository {
	return &OverrideRepository{db: db}
}

func (r *OverrideRepository) Get(ctx context.Context, roundID int64) ([]string, error) {
	var override domain.Override
	err := r.db.WithContext(ctx).Where("round_id = ?", roundID).First(&override).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return override.ItemNames(), nil
}

func (r *OverrideRepository) Set(ctx context.Context, roundID int64, items []string) error {
	override := domain.NewOverride(roundID, items)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "round_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"items", "created_at"}),
		}).
		Create(override).Error
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *OverrideRepository) Delete(ctx context.Context, roundID int64) error {
	err := r.db.WithContext(ctx).
		Where("round_id = ?", roundID).
		Delete(&domain.Override{}).Error
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}
