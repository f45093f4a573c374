package usecase

import (
	"context"
	"fmt"

	"github.com/jiyoung145900-png/daisy-vip/internal/modules/prize_event/domain"
	"github.com/jiyoung145900-png/daisy-vip/internal/modules/prize_event/engine"
	"github.com/jiyoung145900-png/daisy-vip/pkg/logger"
)

// OverrideUseCase handles administrator-forced round results. Overrides may
// only be created or removed for rounds whose outcome has not been logged
// yet; once consumed they are immutable history.
type OverrideUseCase struct {
	overrides domain.OverrideRepository
	outcomes  domain.OutcomeRepository
	eng       *engine.Engine
	catalog   domain.Catalog
}

// NewOverrideUseCase creates a new override use case
func NewOverrideUseCase(
	overrides domain.OverrideRepository,
	outcomes domain.OutcomeRepository,
	eng *engine.Engine,
	catalog domain.Catalog,
) *OverrideUseCase {
	return &OverrideUseCase{
		overrides: overrides,
		outcomes:  outcomes,
		eng:       eng,
		catalog:   catalog,
	}
}

// SetOverride forces the result of a not-yet-closed round
func (uc *OverrideUseCase) SetOverride(ctx context.Context, roundID int64, items []string) error {
	if err := domain.ValidateItems(items, uc.catalog); err != nil {
		return err
	}

	st := uc.eng.CurrentState()
	if roundID < st.Round || (roundID == st.Round && st.IsSettling) {
		// Inside the settling window the resolver may already be running
		// for this round; only rounds that cannot have started resolution
		// accept overrides.
		return domain.ErrRoundClosed
	}

	rec, err := uc.outcomes.Get(ctx, roundID)
	if err != nil {
		return fmt.Errorf("failed to check outcome log: %w", err)
	}
	if rec != nil {
		return domain.ErrRoundClosed
	}

	if err := uc.overrides.Set(ctx, roundID, items); err != nil {
		return fmt.Errorf("failed to store override: %w", err)
	}

	logger.Info(ctx).
		Int64("round_id", roundID).
		Strs("items", items).
		Msg("Override recorded")
	return nil
}

// DeleteOverride cancels an override before it is consumed
func (uc *OverrideUseCase) DeleteOverride(ctx context.Context, roundID int64) error {
	rec, err := uc.outcomes.Get(ctx, roundID)
	if err != nil {
		return fmt.Errorf("failed to check outcome log: %w", err)
	}
	if rec != nil {
		return domain.ErrRoundClosed
	}

	if err := uc.overrides.Delete(ctx, roundID); err != nil {
		return fmt.Errorf("failed to delete override: %w", err)
	}

	logger.Info(ctx).Int64("round_id", roundID).Msg("Override removed")
	return nil
}
