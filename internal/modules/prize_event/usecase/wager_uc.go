// Package usecase implements the business logic for the prize event module.
package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/jiyoung145900-png/daisy-vip/internal/modules/prize_event/domain"
	"github.com/jiyoung145900-png/daisy-vip/internal/modules/prize_event/engine"
	"github.com/jiyoung145900-png/daisy-vip/internal/modules/wallet"
	"github.com/jiyoung145900-png/daisy-vip/pkg/logger"
)

// WagerUseCase handles wager placement and cancellation. Balance debit and
// wager storage are always paired: a failed store refunds the debit, a
// cancellation restores the wager if the refund fails.
type WagerUseCase struct {
	wagers  domain.WagerRepository
	wallet  wallet.Service
	eng     *engine.Engine
	catalog domain.Catalog
}

// NewWagerUseCase creates a new wager use case
func NewWagerUseCase(
	wagers domain.WagerRepository,
	walletSvc wallet.Service,
	eng *engine.Engine,
	catalog domain.Catalog,
) *WagerUseCase {
	return &WagerUseCase{
		wagers:  wagers,
		wallet:  walletSvc,
		eng:     eng,
		catalog: catalog,
	}
}

// PlaceWager commits a wager for the round currently accepting wagers.
// Rejected with ErrRoundClosed inside the settling window, ErrAlreadyPending
// when an unsettled wager exists, ErrInsufficientBalance when the total
// stake exceeds the balance.
func (uc *WagerUseCase) PlaceWager(ctx context.Context, userID int64, items []string, stakePerItem int64) (*domain.Wager, error) {
	ctx = logger.WithFields(ctx, map[string]interface{}{
		"user_id": userID,
	})

	if stakePerItem <= 0 {
		return nil, domain.ErrInvalidStake
	}
	if err := domain.ValidateItems(items, uc.catalog); err != nil {
		return nil, err
	}

	st := uc.eng.CurrentState()
	if st.IsSettling {
		logger.Warn(ctx).
			Int64("round_id", st.Round).
			Int("seconds_left", st.SecondsLeft).
			Msg("Wager rejected inside settling window")
		return nil, domain.ErrRoundClosed
	}

	existing, err := uc.wagers.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending wager: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrAlreadyPending
	}

	wager := domain.NewWager(userID, st.Round, items, stakePerItem)
	total := wager.TotalStake()

	newBalance, err := uc.wallet.DeductBalance(ctx, userID, total, fmt.Sprintf("wager:%d", st.Round))
	if err != nil {
		if errors.Is(err, wallet.ErrInsufficientFunds) {
			return nil, domain.ErrInsufficientBalance
		}
		return nil, fmt.Errorf("failed to deduct stake: %w", err)
	}

	if err := uc.wagers.Save(ctx, wager); err != nil {
		// Debit and store are a pair: undo the debit so no stake leaks.
		if _, rerr := uc.wallet.AddBalance(ctx, userID, total, fmt.Sprintf("wager_refund:%d", st.Round)); rerr != nil {
			logger.Error(ctx).
				Err(rerr).
				Int64("amount", total).
				Msg("Refund after failed wager save also failed")
		}
		// A concurrent placement won the conditional save; this one loses.
		if errors.Is(err, domain.ErrAlreadyPending) {
			return nil, domain.ErrAlreadyPending
		}
		return nil, fmt.Errorf("failed to store wager: %w", err)
	}

	uc.eng.NotifyBalanceChanged(userID, newBalance)

	logger.Info(ctx).
		Int64("round_id", st.Round).
		Strs("items", items).
		Int64("stake_per_item", stakePerItem).
		Int64("total_stake", total).
		Msg("Wager placed")

	return wager, nil
}

// CancelWager removes the user's pending wager and refunds the full stake.
// Only valid while the wager's round is still accepting wagers; returns
// false when no wager exists.
func (uc *WagerUseCase) CancelWager(ctx context.Context, userID int64) (bool, error) {
	ctx = logger.WithFields(ctx, map[string]interface{}{
		"user_id": userID,
	})

	wager, err := uc.wagers.Get(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to load pending wager: %w", err)
	}
	if wager == nil {
		return false, nil
	}

	st := uc.eng.CurrentState()
	if wager.RoundID < st.Round || (wager.RoundID == st.Round && st.IsSettling) {
		// The outcome may already be mid-resolution; settlement owns this
		// wager now.
		return false, domain.ErrRoundClosed
	}

	if err := uc.wagers.Clear(ctx, userID); err != nil {
		return false, fmt.Errorf("failed to clear wager: %w", err)
	}

	total := wager.TotalStake()
	newBalance, err := uc.wallet.AddBalance(ctx, userID, total, fmt.Sprintf("wager_cancel:%d", wager.RoundID))
	if err != nil {
		// Put the wager back so the stake is not lost; the caller retries.
		if serr := uc.wagers.Save(ctx, wager); serr != nil {
			logger.Error(ctx).
				Err(serr).
				Int64("amount", total).
				Msg("Failed to restore wager after refund failure")
		}
		return false, fmt.Errorf("failed to refund stake: %w", err)
	}

	uc.eng.NotifyBalanceChanged(userID, newBalance)

	logger.Info(ctx).
		Int64("round_id", wager.RoundID).
		Int64("refund", total).
		Msg("Wager cancelled")

	return true, nil
}

// GetPendingWager returns the user's pending wager, or nil
func (uc *WagerUseCase) GetPendingWager(ctx context.Context, userID int64) (*domain.Wager, error) {
	return uc.wagers.Get(ctx, userID)
}
