package usecase

import (
	"context"
	"fmt"
	"math"

	"github.com/jiyoung145900-png/daisy-vip/internal/modules/prize_event/domain"
)

// HistoryUseCase serves the global outcome log, per-user ledgers and
// item win-rate statistics.
type HistoryUseCase struct {
	outcomes domain.OutcomeRepository
	ledger   domain.LedgerRepository
	catalog  domain.Catalog
}

// NewHistoryUseCase creates a new history use case
func NewHistoryUseCase(
	outcomes domain.OutcomeRepository,
	ledger domain.LedgerRepository,
	catalog domain.Catalog,
) *HistoryUseCase {
	return &HistoryUseCase{
		outcomes: outcomes,
		ledger:   ledger,
		catalog:  catalog,
	}
}

// GlobalHistory returns the latest logged outcomes, newest first
func (uc *HistoryUseCase) GlobalHistory(ctx context.Context, limit int) ([]*domain.OutcomeRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	records, err := uc.outcomes.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read outcome history: %w", err)
	}
	return records, nil
}

// UserLedger returns a user's latest settlement entries, newest first
func (uc *HistoryUseCase) UserLedger(ctx context.Context, userID int64, limit int) ([]*domain.LedgerEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	entries, err := uc.ledger.Recent(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	return entries, nil
}

// Stats returns each catalog item's share of recent winning slots as a
// rounded percentage. Two slots per round; items absent from history map
// to zero.
func (uc *HistoryUseCase) Stats(ctx context.Context, limit int) (map[string]int, error) {
	records, err := uc.GlobalHistory(ctx, limit)
	if err != nil {
		return nil, err
	}

	stats := make(map[string]int, len(uc.catalog))
	for _, item := range uc.catalog {
		stats[item.Name] = 0
	}

	totalSlots := len(records) * 2
	if totalSlots == 0 {
		return stats, nil
	}

	counts := make(map[string]int)
	for _, rec := range records {
		counts[rec.FirstName]++
		counts[rec.SecondName]++
	}

	for _, item := range uc.catalog {
		stats[item.Name] = int(math.Round(float64(counts[item.Name]) / float64(totalSlots) * 100))
	}
	return stats, nil
}
