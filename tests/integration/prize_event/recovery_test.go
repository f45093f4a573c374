package prizeevent_test

import (
	"context"
	"testing"
	"time"

	"github.com/jiyoung145900-png/daisy-vip/internal/modules/prize_event/domain"
)

func TestRecoveryAfterDowntime(t *testing.T) {
	stores := NewTestStores()
	clock := NewTestClock(MidRound())

	// 1. First process: a wager is placed, then the process dies before the
	// round settles.
	first := NewTestEngine(stores, clock)
	wagerUC := NewTestWagerUseCase(stores, first)

	ctx := context.Background()
	roundID := first.CurrentState().Round

	if err := stores.Overrides.Set(ctx, roundID, []string{"rocket", "heart"}); err != nil {
		t.Fatalf("Set override failed: %v", err)
	}
	stores.Wallet.SetBalance(1001, 1000)
	if _, err := wagerUC.PlaceWager(ctx, 1001, []string{"rocket", "heart"}, 100); err != nil {
		t.Fatalf("PlaceWager failed: %v", err)
	}

	// 2. Downtime: several rounds pass with no engine running.
	clock.Advance(5 * 65 * time.Second)

	// 3. Second process: startup reconciliation settles the stale wager
	// through the same code path live settlement uses.
	second := NewTestEngine(stores, clock)
	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go second.Run(runCtx)

	waitForBalance(t, stores, 1001, 1000-200+800)

	entry, err := stores.Ledger.GetByUserRound(ctx, 1001, roundID)
	if err != nil {
		t.Fatalf("GetByUserRound failed: %v", err)
	}
	if entry == nil {
		t.Fatal("Expected ledger entry after recovery")
	}
	if entry.Source != domain.SourceRecovery {
		t.Errorf("Expected source %q, got %q", domain.SourceRecovery, entry.Source)
	}
	if entry.Payout != 800 {
		t.Errorf("Expected payout 800, got %d", entry.Payout)
	}

	pending, _ := stores.Wagers.Get(ctx, 1001)
	if pending != nil {
		t.Error("Expected wager to be cleared by recovery")
	}
}

func TestRecoveryBackfillsOutcomeLog(t *testing.T) {
	stores := NewTestStores()
	clock := NewTestClock(MidRound())

	// Seed one logged round so the log is non-empty, then simulate downtime.
	first := NewTestEngine(stores, clock)
	ctx := context.Background()
	seedRound := first.CurrentState().Round - 1
	if _, err := first.SettleRound(ctx, seedRound, 9999); err != nil {
		t.Fatalf("Seed settle failed: %v", err)
	}

	clock.Advance(10 * 65 * time.Second)

	second := NewTestEngine(stores, clock)
	if err := second.BackfillOutcomes(ctx); err != nil {
		t.Fatalf("BackfillOutcomes failed: %v", err)
	}

	current := second.CurrentState().Round
	for r := seedRound; r < current; r++ {
		rec, err := stores.Outcomes.Get(ctx, r)
		if err != nil {
			t.Fatalf("Get outcome failed: %v", err)
		}
		if rec == nil {
			t.Errorf("Round %d: expected backfilled outcome", r)
		}
	}
}

func TestRecoveryIsHarmlessWhenNothingPending(t *testing.T) {
	stores := NewTestStores()
	clock := NewTestClock(MidRound())

	eng := NewTestEngine(stores, clock)
	ctx := context.Background()

	if err := eng.Reconcile(ctx); err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	latest, err := stores.Outcomes.LatestRound(ctx)
	if err != nil {
		t.Fatalf("LatestRound failed: %v", err)
	}
	if latest != 0 {
		t.Errorf("Expected untouched outcome log, latest round %d", latest)
	}
}
