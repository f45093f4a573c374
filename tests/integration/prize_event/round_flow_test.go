package prizeevent_test

import (
	"context"
	"testing"
	"time"

	"github.com/jiyoung145900-png/daisy-vip/internal/modules/prize_event/engine"
)

func TestFullRoundFlow(t *testing.T) {
	stores := NewTestStores()
	clock := NewTestClock(MidRound())
	eng := NewTestEngine(stores, clock)
	wagerUC := NewTestWagerUseCase(stores, eng)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan engine.Event, 100)
	eng.RegisterEventHandler(func(event engine.Event) {
		events <- event
	})

	go eng.Run(ctx)
	time.Sleep(20 * time.Millisecond)

	roundID := eng.CurrentState().Round

	// Force the result so payouts are predictable.
	if err := stores.Overrides.Set(ctx, roundID, []string{"rocket", "heart"}); err != nil {
		t.Fatalf("Set override failed: %v", err)
	}

	// 1. Place wagers covering the whole paytable
	testCases := []struct {
		userID int64
		items  []string
		stake  int64
	}{
		{1001, []string{"rocket"}, 100},         // single hit: +200
		{1002, []string{"rose"}, 200},           // single miss: 0
		{1003, []string{"rocket", "rose"}, 150}, // one of two hits: push 300
		{1004, []string{"rocket", "heart"}, 50}, // both hit: 400
	}

	for _, tc := range testCases {
		stores.Wallet.SetBalance(tc.userID, 1000)
		if _, err := wagerUC.PlaceWager(ctx, tc.userID, tc.items, tc.stake); err != nil {
			t.Fatalf("PlaceWager failed for user %d: %v", tc.userID, err)
		}
	}

	// 2. Cross the round boundary
	clock.Advance(65 * time.Second)

	// 3. Wait for the settlement broadcast
	waitForSettled(t, events, roundID)

	// 4. Verify balances
	expectedBalances := map[int64]int64{
		1001: 1000 - 100 + 200,       // won double
		1002: 1000 - 200,             // lost
		1003: 1000 - 300 + 300,       // push
		1004: 1000 - 100 + 100*4,     // quadruple on total stake
	}

	for userID, expected := range expectedBalances {
		waitForBalance(t, stores, userID, expected)
	}

	// 5. Every wager is consumed and every user has a ledger row
	for _, tc := range testCases {
		pending, err := stores.Wagers.Get(ctx, tc.userID)
		if err != nil {
			t.Fatalf("Get wager failed for user %d: %v", tc.userID, err)
		}
		if pending != nil {
			t.Errorf("User %d: expected wager to be cleared", tc.userID)
		}

		entry, err := stores.Ledger.GetByUserRound(ctx, tc.userID, roundID)
		if err != nil {
			t.Fatalf("GetByUserRound failed for user %d: %v", tc.userID, err)
		}
		if entry == nil {
			t.Errorf("User %d: expected a ledger entry for round %d", tc.userID, roundID)
		}
	}

	// 6. The outcome is in the global log
	rec, err := stores.Outcomes.Get(ctx, roundID)
	if err != nil {
		t.Fatalf("Get outcome failed: %v", err)
	}
	if rec == nil {
		t.Fatal("Expected outcome record for settled round")
	}
	if rec.FirstName != "rocket" || rec.SecondName != "heart" {
		t.Errorf("Expected override outcome rocket/heart, got %s/%s", rec.FirstName, rec.SecondName)
	}

	t.Log("✅ Full round flow test passed!")
}

func TestSettlementIsIdempotentAcrossBoundaries(t *testing.T) {
	stores := NewTestStores()
	clock := NewTestClock(MidRound())
	eng := NewTestEngine(stores, clock)
	wagerUC := NewTestWagerUseCase(stores, eng)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan engine.Event, 100)
	eng.RegisterEventHandler(func(event engine.Event) {
		events <- event
	})

	go eng.Run(ctx)
	time.Sleep(20 * time.Millisecond)

	roundID := eng.CurrentState().Round
	stores.Wallet.SetBalance(1001, 1000)
	if err := stores.Overrides.Set(ctx, roundID, []string{"rocket", "heart"}); err != nil {
		t.Fatalf("Set override failed: %v", err)
	}
	if _, err := wagerUC.PlaceWager(ctx, 1001, []string{"rocket"}, 100); err != nil {
		t.Fatalf("PlaceWager failed: %v", err)
	}

	clock.Advance(65 * time.Second)
	waitForSettled(t, events, roundID)
	waitForBalance(t, stores, 1001, 1100)

	// Re-settling the same round by hand changes nothing.
	for i := 0; i < 3; i++ {
		result, err := eng.SettleRound(ctx, roundID, 1001)
		if err != nil {
			t.Fatalf("SettleRound failed: %v", err)
		}
		if !result.AlreadySettled {
			t.Error("Expected AlreadySettled on repeat settlement")
		}
	}

	balance, _ := stores.Wallet.GetBalance(ctx, 1001)
	if balance != 1100 {
		t.Errorf("Expected balance 1100 after repeated settlement, got %d", balance)
	}
}

func waitForSettled(t *testing.T, events chan engine.Event, roundID int64) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case event := <-events:
			if event.Type == engine.EventRoundSettled && event.RoundID == roundID {
				return
			}
		case <-timeout:
			t.Fatalf("Timeout waiting for round %d to settle", roundID)
		}
	}
}

func waitForBalance(t *testing.T, stores *TestStores, userID, expected int64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		balance, err := stores.Wallet.GetBalance(context.Background(), userID)
		if err != nil {
			t.Fatalf("GetBalance failed for user %d: %v", userID, err)
		}
		if balance == expected {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	balance, _ := stores.Wallet.GetBalance(context.Background(), userID)
	t.Errorf("User %d: expected final balance %d, got %d", userID, expected, balance)
}
