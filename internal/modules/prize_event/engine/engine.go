package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jiyoung145900-png/daisy-vip/internal/modules/prize_event/domain"
	"github.com/jiyoung145900-png/daisy-vip/internal/modules/wallet"
	"github.com/jiyoung145900-png/daisy-vip/pkg/logger"
)

// BackfillDepth bounds how many missed rounds the outcome log is filled for
// after downtime.
const BackfillDepth = 30

// EventType identifies an engine event
type EventType string

// Engine event types
const (
	EventRoundStarted EventType = "round_started"
	EventDrawing      EventType = "drawing"
	EventRoundSettled EventType = "round_settled"
)

// Event is pushed to registered handlers as rounds progress
type Event struct {
	Type        EventType            `json:"type"`
	RoundID     int64                `json:"round_id"`
	SecondsLeft int                  `json:"seconds_left"`
	Outcome     []domain.OutcomeItem `json:"outcome,omitempty"`
}

// EventHandler handles engine events
type EventHandler func(event Event)

// BalanceHandler observes balance changes caused by settlement
type BalanceHandler func(userID, newBalance int64)

// SettlementResult reports what settling a round did for one user
type SettlementResult struct {
	RoundID        int64
	Outcome        []domain.OutcomeItem
	Entry          *domain.LedgerEntry // nil when the user held no wager for the round
	AlreadySettled bool
}

// Engine settles prize rounds. A fixed-interval tick derives the round from
// the clock; crossing a round boundary triggers resolution and settlement of
// every pending wager for closed rounds. Settlement is idempotent per
// (user, round) and the recovery path reuses the exact same code.
type Engine struct {
	schedule Schedule
	resolver *Resolver
	wagers   domain.WagerRepository
	outcomes domain.OutcomeRepository
	ledger   domain.LedgerRepository
	wallet   wallet.Service

	now          func() time.Time
	tickInterval time.Duration
	inFlight     atomic.Bool

	mu              sync.RWMutex
	eventHandlers   []EventHandler
	balanceHandlers []BalanceHandler
}

// New creates an engine over the given stores
func New(
	schedule Schedule,
	resolver *Resolver,
	wagers domain.WagerRepository,
	outcomes domain.OutcomeRepository,
	ledger domain.LedgerRepository,
	walletSvc wallet.Service,
) *Engine {
	return &Engine{
		schedule:     schedule,
		resolver:     resolver,
		wagers:       wagers,
		outcomes:     outcomes,
		ledger:       ledger,
		wallet:       walletSvc,
		now:          time.Now,
		tickInterval: time.Second,
	}
}

// SetNowFunc replaces the clock source (tests drive time through this)
func (e *Engine) SetNowFunc(now func() time.Time) {
	e.now = now
}

// SetTickInterval replaces the tick interval (tests shorten it)
func (e *Engine) SetTickInterval(d time.Duration) {
	e.tickInterval = d
}

// Schedule returns the engine's round timetable
func (e *Engine) Schedule() Schedule {
	return e.schedule
}

// CurrentState derives the round state for the present instant
func (e *Engine) CurrentState() RoundState {
	return e.schedule.StateAt(e.now())
}

// RegisterEventHandler registers an engine event handler
func (e *Engine) RegisterEventHandler(handler EventHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.eventHandlers = append(e.eventHandlers, handler)
}

// OnBalanceChanged registers a balance change observer
func (e *Engine) OnBalanceChanged(handler BalanceHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.balanceHandlers = append(e.balanceHandlers, handler)
}

func (e *Engine) emitEvent(event Event) {
	e.mu.RLock()
	handlers := make([]EventHandler, len(e.eventHandlers))
	copy(handlers, e.eventHandlers)
	e.mu.RUnlock()

	for _, handler := range handlers {
		go handler(event)
	}
}

// NotifyBalanceChanged publishes a balance change to registered observers.
// Settlement calls it internally; wager placement and cancellation flows call
// it so every balance mutation goes through the same hook.
func (e *Engine) NotifyBalanceChanged(userID, newBalance int64) {
	e.mu.RLock()
	handlers := make([]BalanceHandler, len(e.balanceHandlers))
	copy(handlers, e.balanceHandlers)
	e.mu.RUnlock()

	for _, handler := range handlers {
		go handler(userID, newBalance)
	}
}

// Run reconciles stale wagers, backfills the outcome log, then drives the
// live tick loop until the context is cancelled.
func (e *Engine) Run(ctx context.Context) {
	logger.Info(ctx).Msg("🎰 Prize engine starting")

	if err := e.Reconcile(ctx); err != nil {
		// Stale wagers stay pending and are retried on later boundaries.
		logger.Error(ctx).Err(err).Msg("Startup reconciliation incomplete")
	}
	if err := e.BackfillOutcomes(ctx); err != nil {
		logger.Error(ctx).Err(err).Msg("Outcome backfill incomplete")
	}

	ticker := time.NewTicker(e.tickInterval)
	defer ticker.Stop()

	last := e.CurrentState()
	lastRound := last.Round
	wasSettling := last.IsSettling
	e.emitEvent(Event{Type: EventRoundStarted, RoundID: last.Round, SecondsLeft: last.SecondsLeft})

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx).Msg("🛑 Prize engine stopping")
			return
		case <-ticker.C:
		}

		st := e.CurrentState()

		if st.IsSettling && !wasSettling {
			e.emitEvent(Event{Type: EventDrawing, RoundID: st.Round, SecondsLeft: st.SecondsLeft})
		}
		wasSettling = st.IsSettling

		// Settlement keys off the round-number transition, never the
		// countdown reaching zero, so a missed tick or clock drift cannot
		// skip a round.
		if st.Round > lastRound {
			closed := lastRound
			if e.inFlight.CompareAndSwap(false, true) {
				go func() {
					defer e.inFlight.Store(false)
					e.settleClosedRound(context.Background(), closed)
				}()
			}
			e.emitEvent(Event{Type: EventRoundStarted, RoundID: st.Round, SecondsLeft: st.SecondsLeft})
		}
		lastRound = st.Round
	}
}

// settleClosedRound logs the closed round's outcome and settles every wager
// pending for it or for any earlier round that failed to settle before.
func (e *Engine) settleClosedRound(ctx context.Context, closedRound int64) {
	ctx = logger.WithFields(ctx, map[string]interface{}{
		"round_id": closedRound,
	})

	outcome, err := e.ensureOutcome(ctx, closedRound)
	if err != nil {
		logger.Error(ctx).Err(err).Msg("Failed to resolve outcome, will retry next round")
		return
	}

	e.emitEvent(Event{Type: EventRoundSettled, RoundID: closedRound, Outcome: outcome.Items()})

	pending, err := e.wagers.AllPending(ctx)
	if err != nil {
		logger.Error(ctx).Err(err).Msg("Failed to list pending wagers")
		return
	}

	settled := 0
	for _, w := range pending {
		if w.RoundID > closedRound {
			continue
		}
		if _, err := e.settle(ctx, w.RoundID, w.UserID, domain.SourceLive); err != nil {
			logger.Error(ctx).
				Err(err).
				Int64("user_id", w.UserID).
				Int64("wager_round", w.RoundID).
				Msg("Settlement failed, wager stays pending")
			continue
		}
		settled++
	}

	logger.Info(ctx).
		Str("outcome_first", outcome.FirstName).
		Str("outcome_second", outcome.SecondName).
		Int("wagers_settled", settled).
		Msg("Round settled")
}

// SettleRound settles the given user's wager for a round, resolving and
// logging the outcome first. Safe to call any number of times.
func (e *Engine) SettleRound(ctx context.Context, roundID, userID int64) (*SettlementResult, error) {
	return e.settle(ctx, roundID, userID, domain.SourceLive)
}

func (e *Engine) settle(ctx context.Context, roundID, userID int64, source string) (*SettlementResult, error) {
	outcome, err := e.ensureOutcome(ctx, roundID)
	if err != nil {
		return nil, err
	}

	result := &SettlementResult{RoundID: roundID, Outcome: outcome.Items()}

	// Idempotency gate: a ledger entry for this (user, round) means the
	// payout already happened, possibly in a previous process.
	existing, err := e.ledger.GetByUserRound(ctx, userID, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to check ledger for user %d round %d: %w", userID, roundID, err)
	}
	if existing != nil {
		result.Entry = existing
		result.AlreadySettled = true
		e.clearIfStale(ctx, userID, roundID)
		return result, nil
	}

	wager, err := e.wagers.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending wager: %w", err)
	}
	if wager == nil || wager.RoundID != roundID {
		return result, nil
	}

	payout := domain.Payout(wager.Items, wager.StakePerItem, outcome.Names())
	entry := domain.NewLedgerEntry(wager, outcome, payout, source)

	// The ledger row goes in before the credit: its unique (user, round)
	// index is what makes a concurrent or replayed settlement a no-op.
	if err := e.ledger.Create(ctx, entry); err != nil {
		if dup, derr := e.ledger.GetByUserRound(ctx, userID, roundID); derr == nil && dup != nil {
			result.Entry = dup
			result.AlreadySettled = true
			e.clearIfStale(ctx, userID, roundID)
			return result, nil
		}
		return nil, fmt.Errorf("failed to append ledger entry: %w", err)
	}

	newBalance, err := e.creditPayout(ctx, userID, roundID, payout)
	if err != nil {
		// The ledger entry exists, so a retry will not re-credit; surface
		// loudly instead of hiding a missing payout.
		logger.Error(ctx).
			Err(err).
			Int64("user_id", userID).
			Int64("round_id", roundID).
			Int64("payout", payout).
			Msg("Payout credit failed after ledger append")
		return nil, fmt.Errorf("failed to credit payout: %w", err)
	}

	if err := e.wagers.Clear(ctx, userID); err != nil {
		logger.Warn(ctx).
			Err(err).
			Int64("user_id", userID).
			Msg("Failed to clear settled wager, will be cleared on next settlement attempt")
	}

	e.NotifyBalanceChanged(userID, newBalance)

	logger.Info(ctx).
		Int64("user_id", userID).
		Int64("round_id", roundID).
		Str("items", entry.ItemsWagered).
		Int64("stake", entry.Stake).
		Int64("payout", payout).
		Str("result", entry.Result).
		Str("source", source).
		Msg("Wager settled")

	result.Entry = entry
	return result, nil
}

func (e *Engine) creditPayout(ctx context.Context, userID, roundID, payout int64) (int64, error) {
	if payout <= 0 {
		return e.wallet.GetBalance(ctx, userID)
	}
	return e.wallet.AddBalance(ctx, userID, payout, fmt.Sprintf("prize:%d", roundID))
}

// clearIfStale removes a wager that still points at an already-settled round
func (e *Engine) clearIfStale(ctx context.Context, userID, roundID int64) {
	w, err := e.wagers.Get(ctx, userID)
	if err != nil || w == nil || w.RoundID != roundID {
		return
	}
	if err := e.wagers.Clear(ctx, userID); err != nil {
		logger.Warn(ctx).Err(err).Int64("user_id", userID).Msg("Failed to clear stale wager")
	}
}

// ensureOutcome returns the logged outcome for a round, resolving and logging
// it first if needed. First writer wins; later callers reuse the logged row.
func (e *Engine) ensureOutcome(ctx context.Context, roundID int64) (*domain.OutcomeRecord, error) {
	rec, err := e.outcomes.Get(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to read outcome log: %w", err)
	}
	if rec != nil {
		return rec, nil
	}

	items, err := e.resolver.Resolve(ctx, roundID)
	if err != nil {
		return nil, err
	}

	rec = domain.NewOutcomeRecord(roundID, items)
	if err := e.outcomes.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to append outcome log: %w", err)
	}

	// Re-read so a concurrent first writer's row is the one settled against.
	// Determinism makes the rows identical, but the log stays deduplicated.
	stored, err := e.outcomes.Get(ctx, roundID)
	if err == nil && stored != nil {
		return stored, nil
	}
	return rec, nil
}

// ReconcileUser settles the user's wager if its round already closed while
// the user was absent. Wagers for the current or a future round stay pending.
func (e *Engine) ReconcileUser(ctx context.Context, userID int64) (*SettlementResult, error) {
	current := e.CurrentState().Round

	wager, err := e.wagers.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending wager: %w", err)
	}
	if wager == nil || wager.RoundID >= current {
		return nil, nil
	}

	logger.Info(ctx).
		Int64("user_id", userID).
		Int64("wager_round", wager.RoundID).
		Int64("current_round", current).
		Msg("Reconciling wager from closed round")

	return e.settle(ctx, wager.RoundID, userID, domain.SourceRecovery)
}

// Reconcile sweeps every pending wager whose round has closed. Run once at
// startup ahead of the live loop; failures leave the wager pending.
func (e *Engine) Reconcile(ctx context.Context) error {
	current := e.CurrentState().Round

	pending, err := e.wagers.AllPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to list pending wagers: %w", err)
	}

	var firstErr error
	for _, w := range pending {
		if w.RoundID >= current {
			continue
		}
		if _, err := e.settle(ctx, w.RoundID, w.UserID, domain.SourceRecovery); err != nil {
			logger.Error(ctx).
				Err(err).
				Int64("user_id", w.UserID).
				Int64("round_id", w.RoundID).
				Msg("Reconciliation failed, wager stays pending")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// BackfillOutcomes fills holes in the global outcome log left by downtime,
// at most BackfillDepth rounds back. An empty log is left empty; there is
// nothing to catch up to.
func (e *Engine) BackfillOutcomes(ctx context.Context) error {
	current := e.CurrentState().Round

	latest, err := e.outcomes.LatestRound(ctx)
	if err != nil {
		return fmt.Errorf("failed to read latest logged round: %w", err)
	}
	if latest == 0 || latest >= current-1 {
		return nil
	}

	start := latest + 1
	if floor := current - BackfillDepth; start < floor {
		start = floor
	}

	filled := 0
	for r := start; r < current; r++ {
		rec, err := e.outcomes.Get(ctx, r)
		if err != nil {
			return fmt.Errorf("failed to read outcome log: %w", err)
		}
		if rec != nil {
			continue
		}

		items, err := e.resolver.Resolve(ctx, r)
		if err != nil {
			return err
		}
		rec = domain.NewOutcomeRecord(r, items)
		rec.CreatedAt = e.schedule.StartOf(r + 1)
		if err := e.outcomes.Create(ctx, rec); err != nil {
			return fmt.Errorf("failed to backfill round %d: %w", r, err)
		}
		filled++
	}

	if filled > 0 {
		logger.Info(ctx).Int("rounds", filled).Msg("Backfilled outcome history")
	}
	return nil
}

// IsSettlementInFlight reports whether a boundary settlement is running
func (e *Engine) IsSettlementInFlight() bool {
	return e.inFlight.Load()
}

// ErrIsRetryable reports whether an error is a transient store failure
func ErrIsRetryable(err error) bool {
	return errors.Is(err, domain.ErrStoreUnavailable)
}
