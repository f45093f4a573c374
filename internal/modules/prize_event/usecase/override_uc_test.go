package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiyoung145900-png/daisy-vip/internal/modules/prize_event/domain"
	"github.com/jiyoung145900-png/daisy-vip/internal/modules/prize_event/engine"
	"github.com/jiyoung145900-png/daisy-vip/internal/modules/prize_event/repository/memory"
	"github.com/jiyoung145900-png/daisy-vip/internal/modules/wallet"
)

type overrideEnv struct {
	uc        *OverrideUseCase
	eng       *engine.Engine
	overrides *memory.OverrideRepository
	outcomes  *memory.OutcomeRepository
	clock     *fakeClock
	schedule  engine.Schedule
}

func newOverrideEnv(t *testing.T) *overrideEnv {
	t.Helper()

	schedule := engine.DefaultSchedule()
	overrides := memory.NewOverrideRepository()
	outcomes := memory.NewOutcomeRepository()

	resolver := engine.NewResolver(overrides, domain.DefaultCatalog, engine.DefaultSalt)
	eng := engine.New(schedule, resolver,
		memory.NewWagerRepository(), outcomes, memory.NewLedgerRepository(), wallet.NewMockService())

	clock := &fakeClock{now: schedule.StartOf(schedule.BaseRound + 1000).Add(10 * time.Second)}
	eng.SetNowFunc(clock.Now)

	return &overrideEnv{
		uc:        NewOverrideUseCase(overrides, outcomes, eng, domain.DefaultCatalog),
		eng:       eng,
		overrides: overrides,
		outcomes:  outcomes,
		clock:     clock,
		schedule:  schedule,
	}
}

func TestSetOverrideForUpcomingRound(t *testing.T) {
	env := newOverrideEnv(t)
	ctx := context.Background()
	round := env.eng.CurrentState().Round + 2

	require.NoError(t, env.uc.SetOverride(ctx, round, []string{"rose", "yacht"}))

	stored, err := env.overrides.Get(ctx, round)
	require.NoError(t, err)
	assert.Equal(t, []string{"rose", "yacht"}, stored)
}

func TestSetOverrideValidatesItems(t *testing.T) {
	env := newOverrideEnv(t)
	ctx := context.Background()
	round := env.eng.CurrentState().Round + 1

	assert.ErrorIs(t, env.uc.SetOverride(ctx, round, []string{"unicorn"}), domain.ErrInvalidItems)
	assert.ErrorIs(t, env.uc.SetOverride(ctx, round, nil), domain.ErrInvalidItems)
	assert.ErrorIs(t, env.uc.SetOverride(ctx, round, []string{"rose", "rose"}), domain.ErrInvalidItems)
}

func TestSetOverrideRejectsPastRound(t *testing.T) {
	env := newOverrideEnv(t)
	ctx := context.Background()
	round := env.eng.CurrentState().Round

	err := env.uc.SetOverride(ctx, round-1, []string{"rose"})
	assert.ErrorIs(t, err, domain.ErrRoundClosed)
}

func TestSetOverrideRejectsCurrentRoundInSettleWindow(t *testing.T) {
	env := newOverrideEnv(t)
	ctx := context.Background()
	round := env.eng.CurrentState().Round

	// Mid-round the live round still accepts an override.
	require.NoError(t, env.uc.SetOverride(ctx, round, []string{"rose", "yacht"}))

	// 3 seconds before close resolution may already be running.
	env.clock.Set(env.schedule.StartOf(round + 1).Add(-3 * time.Second))
	require.True(t, env.eng.CurrentState().IsSettling)

	err := env.uc.SetOverride(ctx, round, []string{"rocket", "heart"})
	assert.ErrorIs(t, err, domain.ErrRoundClosed)

	// The next round is still open for overrides.
	assert.NoError(t, env.uc.SetOverride(ctx, round+1, []string{"rocket"}))
}

func TestSetOverrideRejectsLoggedRound(t *testing.T) {
	env := newOverrideEnv(t)
	ctx := context.Background()
	round := env.eng.CurrentState().Round + 1

	// The outcome is already in the log (e.g. a racing settlement).
	require.NoError(t, env.outcomes.Create(ctx, domain.NewOutcomeRecord(round, domain.DefaultCatalog[:2])))

	err := env.uc.SetOverride(ctx, round, []string{"rose"})
	assert.ErrorIs(t, err, domain.ErrRoundClosed)
}

func TestDeleteOverride(t *testing.T) {
	env := newOverrideEnv(t)
	ctx := context.Background()
	round := env.eng.CurrentState().Round + 1

	require.NoError(t, env.uc.SetOverride(ctx, round, []string{"rose"}))
	require.NoError(t, env.uc.DeleteOverride(ctx, round))

	stored, err := env.overrides.Get(ctx, round)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestDeleteOverrideRejectedOnceConsumed(t *testing.T) {
	env := newOverrideEnv(t)
	ctx := context.Background()
	round := env.eng.CurrentState().Round + 1

	require.NoError(t, env.uc.SetOverride(ctx, round, []string{"rose", "yacht"}))
	require.NoError(t, env.outcomes.Create(ctx, domain.NewOutcomeRecord(round, domain.DefaultCatalog[:2])))

	err := env.uc.DeleteOverride(ctx, round)
	assert.ErrorIs(t, err, domain.ErrRoundClosed)
}
