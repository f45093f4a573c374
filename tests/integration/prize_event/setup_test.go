package prizeevent_test

import (
	"sync"
	"time"

	"github.com/jiyoung145900-png/daisy-vip/internal/modules/prize_event/domain"
	"github.com/jiyoung145900-png/daisy-vip/internal/modules/prize_event/engine"
	"github.com/jiyoung145900-png/daisy-vip/internal/modules/prize_event/repository/memory"
	"github.com/jiyoung145900-png/daisy-vip/internal/modules/prize_event/usecase"
	"github.com/jiyoung145900-png/daisy-vip/internal/modules/wallet"
	"github.com/jiyoung145900-png/daisy-vip/pkg/logger"
)

func init() {
	// Init logger for all tests in this package
	logger.Init(logger.Config{Level: "debug", Format: "console"})
}

// TestClock is a settable time source shared by a test's engines
type TestClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewTestClock(now time.Time) *TestClock {
	return &TestClock{now: now}
}

func (c *TestClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *TestClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// TestStores is the shared persistence an engine restart survives
type TestStores struct {
	Wagers    *memory.WagerRepository
	Overrides *memory.OverrideRepository
	Outcomes  *memory.OutcomeRepository
	Ledger    *memory.LedgerRepository
	Wallet    *wallet.MockService
}

func NewTestStores() *TestStores {
	return &TestStores{
		Wagers:    memory.NewWagerRepository(),
		Overrides: memory.NewOverrideRepository(),
		Outcomes:  memory.NewOutcomeRepository(),
		Ledger:    memory.NewLedgerRepository(),
		Wallet:    wallet.NewMockService(),
	}
}

// NewTestEngine builds an engine over the stores, driven by the test clock
func NewTestEngine(stores *TestStores, clock *TestClock) *engine.Engine {
	schedule := engine.DefaultSchedule()
	resolver := engine.NewResolver(stores.Overrides, domain.DefaultCatalog, engine.DefaultSalt)
	eng := engine.New(schedule, resolver, stores.Wagers, stores.Outcomes, stores.Ledger, stores.Wallet)
	eng.SetNowFunc(clock.Now)
	eng.SetTickInterval(5 * time.Millisecond)
	return eng
}

func NewTestWagerUseCase(stores *TestStores, eng *engine.Engine) *usecase.WagerUseCase {
	return usecase.NewWagerUseCase(stores.Wagers, stores.Wallet, eng, domain.DefaultCatalog)
}

// MidRound returns an instant 10 seconds into an arbitrary modern round
func MidRound() time.Time {
	schedule := engine.DefaultSchedule()
	return schedule.StartOf(schedule.BaseRound + 50000).Add(10 * time.Second)
}
