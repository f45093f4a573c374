package domain

import (
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Settlement sources recorded on ledger entries
const (
	SourceLive     = "live"
	SourceRecovery = "recovery"
)

// LedgerEntry is one immutable row of a user's per-round ledger.
// The unique (user_id, round_id) index is the persistence-level backstop for
// exactly-once settlement.
type LedgerEntry struct {
	EntryID      string    `gorm:"primaryKey;type:varchar(64)" json:"entry_id"`
	UserID       int64     `gorm:"not null;uniqueIndex:idx_ledger_user_round" json:"user_id"`
	RoundID      int64     `gorm:"not null;uniqueIndex:idx_ledger_user_round;index:idx_ledger_round" json:"round_id"`
	ItemsWagered string    `gorm:"type:varchar(128);not null" json:"items_wagered"` // comma-joined item names
	FirstName    string    `gorm:"type:varchar(32);not null" json:"first_name"`
	FirstIcon    string    `gorm:"type:varchar(16);not null" json:"first_icon"`
	SecondName   string    `gorm:"type:varchar(32);not null" json:"second_name"`
	SecondIcon   string    `gorm:"type:varchar(16);not null" json:"second_icon"`
	Stake        int64     `gorm:"not null" json:"stake"`
	Payout       int64     `gorm:"not null;default:0" json:"payout"`
	Net          int64     `gorm:"not null;default:0" json:"net"`
	Result       string    `gorm:"type:varchar(8);not null" json:"result"`
	Source       string    `gorm:"type:varchar(16);not null;default:live" json:"source"`
	CreatedAt    time.Time `gorm:"not null;index:idx_ledger_created_at" json:"created_at"`
}

// TableName overrides the table name
func (LedgerEntry) TableName() string {
	return "wager_ledger"
}

var (
	node *snowflake.Node
	once sync.Once
)

func initSnowflake() {
	var err error
	// NodeID 1 is fine for a single instance; a scaled-out deployment
	// must assign a distinct node id per instance.
	node, err = snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
}

func generateEntryID() string {
	once.Do(initSnowflake)
	return node.Generate().String()
}

// NewLedgerEntry builds the settlement row for a wager against an outcome
func NewLedgerEntry(wager *Wager, outcome *OutcomeRecord, payout int64, source string) *LedgerEntry {
	total := wager.TotalStake()
	return &LedgerEntry{
		EntryID:      generateEntryID(),
		UserID:       wager.UserID,
		RoundID:      wager.RoundID,
		ItemsWagered: strings.Join(wager.Items, ","),
		FirstName:    outcome.FirstName,
		FirstIcon:    outcome.FirstIcon,
		SecondName:   outcome.SecondName,
		SecondIcon:   outcome.SecondIcon,
		Stake:        total,
		Payout:       payout,
		Net:          payout - total,
		Result:       string(Classify(payout, total)),
		Source:       source,
		CreatedAt:    time.Now(),
	}
}

// WageredItems returns the wagered item names
func (e *LedgerEntry) WageredItems() []string {
	if e.ItemsWagered == "" {
		return nil
	}
	return strings.Split(e.ItemsWagered, ",")
}

// OutcomeItems returns the structured outcome pair recorded on the entry
func (e *LedgerEntry) OutcomeItems() []OutcomeItem {
	return []OutcomeItem{
		{Name: e.FirstName, Icon: e.FirstIcon},
		{Name: e.SecondName, Icon: e.SecondIcon},
	}
}
