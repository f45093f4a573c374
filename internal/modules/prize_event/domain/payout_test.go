package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPayout(t *testing.T) {
	winning := []string{"rocket", "heart"}

	tests := []struct {
		name    string
		wagered []string
		stake   int64
		want    int64
	}{
		{"single item hit pays double", []string{"rocket"}, 100, 200},
		{"single item on second slot pays double", []string{"heart"}, 100, 200},
		{"single item miss pays nothing", []string{"rose"}, 100, 0},
		{"two items one hit pushes", []string{"rocket", "rose"}, 100, 200},
		{"two items both hit pays quadruple", []string{"rocket", "heart"}, 100, 800},
		{"two items no hit pays nothing", []string{"yacht", "rose"}, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Payout(tt.wagered, tt.stake, winning))
		})
	}
}

func TestPayoutOrderDoesNotMatter(t *testing.T) {
	winning := []string{"rocket", "heart"}
	assert.Equal(t,
		Payout([]string{"rocket", "heart"}, 50, winning),
		Payout([]string{"heart", "rocket"}, 50, winning))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, ResultWin, Classify(200, 100))
	assert.Equal(t, ResultDraw, Classify(200, 200))
	assert.Equal(t, ResultLoss, Classify(0, 100))
	assert.Equal(t, ResultLoss, Classify(0, 0))
}

func TestValidateItems(t *testing.T) {
	catalog := DefaultCatalog

	assert.NoError(t, ValidateItems([]string{"rocket"}, catalog))
	assert.NoError(t, ValidateItems([]string{"rocket", "rose"}, catalog))

	assert.ErrorIs(t, ValidateItems(nil, catalog), ErrInvalidItems)
	assert.ErrorIs(t, ValidateItems([]string{"rocket", "heart", "rose"}, catalog), ErrInvalidItems)
	assert.ErrorIs(t, ValidateItems([]string{"rocket", "rocket"}, catalog), ErrInvalidItems)
	assert.ErrorIs(t, ValidateItems([]string{"unicorn"}, catalog), ErrInvalidItems)
}

func TestMatchedCount(t *testing.T) {
	winning := []string{"rocket", "heart"}
	assert.Equal(t, 0, MatchedCount([]string{"rose"}, winning))
	assert.Equal(t, 1, MatchedCount([]string{"rose", "heart"}, winning))
	assert.Equal(t, 2, MatchedCount([]string{"heart", "rocket"}, winning))
}

func TestNewLedgerEntryClassifies(t *testing.T) {
	wager := NewWager(7, 1824300, []string{"rocket", "heart"}, 100)
	outcome := NewOutcomeRecord(1824300, []Item{
		{Name: "rocket", Icon: "🚀"},
		{Name: "heart", Icon: "❤️"},
	})

	entry := NewLedgerEntry(wager, outcome, 800, SourceLive)
	assert.Equal(t, int64(200), entry.Stake)
	assert.Equal(t, int64(800), entry.Payout)
	assert.Equal(t, int64(600), entry.Net)
	assert.Equal(t, string(ResultWin), entry.Result)
	assert.Equal(t, []string{"rocket", "heart"}, entry.WageredItems())
	assert.NotEmpty(t, entry.EntryID)
}
