package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStateAtIsPure(t *testing.T) {
	s := DefaultSchedule()
	now := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

	first := s.StateAt(now)
	second := s.StateAt(now)
	assert.Equal(t, first, second)
}

func TestRoundNumberAdvancesWithTime(t *testing.T) {
	s := DefaultSchedule()

	start := s.Epoch.Add(100 * s.Duration)
	assert.Equal(t, s.BaseRound+100, s.RoundAt(start))
	assert.Equal(t, s.BaseRound+100, s.RoundAt(start.Add(s.Duration-time.Second)))
	assert.Equal(t, s.BaseRound+101, s.RoundAt(start.Add(s.Duration)))
}

func TestStateAtRoundBoundary(t *testing.T) {
	s := DefaultSchedule()
	boundary := s.StartOf(s.BaseRound + 42)

	st := s.StateAt(boundary)
	assert.Equal(t, s.BaseRound+42, st.Round)
	// The boundary instant belongs to the new round and shows zero, not a
	// full countdown.
	assert.Equal(t, 0, st.SecondsLeft)
	assert.True(t, st.IsSettling)
}

func TestSettleWindow(t *testing.T) {
	s := DefaultSchedule()
	start := s.StartOf(s.BaseRound + 10)

	mid := s.StateAt(start.Add(30 * time.Second))
	assert.False(t, mid.IsSettling)
	assert.Equal(t, 35, mid.SecondsLeft)

	closing := s.StateAt(start.Add(s.Duration - 5*time.Second))
	assert.True(t, closing.IsSettling)
	assert.Equal(t, 5, closing.SecondsLeft)

	open := s.StateAt(start.Add(s.Duration - 6*time.Second))
	assert.False(t, open.IsSettling)
	assert.Equal(t, 6, open.SecondsLeft)
}

func TestStartOfRoundTrip(t *testing.T) {
	s := DefaultSchedule()
	for _, offset := range []int64{0, 1, 999, 1000000} {
		round := s.BaseRound + offset
		assert.Equal(t, round, s.RoundAt(s.StartOf(round)))
	}
}

func TestDefaultScheduleValues(t *testing.T) {
	s := DefaultSchedule()
	assert.Equal(t, 65*time.Second, s.Duration)
	assert.Equal(t, int64(1824231), s.BaseRound)
	assert.Equal(t, 5, s.SettleWindow)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), s.Epoch)
}
