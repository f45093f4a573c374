// Package engine drives prize rounds: deriving round state from the clock,
// resolving outcomes, settling wagers and reconciling wagers left behind by
// absent clients.
package engine

import "time"

// Schedule fixes the round timetable. Rounds are never persisted; the round
// number is always recomputed from wall-clock time against these values.
type Schedule struct {
	Epoch        time.Time     // start of round BaseRound
	Duration     time.Duration // length of one round
	BaseRound    int64         // round number at Epoch
	SettleWindow int           // seconds before round end during which wagering is closed
}

// DefaultSchedule matches the live event: 65 second rounds counted from
// round 1824231 at 2024-01-01T00:00:00Z, with a 5 second drawing window.
func DefaultSchedule() Schedule {
	return Schedule{
		Epoch:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Duration:     65 * time.Second,
		BaseRound:    1824231,
		SettleWindow: 5,
	}
}

// RoundState is the instantaneous view of the schedule
type RoundState struct {
	Round       int64 `json:"round"`
	SecondsLeft int   `json:"seconds_left"`
	IsSettling  bool  `json:"is_settling"`
}

// StateAt derives the round state for an instant. Pure: calling it twice for
// the same instant yields the same state, which recovery depends on.
func (s Schedule) StateAt(now time.Time) RoundState {
	elapsed := now.Sub(s.Epoch)
	round := s.BaseRound + int64(elapsed/s.Duration)

	remaining := s.Duration - elapsed%s.Duration
	secondsLeft := int(remaining / time.Second)
	// Boundary tick: the instant a round starts the remainder is a full
	// duration, shown as zero.
	if secondsLeft >= int(s.Duration/time.Second) {
		secondsLeft = 0
	}

	return RoundState{
		Round:       round,
		SecondsLeft: secondsLeft,
		IsSettling:  secondsLeft <= s.SettleWindow,
	}
}

// RoundAt returns only the round number for an instant
func (s Schedule) RoundAt(now time.Time) int64 {
	return s.BaseRound + int64(now.Sub(s.Epoch)/s.Duration)
}

// StartOf returns the instant a round began
func (s Schedule) StartOf(round int64) time.Time {
	return s.Epoch.Add(time.Duration(round-s.BaseRound) * s.Duration)
}
