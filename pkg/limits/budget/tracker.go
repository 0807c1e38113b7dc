package budget

import (
	"sync"
	"time"
)

// UsageState is a point-in-time copy of the global usage counters.
type UsageState struct {
	// TokensThisMinute is the number of provider tokens consumed since the
	// last minute boundary.
	TokensThisMinute int64

	// RequestsToday is the number of admitted requests since the last day
	// boundary.
	RequestsToday int64

	// MinuteResetAt is when TokensThisMinute next resets.
	MinuteResetAt time.Time

	// DayResetAt is when RequestsToday next resets.
	DayResetAt time.Time

	// DayEpoch increments at every day reset.
	DayEpoch uint64
}

// TickResult reports which boundaries a Tick crossed.
type TickResult struct {
	MinuteReset bool
	DayReset    bool
}

// Tracker maintains the global UsageState.
type Tracker struct {
	state UsageState
	mu    sync.RWMutex
}

// NewTracker creates a tracker whose first boundaries are computed from now.
func NewTracker(now time.Time) *Tracker {
	return &Tracker{
		state: UsageState{
			MinuteResetAt: NextMinute(now),
			DayResetAt:    NextMidnight(now),
		},
	}
}

// Tick compares now against both stored boundaries. A crossed boundary zeroes
// its counter and moves to the next boundary after now. Ticks that cross no
// boundary leave the state unchanged.
func (t *Tracker) Tick(now time.Time) TickResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	var res TickResult
	if !now.Before(t.state.MinuteResetAt) {
		t.state.TokensThisMinute = 0
		t.state.MinuteResetAt = NextMinute(now)
		res.MinuteReset = true
	}
	if !now.Before(t.state.DayResetAt) {
		t.state.RequestsToday = 0
		t.state.DayResetAt = NextMidnight(now)
		t.state.DayEpoch++
		res.DayReset = true
	}
	return res
}

// AddTokens adds n to the tokens consumed this minute. Non-positive values
// are ignored.
func (t *Tracker) AddTokens(n int64) {
	if n <= 0 {
		return
	}
	t.mu.Lock()
	t.state.TokensThisMinute += n
	t.mu.Unlock()
}

// AddRequest counts one admitted request against today.
func (t *Tracker) AddRequest() {
	t.mu.Lock()
	t.state.RequestsToday++
	t.mu.Unlock()
}

// Tokens returns the tokens consumed this minute.
func (t *Tracker) Tokens() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state.TokensThisMinute
}

// DayEpoch returns the current day epoch.
func (t *Tracker) DayEpoch() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state.DayEpoch
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() UsageState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// NextMinute returns the start of the whole minute following now.
func NextMinute(now time.Time) time.Time {
	return now.Truncate(time.Minute).Add(time.Minute)
}

// NextMidnight returns the first midnight after now in now's location.
func NextMidnight(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
}
