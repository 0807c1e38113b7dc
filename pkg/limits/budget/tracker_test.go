package budget

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var start = time.Date(2030, time.March, 4, 23, 58, 30, 0, time.UTC)

func TestNewTracker_Boundaries(t *testing.T) {
	tr := NewTracker(start)
	s := tr.Snapshot()

	assert.Equal(t, time.Date(2030, time.March, 4, 23, 59, 0, 0, time.UTC), s.MinuteResetAt)
	assert.Equal(t, time.Date(2030, time.March, 5, 0, 0, 0, 0, time.UTC), s.DayResetAt)
	assert.Zero(t, s.TokensThisMinute)
	assert.Zero(t, s.RequestsToday)
}

func TestTick_Idempotent(t *testing.T) {
	tr := NewTracker(start)
	tr.AddTokens(1200)
	tr.AddRequest()

	before := tr.Snapshot()
	assert.Equal(t, TickResult{}, tr.Tick(start.Add(5*time.Second)))
	assert.Equal(t, TickResult{}, tr.Tick(start.Add(20*time.Second)))
	assert.Equal(t, before, tr.Snapshot())
}

func TestTick_MinuteBoundary(t *testing.T) {
	tr := NewTracker(start)
	tr.AddTokens(5000)
	tr.AddRequest()

	res := tr.Tick(start.Add(30 * time.Second))
	assert.True(t, res.MinuteReset)
	assert.False(t, res.DayReset)

	s := tr.Snapshot()
	assert.Zero(t, s.TokensThisMinute)
	assert.Equal(t, int64(1), s.RequestsToday)
	assert.Equal(t, time.Date(2030, time.March, 5, 0, 0, 0, 0, time.UTC), s.MinuteResetAt)
}

func TestTick_DayBoundary(t *testing.T) {
	tr := NewTracker(start)
	tr.AddRequest()
	tr.AddRequest()
	tr.AddTokens(10)

	res := tr.Tick(start.Add(2 * time.Minute))
	assert.True(t, res.MinuteReset)
	assert.True(t, res.DayReset)

	s := tr.Snapshot()
	assert.Zero(t, s.RequestsToday)
	assert.Zero(t, s.TokensThisMinute)
	assert.Equal(t, uint64(1), s.DayEpoch)
	assert.Equal(t, time.Date(2030, time.March, 6, 0, 0, 0, 0, time.UTC), s.DayResetAt)
	assert.Equal(t, time.Date(2030, time.March, 5, 0, 1, 0, 0, time.UTC), s.MinuteResetAt)
}

func TestAddTokens_IgnoresNonPositive(t *testing.T) {
	tr := NewTracker(start)
	tr.AddTokens(0)
	tr.AddTokens(-5)
	tr.AddTokens(7)
	assert.Equal(t, int64(7), tr.Tokens())
}

func TestNextMidnight_Location(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	now := time.Date(2030, time.June, 1, 10, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2030, time.June, 2, 0, 0, 0, 0, loc), NextMidnight(now))
}

func TestTracker_Concurrent(t *testing.T) {
	tr := NewTracker(start)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.AddTokens(10)
			tr.AddRequest()
			_ = tr.Snapshot()
		}()
	}
	wg.Wait()

	s := tr.Snapshot()
	assert.Equal(t, int64(500), s.TokensThisMinute)
	assert.Equal(t, int64(50), s.RequestsToday)
}
