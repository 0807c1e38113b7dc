package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var base = time.Date(2030, time.January, 1, 12, 0, 0, 0, time.UTC)

func TestWindow_Prune(t *testing.T) {
	var w Window
	w.Record(base)
	w.Record(base.Add(10 * time.Second))
	w.Record(base.Add(50 * time.Second))

	assert.Equal(t, 0, w.Prune(base.Add(30*time.Second), time.Minute))
	assert.Equal(t, 3, w.Len())

	// The first entry is exactly 60s old and no longer counts.
	assert.Equal(t, 1, w.Prune(base.Add(time.Minute), time.Minute))
	assert.Equal(t, 2, w.Len())

	assert.Equal(t, 2, w.Prune(base.Add(2*time.Minute), time.Minute))
	assert.Equal(t, 0, w.Len())
}

func TestWindow_RetryAfter(t *testing.T) {
	var w Window
	assert.Zero(t, w.RetryAfter(base, time.Minute))

	w.Record(base)
	w.Record(base.Add(20 * time.Second))
	assert.Equal(t, 45*time.Second, w.RetryAfter(base.Add(15*time.Second), time.Minute))
	assert.Zero(t, w.RetryAfter(base.Add(2*time.Minute), time.Minute))
}

func TestWindow_TimestampsIsCopy(t *testing.T) {
	var w Window
	w.Record(base)

	ts := w.Timestamps()
	ts[0] = time.Time{}

	oldest, ok := w.Oldest()
	assert.True(t, ok)
	assert.Equal(t, base, oldest)
}

func TestDailyCounter_Observe(t *testing.T) {
	var d DailyCounter
	assert.False(t, d.Observe(0))

	d.Inc()
	d.Inc()
	assert.False(t, d.Observe(0))
	assert.Equal(t, 2, d.Count)

	assert.True(t, d.Observe(1))
	assert.Equal(t, 0, d.Count)
	assert.Equal(t, uint64(1), d.Epoch)
}
