package ratelimit

import (
	"time"
)

// DefaultWindow is the length of the per-user request window.
const DefaultWindow = time.Minute

// Window is a sliding window of request timestamps, oldest first.
type Window struct {
	timestamps []time.Time
}

// Prune discards timestamps that are older than size relative to now and
// returns the number of timestamps removed.
func (w *Window) Prune(now time.Time, size time.Duration) int {
	cutoff := now.Add(-size)

	// Timestamps are appended in order, so the expired ones form a prefix.
	i := 0
	for i < len(w.timestamps) && !w.timestamps[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return 0
	}

	w.timestamps = append(w.timestamps[:0], w.timestamps[i:]...)
	return i
}

// Len returns the number of timestamps in the window.
func (w *Window) Len() int {
	return len(w.timestamps)
}

// Record appends now to the window.
func (w *Window) Record(now time.Time) {
	w.timestamps = append(w.timestamps, now)
}

// Oldest returns the oldest timestamp in the window.
func (w *Window) Oldest() (time.Time, bool) {
	if len(w.timestamps) == 0 {
		return time.Time{}, false
	}
	return w.timestamps[0], true
}

// RetryAfter returns how long until the oldest timestamp leaves a window of
// the given size. It returns zero for an empty window.
func (w *Window) RetryAfter(now time.Time, size time.Duration) time.Duration {
	oldest, ok := w.Oldest()
	if !ok {
		return 0
	}
	wait := oldest.Add(size).Sub(now)
	if wait < 0 {
		return 0
	}
	return wait
}

// Timestamps returns a copy of the timestamps in the window.
func (w *Window) Timestamps() []time.Time {
	out := make([]time.Time, len(w.timestamps))
	copy(out, w.timestamps)
	return out
}

// DailyCounter counts requests since the last day boundary.
type DailyCounter struct {
	// Count is the number of requests counted in the current day.
	Count int

	// Epoch identifies the day the count belongs to.
	Epoch uint64
}

// Observe resets the counter if epoch names a later day than the one the
// counter was last used in. It reports whether a reset happened.
func (d *DailyCounter) Observe(epoch uint64) bool {
	if epoch == d.Epoch {
		return false
	}
	d.Epoch = epoch
	d.Count = 0
	return true
}

// Inc increments the counter.
func (d *DailyCounter) Inc() {
	d.Count++
}
