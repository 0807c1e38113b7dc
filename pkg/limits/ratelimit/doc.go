// Package ratelimit provides the per-user counters behind request admission.
//
// # Sliding Window
//
// A Window holds the timestamps of a user's admitted requests. Entries older
// than the window size are discarded lazily on every check, so the length of
// the pruned window is the number of requests admitted in the last minute:
//
//	w.Prune(now, time.Minute)
//	if w.Len() >= limit {
//	    // soft limit: queue the request
//	}
//	w.Record(now)
//
// # Daily Counter
//
// A DailyCounter counts admitted requests since the last day boundary. The
// boundary itself is owned by the global usage tracker (see package budget),
// which publishes a day epoch that increments at every local midnight. A
// counter that observes a newer epoch starts over from zero:
//
//	d.Observe(tracker.DayEpoch())
//	if d.Count >= perDay {
//	    // hard limit: reject
//	}
//
// # Thread Safety
//
// Window and DailyCounter are plain values and are not safe for concurrent
// use. The limits manager serializes access to them.
package ratelimit
