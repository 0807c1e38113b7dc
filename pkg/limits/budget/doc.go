// Package budget tracks process-wide AI usage against the global budgets.
//
// # Overview
//
// A Tracker owns the UsageState: the tokens consumed in the current minute,
// the requests served today, and the wall-clock instants at which each of
// those counters resets. Counters only move in two ways:
//
//   - AddTokens and AddRequest increment them as work completes
//   - Tick zeroes a counter once its boundary has been crossed
//
// The minute boundary is the start of the next whole minute. The day boundary
// is the next local midnight in the location of the time passed to NewTracker.
//
// # Usage
//
//	tracker := budget.NewTracker(clock.Now())
//
//	// Called once per second by the scheduler.
//	tracker.Tick(clock.Now())
//
//	// After a provider call completes.
//	tracker.AddTokens(int64(usage.TotalTokens))
//
// # Day Epoch
//
// Every day reset increments a day epoch. Per-user daily counters compare it
// against the epoch they were last used in and reset lazily, so a day change
// never needs to walk every user record.
//
// # Thread Safety
//
// All Tracker methods are safe for concurrent use.
package budget
