// Package limits decides whether AI analysis requests may run.
//
// # Overview
//
// Three limits apply to every request:
//
//   - Per-user requests per minute (sliding window). Soft: the request is
//     queued and retried later.
//   - Per-user requests per day. Hard: the request is rejected.
//   - Global tokens per minute. Hard: the request is rejected.
//
// # Architecture
//
// The package is organized into sub-packages:
//
//   - ratelimit: the per-user sliding window and daily counter
//   - budget: the global usage tracker and its minute and day boundaries
//   - storage: the bounded in-memory store of per-user records
//
// # Usage
//
//	manager, err := limits.NewManager(limits.Config{
//	    Limits:  limits.LimitsFromConfig(&cfg.Limits),
//	    Clock:   clock,
//	    Metrics: collector,
//	})
//
//	decision := manager.CheckRateLimit(userID)
//	if err := decision.Err(); err != nil {
//	    return err // *RejectionError
//	}
//
//	// After the provider call.
//	manager.RecordTokens(int64(resp.Usage.TotalTokens))
//
// # Thread Safety
//
// Manager methods are safe for concurrent use.
package limits
