package storage

import (
	"vadapro/analyzer/pkg/limits/ratelimit"
)

// Store persists per-user records.
type Store interface {
	// Get returns the record for userID, creating an empty one if none exists.
	Get(userID string) *Record

	// Touch stores rec for userID and refreshes its expiry.
	Touch(userID string, rec *Record)

	// Peek returns the record for userID without creating one.
	Peek(userID string) (*Record, bool)
}

// Record is the rate limit state of a single user.
type Record struct {
	// Window holds the timestamps of requests admitted in the last minute.
	Window ratelimit.Window

	// Daily counts requests admitted since the last day boundary.
	Daily ratelimit.DailyCounter
}
