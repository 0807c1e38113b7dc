package ledger

import (
	"context"
	"time"
)

// Status is the outcome of an executed call.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Entry is one executed analysis call.
type Entry struct {
	ID        string `json:"id"`
	RequestID string `json:"requestId,omitempty"`
	UserID    string `json:"userId"`
	Model     string `json:"model"`

	Status       Status `json:"status"`
	ErrorType    string `json:"errorType,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`

	// Request shape. The query text itself is not stored.
	QueryChars int  `json:"queryChars"`
	FileBacked bool `json:"fileBacked"`
	Queued     bool `json:"queued"`

	QueueWaitMs int64 `json:"queueWaitMs"`
	LatencyMs   int64 `json:"latencyMs"`

	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
	TotalTokens  int `json:"totalTokens"`

	CreatedAt time.Time `json:"createdAt"`
}

// Query filters entries. Zero-valued fields do not filter. Results are
// ordered newest first.
type Query struct {
	UserID string
	Status Status

	// StartTime and EndTime are inclusive bounds on CreatedAt.
	StartTime *time.Time
	EndTime   *time.Time

	Limit  int
	Offset int
}

// Summary aggregates the entries matching a query.
type Summary struct {
	Requests     int64 `json:"requests"`
	Errors       int64 `json:"errors"`
	InputTokens  int64 `json:"inputTokens"`
	OutputTokens int64 `json:"outputTokens"`
	TotalTokens  int64 `json:"totalTokens"`
}

// Add folds e into s.
func (s *Summary) Add(e *Entry) {
	s.Requests++
	if e.Status == StatusError {
		s.Errors++
	}
	s.InputTokens += int64(e.InputTokens)
	s.OutputTokens += int64(e.OutputTokens)
	s.TotalTokens += int64(e.TotalTokens)
}

// Storage persists ledger entries.
type Storage interface {
	// Store persists an entry.
	Store(ctx context.Context, entry *Entry) error

	// Query returns the entries matching q, newest first.
	Query(ctx context.Context, q *Query) ([]*Entry, error)

	// Count returns the number of entries matching q. Limit and Offset are
	// ignored.
	Count(ctx context.Context, q *Query) (int64, error)

	// Summarize aggregates the entries matching q. Limit and Offset are
	// ignored.
	Summarize(ctx context.Context, q *Query) (*Summary, error)

	// Delete removes the entries matching q and returns how many were
	// removed.
	Delete(ctx context.Context, q *Query) (int64, error)

	// Close releases the backend's resources.
	Close() error
}

// Matches reports whether e satisfies the filters in q.
func (q *Query) Matches(e *Entry) bool {
	if q == nil {
		return true
	}
	if q.UserID != "" && e.UserID != q.UserID {
		return false
	}
	if q.Status != "" && e.Status != q.Status {
		return false
	}
	if q.StartTime != nil && e.CreatedAt.Before(*q.StartTime) {
		return false
	}
	if q.EndTime != nil && e.CreatedAt.After(*q.EndTime) {
		return false
	}
	return true
}
