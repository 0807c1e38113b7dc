package limits

import (
	"errors"
	"fmt"
	"time"

	"vadapro/analyzer/pkg/config"
)

// AnonymousUser is the identifier used for requests without a user.
const AnonymousUser = "anonymous"

// Reason identifies which limit produced a non-allowed Decision.
type Reason string

const (
	// ReasonMinuteLimit means the user's per-minute window is full. The
	// request should be queued.
	ReasonMinuteLimit Reason = "minute_limit"

	// ReasonDailyLimit means the user has used today's requests.
	ReasonDailyLimit Reason = "daily_limit"

	// ReasonTokenBudget means the global per-minute token budget is spent.
	ReasonTokenBudget Reason = "token_budget"

	// ReasonQueueFull means a soft-limited request could not be queued.
	ReasonQueueFull Reason = "queue_full"

	// ReasonQueueTimeout means a queued request was not served before the
	// caller gave up.
	ReasonQueueTimeout Reason = "queue_timeout"
)

// Messages returned with non-allowed decisions.
const (
	MessageQueued        = "Rate limit reached. Your request has been queued and will be processed shortly."
	MessageDailyLimit    = "Daily request limit reached. Please try again tomorrow."
	MessageTokenBudget   = "System quota exhausted. Please try again in a minute."
	MessageQueueFull     = "Too many requests are waiting. Please try again later."
	MessageQueueTimedOut = "Your queued request could not be processed in time. Please try again."
)

// Decision is the result of a rate limit check.
type Decision struct {
	// Allowed indicates the request may run now.
	Allowed bool

	// ShouldQueue indicates the request hit a soft limit and should be
	// queued rather than rejected.
	ShouldQueue bool

	// Reason is empty for allowed requests.
	Reason Reason

	// Message is a user-facing explanation for non-allowed decisions.
	Message string

	// Limit and Remaining describe the per-user request limit behind the
	// decision: the per-minute window for allowed and queued requests, the
	// daily limit for daily rejections. Both are zero for token budget
	// rejections, which are not counted per user.
	Limit     int
	Remaining int

	// RetryAfter estimates when the blocking limit frees up.
	RetryAfter time.Duration
}

// Rejected reports whether the decision is a hard rejection.
func (d Decision) Rejected() bool {
	return !d.Allowed && !d.ShouldQueue
}

// Err returns a *RejectionError for hard rejections and nil otherwise.
func (d Decision) Err() error {
	if !d.Rejected() {
		return nil
	}
	return &RejectionError{Reason: d.Reason, Message: d.Message, RetryAfter: d.RetryAfter}
}

// RejectionError is returned for requests that will not be served because a
// limit was reached.
type RejectionError struct {
	Reason     Reason
	Message    string
	RetryAfter time.Duration
}

func (e *RejectionError) Error() string {
	return e.Message
}

// QuotaExhausted reports whether the rejection was caused by the global
// token budget rather than a per-user limit.
func (e *RejectionError) QuotaExhausted() bool {
	return e.Reason == ReasonTokenBudget
}

// AsRejection extracts a *RejectionError from err's chain.
func AsRejection(err error) (*RejectionError, bool) {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}

// Limits are the process-wide limit values.
type Limits struct {
	RequestsPerMinute  int   `json:"requestsPerMinute"`
	RequestsPerDay     int   `json:"requestsPerDay"`
	MaxTokensPerMinute int64 `json:"maxTokensPerMinute"`
}

// LimitsFromConfig extracts Limits from configuration.
func LimitsFromConfig(cfg *config.LimitsConfig) Limits {
	return Limits{
		RequestsPerMinute:  cfg.RequestsPerMinute,
		RequestsPerDay:     cfg.RequestsPerDay,
		MaxTokensPerMinute: cfg.MaxTokensPerMinute,
	}
}

// Validate checks that every limit is positive.
func (l Limits) Validate() error {
	switch {
	case l.RequestsPerMinute <= 0:
		return fmt.Errorf("requests per minute must be positive, got %d", l.RequestsPerMinute)
	case l.RequestsPerDay <= 0:
		return fmt.Errorf("requests per day must be positive, got %d", l.RequestsPerDay)
	case l.MaxTokensPerMinute <= 0:
		return fmt.Errorf("max tokens per minute must be positive, got %d", l.MaxTokensPerMinute)
	}
	return nil
}

// Stats summarizes global usage for reporting.
type Stats struct {
	TotalRequestsToday    int64     `json:"totalRequestsToday"`
	TotalTokensThisMinute int64     `json:"totalTokensThisMinute"`
	RemainingTokens       int64     `json:"remainingTokens"`
	UsagePercentage       float64   `json:"usagePercentage"`
	Limits                Limits    `json:"limits"`
	MinuteResetTime       time.Time `json:"minuteResetTime"`
	DailyResetTime        time.Time `json:"dailyResetTime"`
}
