package limits

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/coder/quartz"

	"vadapro/analyzer/pkg/limits/budget"
	"vadapro/analyzer/pkg/limits/ratelimit"
	"vadapro/analyzer/pkg/limits/storage"
	"vadapro/analyzer/pkg/telemetry/metrics"
)

// Admission outcomes reported to metrics.
const (
	outcomeAllowed  = "allowed"
	outcomeQueued   = "queued"
	outcomeRejected = "rejected"
)

// Manager decides whether analysis requests may run.
//
// The Manager combines the per-user records in its Store with the global
// usage Tracker. All checks are serialized by a single mutex, so a decision
// and the counters it updates are always consistent with each other.
//
// # Example
//
//	manager, err := limits.NewManager(limits.Config{
//	    Limits: limits.LimitsFromConfig(&cfg.Limits),
//	    Clock:  quartz.NewReal(),
//	})
//
//	decision := manager.CheckRateLimit(userID)
//	switch {
//	case decision.Allowed:
//	    // run now
//	case decision.ShouldQueue:
//	    // enqueue
//	default:
//	    return decision.Err()
//	}
type Manager struct {
	limits  Limits
	window  time.Duration
	store   storage.Store
	tracker *budget.Tracker
	clock   quartz.Clock
	metrics *metrics.Collector
	logger  *slog.Logger

	mu sync.Mutex
}

// Config contains configuration for the limits manager.
type Config struct {
	// Limits are the initial limit values.
	Limits Limits

	// Window is the per-user sliding window size.
	// Default: 1 minute
	Window time.Duration

	// Store holds per-user records.
	// Default: a MemoryStore with default capacity and TTL
	Store storage.Store

	// Tracker holds global usage.
	// Default: a new tracker started at Clock.Now()
	Tracker *budget.Tracker

	// Clock is the time source.
	// Default: the real clock
	Clock quartz.Clock

	// Metrics receives admission outcomes. Optional.
	Metrics *metrics.Collector

	// Logger is the manager's logger.
	// Default: slog.Default()
	Logger *slog.Logger
}

// NewManager creates a new limits manager with the given configuration.
func NewManager(cfg Config) (*Manager, error) {
	if err := cfg.Limits.Validate(); err != nil {
		return nil, fmt.Errorf("invalid limits: %w", err)
	}

	if cfg.Window <= 0 {
		cfg.Window = ratelimit.DefaultWindow
	}
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}
	if cfg.Store == nil {
		cfg.Store = storage.NewMemoryStore(storage.MemoryStoreConfig{})
	}
	if cfg.Tracker == nil {
		cfg.Tracker = budget.NewTracker(cfg.Clock.Now())
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Manager{
		limits:  cfg.Limits,
		window:  cfg.Window,
		store:   cfg.Store,
		tracker: cfg.Tracker,
		clock:   cfg.Clock,
		metrics: cfg.Metrics,
		logger:  cfg.Logger.With("component", "limits"),
	}, nil
}

// CheckRateLimit decides whether a request from userID may run now.
//
// Checks run in a fixed order:
//
//  1. Prune the user's window to the last minute.
//  2. A full window means the request should be queued.
//  3. A spent daily allowance rejects the request.
//  4. A spent global token budget rejects the request.
//  5. Otherwise the request is admitted and counted.
//
// The per-minute check comes first, so a user who is over both the minute
// and the daily limit is told to queue. The daily limit then rejects the
// request when the queue checks it again.
//
// Only an admitted request updates the counters. An empty userID is treated
// as AnonymousUser.
func (m *Manager) CheckRateLimit(userID string) Decision {
	if userID == "" {
		userID = AnonymousUser
	}
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	lim := m.limits
	rec := m.store.Get(userID)
	rec.Daily.Observe(m.tracker.DayEpoch())
	rec.Window.Prune(now, m.window)
	defer m.store.Touch(userID, rec)

	if rec.Window.Len() >= lim.RequestsPerMinute {
		d := Decision{
			ShouldQueue: true,
			Reason:      ReasonMinuteLimit,
			Message:     MessageQueued,
			Limit:       lim.RequestsPerMinute,
			RetryAfter:  rec.Window.RetryAfter(now, m.window),
		}
		m.record(userID, d)
		return d
	}

	if rec.Daily.Count >= lim.RequestsPerDay {
		d := Decision{
			Reason:     ReasonDailyLimit,
			Message:    MessageDailyLimit,
			Limit:      lim.RequestsPerDay,
			RetryAfter: m.tracker.Snapshot().DayResetAt.Sub(now),
		}
		m.record(userID, d)
		return d
	}

	if m.tracker.Tokens() >= lim.MaxTokensPerMinute {
		d := Decision{
			Reason:     ReasonTokenBudget,
			Message:    MessageTokenBudget,
			RetryAfter: m.tracker.Snapshot().MinuteResetAt.Sub(now),
		}
		m.record(userID, d)
		return d
	}

	rec.Window.Record(now)
	rec.Daily.Inc()
	m.tracker.AddRequest()

	d := Decision{
		Allowed:   true,
		Limit:     lim.RequestsPerMinute,
		Remaining: lim.RequestsPerMinute - rec.Window.Len(),
	}
	m.record(userID, d)
	return d
}

func (m *Manager) record(userID string, d Decision) {
	switch {
	case d.Allowed:
		m.metrics.RecordAdmission(outcomeAllowed, "")
		m.publishUsage()
	case d.ShouldQueue:
		m.metrics.RecordAdmission(outcomeQueued, string(d.Reason))
		m.logger.Debug("request over per-minute limit",
			"user_id", userID,
			"retry_after", d.RetryAfter)
	default:
		m.metrics.RecordAdmission(outcomeRejected, string(d.Reason))
		m.logger.Info("request rejected",
			"user_id", userID,
			"reason", d.Reason,
			"retry_after", d.RetryAfter)
	}
}

// RecordTokens adds provider-reported tokens to the global minute budget.
func (m *Manager) RecordTokens(n int64) {
	m.tracker.AddTokens(n)
	m.publishUsage()
}

// Tick runs the global boundary checks at now.
func (m *Manager) Tick(now time.Time) budget.TickResult {
	res := m.tracker.Tick(now)
	if res.DayReset {
		m.logger.Info("daily usage counters reset", "next_reset", m.tracker.Snapshot().DayResetAt)
	}
	if res.MinuteReset || res.DayReset {
		m.publishUsage()
	}
	return res
}

// SetLimits replaces the limit values. Existing per-user windows and counters
// are kept and checked against the new values from the next request on.
func (m *Manager) SetLimits(l Limits) error {
	if err := l.Validate(); err != nil {
		return fmt.Errorf("invalid limits: %w", err)
	}

	m.mu.Lock()
	old := m.limits
	m.limits = l
	m.mu.Unlock()

	if old != l {
		m.logger.Info("limits updated",
			"requests_per_minute", l.RequestsPerMinute,
			"requests_per_day", l.RequestsPerDay,
			"max_tokens_per_minute", l.MaxTokensPerMinute)
	}
	return nil
}

// Limits returns the current limit values.
func (m *Manager) Limits() Limits {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.limits
}

// Stats returns a summary of global usage.
func (m *Manager) Stats() Stats {
	lim := m.Limits()
	s := m.tracker.Snapshot()

	remaining := lim.MaxTokensPerMinute - s.TokensThisMinute
	if remaining < 0 {
		remaining = 0
	}

	return Stats{
		TotalRequestsToday:    s.RequestsToday,
		TotalTokensThisMinute: s.TokensThisMinute,
		RemainingTokens:       remaining,
		UsagePercentage:       usagePercentage(s.TokensThisMinute, lim.MaxTokensPerMinute),
		Limits:                lim,
		MinuteResetTime:       s.MinuteResetAt,
		DailyResetTime:        s.DayResetAt,
	}
}

// Tracker returns the global usage tracker.
func (m *Manager) Tracker() *budget.Tracker {
	return m.tracker
}

func (m *Manager) publishUsage() {
	s := m.tracker.Snapshot()
	m.metrics.SetUsage(s.TokensThisMinute, s.RequestsToday)
}

// usagePercentage returns used as a percentage of limit, rounded to two
// decimal places.
func usagePercentage(used, limit int64) float64 {
	if limit <= 0 {
		return 0
	}
	pct := float64(used) / float64(limit) * 100
	return math.Round(pct*100) / 100
}
