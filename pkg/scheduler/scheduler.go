// Package scheduler drives the periodic work of the gateway from a single
// clock tick: usage boundary resets and queue drains.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/quartz"

	"vadapro/analyzer/pkg/limits/budget"
	"vadapro/analyzer/pkg/telemetry/metrics"
)

// Defaults.
const (
	DefaultTickInterval  = time.Second
	DefaultDrainInterval = 5 * time.Second
)

// Usage advances the global usage counters.
type Usage interface {
	Tick(now time.Time) budget.TickResult
}

// Drainer runs a drain pass over queued requests.
type Drainer interface {
	Drain(ctx context.Context) int
	Len() int
}

// Config configures a Scheduler.
type Config struct {
	Usage Usage
	Queue Drainer

	TickInterval  time.Duration
	DrainInterval time.Duration

	Clock   quartz.Clock
	Metrics *metrics.Collector
	Logger  *slog.Logger
}

// Scheduler dispatches reset checks and drains.
type Scheduler struct {
	usage         Usage
	queue         Drainer
	tickInterval  time.Duration
	drainInterval time.Duration
	clock         quartz.Clock
	metrics       *metrics.Collector
	logger        *slog.Logger

	mu        sync.Mutex
	lastDrain time.Time
	drains    sync.WaitGroup
}

// New creates a scheduler.
func New(cfg Config) (*Scheduler, error) {
	if cfg.Usage == nil {
		return nil, errors.New("usage is required")
	}
	if cfg.Queue == nil {
		return nil, errors.New("queue is required")
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.DrainInterval <= 0 {
		cfg.DrainInterval = DefaultDrainInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Scheduler{
		usage:         cfg.Usage,
		queue:         cfg.Queue,
		tickInterval:  cfg.TickInterval,
		drainInterval: cfg.DrainInterval,
		clock:         cfg.Clock,
		metrics:       cfg.Metrics,
		logger:        cfg.Logger.With("component", "scheduler"),
		lastDrain:     cfg.Clock.Now(),
	}, nil
}

// Tick runs the boundary checks and, once the drain interval has elapsed
// since the last drain, starts a drain in the background.
func (s *Scheduler) Tick(ctx context.Context) {
	now := s.clock.Now()

	res := s.usage.Tick(now)
	if res.MinuteReset {
		s.logger.Debug("minute token window reset")
	}
	if res.DayReset {
		s.logger.Info("daily request counters reset")
	}
	s.metrics.SetQueueDepth(s.queue.Len())

	s.mu.Lock()
	due := now.Sub(s.lastDrain) >= s.drainInterval
	if due {
		s.lastDrain = now
	}
	s.mu.Unlock()

	if due {
		s.TriggerDrain(ctx)
	}
}

// TriggerDrain starts a drain pass in the background. It is a no-op if the
// queue is empty; a pass already in progress makes the new one return
// immediately.
func (s *Scheduler) TriggerDrain(ctx context.Context) {
	if s.queue.Len() == 0 {
		return
	}

	s.drains.Add(1)
	go func() {
		defer s.drains.Done()
		if n := s.queue.Drain(ctx); n > 0 {
			s.logger.Debug("queue drained", "dispatched", n, "remaining", s.queue.Len())
		}
	}()
}

// Run ticks until ctx is cancelled, then waits for running drains.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler started",
		"tick_interval", s.tickInterval,
		"drain_interval", s.drainInterval)

	err := s.clock.TickerFunc(ctx, s.tickInterval, func() error {
		s.Tick(ctx)
		return nil
	}, "scheduler").Wait()

	s.Wait()
	s.logger.Info("scheduler stopped")

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Wait blocks until background drains have finished.
func (s *Scheduler) Wait() {
	s.drains.Wait()
}
