package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"vadapro/analyzer/pkg/analysis"
	"vadapro/analyzer/pkg/limits"
	"vadapro/analyzer/pkg/telemetry/metrics"
)

// Defaults.
const (
	DefaultMaxDepth = 100
	DefaultWorkers  = 1
)

var (
	// ErrQueueFull is returned by Enqueue when the queue is at capacity.
	ErrQueueFull = &limits.RejectionError{Reason: limits.ReasonQueueFull, Message: limits.MessageQueueFull}

	// ErrShutdown settles entries still queued when the queue shuts down.
	ErrShutdown = errors.New("queue is shut down")
)

// Queue exit outcomes reported to metrics.
const (
	exitExecuted = "executed"
	exitRejected = "rejected"
	exitExpired  = "expired"
	exitRemoved  = "removed"
	exitShutdown = "shutdown"
)

// Limiter decides whether a user's request may run.
type Limiter interface {
	CheckRateLimit(userID string) limits.Decision
}

// Runner executes an admitted queued request.
type Runner interface {
	ExecuteQueued(ctx context.Context, req *analysis.Request, waited time.Duration) (*analysis.Result, error)
}

// Config configures a Queue.
type Config struct {
	Limiter Limiter
	Runner  Runner

	// MaxDepth caps the number of queued entries.
	MaxDepth int

	// Workers bounds concurrently executing entries during a drain.
	Workers int

	Clock   quartz.Clock
	Metrics *metrics.Collector
	Logger  *slog.Logger
}

// Queue is a FIFO of soft-limited requests.
type Queue struct {
	limiter  Limiter
	runner   Runner
	maxDepth int
	workers  int
	clock    quartz.Clock
	metrics  *metrics.Collector
	logger   *slog.Logger

	mu       sync.Mutex
	entries  []*Entry
	draining bool
	closed   bool
}

// New creates a queue.
func New(cfg Config) (*Queue, error) {
	if cfg.Limiter == nil {
		return nil, errors.New("limiter is required")
	}
	if cfg.Runner == nil {
		return nil, errors.New("runner is required")
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Queue{
		limiter:  cfg.Limiter,
		runner:   cfg.Runner,
		maxDepth: cfg.MaxDepth,
		workers:  cfg.Workers,
		clock:    cfg.Clock,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger.With("component", "queue"),
	}, nil
}

// Enqueue appends req. ctx bounds the wait only: once it is done a still
// queued entry is discarded without being executed. An entry that a drain
// has already admitted runs to completion under ctx's values, bounded by
// the provider's own timeout.
func (q *Queue) Enqueue(ctx context.Context, req *analysis.Request) (*Entry, error) {
	userID := req.UserID
	if userID == "" {
		userID = limits.AnonymousUser
	}

	entry := &Entry{
		ID:         uuid.NewString(),
		UserID:     userID,
		Request:    req,
		EnqueuedAt: q.clock.Now(),
		ctx:        ctx,
		done:       make(chan Outcome, 1),
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil, ErrShutdown
	}
	if len(q.entries) >= q.maxDepth {
		q.logger.Warn("queue full, request rejected", "user_id", userID, "max_depth", q.maxDepth)
		return nil, ErrQueueFull
	}

	q.entries = append(q.entries, entry)
	q.metrics.SetQueueDepth(len(q.entries))

	q.logger.Info("request queued",
		"entry_id", entry.ID,
		"user_id", userID,
		"position", len(q.entries))
	return entry, nil
}

// Await waits for entry's outcome. If ctx ends while the entry is still
// queued it is removed and settled with a queue timeout rejection. If a
// drain has already admitted it, Await keeps waiting for the execution
// result: an admitted request is never reported as timed out.
func (q *Queue) Await(ctx context.Context, entry *Entry) (*analysis.Result, error) {
	select {
	case o := <-entry.Done():
		return o.Result, o.Err
	case <-ctx.Done():
	}

	if !q.Remove(entry) {
		q.logger.Debug("wait deadline passed after dispatch, awaiting result", "entry_id", entry.ID)
	}
	o := <-entry.Done()
	return o.Result, o.Err
}

// Remove takes entry out of the queue if it has not been dispatched yet
// and settles it with a timeout rejection.
func (q *Queue) Remove(entry *Entry) bool {
	q.mu.Lock()
	i := slices.Index(q.entries, entry)
	if i < 0 {
		q.mu.Unlock()
		return false
	}
	q.entries = slices.Delete(q.entries, i, i+1)
	q.metrics.SetQueueDepth(len(q.entries))
	q.mu.Unlock()

	waited := q.clock.Since(entry.EnqueuedAt)
	entry.reject(timeoutRejection(waited))
	q.metrics.RecordQueueExit(exitRemoved, waited)
	return true
}

// Len returns the number of queued entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Draining reports whether a drain pass is in progress.
func (q *Queue) Draining() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.draining
}

// Drain runs one drain pass and returns the number of entries dispatched
// for execution. It returns immediately if a pass is already running or
// the queue is empty, and otherwise waits for the entries it dispatched.
func (q *Queue) Drain(ctx context.Context) int {
	q.mu.Lock()
	if q.draining || len(q.entries) == 0 {
		q.mu.Unlock()
		return 0
	}
	q.draining = true
	q.mu.Unlock()

	defer func() {
		q.mu.Lock()
		q.draining = false
		q.mu.Unlock()
	}()

	var (
		g          errgroup.Group
		slots      = semaphore.NewWeighted(int64(q.workers))
		dispatched int
	)

	for {
		// A worker slot is taken before the head is checked so that, with
		// one worker, the previous entry's tokens are counted first.
		if err := slots.Acquire(ctx, 1); err != nil {
			break
		}

		entry, ok := q.next()
		if !ok {
			slots.Release(1)
			break
		}

		dispatched++
		g.Go(func() error {
			defer slots.Release(1)
			q.run(entry)
			return nil
		})
	}

	_ = g.Wait()

	if dispatched > 0 {
		q.logger.Debug("drain pass complete", "dispatched", dispatched, "remaining", q.Len())
	}
	return dispatched
}

// next pops the first runnable entry. Expired and hard-rejected entries
// at the head are settled and skipped. It returns false when the queue is
// empty or the head is still soft-blocked.
func (q *Queue) next() (*Entry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.entries) > 0 {
		head := q.entries[0]
		waited := q.clock.Since(head.EnqueuedAt)

		if head.ctx.Err() != nil {
			q.pop()
			head.reject(timeoutRejection(waited))
			q.metrics.RecordQueueExit(exitExpired, waited)
			q.logger.Info("queued request expired", "entry_id", head.ID, "user_id", head.UserID, "waited", waited)
			continue
		}

		decision := q.limiter.CheckRateLimit(head.UserID)
		switch {
		case decision.Allowed:
			q.pop()
			q.metrics.RecordQueueExit(exitExecuted, waited)
			return head, true

		case decision.ShouldQueue:
			return nil, false

		default:
			q.pop()
			head.reject(decision.Err())
			q.metrics.RecordQueueExit(exitRejected, waited)
			q.logger.Info("queued request rejected",
				"entry_id", head.ID,
				"user_id", head.UserID,
				"reason", decision.Reason)
		}
	}
	return nil, false
}

// pop removes the head. Callers hold q.mu.
func (q *Queue) pop() {
	q.entries[0] = nil
	q.entries = q.entries[1:]
	q.metrics.SetQueueDepth(len(q.entries))
}

func (q *Queue) run(entry *Entry) {
	ctx := context.WithoutCancel(entry.ctx)
	res, err := q.runner.ExecuteQueued(ctx, entry.Request, q.clock.Since(entry.EnqueuedAt))
	if err != nil {
		entry.reject(err)
		return
	}
	entry.resolve(res)
}

// Shutdown stops accepting entries and settles everything still queued
// with ErrShutdown.
func (q *Queue) Shutdown() {
	q.mu.Lock()
	pending := q.entries
	q.entries = nil
	q.closed = true
	q.metrics.SetQueueDepth(0)
	q.mu.Unlock()

	for _, entry := range pending {
		entry.reject(ErrShutdown)
		q.metrics.RecordQueueExit(exitShutdown, q.clock.Since(entry.EnqueuedAt))
	}
	if len(pending) > 0 {
		q.logger.Warn("queue shut down with pending requests", "pending", len(pending))
	}
}

func timeoutRejection(waited time.Duration) error {
	return fmt.Errorf("queued %s: %w", waited.Round(time.Millisecond),
		&limits.RejectionError{Reason: limits.ReasonQueueTimeout, Message: limits.MessageQueueTimedOut})
}
