package queue

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vadapro/analyzer/pkg/analysis"
	"vadapro/analyzer/pkg/limits"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// runnerSpy records executed queries in order.
type runnerSpy struct {
	mu      sync.Mutex
	queries []string
	block   chan struct{}
	err     error

	running    atomic.Int32
	maxRunning atomic.Int32
}

func (r *runnerSpy) ExecuteQueued(ctx context.Context, req *analysis.Request, waited time.Duration) (*analysis.Result, error) {
	n := r.running.Add(1)
	defer r.running.Add(-1)
	for {
		m := r.maxRunning.Load()
		if n <= m || r.maxRunning.CompareAndSwap(m, n) {
			break
		}
	}

	r.mu.Lock()
	r.queries = append(r.queries, req.Query)
	block := r.block
	r.mu.Unlock()

	if block != nil {
		<-block
	}
	if r.err != nil {
		return nil, r.err
	}
	return &analysis.Result{Success: true, Response: "answer to " + req.Query}, nil
}

func (r *runnerSpy) executed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.queries...)
}

func newManager(t *testing.T, clock quartz.Clock, lim limits.Limits) *limits.Manager {
	t.Helper()
	m, err := limits.NewManager(limits.Config{Limits: lim, Clock: clock, Logger: discard})
	require.NoError(t, err)
	return m
}

func newQueue(t *testing.T, lim limits.Limits, runner Runner, depth, workers int) (*Queue, *limits.Manager, *quartz.Mock) {
	t.Helper()

	clock := quartz.NewMock(t)
	clock.Set(time.Date(2030, time.May, 10, 9, 30, 0, 0, time.UTC))
	manager := newManager(t, clock, lim)

	q, err := New(Config{
		Limiter:  manager,
		Runner:   runner,
		MaxDepth: depth,
		Workers:  workers,
		Clock:    clock,
		Logger:   discard,
	})
	require.NoError(t, err)
	return q, manager, clock
}

func enqueue(t *testing.T, q *Queue, user string, queries ...string) []*Entry {
	t.Helper()
	out := make([]*Entry, 0, len(queries))
	for _, query := range queries {
		e, err := q.Enqueue(context.Background(), &analysis.Request{Query: query, UserID: user})
		require.NoError(t, err)
		out = append(out, e)
	}
	return out
}

func settled(e *Entry) (Outcome, bool) {
	select {
	case o := <-e.Done():
		return o, true
	default:
		return Outcome{}, false
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{Runner: &runnerSpy{}})
	assert.Error(t, err)
	_, err = New(Config{Limiter: newManager(t, quartz.NewMock(t), limits.Limits{RequestsPerMinute: 1, RequestsPerDay: 1, MaxTokensPerMinute: 1})})
	assert.Error(t, err)
}

func TestDrain_FIFO(t *testing.T) {
	runner := &runnerSpy{}
	q, manager, clock := newQueue(t, limits.Limits{RequestsPerMinute: 1, RequestsPerDay: 100, MaxTokensPerMinute: 100000}, runner, 10, 1)

	require.True(t, manager.CheckRateLimit("alice").Allowed)
	entries := enqueue(t, q, "alice", "A", "B", "C")

	assert.Zero(t, q.Drain(context.Background()), "head is still soft-blocked")
	assert.Equal(t, 3, q.Len())

	clock.Advance(61 * time.Second)
	assert.Equal(t, 1, q.Drain(context.Background()))
	assert.Equal(t, []string{"A"}, runner.executed())
	assert.Equal(t, 2, q.Len())

	o, ok := settled(entries[0])
	require.True(t, ok)
	require.NoError(t, o.Err)
	assert.Equal(t, "answer to A", o.Result.Response)

	_, ok = settled(entries[1])
	assert.False(t, ok)

	clock.Advance(61 * time.Second)
	q.Drain(context.Background())
	clock.Advance(61 * time.Second)
	q.Drain(context.Background())
	assert.Equal(t, []string{"A", "B", "C"}, runner.executed())
	assert.Zero(t, q.Len())
}

func TestDrain_OtherUsersWaitBehindBlockedHead(t *testing.T) {
	runner := &runnerSpy{}
	q, manager, _ := newQueue(t, limits.Limits{RequestsPerMinute: 1, RequestsPerDay: 100, MaxTokensPerMinute: 100000}, runner, 10, 1)

	require.True(t, manager.CheckRateLimit("alice").Allowed)
	enqueue(t, q, "alice", "A")
	enqueue(t, q, "bob", "B")

	assert.Zero(t, q.Drain(context.Background()))
	assert.Empty(t, runner.executed())
	assert.Equal(t, 2, q.Len())
}

func TestDrain_HardRejectionContinues(t *testing.T) {
	runner := &runnerSpy{}
	q, manager, clock := newQueue(t, limits.Limits{RequestsPerMinute: 1, RequestsPerDay: 1, MaxTokensPerMinute: 100000}, runner, 10, 1)

	require.True(t, manager.CheckRateLimit("alice").Allowed)
	entries := enqueue(t, q, "alice", "A")
	enqueue(t, q, "bob", "B")

	clock.Advance(61 * time.Second)
	assert.Equal(t, 1, q.Drain(context.Background()))

	o, ok := settled(entries[0])
	require.True(t, ok)
	rej, ok := limits.AsRejection(o.Err)
	require.True(t, ok)
	assert.Equal(t, limits.ReasonDailyLimit, rej.Reason)

	assert.Equal(t, []string{"B"}, runner.executed())
	assert.Zero(t, q.Len())
}

func TestDrain_TokenBudgetRejectsQueued(t *testing.T) {
	runner := &runnerSpy{}
	q, manager, clock := newQueue(t, limits.Limits{RequestsPerMinute: 1, RequestsPerDay: 100, MaxTokensPerMinute: 10}, runner, 10, 1)

	require.True(t, manager.CheckRateLimit("alice").Allowed)
	entries := enqueue(t, q, "alice", "A")

	clock.Advance(30 * time.Second)
	manager.RecordTokens(10)
	clock.Advance(31 * time.Second)
	q.Drain(context.Background())

	o, ok := settled(entries[0])
	require.True(t, ok)
	assert.Equal(t, analysis.ErrorTypeQuotaExceeded, analysis.Classify(o.Err))
	assert.Empty(t, runner.executed())
}

func TestDrain_ExpiredHeadIsDiscarded(t *testing.T) {
	runner := &runnerSpy{}
	q, _, _ := newQueue(t, limits.Limits{RequestsPerMinute: 5, RequestsPerDay: 100, MaxTokensPerMinute: 100000}, runner, 10, 1)

	ctx, cancel := context.WithCancel(context.Background())
	expired, err := q.Enqueue(ctx, &analysis.Request{Query: "A", UserID: "alice"})
	require.NoError(t, err)
	enqueue(t, q, "alice", "B")
	cancel()

	assert.Equal(t, 1, q.Drain(context.Background()))
	assert.Equal(t, []string{"B"}, runner.executed())

	o, ok := settled(expired)
	require.True(t, ok)
	rej, ok := limits.AsRejection(o.Err)
	require.True(t, ok)
	assert.Equal(t, limits.ReasonQueueTimeout, rej.Reason)
}

func TestDrain_ExecutionFailureSettlesEntry(t *testing.T) {
	boom := errors.New("provider down")
	runner := &runnerSpy{err: boom}
	q, _, _ := newQueue(t, limits.Limits{RequestsPerMinute: 5, RequestsPerDay: 100, MaxTokensPerMinute: 100000}, runner, 10, 1)

	entries := enqueue(t, q, "alice", "A", "B")
	assert.Equal(t, 2, q.Drain(context.Background()))

	for _, e := range entries {
		o, ok := settled(e)
		require.True(t, ok)
		assert.ErrorIs(t, o.Err, boom)
	}
}

func TestDrain_NotReentrant(t *testing.T) {
	runner := &runnerSpy{block: make(chan struct{})}
	q, _, _ := newQueue(t, limits.Limits{RequestsPerMinute: 5, RequestsPerDay: 100, MaxTokensPerMinute: 100000}, runner, 10, 1)

	enqueue(t, q, "alice", "A", "B")

	done := make(chan int)
	go func() { done <- q.Drain(context.Background()) }()

	require.Eventually(t, func() bool { return len(runner.executed()) == 1 }, time.Second, time.Millisecond)
	assert.True(t, q.Draining())
	assert.Zero(t, q.Drain(context.Background()))

	close(runner.block)
	assert.Equal(t, 2, <-done)
	assert.False(t, q.Draining())
}

func TestDrain_SerialByDefault(t *testing.T) {
	runner := &runnerSpy{}
	q, _, _ := newQueue(t, limits.Limits{RequestsPerMinute: 10, RequestsPerDay: 100, MaxTokensPerMinute: 100000}, runner, 10, 1)

	enqueue(t, q, "alice", "A", "B", "C", "D")
	assert.Equal(t, 4, q.Drain(context.Background()))
	assert.Equal(t, []string{"A", "B", "C", "D"}, runner.executed())
	assert.Equal(t, int32(1), runner.maxRunning.Load())
}

func TestDrain_BoundedWorkers(t *testing.T) {
	runner := &runnerSpy{block: make(chan struct{})}
	q, _, _ := newQueue(t, limits.Limits{RequestsPerMinute: 10, RequestsPerDay: 100, MaxTokensPerMinute: 100000}, runner, 10, 2)

	enqueue(t, q, "alice", "A", "B", "C")

	done := make(chan int)
	go func() { done <- q.Drain(context.Background()) }()

	require.Eventually(t, func() bool { return runner.running.Load() == 2 }, time.Second, time.Millisecond)
	close(runner.block)
	assert.Equal(t, 3, <-done)
	assert.Equal(t, int32(2), runner.maxRunning.Load())
}

func TestEnqueue_Full(t *testing.T) {
	q, _, _ := newQueue(t, limits.Limits{RequestsPerMinute: 1, RequestsPerDay: 100, MaxTokensPerMinute: 100}, &runnerSpy{}, 2, 1)

	enqueue(t, q, "alice", "A", "B")
	_, err := q.Enqueue(context.Background(), &analysis.Request{Query: "C", UserID: "alice"})
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Equal(t, analysis.ErrorTypeRateLimit, analysis.Classify(err))
}

func TestEnqueue_AnonymousUser(t *testing.T) {
	q, _, _ := newQueue(t, limits.Limits{RequestsPerMinute: 1, RequestsPerDay: 100, MaxTokensPerMinute: 100}, &runnerSpy{}, 2, 1)

	entries := enqueue(t, q, "", "A")
	assert.Equal(t, limits.AnonymousUser, entries[0].UserID)
}

func TestAwait_TimeoutRemovesEntry(t *testing.T) {
	q, manager, _ := newQueue(t, limits.Limits{RequestsPerMinute: 1, RequestsPerDay: 100, MaxTokensPerMinute: 100000}, &runnerSpy{}, 10, 1)
	require.True(t, manager.CheckRateLimit("alice").Allowed)

	ctx, cancel := context.WithCancel(context.Background())
	entry, err := q.Enqueue(ctx, &analysis.Request{Query: "A", UserID: "alice"})
	require.NoError(t, err)
	cancel()

	res, err := q.Await(ctx, entry)
	assert.Nil(t, res)
	assert.Equal(t, limits.MessageQueueTimedOut, analysis.Message(err))
	assert.Zero(t, q.Len())
}

// gatedRunner blocks each execution until release is closed and records
// whether the execution context was cancelled meanwhile.
type gatedRunner struct {
	started chan struct{}
	release chan struct{}
	ctxErr  error
}

func (r *gatedRunner) ExecuteQueued(ctx context.Context, req *analysis.Request, waited time.Duration) (*analysis.Result, error) {
	close(r.started)
	select {
	case <-r.release:
	case <-ctx.Done():
	}
	r.ctxErr = ctx.Err()
	if r.ctxErr != nil {
		return nil, r.ctxErr
	}
	return &analysis.Result{Success: true, Response: "answer to " + req.Query}, nil
}

func TestAwait_DeadlineAfterDispatchKeepsExecution(t *testing.T) {
	runner := &gatedRunner{started: make(chan struct{}), release: make(chan struct{})}
	q, manager, _ := newQueue(t, limits.Limits{RequestsPerMinute: 5, RequestsPerDay: 100, MaxTokensPerMinute: 100000}, runner, 10, 1)

	ctx, cancel := context.WithCancel(context.Background())
	entry, err := q.Enqueue(ctx, &analysis.Request{Query: "A", UserID: "alice"})
	require.NoError(t, err)

	drained := make(chan int, 1)
	go func() { drained <- q.Drain(context.Background()) }()
	<-runner.started

	// The wait deadline passes while the admitted request is executing.
	cancel()

	type awaited struct {
		res *analysis.Result
		err error
	}
	out := make(chan awaited, 1)
	go func() {
		res, err := q.Await(ctx, entry)
		out <- awaited{res, err}
	}()

	assert.Never(t, func() bool { return len(out) > 0 }, 50*time.Millisecond, 5*time.Millisecond,
		"Await must wait for the admitted execution")

	close(runner.release)
	got := <-out
	require.NoError(t, got.err)
	assert.Equal(t, "answer to A", got.res.Response)
	assert.NoError(t, runner.ctxErr, "execution context must not inherit the wait deadline")
	assert.Equal(t, 1, <-drained)
	assert.Equal(t, int64(1), manager.Stats().TotalRequestsToday)
}

func TestAwait_Result(t *testing.T) {
	q, _, _ := newQueue(t, limits.Limits{RequestsPerMinute: 5, RequestsPerDay: 100, MaxTokensPerMinute: 100000}, &runnerSpy{}, 10, 1)

	entries := enqueue(t, q, "alice", "A")
	q.Drain(context.Background())

	res, err := q.Await(context.Background(), entries[0])
	require.NoError(t, err)
	assert.Equal(t, "answer to A", res.Response)
}

func TestShutdown(t *testing.T) {
	q, manager, _ := newQueue(t, limits.Limits{RequestsPerMinute: 1, RequestsPerDay: 100, MaxTokensPerMinute: 100000}, &runnerSpy{}, 10, 1)
	require.True(t, manager.CheckRateLimit("alice").Allowed)

	entries := enqueue(t, q, "alice", "A", "B")
	q.Shutdown()

	for _, e := range entries {
		o, ok := settled(e)
		require.True(t, ok)
		assert.ErrorIs(t, o.Err, ErrShutdown)
	}
	_, err := q.Enqueue(context.Background(), &analysis.Request{Query: "C"})
	assert.ErrorIs(t, err, ErrShutdown)
}
