package queue

import (
	"context"
	"sync"
	"time"

	"vadapro/analyzer/pkg/analysis"
)

// Outcome is how a queued entry was settled.
type Outcome struct {
	Result *analysis.Result
	Err    error
}

// Entry is a queued request. It is settled exactly once, either with a
// result or an error.
type Entry struct {
	ID         string
	UserID     string
	Request    *analysis.Request
	EnqueuedAt time.Time

	ctx  context.Context
	done chan Outcome
	once sync.Once
}

// Done receives the entry's outcome once it is settled.
func (e *Entry) Done() <-chan Outcome {
	return e.done
}

func (e *Entry) resolve(res *analysis.Result) bool {
	return e.settle(Outcome{Result: res})
}

func (e *Entry) reject(err error) bool {
	return e.settle(Outcome{Err: err})
}

func (e *Entry) settle(o Outcome) bool {
	settled := false
	e.once.Do(func() {
		e.done <- o
		settled = true
	})
	return settled
}
