// Package queue holds analysis requests that hit the per-user minute limit
// and runs them, in arrival order, as the limit frees up.
//
// Drain is not reentrant. A pass re-checks the head entry against the
// limiter and either dispatches it, fails it on a hard rejection, or stops
// on a soft block, leaving the head and everything behind it for the next
// pass. Later entries never run ahead of an earlier blocked one.
//
// Admitted entries run on a bounded worker pool. With one worker the queue
// executes strictly serially and each head is checked only after the
// previous entry has finished, so its tokens are already counted.
package queue
