// Package timer is the scheduling surface of the session lifecycle: a
// single-threaded event loop that runs timer callbacks and caller work one
// at a time, plus a manual fake for tests.
package timer

import (
	"context"
	"errors"
	"time"
)

// Handle identifies a scheduled callback. The zero Handle is never issued.
type Handle uint64

var ErrLoopStopped = errors.New("timer: event loop stopped")

// Scheduler schedules callbacks against wall-clock time. Cancel is
// idempotent: cancelling a fired, cancelled or zero handle is a no-op.
type Scheduler interface {
	Now() time.Time
	After(d time.Duration, fn func()) Handle
	Every(interval time.Duration, fn func()) Handle
	Cancel(h Handle)
}

// EventLoop is a Scheduler whose callbacks share one execution context with
// the work submitted through Do.
type EventLoop interface {
	Scheduler
	// Do runs fn on the loop and waits for it to return. It must not be
	// called from a loop callback.
	Do(ctx context.Context, fn func()) error
}
