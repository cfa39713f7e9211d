package cancel

import (
	"context"
	"sync/atomic"
)

// AtomicCanceler is a Canceler backed by an atomic.Bool.
// Done is a single atomic load.
type AtomicCanceler struct {
	done atomic.Bool
}

// NewAtomic creates an AtomicCanceler that has not been cancelled.
func NewAtomic() *AtomicCanceler {
	return &AtomicCanceler{}
}

// Done returns true once Cancel has been called.
func (a *AtomicCanceler) Done() bool {
	return a.done.Load()
}

// Cancel triggers cancellation. Later calls are no-ops.
func (a *AtomicCanceler) Cancel() {
	a.done.Store(true)
}

// Watch returns an AtomicCanceler that is cancelled when ctx is done, or
// when Cancel is called directly. The returned release func detaches it
// from ctx and must be called once the canceler is no longer polled.
//
// If ctx is already done, the canceler is cancelled before Watch returns.
func Watch(ctx context.Context) (c *AtomicCanceler, release func()) {
	c = NewAtomic()
	if ctx.Err() != nil {
		c.Cancel()
		return c, func() {}
	}
	stop := context.AfterFunc(ctx, c.Cancel)
	return c, func() { stop() }
}
