// Package cancel provides stop signals cheap enough to poll between
// counter reads.
//
// A context.Context signals through a channel, and selecting on it in a
// loop that reads the time-stamp counter adds more cost than the read
// itself. AtomicCanceler turns the same signal into a single atomic load,
// and Watch bridges a context into one.
package cancel

// Canceler signals a group of goroutines to stop.
//
// Implementations must be safe for concurrent use:
//   - Multiple goroutines may call Done() concurrently
//   - Cancel() may be called concurrently with Done()
type Canceler interface {
	// Done returns true once cancellation has been triggered.
	Done() bool

	// Cancel triggers cancellation. Safe to call multiple times.
	Cancel()
}
