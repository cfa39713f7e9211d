// Package queue provides a bounded single-producer single-consumer ring.
//
// RingBuffer indexes are typed atomic.Uint64 values, which the compiler
// keeps 64-bit aligned on every architecture, so the ring is safe on 386
// where plain uint64 fields passed to atomic.LoadUint64 may not be.
//
// # Contract
//
// Exactly one goroutine may call Push and exactly one may call Pop. They
// may be the same goroutine. A concurrent second caller panics.
package queue

import "sync/atomic"

// RingBuffer is a bounded lock-free SPSC queue.
type RingBuffer[T any] struct {
	buf  []T
	mask uint64

	// Padding keeps the producer and consumer indexes on separate
	// cache lines.
	_pad0 [56]byte //nolint:unused

	head atomic.Uint64 // next slot to write, owned by the producer

	_pad1 [56]byte //nolint:unused

	tail atomic.Uint64 // next slot to read, owned by the consumer

	_pad2 [56]byte //nolint:unused

	pushActive atomic.Uint32
	popActive  atomic.Uint32
}

// NewRingBuffer creates a RingBuffer holding at least size items.
// The capacity is rounded up to the next power of two.
func NewRingBuffer[T any](size int) *RingBuffer[T] {
	n := uint64(1)
	for n < uint64(size) {
		n <<= 1
	}
	return &RingBuffer[T]{
		buf:  make([]T, n),
		mask: n - 1,
	}
}

// Push appends v and reports false if the ring is full.
func (r *RingBuffer[T]) Push(v T) bool {
	if !r.pushActive.CompareAndSwap(0, 1) {
		panic("queue: concurrent Push on SPSC RingBuffer")
	}
	defer r.pushActive.Store(0)

	head := r.head.Load()
	if head-r.tail.Load() >= uint64(len(r.buf)) {
		return false
	}
	r.buf[head&r.mask] = v
	r.head.Store(head + 1)
	return true
}

// Pop removes the oldest item and reports false if the ring is empty.
func (r *RingBuffer[T]) Pop() (T, bool) {
	if !r.popActive.CompareAndSwap(0, 1) {
		panic("queue: concurrent Pop on SPSC RingBuffer")
	}
	defer r.popActive.Store(0)

	tail := r.tail.Load()
	if tail >= r.head.Load() {
		var zero T
		return zero, false
	}
	v := r.buf[tail&r.mask]
	// Drop the reference so the slot does not pin v.
	var zero T
	r.buf[tail&r.mask] = zero
	r.tail.Store(tail + 1)
	return v, true
}

// Len returns the number of queued items. It may be stale by the time it
// returns.
func (r *RingBuffer[T]) Len() int {
	return int(r.head.Load() - r.tail.Load())
}

// Cap returns the capacity.
func (r *RingBuffer[T]) Cap() int {
	return len(r.buf)
}
