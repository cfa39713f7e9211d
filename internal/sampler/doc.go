//go:build amd64 || 386

// Package sampler reads the time-stamp counter from several goroutines
// and reports, per goroutine, whether the observed values were
// monotonic.
//
// Each producer goroutine takes a fixed number of back-to-back readings
// and publishes them to the goroutine that calls Run, the single consumer.
// On amd64 the transport is a sharded MPSC ring
// (github.com/randomizedcoder/go-lock-free-ring) with one shard per
// producer, padded to a power of two. On 386 that ring's 64-bit atomics
// are unaligned, so each producer gets its own internal/queue SPSC ring
// instead.
//
// The counter is per core. An unpinned producer can migrate between cores,
// so regressions in its report can mean that core counters are not
// synchronized. Set Config.Pin to lock each producer to one CPU (Linux
// only; elsewhere pinning is a no-op).
package sampler
