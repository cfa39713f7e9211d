//go:build amd64 || 386

package sampler

import "github.com/randomizedcoder/rdtsc/internal/queue"

// mpsc carries samples from many producers to the single consumer.
// ring.ShardedRing satisfies it on amd64 and fanIn on 386.
type mpsc interface {
	Write(producerID uint64, value any) bool
	TryRead() (any, bool)
}

// shardCount rounds producers up to a power of two, as ring.ShardedRing
// requires. Producer p writes to shard p, so the extra shards stay empty.
func shardCount(producers int) uint64 {
	n := uint64(1)
	for n < uint64(producers) {
		n <<= 1
	}
	return n
}

// ringCapacity spreads capacity over shards, giving each shard a power of
// two slots. shards must be a power of two.
func ringCapacity(capacity, shards uint64) uint64 {
	if capacity == 0 {
		capacity = DefaultRingCapacity
	}
	perShard := (capacity + shards - 1) / shards
	n := uint64(1)
	for n < perShard {
		n <<= 1
	}
	return n * shards
}

// fanIn gives every producer its own SPSC ring and round-robins over them
// on read. Only the consumer calls TryRead.
type fanIn struct {
	rings []*queue.RingBuffer[Sample]
	next  int
}

func newFanIn(producers int, perProducer uint64) *fanIn {
	f := &fanIn{rings: make([]*queue.RingBuffer[Sample], producers)}
	for i := range f.rings {
		f.rings[i] = queue.NewRingBuffer[Sample](int(perProducer))
	}
	return f
}

// Write panics if producerID is out of range or value is not a Sample.
func (f *fanIn) Write(producerID uint64, value any) bool {
	return f.rings[producerID].Push(value.(Sample))
}

func (f *fanIn) TryRead() (any, bool) {
	for range len(f.rings) {
		r := f.rings[f.next]
		f.next = (f.next + 1) % len(f.rings)
		if v, ok := r.Pop(); ok {
			return v, true
		}
	}
	return nil, false
}
