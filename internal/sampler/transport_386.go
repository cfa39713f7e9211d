//go:build 386

package sampler

// newTransport uses one SPSC ring per producer. go-lock-free-ring keeps
// its shard positions in plain uint64 fields, which 386 does not align for
// 64-bit atomics.
func newTransport(producers int, capacity uint64) (mpsc, error) {
	shards := shardCount(producers)
	return newFanIn(producers, ringCapacity(capacity, shards)/shards), nil
}
