//go:build amd64

package sampler

import (
	"fmt"

	ring "github.com/randomizedcoder/go-lock-free-ring"
)

// newTransport builds a sharded MPSC ring with one shard per producer,
// padded to a power of two.
func newTransport(producers int, capacity uint64) (mpsc, error) {
	shards := shardCount(producers)
	r, err := ring.NewShardedRing(ringCapacity(capacity, shards), shards)
	if err != nil {
		return nil, fmt.Errorf("sampler: create ring: %w", err)
	}
	return r, nil
}
