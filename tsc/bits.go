//go:build amd64 || 386

package tsc

// lowMask keeps the meaningful half of a 64-bit EAX/RAX value.
const lowMask = 0xFFFFFFFF

// combine64 rebuilds the counter from EDX:EAX as read on amd64, where the
// registers are 64 bits wide and only their low 32 bits carry the counter.
func combine64(high, low uint64) uint64 {
	return high<<32 | low&lowMask
}

// combine32 rebuilds the counter from EDX:EAX as read on 386. The halves
// are already 32 bits so widening is enough.
func combine32(high, low uint32) uint64 {
	return uint64(high)<<32 | uint64(low)
}
