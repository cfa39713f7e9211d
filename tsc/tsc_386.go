//go:build 386

package tsc

// Implemented in tsc_386.s. Each returns the raw EDX and EAX registers.
func rdtscLfence() (high, low uint32)
func rdtscMfence() (high, low uint32)
func rdtscp() (high, low, aux uint32)

// Ticks returns the Time Stamp Counter, read with LFENCE; RDTSC.
//
// The fence keeps the read from running ahead of earlier loads. It does not
// order the read against stores, and some AMD processors do not honor it
// for this purpose; use TicksStrict there. LFENCE requires SSE2.
func Ticks() uint64 {
	return combine32(rdtscLfence())
}

// TicksStrict returns the Time Stamp Counter, read with MFENCE; RDTSC.
// MFENCE requires SSE2.
func TicksStrict() uint64 {
	return combine32(rdtscMfence())
}

// TicksSerialized returns the Time Stamp Counter, read with RDTSCP.
// It faults on CPUs without RDTSCP (see Detect).
func TicksSerialized() uint64 {
	high, low, _ := rdtscp()
	return combine32(high, low)
}

// TicksSerializedAux is TicksSerialized that also returns IA32_TSC_AUX.
func TicksSerializedAux() (ticks uint64, aux uint32) {
	high, low, aux := rdtscp()
	return combine32(high, low), aux
}
