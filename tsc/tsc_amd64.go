//go:build amd64

package tsc

// Implemented in tsc_amd64.s. Each returns the raw RDX and RAX registers.
func rdtscLfence() (high, low uint64)
func rdtscMfence() (high, low uint64)
func rdtscp() (high, low uint64, aux uint32)

// Ticks returns the Time Stamp Counter, read with LFENCE; RDTSC.
//
// The fence keeps the read from running ahead of earlier loads. It does not
// order the read against stores, and some AMD processors do not honor it
// for this purpose; use TicksStrict there.
func Ticks() uint64 {
	return combine64(rdtscLfence())
}

// TicksStrict returns the Time Stamp Counter, read with MFENCE; RDTSC.
//
// The full fence orders the read after all earlier loads and stores, which
// serializes it on processors where LFENCE is not enough.
func TicksStrict() uint64 {
	return combine64(rdtscMfence())
}

// TicksSerialized returns the Time Stamp Counter, read with RDTSCP.
//
// RDTSCP waits until all earlier instructions have executed before reading
// the counter. It is the most accurate choice for interval timing and also
// the most expensive. It faults on CPUs without RDTSCP (see Detect) and may
// be masked by the OS or a hypervisor.
func TicksSerialized() uint64 {
	high, low, _ := rdtscp()
	return combine64(high, low)
}

// TicksSerializedAux is TicksSerialized that also returns IA32_TSC_AUX,
// which RDTSCP loads into ECX. Linux stores node<<12 | cpu there, so aux
// identifies the core the counter was read on.
func TicksSerializedAux() (ticks uint64, aux uint32) {
	high, low, aux := rdtscp()
	return combine64(high, low), aux
}
