//go:build amd64 || 386

// Package tsc reads the CPU's Time Stamp Counter on x86 and x86_64.
//
// Three read operations are provided. They differ only in the instruction
// used to order the counter read against the surrounding code:
//   - Ticks: LFENCE; RDTSC
//   - TicksStrict: MFENCE; RDTSC (use on AMD, where LFENCE may not serialize)
//   - TicksSerialized: RDTSCP (waits for prior instructions to complete)
//
// Picking a variant is left to the caller. Detect reports the vendor and
// the relevant CPUID flags but the package never switches variants on its
// own.
//
// The counter is a per-core resource. Values read on different cores are
// only comparable when the platform provides a synchronized invariant TSC.
// The instructions may also be trapped or masked by a hypervisor or the
// OS; this package does not detect that.
//
// Only amd64 and 386 are supported. Building the package for any other
// GOARCH fails because every file is excluded by its build constraint.
package tsc
