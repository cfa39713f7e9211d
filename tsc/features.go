//go:build amd64 || 386

package tsc

import (
	"fmt"

	"github.com/klauspost/cpuid/v2"
)

const (
	vendorAMD   = "AuthenticAMD"
	vendorHygon = "HygonGenuine"
)

// Features describes the counter-related capabilities of the current CPU.
type Features struct {
	// Vendor is the CPUID vendor string, e.g. "GenuineIntel".
	Vendor string

	// HasSSE2 reports whether LFENCE and MFENCE are available.
	// Ticks and TicksStrict need them.
	HasSSE2 bool

	// HasRDTSCP reports whether TicksSerialized can be used.
	HasRDTSCP bool

	// HasInvariantTSC reports whether the counter runs at a constant rate
	// in all ACPI P-, C- and T-states. It says nothing about whether the
	// counters of different cores are synchronized.
	HasInvariantTSC bool
}

// IsAMD reports whether the vendor is AMD or Hygon, where TicksStrict
// should be preferred over Ticks.
func (f Features) IsAMD() bool {
	return f.Vendor == vendorAMD || f.Vendor == vendorHygon
}

func (f Features) String() string {
	return fmt.Sprintf("vendor=%q sse2=%t rdtscp=%t invariant_tsc=%t",
		f.Vendor, f.HasSSE2, f.HasRDTSCP, f.HasInvariantTSC)
}

// Detect returns the capabilities of the current CPU, as read once at
// startup by github.com/klauspost/cpuid/v2.
func Detect() Features {
	return fromCPUInfo(&cpuid.CPU)
}

func fromCPUInfo(c *cpuid.CPUInfo) Features {
	return Features{
		Vendor:          c.VendorString,
		HasSSE2:         c.Supports(cpuid.SSE2),
		HasRDTSCP:       c.Supports(cpuid.RDTSCP),
		HasInvariantTSC: c.Supports(cpuid.INVTSC),
	}
}
