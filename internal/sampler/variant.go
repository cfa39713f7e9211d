//go:build amd64 || 386

package sampler

import (
	"fmt"
	"strings"

	"github.com/randomizedcoder/rdtsc/tsc"
)

// Variant selects which tsc read operation a producer uses.
type Variant int

const (
	// VariantFenced uses tsc.Ticks (LFENCE; RDTSC).
	VariantFenced Variant = iota
	// VariantStrict uses tsc.TicksStrict (MFENCE; RDTSC).
	VariantStrict
	// VariantSerialized uses tsc.TicksSerialized (RDTSCP).
	VariantSerialized
)

// Variants lists every Variant in declaration order.
var Variants = []Variant{VariantFenced, VariantStrict, VariantSerialized}

func (v Variant) String() string {
	switch v {
	case VariantFenced:
		return "fenced"
	case VariantStrict:
		return "strict"
	case VariantSerialized:
		return "serialized"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// ParseVariant accepts a variant name or the instruction it is built on.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fenced", "lfence":
		return VariantFenced, nil
	case "strict", "mfence":
		return VariantStrict, nil
	case "serialized", "rdtscp":
		return VariantSerialized, nil
	}
	return 0, fmt.Errorf("sampler: unknown variant %q", s)
}

// Reader returns the read function for v, or nil if v is unknown.
func (v Variant) Reader() func() uint64 {
	switch v {
	case VariantFenced:
		return tsc.Ticks
	case VariantStrict:
		return tsc.TicksStrict
	case VariantSerialized:
		return tsc.TicksSerialized
	default:
		return nil
	}
}

// detect is replaced in tests to simulate other CPUs.
var detect = tsc.Detect

// Supported reports whether the current CPU can execute v.
func (v Variant) Supported() bool {
	f := detect()
	switch v {
	case VariantFenced, VariantStrict:
		return f.HasSSE2
	case VariantSerialized:
		return f.HasRDTSCP
	default:
		return false
	}
}
