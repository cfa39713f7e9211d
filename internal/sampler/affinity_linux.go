//go:build linux && (amd64 || 386)

package sampler

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// pinThread pins the calling OS thread to the n-th CPU (modulo the count)
// of the process's current affinity mask, so pinning also works inside a
// restricted cpuset. The caller must hold the thread with
// runtime.LockOSThread.
func pinThread(n int) error {
	var allowed unix.CPUSet
	if err := unix.SchedGetaffinity(0, &allowed); err != nil {
		return fmt.Errorf("%w: get affinity: %w", ErrPin, err)
	}
	count := allowed.Count()
	if count == 0 {
		return fmt.Errorf("%w: empty affinity mask", ErrPin)
	}

	cpu := nthCPU(&allowed, n%count)
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("%w: cpu %d: %w", ErrPin, cpu, err)
	}
	return nil
}

// nthCPU returns the index of the n-th (0-based) CPU present in set.
func nthCPU(set *unix.CPUSet, n int) int {
	for cpu := 0; ; cpu++ {
		if set.IsSet(cpu) {
			if n == 0 {
				return cpu
			}
			n--
		}
	}
}
