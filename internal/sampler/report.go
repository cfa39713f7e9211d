//go:build amd64 || 386

package sampler

// ProducerStats summarizes the readings of one producer in sequence order.
type ProducerStats struct {
	Producer uint64
	Count    int

	// First and Last are the first and last readings.
	First, Last uint64

	// MinDelta and MaxDelta span the non-regressing consecutive pairs.
	MinDelta, MaxDelta uint64

	// Regressions counts readings lower than their predecessor.
	Regressions int
}

// Report is the result of Run.
type Report struct {
	Variant   Variant
	Pinned    bool
	Producers []ProducerStats
}

// Regressions returns the total over all producers.
func (r *Report) Regressions() int {
	n := 0
	for _, p := range r.Producers {
		n += p.Regressions
	}
	return n
}

// Monotonic reports whether no producer saw the counter go backwards.
func (r *Report) Monotonic() bool {
	return r.Regressions() == 0
}

func summarize(producer uint64, ticks []uint64) ProducerStats {
	s := ProducerStats{Producer: producer, Count: len(ticks)}
	if len(ticks) == 0 {
		return s
	}
	s.First = ticks[0]
	s.Last = ticks[len(ticks)-1]

	seen := false
	for i := 1; i < len(ticks); i++ {
		prev, cur := ticks[i-1], ticks[i]
		if cur < prev {
			s.Regressions++
			continue
		}
		d := cur - prev
		if !seen || d < s.MinDelta {
			s.MinDelta = d
		}
		if d > s.MaxDelta {
			s.MaxDelta = d
		}
		seen = true
	}
	return s
}
