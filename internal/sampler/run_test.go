//go:build amd64 || 386

package sampler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/randomizedcoder/rdtsc/tsc"
)

// stackRing hands values back in LIFO order and refuses writes beyond limit,
// so run has to restore sequence order and producers have to spin.
type stackRing struct {
	mu    sync.Mutex
	items []any
	limit int
}

func (s *stackRing) Write(producerID uint64, value any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) >= s.limit {
		return false
	}
	s.items = append(s.items, value)
	return true
}

func (s *stackRing) TryRead() (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return nil, false
	}
	v := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return v, true
}

func TestRunRestoresSequenceOrder(t *testing.T) {
	var counter atomic.Uint64
	read := func() uint64 { return counter.Add(1) }

	cfg := Config{Producers: 3, Samples: 200}
	report, err := run(context.Background(), cfg, &stackRing{limit: 8}, read)
	if err != nil {
		t.Fatalf("run() error: %v", err)
	}

	for _, p := range report.Producers {
		if p.Count != cfg.Samples {
			t.Errorf("producer %d: Count = %d, want %d", p.Producer, p.Count, cfg.Samples)
		}
		if p.Regressions != 0 {
			t.Errorf("producer %d: %d regressions from a strictly increasing reader", p.Producer, p.Regressions)
		}
		if p.MinDelta == 0 {
			t.Errorf("producer %d: MinDelta = 0 from a strictly increasing reader", p.Producer)
		}
	}
	if got := counter.Load(); got != uint64(cfg.Producers*cfg.Samples) {
		t.Errorf("reader called %d times, want %d", got, cfg.Producers*cfg.Samples)
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name  string
		ticks []uint64
		want  ProducerStats
	}{
		{"empty", nil, ProducerStats{Producer: 1}},
		{"single", []uint64{5}, ProducerStats{Producer: 1, Count: 1, First: 5, Last: 5}},
		{
			"increasing",
			[]uint64{10, 12, 20, 21},
			ProducerStats{Producer: 1, Count: 4, First: 10, Last: 21, MinDelta: 1, MaxDelta: 8},
		},
		{
			"equal values",
			[]uint64{7, 7, 9},
			ProducerStats{Producer: 1, Count: 3, First: 7, Last: 9, MinDelta: 0, MaxDelta: 2},
		},
		{
			"regression",
			[]uint64{100, 110, 50, 53},
			ProducerStats{Producer: 1, Count: 4, First: 100, Last: 53, MinDelta: 3, MaxDelta: 10, Regressions: 1},
		},
		{
			"only regressions",
			[]uint64{3, 2, 1},
			ProducerStats{Producer: 1, Count: 3, First: 3, Last: 1, Regressions: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := summarize(1, tt.ticks); got != tt.want {
				t.Errorf("summarize(%v) = %+v, want %+v", tt.ticks, got, tt.want)
			}
		})
	}
}

func TestReportRegressions(t *testing.T) {
	r := &Report{Producers: []ProducerStats{{Regressions: 2}, {}, {Regressions: 1}}}
	if got := r.Regressions(); got != 3 {
		t.Errorf("Regressions() = %d, want 3", got)
	}
	if r.Monotonic() {
		t.Error("Monotonic() = true with regressions")
	}
	if !(&Report{Producers: []ProducerStats{{}, {}}}).Monotonic() {
		t.Error("Monotonic() = false without regressions")
	}
}

func TestShardCount(t *testing.T) {
	tests := []struct {
		producers int
		want      uint64
	}{
		{1, 1}, {2, 2}, {3, 4}, {4, 4}, {5, 8}, {7, 8}, {8, 8}, {9, 16},
	}
	for _, tt := range tests {
		if got := shardCount(tt.producers); got != tt.want {
			t.Errorf("shardCount(%d) = %d, want %d", tt.producers, got, tt.want)
		}
	}
}

func TestRingCapacity(t *testing.T) {
	tests := []struct {
		capacity, shards, want uint64
	}{
		{0, 1, DefaultRingCapacity},
		{0, 4, DefaultRingCapacity},
		{1024, 4, 1024},
		{100, 4, 128},
		{10, 4, 16},
		{3, 4, 4},
		{5, 8, 8},
	}
	for _, tt := range tests {
		got := ringCapacity(tt.capacity, tt.shards)
		if got != tt.want {
			t.Errorf("ringCapacity(%d, %d) = %d, want %d", tt.capacity, tt.shards, got, tt.want)
		}
		if perShard := got / tt.shards; perShard&(perShard-1) != 0 {
			t.Errorf("ringCapacity(%d, %d): %d slots per shard is not a power of two", tt.capacity, tt.shards, perShard)
		}
	}
}

// Every producer count must get a transport, including ones that are not
// a power of two.
func TestNewTransport(t *testing.T) {
	for producers := 1; producers <= 9; producers++ {
		if _, err := newTransport(producers, 0); err != nil {
			t.Errorf("newTransport(%d, 0) error: %v", producers, err)
		}
		capacity := uint64(16 * producers)
		if _, err := newTransport(producers, capacity); err != nil {
			t.Errorf("newTransport(%d, %d) error: %v", producers, capacity, err)
		}
	}
}

func TestFanIn(t *testing.T) {
	f := newFanIn(3, 2)

	for p := uint64(0); p < 3; p++ {
		for seq := 0; seq < 2; seq++ {
			if !f.Write(p, Sample{Producer: p, Seq: seq}) {
				t.Fatalf("Write(%d) seq %d = false on non-full ring", p, seq)
			}
		}
		if f.Write(p, Sample{Producer: p}) {
			t.Errorf("Write(%d) = true on full ring", p)
		}
	}

	// Per-producer FIFO, producers visited in turn.
	next := make([]int, 3)
	for i := 0; i < 6; i++ {
		v, ok := f.TryRead()
		if !ok {
			t.Fatalf("TryRead() = false after %d reads, want 6", i)
		}
		s := v.(Sample)
		if s.Seq != next[s.Producer] {
			t.Errorf("producer %d: Seq = %d, want %d", s.Producer, s.Seq, next[s.Producer])
		}
		next[s.Producer]++
	}
	if _, ok := f.TryRead(); ok {
		t.Error("TryRead() = true on drained fan-in")
	}
}

func TestRunFanIn(t *testing.T) {
	var counter atomic.Uint64
	read := func() uint64 { return counter.Add(1) }

	cfg := Config{Producers: 3, Samples: 500}
	report, err := run(context.Background(), cfg, newFanIn(cfg.Producers, 4), read)
	if err != nil {
		t.Fatalf("run() error: %v", err)
	}
	for _, p := range report.Producers {
		if p.Count != cfg.Samples || p.Regressions != 0 {
			t.Errorf("producer %d: %+v, want %d samples and no regressions", p.Producer, p, cfg.Samples)
		}
	}
}

func withFeatures(t *testing.T, f tsc.Features) {
	t.Helper()
	orig := detect
	detect = func() tsc.Features { return f }
	t.Cleanup(func() { detect = orig })
}

func TestValidateUnsupportedVariant(t *testing.T) {
	tests := []struct {
		name     string
		features tsc.Features
		variant  Variant
		wantErr  bool
	}{
		{"serialized without rdtscp", tsc.Features{HasSSE2: true}, VariantSerialized, true},
		{"serialized with rdtscp", tsc.Features{HasSSE2: true, HasRDTSCP: true}, VariantSerialized, false},
		{"fenced without sse2", tsc.Features{HasRDTSCP: true}, VariantFenced, true},
		{"strict without sse2", tsc.Features{}, VariantStrict, true},
		{"strict with sse2", tsc.Features{HasSSE2: true}, VariantStrict, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withFeatures(t, tt.features)
			cfg := Config{Variant: tt.variant, Producers: 2, Samples: 10}

			err := cfg.Validate()
			if tt.wantErr != errors.Is(err, ErrUnsupported) {
				t.Errorf("Validate() = %v, want ErrUnsupported: %t", err, tt.wantErr)
			}
			if tt.wantErr {
				// Run must refuse before any producer executes the instruction.
				if _, err := Run(context.Background(), cfg); !errors.Is(err, ErrUnsupported) {
					t.Errorf("Run() = %v, want ErrUnsupported", err)
				}
			}
		})
	}
}
