//go:build amd64 || 386

package sampler

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/randomizedcoder/rdtsc/internal/cancel"
)

// DefaultRingCapacity is the total ring capacity used when
// Config.RingCapacity is zero.
const DefaultRingCapacity = 4096

var (
	// ErrInvalidConfig is wrapped by every error returned from Config.Validate.
	ErrInvalidConfig = errors.New("sampler: invalid config")

	// ErrUnsupported is wrapped when the CPU cannot execute the variant.
	ErrUnsupported = errors.New("sampler: variant not supported on this CPU")

	// ErrPin is wrapped when a producer cannot pin its thread.
	ErrPin = errors.New("sampler: cannot pin thread")
)

// Config controls a sampling run.
type Config struct {
	// Variant selects the read operation.
	Variant Variant

	// Producers is the number of goroutines reading the counter.
	Producers int

	// Samples is the number of readings each producer takes.
	Samples int

	// Pin locks every producer to its own OS thread and pins that thread
	// to one CPU.
	Pin bool

	// RingCapacity is the total capacity shared by all shards.
	// Zero means DefaultRingCapacity.
	RingCapacity uint64
}

// Validate reports the first problem with c. A variant the CPU cannot
// execute is rejected with ErrUnsupported, since running it would fault.
func (c Config) Validate() error {
	switch {
	case c.Producers < 1:
		return fmt.Errorf("%w: producers = %d, need at least 1", ErrInvalidConfig, c.Producers)
	case c.Samples < 1:
		return fmt.Errorf("%w: samples = %d, need at least 1", ErrInvalidConfig, c.Samples)
	case c.Variant.Reader() == nil:
		return fmt.Errorf("%w: unknown variant %v", ErrInvalidConfig, c.Variant)
	case c.RingCapacity != 0 && c.RingCapacity < uint64(c.Producers):
		return fmt.Errorf("%w: ring capacity %d is smaller than %d producers",
			ErrInvalidConfig, c.RingCapacity, c.Producers)
	case !c.Variant.Supported():
		return fmt.Errorf("%w: %v", ErrUnsupported, c.Variant)
	}
	return nil
}

// Sample is one counter reading as it travels to the consumer.
type Sample struct {
	Producer uint64
	Seq      int
	Ticks    uint64
}

// Run samples the counter as described by cfg and blocks until every
// producer has published all of its samples, or ctx is done.
//
// When ctx is done first, Run returns ctx.Err() and no report.
func Run(ctx context.Context, cfg Config) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r, err := newTransport(cfg.Producers, cfg.RingCapacity)
	if err != nil {
		return nil, err
	}

	return run(ctx, cfg, r, cfg.Variant.Reader())
}

func run(ctx context.Context, cfg Config, r mpsc, read func() uint64) (*Report, error) {
	stop, release := cancel.Watch(ctx)
	defer release()

	errs := make([]error, cfg.Producers)

	var wg sync.WaitGroup
	for p := range cfg.Producers {
		wg.Go(func() {
			errs[p] = produce(r, uint64(p), cfg, read, stop)
		})
	}

	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()

	ticks := make([][]uint64, cfg.Producers)
	for i := range ticks {
		ticks[i] = make([]uint64, cfg.Samples)
	}

	consume(r, ticks, cfg.Producers*cfg.Samples, stop, finished)
	stop.Cancel()
	<-finished

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	report := &Report{
		Variant:   cfg.Variant,
		Pinned:    cfg.Pin,
		Producers: make([]ProducerStats, cfg.Producers),
	}
	for p, t := range ticks {
		report.Producers[p] = summarize(uint64(p), t)
	}
	return report, nil
}

// produce takes cfg.Samples readings and publishes each one, spinning
// while the producer's shard is full.
func produce(r mpsc, producer uint64, cfg Config, read func() uint64, stop cancel.Canceler) error {
	if cfg.Pin {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		if err := pinThread(int(producer)); err != nil {
			return err
		}
	}

	for seq := range cfg.Samples {
		s := Sample{Producer: producer, Seq: seq, Ticks: read()}
		for !r.Write(producer, s) {
			if stop.Done() {
				return nil
			}
			runtime.Gosched()
		}
	}
	return nil
}

// consume reads until want samples arrived, stop is set, or every producer
// finished and the ring is drained. Samples are stored by sequence number
// so shard interleaving does not affect per-producer order.
func consume(r mpsc, ticks [][]uint64, want int, stop cancel.Canceler, finished <-chan struct{}) {
	for received := 0; received < want; {
		v, ok := r.TryRead()
		if !ok {
			if stop.Done() {
				return
			}
			select {
			case <-finished:
				if v, ok = r.TryRead(); !ok {
					return
				}
			default:
				runtime.Gosched()
				continue
			}
		}

		s, ok := v.(Sample)
		if !ok || s.Producer >= uint64(len(ticks)) || s.Seq >= len(ticks[s.Producer]) {
			continue
		}
		ticks[s.Producer][s.Seq] = s.Ticks
		received++
	}
}
