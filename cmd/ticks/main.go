//go:build amd64 || 386

// Command ticks measures the cost of the time-stamp counter read variants
// and, optionally, samples the counter from several goroutines.
//
// Usage:
//
//	go run ./cmd/ticks -n 10000000
//	go run ./cmd/ticks -variant strict -producers 4 -samples 100000 -pin
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"github.com/randomizedcoder/rdtsc/internal/sampler"
	"github.com/randomizedcoder/rdtsc/tsc"
)

func main() {
	iterations := flag.Int("n", 10_000_000, "number of reads per variant")
	variantName := flag.String("variant", "all", "variant to measure: all, fenced, strict or serialized")
	producers := flag.Int("producers", 0, "goroutines for the sampling run (0 disables it)")
	samples := flag.Int("samples", 100_000, "readings per producer in the sampling run")
	pin := flag.Bool("pin", false, "pin each producer to its own CPU (Linux)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	log := newLogger(*debug)

	variants, err := selectVariants(*variantName)
	if err != nil {
		log.Error().Err(err).Msg("invalid -variant")
		os.Exit(2)
	}
	if err := checkCounts(*iterations, *producers, *samples); err != nil {
		log.Error().Err(err).Msg("invalid flags")
		os.Exit(2)
	}

	features := tsc.Detect()
	log.Debug().Stringer("features", features).Msg("detected cpu")

	fmt.Printf("Benchmarking counter reads (%d iterations)\n", *iterations)
	fmt.Printf("Architecture: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("CPU: %s\n", features)
	if features.IsAMD() {
		fmt.Println("Note: LFENCE may not serialize RDTSC on this vendor; prefer -variant strict.")
	}
	fmt.Println("─────────────────────────────────────────────────")

	fmt.Printf("\nResults:\n")
	for _, v := range variants {
		if !v.Supported() {
			log.Warn().Stringer("variant", v).Msg("not supported on this CPU, skipping")
			continue
		}
		perOp, ticksPerOp := measure(v.Reader(), *iterations)
		fmt.Printf("  %-12s %8.2f ns/op  %8.2f ticks/op\n", v, perOp, ticksPerOp)
	}

	if *producers == 0 {
		return
	}
	variant, fallback := samplingVariant(variants)
	if fallback {
		log.Debug().Stringer("variant", variant).Msg("-variant all, sampling with the fenced variant")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := sampler.Config{
		Variant:   variant,
		Producers: *producers,
		Samples:   *samples,
		Pin:       *pin,
	}
	log.Debug().
		Stringer("variant", cfg.Variant).
		Int("producers", cfg.Producers).
		Int("samples", cfg.Samples).
		Bool("pin", cfg.Pin).
		Msg("starting sampling run")

	start := time.Now()
	report, err := sampler.Run(ctx, cfg)
	if errors.Is(err, sampler.ErrUnsupported) {
		log.Warn().Stringer("variant", cfg.Variant).Msg("not supported on this CPU, skipping sampling run")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("sampling run failed")
		os.Exit(1)
	}
	log.Debug().Dur("elapsed", time.Since(start)).Msg("sampling run done")

	printReport(report)
}

func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

func selectVariants(name string) ([]sampler.Variant, error) {
	if name == "all" {
		return sampler.Variants, nil
	}
	v, err := sampler.ParseVariant(name)
	if err != nil {
		return nil, err
	}
	return []sampler.Variant{v}, nil
}

// checkCounts rejects counts that no run can use. samples only matters
// when a sampling run is requested.
func checkCounts(iterations, producers, samples int) error {
	switch {
	case iterations < 1:
		return fmt.Errorf("-n = %d, must be at least 1", iterations)
	case producers < 0:
		return fmt.Errorf("-producers = %d, must not be negative", producers)
	case producers > 0 && samples < 1:
		return fmt.Errorf("-samples = %d, must be at least 1", samples)
	}
	return nil
}

// samplingVariant picks the variant for the sampling run. When several
// were selected it falls back to the fenced one and reports that it did.
func samplingVariant(variants []sampler.Variant) (sampler.Variant, bool) {
	if len(variants) == 1 {
		return variants[0], false
	}
	return sampler.VariantFenced, true
}

// measure runs n back-to-back reads and returns the wall time per read and
// the counter advance per read. The two are reported side by side only.
func measure(read func() uint64, n int) (nsPerOp, ticksPerOp float64) {
	// Warm up the read path
	read()
	read()

	start := time.Now()
	first := read()
	var last uint64
	for i := 0; i < n; i++ {
		last = read()
	}
	elapsed := time.Since(start)

	nsPerOp = float64(elapsed.Nanoseconds()) / float64(n)
	ticksPerOp = float64(last-first) / float64(n)
	return nsPerOp, ticksPerOp
}

func printReport(r *sampler.Report) {
	fmt.Printf("\nSampling (%s, pinned=%t):\n", r.Variant, r.Pinned)
	fmt.Printf("  %-9s %10s %12s %12s %12s\n", "producer", "samples", "min delta", "max delta", "regressions")
	for _, p := range r.Producers {
		fmt.Printf("  %-9d %10d %12d %12d %12d\n", p.Producer, p.Count, p.MinDelta, p.MaxDelta, p.Regressions)
	}

	if r.Monotonic() {
		fmt.Printf("\nEvery producer observed a non-decreasing counter.\n")
		return
	}
	fmt.Printf("\n%d regressions observed.\n", r.Regressions())
	if !r.Pinned {
		fmt.Printf("Unpinned producers may migrate between cores; try -pin.\n")
	}
}
