package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rajames440/starforth/internal/config"
	"github.com/rajames440/starforth/internal/telemetry"
)

// benchmarkProgram is a small canonical workload exercising arithmetic,
// stack shuffling, and a colon definition, run once by each of the
// Benchmark concurrent VM instances.
const benchmarkProgram = ": SQUARE DUP * ; 1 2 3 4 5 6 7 8 9 10 SQUARE SQUARE SQUARE DROP DROP DROP DROP DROP DROP DROP"

// runBenchmark spins cfg.Benchmark concurrent VM instances, each running
// benchmarkProgram once, and reports wall-clock timing (spec.md §9
// supplemented features, grounded on the teacher's errgroup-shaped
// fan-out already present via golang.org/x/sync in its module graph).
func runBenchmark(cfg config.Config, log *telemetry.Logger) error {
	n := cfg.Benchmark
	start := time.Now()

	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			m, err := buildMachine(cfg, log, false)
			if err != nil {
				return err
			}
			m.VM.SetInput(strings.NewReader(benchmarkProgram))
			return m.VM.InterpretAll()
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("benchmark: %w", err)
	}

	elapsed := time.Since(start)
	fmt.Fprintf(os.Stdout, "benchmark: %d VMs, %s total, %s/VM\n", n, elapsed, elapsed/time.Duration(n))
	return nil
}
