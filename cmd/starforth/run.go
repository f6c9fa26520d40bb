package main

import (
	"fmt"
	"os"

	"github.com/rajames440/starforth/internal/blockengine"
	"github.com/rajames440/starforth/internal/blockio"
	"github.com/rajames440/starforth/internal/config"
	"github.com/rajames440/starforth/internal/dictionary"
	"github.com/rajames440/starforth/internal/hostsvc"
	"github.com/rajames440/starforth/internal/telemetry"
	"github.com/rajames440/starforth/internal/vm"
	"github.com/rajames440/starforth/internal/words"
)

// machine bundles the components one StarForth instance is built from,
// wired in the order spec.md §4 lists its subsystems: HostServices, the
// block backend/engine, the dictionary, then the VM core and its
// primitive words.
type machine struct {
	VM     *vm.VM
	Dict   *dictionary.Dictionary
	Engine *blockengine.Engine
	Host   hostsvc.Services
	Block  *words.BlockWords
}

// buildMachine constructs one fully wired VM instance per cfg. host
// defaults to a real-clock hostsvc.POSIX unless deterministic is true
// (the --doe fuzz harness needs bit-reproducible telemetry).
func buildMachine(cfg config.Config, log *telemetry.Logger, deterministic bool) (*machine, error) {
	var host hostsvc.Services
	if deterministic {
		host = hostsvc.NewParity(os.Stdout)
	} else {
		host = hostsvc.NewPOSIX(os.Stdout)
	}

	dev, err := blockio.Open(cfg.DiskImage, uint(cfg.RAMDiskMB))
	if err != nil {
		return nil, fmt.Errorf("opening block device: %w", err)
	}
	eng := blockengine.NewEngine(dev, log, host)
	if err := eng.AttachDevice(); err != nil {
		return nil, fmt.Errorf("attaching block device: %w", err)
	}

	dict := dictionary.New(dictionary.NewHotCache(cfg.HotCacheCapacity, 0))

	opts := []vm.Option{
		vm.WithHost(host),
		vm.WithOutput(os.Stdout),
		vm.WithLogf(log.Leveledf("trace")),
	}
	if cfg.ArenaCells > 0 {
		opts = append(opts, vm.WithArena(cfg.ArenaCells, cfg.ArenaCells/2))
	}
	m := vm.New(opts...)
	m.Dict = dict

	words.InstallCore(dict)
	bw := words.InstallBlockWords(dict, eng)
	dict.SetBootFence()

	return &machine{VM: m, Dict: dict, Engine: eng, Host: host, Block: bw}, nil
}

// run dispatches to the harness mode cfg selects (break-me, doe,
// benchmark, or the plain interactive/script loop). It calls os.Exit
// directly for the --doe exit-code-2 instability path (spec.md §6); every
// other path returns an error for main to translate to exit code 1.
func run(cfg config.Config) error {
	level := cfg.LogLevel
	if cfg.DoE {
		level = "none"
	}
	log := telemetry.New(os.Stderr, level)
	defer log.Sync()

	switch {
	case cfg.BreakMe:
		return runBreakMe(cfg, log)
	case cfg.DoE:
		return runDoE(cfg, log)
	case cfg.Benchmark > 0:
		return runBenchmark(cfg, log)
	default:
		return runREPL(cfg, log)
	}
}

// runREPL drives the outer interpreter over stdin, honoring --script
// (suppress "ok" prompts) and --heartbeat-log.
func runREPL(cfg config.Config, log *telemetry.Logger) error {
	m, err := buildMachine(cfg, log, false)
	if err != nil {
		return err
	}
	m.VM.SetInput(namedStdin{})

	var hb *telemetry.Heartbeat
	if cfg.HeartbeatLog != "off" {
		hb = telemetry.NewHeartbeat(m.Dict, m.Host, 0)
	}

	if !cfg.Script {
		fmt.Fprintln(os.Stdout, "StarForth", version)
	}

	err = m.VM.InterpretAll()
	if hb != nil {
		snap := hb.Capture()
		if cfg.HeartbeatLog == "full" {
			telemetry.EmitRow(os.Stderr, snap)
		} else {
			fmt.Fprintf(os.Stderr, "heartbeat: %d words executed, %d hot\n",
				snap.WordExecutionsDelta, snap.HotWordCount)
		}
	}
	if err != nil {
		return err
	}
	if !cfg.Script {
		fmt.Fprintln(os.Stdout, "ok")
	}
	return nil
}
