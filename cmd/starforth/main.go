// Command starforth is the StarForth VM's CLI entrypoint (spec.md §6),
// wiring config → hostsvc → blockio → blockengine → dictionary → vm →
// words. Grounded on the teacher's main.go (flag-driven VM construction,
// a Logger wrapping os.Stderr with an ExitCode-gated deferred os.Exit),
// generalized from flag.FlagSet to cobra per the rest of the retrieval
// pack's CLI conventions.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rajames440/starforth/internal/config"
)

// version is overridden at link time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg := config.Default()
	var configPath string
	var arenaCells uint64

	root := &cobra.Command{
		Use:           "starforth",
		Short:         "StarForth — a Forth-79 virtual machine",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				if err := config.Load(configPath, &cfg); err != nil {
					return fmt.Errorf("loading config: %w", err)
				}
				bindFlagOverrides(cmd, &cfg)
			}
			if arenaCells != 0 {
				cfg.ArenaCells = arenaCells
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cfg)
		},
	}

	flags := root.Flags()
	flags.StringVar(&configPath, "config", "", "TOML configuration file")
	flags.BoolVarP(&cfg.Script, "script", "s", cfg.Script, "script mode: suppress prompts and \"ok\" output")
	flags.StringVar(&cfg.DiskImage, "disk-img", cfg.DiskImage, "backing device file; absent/unreadable falls back to RAM")
	flags.IntVar(&cfg.RAMDiskMB, "ram-disk", cfg.RAMDiskMB, "RAM backing size in MB when no disk image is given")
	flags.StringVar(&cfg.LogLevel, "log", cfg.LogLevel, "log level: error, warn, info, test, debug, none")
	flags.BoolVar(&cfg.FailFast, "fail-fast", cfg.FailFast, "accepted and stored in the config; the interpreter does not consult it and always recovers at the next token")
	flags.IntVar(&cfg.Benchmark, "benchmark", cfg.Benchmark, "run N concurrent VM instances instead of the REPL")
	flags.Lookup("benchmark").NoOptDefVal = "4"
	flags.BoolVar(&cfg.BreakMe, "break-me", cfg.BreakMe, "trigger a deliberate arena-exhaustion failure and exit")
	flags.BoolVar(&cfg.DoE, "doe", cfg.DoE, "run a bounded randomized fuzz pass over dispatch and block I/O")
	flags.StringVar(&cfg.HeartbeatLog, "heartbeat-log", cfg.HeartbeatLog, "telemetry mode: off, summary, full")
	flags.IntVar(&cfg.HotCacheCapacity, "hot-cache-capacity", cfg.HotCacheCapacity, "hot-words cache slot count (0 = default)")
	flags.Uint64Var(&arenaCells, "arena-cells", 0, "VM arena size in cells (0 = default)")

	// log-{error,warn,info,test,debug,none} boolean aliases, as spec.md §6
	// phrases them. Exclusivity is not enforced: if several are set, the one
	// latest in this list wins.
	for _, lvl := range []string{"error", "warn", "info", "test", "debug", "none"} {
		lvl := lvl
		flags.Bool("log-"+lvl, false, fmt.Sprintf("set log level to %s", lvl))
	}
	root.PreRunE = func(cmd *cobra.Command, args []string) error {
		for _, lvl := range []string{"error", "warn", "info", "test", "debug", "none"} {
			if v, _ := flags.GetBool("log-" + lvl); v {
				cfg.LogLevel = lvl
			}
		}
		return nil
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// bindFlagOverrides re-applies any flag the user explicitly set on top of
// a freshly loaded config file, giving CLI flags the final word per
// spec.md §6 (defaults < file < flags).
func bindFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("script") {
		cfg.Script, _ = flags.GetBool("script")
	}
	if flags.Changed("disk-img") {
		cfg.DiskImage, _ = flags.GetString("disk-img")
	}
	if flags.Changed("ram-disk") {
		cfg.RAMDiskMB, _ = flags.GetInt("ram-disk")
	}
	if flags.Changed("log") {
		cfg.LogLevel, _ = flags.GetString("log")
	}
	for _, lvl := range []string{"error", "warn", "info", "test", "debug", "none"} {
		if v, _ := flags.GetBool("log-" + lvl); v {
			cfg.LogLevel = lvl
		}
	}
	if flags.Changed("fail-fast") {
		cfg.FailFast, _ = flags.GetBool("fail-fast")
	}
	if flags.Changed("benchmark") {
		cfg.Benchmark, _ = flags.GetInt("benchmark")
	}
	if flags.Changed("break-me") {
		cfg.BreakMe, _ = flags.GetBool("break-me")
	}
	if flags.Changed("doe") {
		cfg.DoE, _ = flags.GetBool("doe")
	}
	if flags.Changed("heartbeat-log") {
		cfg.HeartbeatLog, _ = flags.GetString("heartbeat-log")
	}
	if flags.Changed("hot-cache-capacity") {
		cfg.HotCacheCapacity, _ = flags.GetInt("hot-cache-capacity")
	}
}
