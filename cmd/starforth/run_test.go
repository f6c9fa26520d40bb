package main

import (
	"strings"
	"testing"

	"github.com/rajames440/starforth/internal/config"
	"github.com/rajames440/starforth/internal/telemetry"
	"github.com/stretchr/testify/require"
)

func testLogger(t *testing.T) *telemetry.Logger {
	t.Helper()
	return telemetry.New(&strings.Builder{}, "none")
}

func TestBuildMachineWiresRAMBackedVM(t *testing.T) {
	cfg := config.Default()
	m, err := buildMachine(cfg, testLogger(t), false)
	require.NoError(t, err)
	require.NotNil(t, m.VM)
	require.NotNil(t, m.Engine)
	require.NotNil(t, m.Dict.Find("DUP", nil))
}

func TestBuildMachineDeterministicHostForDoE(t *testing.T) {
	cfg := config.Default()
	m, err := buildMachine(cfg, testLogger(t), true)
	require.NoError(t, err)
	require.True(t, m.Host.ParityMode())
}

func TestRunBenchmarkCompletesAcrossConcurrentVMs(t *testing.T) {
	cfg := config.Default()
	cfg.Benchmark = 3
	require.NoError(t, runBenchmark(cfg, testLogger(t)))
}

func TestRunBreakMeInducesArenaExhaustion(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, runBreakMe(cfg, testLogger(t)))
}
