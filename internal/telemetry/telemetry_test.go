package telemetry_test

import (
	"bytes"
	"testing"

	"github.com/rajames440/starforth/internal/dictionary"
	"github.com/rajames440/starforth/internal/hostsvc"
	"github.com/rajames440/starforth/internal/telemetry"
	"github.com/stretchr/testify/require"
)

type fakeHost struct {
	hostsvc.Services
	now int64
}

func (f *fakeHost) MonotonicNS() int64 { f.now += 1_000_000; return f.now }

func TestHeartbeatCaptureDeltasAdvance(t *testing.T) {
	d := dictionary.New(nil)
	e := d.Create("DUP", func(dictionary.Machine) error { return nil })
	host := &fakeHost{}
	hb := telemetry.NewHeartbeat(d, host, 0)

	first := hb.Capture()
	require.EqualValues(t, 1, first.TickNumber)
	require.Zero(t, first.WordExecutionsDelta)

	for i := 0; i < 11; i++ {
		e.RecordExecution(host.MonotonicNS())
	}

	second := hb.Capture()
	require.EqualValues(t, 11, second.WordExecutionsDelta)
	require.EqualValues(t, 1, second.HotWordCount)
	require.Greater(t, second.AvgWordHeat, 0.0)
}

func TestHeartbeatEmitRowFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, telemetry.EmitRow(&buf, telemetry.Snapshot{
		TickNumber: 3, ElapsedNS: 100, TickIntervalNS: 10,
		CacheHitsDelta: 1, BucketHitsDelta: 2, WordExecutionsDelta: 5,
		HotWordCount: 1, AvgWordHeat: 0.5, WindowWidth: 3, EstimatedJitterNS: 1.25,
	}))
	require.Equal(t, "3,100,10,1,2,5,1,0.500000,3,1.25\n", buf.String())
}

func TestLoggerLeveledfWiresIntoVMStyleSink(t *testing.T) {
	var buf bytes.Buffer
	lg := telemetry.New(&buf, "info")
	logfn := lg.Leveledf("info")
	logfn("hello %s", "world")
	require.NoError(t, lg.Sync())
	require.Contains(t, buf.String(), "hello world")
}

func TestLoggerErrorfSetsExitCode(t *testing.T) {
	var buf bytes.Buffer
	lg := telemetry.New(&buf, "info")
	require.Equal(t, 0, lg.ExitCode())
	lg.Errorf("boom")
	require.Equal(t, 1, lg.ExitCode())
}
