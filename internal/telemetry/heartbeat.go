package telemetry

import (
	"fmt"
	"io"

	"github.com/rajames440/starforth/internal/dictionary"
	"github.com/rajames440/starforth/internal/fixedmath"
	"github.com/rajames440/starforth/internal/hostsvc"
)

// hotWordThreshold mirrors original_source's HEAT_CACHE_DEMOTION_THRESHOLD:
// an entry counts as "hot" once its execution heat reaches 10 executions.
const hotWordThreshold fixedmath.Q = 10 << 16

// rollingWindowCapacity caps the effective window width snapshots report,
// matching heartbeat_export.c's rolling_window.effective_window_size
// warming up to a fixed ceiling rather than growing unbounded.
const rollingWindowCapacity = 64

// Snapshot is one heartbeat tick capture (spec.md §4.5 "Heartbeat"), field
// order grounded on heartbeat_export.c's HeartbeatTickSnapshot/CSV row.
type Snapshot struct {
	TickNumber          uint32
	ElapsedNS           int64
	TickIntervalNS      int64
	CacheHitsDelta      uint64
	BucketHitsDelta     uint64
	WordExecutionsDelta uint64
	HotWordCount        uint32
	AvgWordHeat         float64
	WindowWidth         uint32
	EstimatedJitterNS   float64
}

// Heartbeat captures periodic telemetry ticks from a dictionary and its
// hot-words cache. It never mutates VM state beyond its own delta
// bookkeeping (spec.md §4.5 "The capture is pure").
type Heartbeat struct {
	dict         *dictionary.Dictionary
	host         hostsvc.Services
	tickTargetNS int64

	runStartNS int64
	lastTickNS int64
	tickCount  uint32

	lastCacheHits      uint64
	lastBucketHits     uint64
	lastWordExecutions uint64
}

// NewHeartbeat constructs a Heartbeat bound to dict, using host for
// monotonic timestamps and tickTargetNS as the nominal tick interval used
// to estimate jitter (0 disables the jitter estimate, which is then
// reported as 0).
func NewHeartbeat(dict *dictionary.Dictionary, host hostsvc.Services, tickTargetNS int64) *Heartbeat {
	now := host.MonotonicNS()
	return &Heartbeat{
		dict:         dict,
		host:         host,
		tickTargetNS: tickTargetNS,
		runStartNS:   now,
		lastTickNS:   now,
	}
}

// Capture records one tick and returns its Snapshot. Delta fields are
// computed against the previous Capture call (or against zero, on the
// first call).
func (hb *Heartbeat) Capture() Snapshot {
	now := hb.host.MonotonicNS()
	hb.tickCount++

	snap := Snapshot{
		TickNumber:     hb.tickCount,
		ElapsedNS:      now - hb.runStartNS,
		TickIntervalNS: now - hb.lastTickNS,
	}
	hb.lastTickNS = now

	if cache := hb.dict.Cache; cache != nil {
		snap.CacheHitsDelta = cache.CacheHits - hb.lastCacheHits
		snap.BucketHitsDelta = cache.BucketHits - hb.lastBucketHits
		hb.lastCacheHits = cache.CacheHits
		hb.lastBucketHits = cache.BucketHits
	}

	entries := hb.dict.Snapshot()
	var totalHeat fixedmath.Q
	var liveCount uint32
	for _, e := range entries {
		if e.ExecutionHeat == 0 {
			continue
		}
		totalHeat += e.ExecutionHeat
		liveCount++
		if e.ExecutionHeat >= hotWordThreshold {
			snap.HotWordCount++
		}
	}
	if liveCount > 0 {
		snap.AvgWordHeat = totalHeat.ToFloat64() / float64(liveCount)
	}

	totalExecutions := uint64(totalHeat / fixedmath.One)
	snap.WordExecutionsDelta = totalExecutions - hb.lastWordExecutions
	hb.lastWordExecutions = totalExecutions

	if hb.tickCount < rollingWindowCapacity {
		snap.WindowWidth = hb.tickCount
	} else {
		snap.WindowWidth = rollingWindowCapacity
	}

	nominal := hb.tickTargetNS
	if nominal == 0 {
		nominal = snap.TickIntervalNS
	}
	if snap.TickIntervalNS > nominal {
		snap.EstimatedJitterNS = float64(snap.TickIntervalNS - nominal)
	} else {
		snap.EstimatedJitterNS = float64(nominal - snap.TickIntervalNS)
	}

	return snap
}

// EmitRow writes snap as a single CSV row (no header), matching
// heartbeat_export.c's heartbeat_emit_tick_row wire format so existing
// tooling built against it keeps working.
func EmitRow(w io.Writer, snap Snapshot) error {
	_, err := fmt.Fprintf(w, "%d,%d,%d,%d,%d,%d,%d,%.6f,%d,%.2f\n",
		snap.TickNumber,
		snap.ElapsedNS,
		snap.TickIntervalNS,
		snap.CacheHitsDelta,
		snap.BucketHitsDelta,
		snap.WordExecutionsDelta,
		snap.HotWordCount,
		snap.AvgWordHeat,
		snap.WindowWidth,
		snap.EstimatedJitterNS,
	)
	return err
}
