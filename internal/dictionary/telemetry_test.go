package dictionary_test

import (
	"testing"

	"github.com/rajames440/starforth/internal/dictionary"
	"github.com/rajames440/starforth/internal/fixedmath"
	"github.com/stretchr/testify/require"
)

func TestDistStatsObserveTracksMinMax(t *testing.T) {
	var d dictionary.DistStats
	d.Observe(100)
	d.Observe(50)
	d.Observe(200)
	require.EqualValues(t, 3, d.Count)
	require.EqualValues(t, 50, d.Min)
	require.EqualValues(t, 200, d.Max)
}

func TestDistStatsPosteriorEmptyIsNotOK(t *testing.T) {
	var d dictionary.DistStats
	_, ok := d.Posterior()
	require.False(t, ok)
}

func TestDistStatsPosteriorMeanMatchesSamples(t *testing.T) {
	var d dictionary.DistStats
	for _, ns := range []int64{100, 100, 100} {
		d.Observe(ns)
	}
	p, ok := d.Posterior()
	require.True(t, ok)
	require.InDelta(t, 100.0, p.Mean.ToFloat64(), 0.01)
	require.InDelta(t, 0.0, p.Variance.ToFloat64(), 0.01)
}

func TestSpeedupEstimateFastPathWins(t *testing.T) {
	var slow, fast dictionary.DistStats
	for i := 0; i < 20; i++ {
		slow.Observe(1000)
		fast.Observe(100)
	}
	ratio, prob, ok := dictionary.SpeedupEstimate(slow, fast, fixedmath.FromInt(2))
	require.True(t, ok)
	require.InDelta(t, 10.0, ratio.ToFloat64(), 0.5)
	require.Greater(t, prob.ToFloat64(), 0.5)
}

func TestSpeedupEstimateEmptyDistributionNotOK(t *testing.T) {
	var slow, fast dictionary.DistStats
	fast.Observe(100)
	_, _, ok := dictionary.SpeedupEstimate(slow, fast, fixedmath.One)
	require.False(t, ok)
}
