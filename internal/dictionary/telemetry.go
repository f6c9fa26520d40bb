package dictionary

import "github.com/rajames440/starforth/internal/fixedmath"

// DistStats accumulates a latency distribution entirely in Q48.16, per
// spec.md §3.6/§4.4: sample count, sum and sum-of-squares of latencies
// (both Q48.16), and integer-nanosecond min/max. No float ever appears on
// this accumulation path.
type DistStats struct {
	Count uint64
	Sum   fixedmath.Q
	SqSum fixedmath.Q
	Min   int64
	Max   int64
}

// Observe folds one elapsed-nanosecond sample into the distribution,
// matching spec.md's "accumulate elapsed<<16 into sum, (elapsed*elapsed)<<16
// into sq_sum" exactly.
func (d *DistStats) Observe(elapsedNS int64) {
	d.Count++
	d.Sum += fixedmath.FromInt(elapsedNS)
	d.SqSum += fixedmath.FromInt(elapsedNS * elapsedNS)
	if d.Count == 1 || elapsedNS < d.Min {
		d.Min = elapsedNS
	}
	if d.Count == 1 || elapsedNS > d.Max {
		d.Max = elapsedNS
	}
}

// Posterior is the Bayesian summary of a DistStats (spec.md §4.4).
type Posterior struct {
	Mean, Variance, StdDev, StdErr fixedmath.Q
	CI95Lo, CI95Hi                 fixedmath.Q
	CI99Lo, CI99Hi                 fixedmath.Q
}

// Posterior computes the fixed-point posterior summary. ok is false when
// Count == 0 (undefined distribution).
func (d DistStats) Posterior() (p Posterior, ok bool) {
	if d.Count == 0 {
		return Posterior{}, false
	}
	n := fixedmath.FromInt(int64(d.Count))

	mean := fixedmath.Div(d.Sum, n)
	variance := fixedmath.Div(d.SqSum, n) - fixedmath.Mul(mean, mean)
	if variance < 0 {
		variance = 0
	}
	stddev := fixedmath.Sqrt(variance)
	stderr := fixedmath.Div(stddev, fixedmath.Sqrt(n))

	ci95Half := fixedmath.Mul(fixedmath.Z95, stderr)
	ci99Half := fixedmath.Mul(fixedmath.Z99, stderr)

	ci95Lo := mean - ci95Half
	if ci95Lo < 0 {
		ci95Lo = 0
	}
	ci99Lo := mean - ci99Half
	if ci99Lo < 0 {
		ci99Lo = 0
	}

	return Posterior{
		Mean:     mean,
		Variance: variance,
		StdDev:   stddev,
		StdErr:   stderr,
		CI95Lo:   ci95Lo,
		CI95Hi:   mean + ci95Half,
		CI99Lo:   ci99Lo,
		CI99Hi:   mean + ci99Half,
	}, true
}

// SpeedupEstimate compares a "slow path" distribution (e.g. bucket scan)
// against a "fast path" distribution (e.g. cache hit), returning the ratio
// of means and the probability, via the delta method and erf, that the
// true speedup exceeds thresholdRatio (spec.md §4.4). ok is false if
// either distribution is empty or the fast-path mean is zero.
func SpeedupEstimate(slow, fast DistStats, thresholdRatio fixedmath.Q) (ratio, probExceedsThreshold fixedmath.Q, ok bool) {
	slowPost, ok1 := slow.Posterior()
	fastPost, ok2 := fast.Posterior()
	if !ok1 || !ok2 || fastPost.Mean == 0 || slowPost.Mean == 0 {
		return 0, 0, false
	}

	ratio = fixedmath.Div(slowPost.Mean, fastPost.Mean)

	// Delta-method relative standard error of the log-ratio:
	// se(log(slow/fast)) ~= sqrt((se_slow/mean_slow)^2 + (se_fast/mean_fast)^2)
	relSlow := fixedmath.Div(slowPost.StdErr, slowPost.Mean)
	relFast := fixedmath.Div(fastPost.StdErr, fastPost.Mean)
	seLogRatio := fixedmath.Sqrt(fixedmath.Mul(relSlow, relSlow) + fixedmath.Mul(relFast, relFast))
	if seLogRatio == 0 {
		return ratio, fixedmath.One, true
	}

	logRatio := fixedmath.Log(ratio)
	logThreshold := fixedmath.Log(thresholdRatio)
	z := fixedmath.Div(logRatio-logThreshold, seLogRatio)

	// P(true speedup > threshold) = Phi(z) = 0.5*(1+erf(z/sqrt(2))).
	const sqrt2 fixedmath.Q = 92682 // sqrt(2) * 65536, rounded
	erfArg := fixedmath.Div(z, sqrt2)
	prob := fixedmath.Mul(fixedmath.One/2, fixedmath.One+fixedmath.Erf(erfArg))
	return ratio, prob, true
}
