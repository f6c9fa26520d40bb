// Package fixedmath implements Q48.16 fixed-point arithmetic: a 64-bit
// signed integer with 16 fractional bits. It underlies the dictionary hot
// cache's telemetry accumulators so that no float ever appears on a hot
// execution path.
package fixedmath

import "math/bits"

// Q is a Q48.16 fixed-point value: 48 integer bits, 16 fractional bits.
type Q int64

// One is 1.0 in Q48.16.
const One Q = 1 << 16

const fracBits = 16

// Z95 and Z99 are the 95% and 99% normal-distribution critical values,
// pre-scaled into Q48.16 (1.96 and 2.576 respectively).
const (
	Z95 Q = 128451 // 1.96 * 65536, rounded
	Z99 Q = 168821 // 2.576 * 65536, rounded
)

// FromInt converts a plain integer into Q48.16.
func FromInt(n int64) Q { return Q(n) << fracBits }

// ToInt truncates a Q48.16 value down to its integer part.
func (a Q) ToInt() int64 { return int64(a) >> fracBits }

// ToFloat64 is a display-only conversion; never call it on an accumulation
// or comparison path.
func (a Q) ToFloat64() float64 { return float64(a) / float64(One) }

// Mul computes a*b in Q48.16 using a 128-bit intermediate product so that
// large magnitudes don't overflow before the right-shift.
func Mul(a, b Q) Q {
	hi, lo := bits.Mul64(uint64(signAbs(int64(a))), uint64(signAbs(int64(b))))
	neg := (a < 0) != (b < 0)
	// (hi:lo) >> 16, keeping the sign.
	shifted := (hi << (64 - fracBits)) | (lo >> fracBits)
	res := int64(shifted)
	if neg {
		res = -res
	}
	return Q(res)
}

func signAbs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// maxDividend bounds the pre-shift dividend to avoid silent int64 overflow
// on the `a << 16` step of Div.
const maxDividend = int64(1)<<47 - 1

// Div computes a/b in Q48.16. Division by zero returns 0, matching
// spec.md's fixed-point contract rather than panicking mid-interpretation.
func Div(a, b Q) Q {
	if b == 0 {
		return 0
	}
	av := int64(a)
	if av > maxDividend {
		av = maxDividend
	} else if av < -maxDividend {
		av = -maxDividend
	}
	return Q((av << fracBits) / int64(b))
}

// Sqrt computes sqrt(x) via Newton-Raphson. Negative input returns 0.
func Sqrt(x Q) Q {
	if x <= 0 {
		return 0
	}
	if x == One {
		return One
	}

	guess := x
	if x > One {
		guess = x >> 1
	} else {
		guess = One
	}

	for i := 0; i < 20; i++ {
		if guess == 0 {
			break
		}
		// next = (guess^2 + x) / (2*guess), all in Q48.16.
		guessSquared := Mul(guess, guess)
		next := Div(guessSquared+x, guess*2)
		diff := next - guess
		if diff > -2 && diff < 2 {
			return next
		}
		guess = next
	}
	return guess
}

// Exp computes exp(x) via a truncated Taylor series. Saturates for large
// positive x, underflows to 0 for very negative x, matching
// original_source/src/math_portable.c's exp_q48 bounds.
func Exp(x Q) Q {
	switch {
	case x == 0:
		return One
	case x > 20<<fracBits:
		return One << 8
	case x < -100<<fracBits:
		return 0
	}
	if x < 0 {
		// exp(x) = 1/exp(-x), so every Taylor term below is positive.
		// Below -20 the result is under one Q48.16 ulp.
		if x < -20<<fracBits {
			return 0
		}
		return Div(One, Exp(-x))
	}

	result := One
	term := One

	for i := int64(1); i < 40; i++ {
		term = Mul(term, x) / Q(i) // x^i / i!
		if term > -1 && term < 1 {
			break
		}
		result += term

		if result < 0 && result < (1<<62) {
			break
		}
		if result > 0 && result > (1<<62) {
			result = Q((int64(1) << 62) - 2)
			break
		}
	}
	return result
}

// Log computes log(x) by range-reducing around powers of two and then
// running Newton's method on y ↦ exp(y) - x. Non-positive input returns 0,
// since Forth-level callers are expected to guard before calling.
func Log(x Q) Q {
	if x <= 0 {
		return 0
	}

	// Range-reduce: find k such that x/2^k is close to 1 (in Q48.16, close
	// to One), accumulating k*ln(2).
	const ln2 Q = 45426 // ln(2) * 65536, rounded
	k := 0
	v := x
	for v > 2*One {
		v >>= 1
		k++
	}
	for v < One {
		v <<= 1
		k--
	}

	// Newton's method on f(y) = exp(y) - v, f'(y) = exp(y).
	y := v - One // initial guess: v - 1 (good near v == One)
	for i := 0; i < 20; i++ {
		ey := Exp(y)
		if ey == 0 {
			break
		}
		next := y - Div(ey-v, ey)
		diff := next - y
		y = next
		if diff > -2 && diff < 2 {
			break
		}
	}

	return y + Q(k)*ln2
}

// Erf approximates the error function with the closed form
// erf(x) ≈ sqrt(1 - exp(-x²·(4/π + a·x²)/(1 + a·x²))), a = 0.147, evaluated
// in Q48.16; it does not use the Abramowitz & Stegun 7.1.26 polynomial.
// Odd symmetry (erf(-x) == -erf(x)) is enforced by construction, and the
// magnitude of the result is always below One.
func Erf(x Q) Q {
	if x == 0 {
		return 0
	}

	sign := Q(1)
	if x < 0 {
		sign = -1
		x = -x
	}

	const a Q = 9633          // 0.147 * 65536
	const fourOverPi Q = 83443 // (4/pi) * 65536

	xSq := Mul(x, x)
	denom := One + Mul(a, xSq)
	if denom == 0 {
		denom = 1
	}
	numer := fourOverPi + Mul(a, xSq)
	ratio := Div(numer, denom)
	expArg := -Mul(xSq, ratio)
	expVal := Exp(expArg)

	base := One - expVal
	if base < 0 {
		base = 0
	}
	if base >= One {
		base = One - 1
	}

	sqrtBase := Sqrt(base)
	return sign * sqrtBase
}
