package fixedmath_test

import (
	"testing"

	"github.com/rajames440/starforth/internal/fixedmath"
	"github.com/stretchr/testify/require"
)

func TestMulDivIdentity(t *testing.T) {
	for _, a := range []fixedmath.Q{0, fixedmath.One, -fixedmath.One, 42 << 16, -1234, 7} {
		require.Equal(t, a, fixedmath.Mul(a, fixedmath.One), "a*1 == a for %v", a)
		require.Equal(t, a, fixedmath.Div(a, fixedmath.One), "a/1 == a for %v", a)
	}
}

func TestDivByZero(t *testing.T) {
	require.Equal(t, fixedmath.Q(0), fixedmath.Div(fixedmath.One, 0))
}

func TestSqrtOfSquare(t *testing.T) {
	for _, x := range []fixedmath.Q{0, fixedmath.One, 2 << 16, 3 << 16, 100 << 16} {
		sq := fixedmath.Mul(x, x)
		got := fixedmath.Sqrt(sq)
		diff := got - x
		if diff < 0 {
			diff = -diff
		}
		require.LessOrEqualf(t, int64(diff), int64(2), "sqrt(x*x) ~= x within 2 ulp for x=%v got=%v", x, got)
	}
}

func TestSqrtNegativeIsZero(t *testing.T) {
	require.Equal(t, fixedmath.Q(0), fixedmath.Sqrt(-fixedmath.One))
}

func TestErfOddSymmetry(t *testing.T) {
	for _, x := range []fixedmath.Q{1 << 16, 2 << 16, fixedmath.One / 2, 5 << 16} {
		require.Equal(t, fixedmath.Erf(-x), -fixedmath.Erf(x), "erf(-x) == -erf(x) for x=%v", x)
	}
}

func TestErfZero(t *testing.T) {
	require.Equal(t, fixedmath.Q(0), fixedmath.Erf(0))
}

func TestErfBounded(t *testing.T) {
	for _, x := range []fixedmath.Q{1 << 16, 10 << 16, 100 << 16} {
		v := fixedmath.Erf(x)
		require.Less(t, int64(v), int64(fixedmath.One), "|erf(x)| < ONE for x=%v", x)
		require.Greater(t, int64(v), int64(-fixedmath.One))
	}
}

func TestExpSaturatesAndUnderflows(t *testing.T) {
	require.Equal(t, fixedmath.One<<8, fixedmath.Exp(21<<16))
	require.Equal(t, fixedmath.Q(0), fixedmath.Exp(-200<<16))
	require.Equal(t, fixedmath.One, fixedmath.Exp(0))
}
