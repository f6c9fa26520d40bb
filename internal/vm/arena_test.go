package vm_test

import (
	"testing"

	"github.com/rajames440/starforth/internal/vm"
	"github.com/stretchr/testify/require"
)

func TestAllotBoundary(t *testing.T) {
	a := vm.NewArena(8, 4)

	require.NoError(t, a.Allot(4))
	require.EqualValues(t, 4, a.Here())

	require.NoError(t, a.Allot(0), "allot(0) is always a no-op")

	require.ErrorIs(t, a.Allot(1), vm.ErrArenaExhausted)
	require.EqualValues(t, 4, a.Here(), "a failed allot must not move HERE")
}

func TestCompileAdvancesHereAndStores(t *testing.T) {
	a := vm.NewArena(8, 8)
	require.NoError(t, a.Compile(42))
	require.EqualValues(t, 1, a.Here())
	require.EqualValues(t, 42, a.ReadCell(0))
}

func TestReadCellOutOfRangeIsZero(t *testing.T) {
	a := vm.NewArena(4, 4)
	require.EqualValues(t, 0, a.ReadCell(100))
}

func TestRewind(t *testing.T) {
	a := vm.NewArena(8, 8)
	require.NoError(t, a.Allot(6))
	a.Rewind(2)
	require.EqualValues(t, 2, a.Here())
}
