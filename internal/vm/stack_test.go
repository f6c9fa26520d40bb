package vm_test

import (
	"testing"

	"github.com/rajames440/starforth/internal/vm"
	"github.com/stretchr/testify/require"
)

func TestStackPushPopOrder(t *testing.T) {
	s := vm.NewStack()
	require.NoError(t, s.Push(1))
	require.NoError(t, s.Push(2))
	v, err := s.Pop()
	require.NoError(t, err)
	require.EqualValues(t, 2, v)
	require.Equal(t, 1, s.Depth())
}

func TestStackUnderflow(t *testing.T) {
	s := vm.NewStack()
	_, err := s.Pop()
	require.ErrorIs(t, err, vm.ErrStackUnderflow)
}

func TestStackOverflow(t *testing.T) {
	s := vm.NewStack()
	for i := 0; i < vm.MaxStackDepth; i++ {
		require.NoError(t, s.Push(int64(i)))
	}
	require.ErrorIs(t, s.Push(0), vm.ErrStackOverflow)
}

func TestStackSetTopPatchesResumeAddress(t *testing.T) {
	s := vm.NewStack()
	require.NoError(t, s.Push(10))
	require.NoError(t, s.SetTop(20))
	v, err := s.Top()
	require.NoError(t, err)
	require.EqualValues(t, 20, v)
}
