package blockengine_test

import (
	"testing"

	"github.com/rajames440/starforth/internal/blockengine"
	"github.com/stretchr/testify/require"
)

func TestBAMSetClearTransitions(t *testing.T) {
	b := blockengine.NewBAM(64)
	require.False(t, b.Get(5))
	require.True(t, b.Set(5))
	require.True(t, b.Get(5))
	require.False(t, b.Set(5), "second set is not a transition")
	require.True(t, b.Clear(5))
	require.False(t, b.Clear(5), "second clear is not a transition")
}

func TestBAMFirstClear(t *testing.T) {
	b := blockengine.NewBAM(16)
	b.MarkReservedRange(4)
	bit, ok := b.FirstClear(0)
	require.True(t, ok)
	require.Equal(t, uint64(4), bit)
}

func TestBAMFirstClearExhausted(t *testing.T) {
	b := blockengine.NewBAM(8)
	b.MarkReservedRange(8)
	_, ok := b.FirstClear(0)
	require.False(t, ok)
}
