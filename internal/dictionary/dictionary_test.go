package dictionary_test

import (
	"testing"

	"github.com/rajames440/starforth/internal/dictionary"
	"github.com/rajames440/starforth/internal/fixedmath"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t int64 }

func (c *fakeClock) MonotonicNS() int64 {
	c.t += 1000
	return c.t
}

func TestFindMissOnEmptyDictionary(t *testing.T) {
	d := dictionary.New(dictionary.NewHotCache(4, 0))
	require.Nil(t, d.Find("DUP", &fakeClock{}))
	require.EqualValues(t, 1, d.Cache.Misses)
}

func TestHotPromotionAtThreshold(t *testing.T) {
	d := dictionary.New(dictionary.NewHotCache(4, 10<<16))
	e := d.Create("SWAP", nil)

	// Eleven executions push execution_heat past the threshold of 10.
	for i := 0; i < 11; i++ {
		e.RecordExecution(int64(i) * 1000)
	}
	require.Greater(t, e.ExecutionHeat, fixedmath.Q(10<<16))

	clk := &fakeClock{}
	found := d.Find("SWAP", clk)
	require.Same(t, e, found)
	require.EqualValues(t, 1, d.Cache.BucketHits)
	require.EqualValues(t, 1, d.Cache.Promotions)
	require.Contains(t, d.Cache.Slots(), e)

	found = d.Find("SWAP", clk)
	require.Same(t, e, found)
	require.EqualValues(t, 1, d.Cache.CacheHits)
}

func TestSmudgedEntryHiddenFromLookup(t *testing.T) {
	d := dictionary.New(nil)
	d.Create("KNOWN", nil)
	partial := d.CreateSmudged("BAD")

	require.Nil(t, d.Find("BAD", nil))
	require.NotNil(t, d.Find("KNOWN", nil))

	// ';' clears the smudge, making the definition visible again.
	partial.Flags &^= dictionary.Smudged
	require.Same(t, partial, d.Find("BAD", nil))
}

func TestForgetRefusesPastBootFence(t *testing.T) {
	d := dictionary.New(nil)
	d.Create("CORE-WORD", nil)
	d.SetBootFence()
	user := d.Create("USER-WORD", nil)

	require.NoError(t, d.Forget(user.Link))
	require.Nil(t, d.Find("USER-WORD", nil))
	require.NotNil(t, d.Find("CORE-WORD", nil))

	fence := d.Last()
	require.Error(t, d.Forget(nil))
	require.Same(t, fence, d.Last())
}

func TestReachableGuardrailWalk(t *testing.T) {
	d := dictionary.New(nil)
	inDict := d.Create("A", nil)
	notInDict := &dictionary.Entry{Name: "GHOST"}

	require.True(t, d.Reachable(inDict))
	require.False(t, d.Reachable(notInDict))
}

func TestBucketReorderSortsDescendingByHeat(t *testing.T) {
	d := dictionary.New(dictionary.NewHotCache(4, 0))
	cold := d.Create("COLD", nil)
	hot := d.Create("HOT", nil)
	mid := d.Create("MID", nil)

	hot.ExecutionHeat = 30 << 16
	mid.ExecutionHeat = 15 << 16
	cold.ExecutionHeat = 1 << 16

	d.BucketReorder()
	require.EqualValues(t, 1, d.Cache.BucketReorders)

	order := []string{}
	for e := d.Last(); e != nil; e = e.Link {
		order = append(order, e.Name)
	}
	require.Equal(t, []string{"HOT", "MID", "COLD"}, order)
}
