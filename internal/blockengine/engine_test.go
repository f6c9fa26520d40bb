package blockengine_test

import (
	"testing"

	"github.com/rajames440/starforth/internal/blockengine"
	"github.com/rajames440/starforth/internal/blockio"
	"github.com/stretchr/testify/require"
)

func newAttachedEngine(t *testing.T, mb uint) *blockengine.Engine {
	t.Helper()
	dev := blockio.NewRAMDevice(uint64(mb) * 1024 * 1024)
	require.NoError(t, dev.Open())
	eng := blockengine.NewEngine(dev, nil, nil)
	require.NoError(t, eng.AttachDevice())
	return eng
}

func TestFreshFormatOnEmptyImage(t *testing.T) {
	eng := newAttachedEngine(t, 2)
	// Attaching an all-zero device formats it fresh: writing, flushing and
	// re-reading a disk-tier LBN must round-trip.
	lbn := uint64(blockengine.RAMBlocks - blockengine.RSys) // first disk-tier LBN
	buf, err := eng.GetBuffer(lbn, true)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		buf[i] = byte(i + 1)
	}
	require.NoError(t, eng.Update(lbn))
	require.NoError(t, eng.Flush(0))

	buf2, err := eng.GetBuffer(lbn, false)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		require.Equal(t, byte(i+1), buf2[i])
	}
}

func TestBlockRoundTripRAMDisk(t *testing.T) {
	eng := newAttachedEngine(t, 2)
	buf, err := eng.GetBuffer(0, true)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		buf[i] = byte(i + 1)
	}
	require.NoError(t, eng.Update(0))
	require.NoError(t, eng.Flush(0))

	buf2, err := eng.GetBuffer(0, false)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		require.Equal(t, byte(i+1), buf2[i])
	}
}

func TestEveryUserLBNReadable(t *testing.T) {
	eng := newAttachedEngine(t, 1)
	total := eng.TotalUserLBN()
	require.Greater(t, total, uint64(0))
	for lbn := uint64(0); lbn < total; lbn += total / 16 + 1 {
		buf, err := eng.GetBuffer(lbn, false)
		require.NoErrorf(t, err, "lbn %d", lbn)
		require.Len(t, buf, blockengine.ForthBlockSize)
	}
}

func TestUpdateMarksBAMAllocatedOnce(t *testing.T) {
	eng := newAttachedEngine(t, 1)
	diskLBN := uint64(blockengine.RAMBlocks - blockengine.RSys)

	_, err := eng.GetBuffer(diskLBN, true)
	require.NoError(t, err)
	require.NoError(t, eng.Update(diskLBN))
	require.NoError(t, eng.Update(diskLBN)) // second call must not double-decrement
}

func TestAllocateScansFromFirstFree(t *testing.T) {
	eng := newAttachedEngine(t, 1)
	lbn1, err := eng.Allocate()
	require.NoError(t, err)
	lbn2, err := eng.Allocate()
	require.NoError(t, err)
	require.NotEqual(t, lbn1, lbn2)
}

func TestFlushOnUncachedLBNIsNoop(t *testing.T) {
	eng := newAttachedEngine(t, 1)
	diskLBN := uint64(blockengine.RAMBlocks - blockengine.RSys + 5)
	require.NoError(t, eng.Flush(diskLBN))
}

func TestMapLBNBoundary(t *testing.T) {
	isRAM, phys := blockengine.MapLBN(0)
	require.True(t, isRAM)
	require.Equal(t, uint64(blockengine.RSys), phys)

	ramUser := uint64(blockengine.RAMBlocks - blockengine.RSys)
	isRAM, phys = blockengine.MapLBN(ramUser)
	require.False(t, isRAM)
	require.Equal(t, uint64(blockengine.DiskStart+blockengine.DSys), phys)
}

func TestDevblockOfPacking(t *testing.T) {
	db, slot := blockengine.DevblockOf(blockengine.DiskStart)
	require.Equal(t, uint64(0), db)
	require.Equal(t, 0, slot)

	db, slot = blockengine.DevblockOf(blockengine.DiskStart + 4)
	require.Equal(t, uint64(1), db)
	require.Equal(t, 1, slot)
}
