package blockio_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rajames440/starforth/internal/blockio"
	"github.com/stretchr/testify/require"
)

func TestRAMDeviceReadWriteRoundTrip(t *testing.T) {
	dev := blockio.NewRAMDevice(4 * blockio.UnitSize)
	require.NoError(t, dev.Open())

	payload := make([]byte, blockio.UnitSize)
	for i := range payload {
		payload[i] = byte(i)
	}
	require.NoError(t, dev.Write(1, payload))

	got := make([]byte, blockio.UnitSize)
	require.NoError(t, dev.Read(1, got))
	require.Equal(t, payload, got)
}

func TestRAMDeviceOutOfRangeReadZeroFillsAndErrors(t *testing.T) {
	dev := blockio.NewRAMDevice(blockio.UnitSize)
	require.NoError(t, dev.Open())

	dst := make([]byte, blockio.UnitSize)
	for i := range dst {
		dst[i] = 0xFF
	}
	err := dev.Read(5, dst)
	require.ErrorIs(t, err, blockio.ErrOutOfRange)
	for _, b := range dst {
		require.EqualValues(t, 0, b)
	}
}

func TestRAMDeviceOutOfRangeWriteErrors(t *testing.T) {
	dev := blockio.NewRAMDevice(blockio.UnitSize)
	require.NoError(t, dev.Open())
	require.ErrorIs(t, dev.Write(5, make([]byte, blockio.UnitSize)), blockio.ErrOutOfRange)
}

func TestFileDeviceReadWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	require.NoError(t, os.WriteFile(path, make([]byte, 4*blockio.UnitSize), 0o644))

	dev := blockio.NewFileDevice(path, false)
	require.NoError(t, dev.Open())
	defer dev.Close()

	payload := make([]byte, blockio.UnitSize)
	for i := range payload {
		payload[i] = byte(i % 251)
	}
	require.NoError(t, dev.Write(2, payload))
	require.NoError(t, dev.Flush())

	got := make([]byte, blockio.UnitSize)
	require.NoError(t, dev.Read(2, got))
	require.Equal(t, payload, got)
}

func TestFileDeviceReadOnlyRejectsWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	require.NoError(t, os.WriteFile(path, make([]byte, blockio.UnitSize), 0o644))

	dev := blockio.NewFileDevice(path, true)
	require.NoError(t, dev.Open())
	defer dev.Close()
	require.ErrorIs(t, dev.Write(0, make([]byte, blockio.UnitSize)), blockio.ErrReadOnly)
}

func TestOpenFallsBackToRAMWhenDiskImageUnreadable(t *testing.T) {
	dev, err := blockio.Open(filepath.Join(t.TempDir(), "does-not-exist.img"), 1)
	require.NoError(t, err)
	info, err := dev.Info()
	require.NoError(t, err)
	require.False(t, info.ReadOnly)
}

func TestOpenUsesDiskImageWhenPresent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	require.NoError(t, os.WriteFile(path, make([]byte, 2*blockio.UnitSize), 0o644))

	dev, err := blockio.Open(path, 1)
	require.NoError(t, err)
	info, err := dev.Info()
	require.NoError(t, err)
	require.EqualValues(t, 2*blockio.UnitSize, info.PhysicalSizeBytes)
}
