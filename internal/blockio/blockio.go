// Package blockio defines the block backend vtable (spec.md §6) that
// BlockEngine drives: a fixed 1 KiB unit device with open/close/read/write/
// flush/info operations. Two implementations are provided: a file-backed
// device and a RAM-backed device, grounded on
// original_source/src/blkio_file.c and blkio_ram.c.
package blockio

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// UnitSize is the fixed block-device transfer unit: 1 KiB.
const UnitSize = 1024

// Info describes a device's geometry.
type Info struct {
	UnitSize           uint64
	TotalUnits         uint64
	PhysicalSectorSize uint64
	PhysicalSizeBytes  uint64
	ReadOnly           bool
}

// Device is the block backend vtable. All operations are on whole
// UnitSize-byte units; short reads/writes are never silently tolerated —
// they surface as errors.
type Device interface {
	Open() error
	Close() error
	Read(unitIndex uint64, dst []byte) error
	Write(unitIndex uint64, src []byte) error
	Flush() error
	Info() (Info, error)
}

// ErrShortIO indicates the backend could not transfer a full unit.
var ErrShortIO = errors.New("blockio: short read or write")

// ErrOutOfRange indicates unitIndex fell outside the device's addressable
// range. RAMDevice zero-fills the destination of an out-of-range read
// before returning it (BlockEngine also zero-fills, with a warning, per
// spec.md §4.3); out-of-range writes always fail here.
var ErrOutOfRange = errors.New("blockio: unit index out of range")

// ErrReadOnly indicates a write was attempted against a read-only device.
var ErrReadOnly = errors.New("blockio: device is read-only")

// RAMDevice is an in-memory block device, used when no --disk-img is given
// (spec.md §6 CLI fallback) or explicitly for --ram-disk=<MB>.
type RAMDevice struct {
	data []byte
}

// NewRAMDevice allocates a RAM-backed device of the given size in whole
// UnitSize blocks. sizeBytes is rounded up to the next unit boundary.
func NewRAMDevice(sizeBytes uint64) *RAMDevice {
	units := (sizeBytes + UnitSize - 1) / UnitSize
	return &RAMDevice{data: make([]byte, units*UnitSize)}
}

func (d *RAMDevice) Open() error  { return nil }
func (d *RAMDevice) Close() error { return nil }
func (d *RAMDevice) Flush() error { return nil }

func (d *RAMDevice) Info() (Info, error) {
	units := uint64(len(d.data)) / UnitSize
	return Info{
		UnitSize:           UnitSize,
		TotalUnits:         units,
		PhysicalSectorSize: UnitSize,
		PhysicalSizeBytes:  uint64(len(d.data)),
		ReadOnly:           false,
	}, nil
}

func (d *RAMDevice) Read(unitIndex uint64, dst []byte) error {
	if len(dst) != UnitSize {
		return fmt.Errorf("blockio: dst must be %d bytes, got %d", UnitSize, len(dst))
	}
	off := unitIndex * UnitSize
	if off+UnitSize > uint64(len(d.data)) {
		for i := range dst {
			dst[i] = 0
		}
		return ErrOutOfRange
	}
	copy(dst, d.data[off:off+UnitSize])
	return nil
}

func (d *RAMDevice) Write(unitIndex uint64, src []byte) error {
	if len(src) != UnitSize {
		return fmt.Errorf("blockio: src must be %d bytes, got %d", UnitSize, len(src))
	}
	off := unitIndex * UnitSize
	if off+UnitSize > uint64(len(d.data)) {
		return ErrOutOfRange
	}
	copy(d.data[off:off+UnitSize], src)
	return nil
}

// FileDevice is a file-backed block device, used for --disk-img=<path>.
// It must produce bit-identical I/O: no short reads or writes, and EOF is
// treated as an error and the destination is left as it was (RAMDevice,
// by contrast, zero-fills the destination of an out-of-range read and then
// returns ErrOutOfRange).
type FileDevice struct {
	Path     string
	ReadOnly bool

	f *os.File
}

// NewFileDevice returns a FileDevice bound to path, not yet opened.
func NewFileDevice(path string, readOnly bool) *FileDevice {
	return &FileDevice{Path: path, ReadOnly: readOnly}
}

func (d *FileDevice) Open() error {
	flag := os.O_RDWR
	if d.ReadOnly {
		flag = os.O_RDONLY
	}
	f, err := os.OpenFile(d.Path, flag, 0o644)
	if err != nil {
		return err
	}
	d.f = f
	return nil
}

func (d *FileDevice) Close() error {
	if d.f == nil {
		return nil
	}
	return d.f.Close()
}

func (d *FileDevice) Flush() error {
	if d.f == nil {
		return nil
	}
	return d.f.Sync()
}

func (d *FileDevice) Info() (Info, error) {
	st, err := d.f.Stat()
	if err != nil {
		return Info{}, err
	}
	size := uint64(st.Size())
	return Info{
		UnitSize:           UnitSize,
		TotalUnits:         size / UnitSize,
		PhysicalSectorSize: UnitSize,
		PhysicalSizeBytes:  size,
		ReadOnly:           d.ReadOnly,
	}, nil
}

func (d *FileDevice) Read(unitIndex uint64, dst []byte) error {
	if len(dst) != UnitSize {
		return fmt.Errorf("blockio: dst must be %d bytes, got %d", UnitSize, len(dst))
	}
	off := int64(unitIndex) * UnitSize
	n, err := d.f.ReadAt(dst, off)
	if err != nil && err != io.EOF {
		return err
	}
	if n != UnitSize {
		return fmt.Errorf("%w: read %d of %d bytes at unit %d", ErrShortIO, n, UnitSize, unitIndex)
	}
	return nil
}

func (d *FileDevice) Write(unitIndex uint64, src []byte) error {
	if d.ReadOnly {
		return ErrReadOnly
	}
	if len(src) != UnitSize {
		return fmt.Errorf("blockio: src must be %d bytes, got %d", UnitSize, len(src))
	}
	off := int64(unitIndex) * UnitSize
	n, err := d.f.WriteAt(src, off)
	if err != nil {
		return err
	}
	if n != UnitSize {
		return fmt.Errorf("%w: wrote %d of %d bytes at unit %d", ErrShortIO, n, UnitSize, unitIndex)
	}
	return nil
}

// Open selects and opens a backend per spec.md §6: a disk image if path is
// non-empty and readable, otherwise a RAM disk of ramDiskMB megabytes.
func Open(diskImgPath string, ramDiskMB uint) (Device, error) {
	if diskImgPath != "" {
		dev := NewFileDevice(diskImgPath, false)
		if err := dev.Open(); err == nil {
			return dev, nil
		}
		// fall back to RAM per spec.md: "absent/unreadable ⇒ fall back to RAM"
	}
	if ramDiskMB < 1 {
		ramDiskMB = 1
	}
	dev := NewRAMDevice(uint64(ramDiskMB) * 1024 * 1024)
	return dev, dev.Open()
}
