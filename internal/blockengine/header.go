package blockengine

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// VolumeHeader is the on-device v2 volume header (spec.md §3.7, §6),
// serialized little-endian into device block 0 (4 KiB).
type VolumeHeader struct {
	Magic   uint32
	Version uint32

	// Label is stamped with a fresh UUID at format time, grounded on
	// ProbeChain-go-probe's use of google/uuid for node/account
	// identifiers — here used as the volume's administrative label.
	Label [36]byte

	TotalDevblocks uint64

	BAMStart      uint32
	BAMDevblocks  uint32
	DevblockBase  uint32

	TrackedBlocks uint64
	TotalBlocks   uint64
	FreeBlocks    uint64

	FirstFree     uint64
	LastAllocated uint64

	ReservedDiskLo uint32
	ReservedRAMLo  uint32

	CreatedTime uint64
	MountedTime uint64

	HdrCRC uint64
}

// headerWireSize is the fixed on-disk size of the non-padded header
// fields; the remainder of the 4 KiB block is zero padding.
const headerWireSize = 4 + 4 + 36 + 8 + 4 + 4 + 4 + 8 + 8 + 8 + 8 + 8 + 4 + 4 + 8 + 8 + 8

// Marshal encodes the header into a freshly allocated DeviceSector-sized
// buffer, zero-padded after the known fields. HdrCRC is computed over
// every preceding field.
func (h *VolumeHeader) Marshal() []byte {
	buf := make([]byte, DeviceSector)
	h.HdrCRC = 0
	n := h.encodeInto(buf)
	h.HdrCRC = crc64Checksum(buf[:n-8])
	binary.LittleEndian.PutUint64(buf[n-8:n], h.HdrCRC)
	return buf
}

func (h *VolumeHeader) encodeInto(buf []byte) (n int) {
	put32 := func(v uint32) { binary.LittleEndian.PutUint32(buf[n:], v); n += 4 }
	put64 := func(v uint64) { binary.LittleEndian.PutUint64(buf[n:], v); n += 8 }

	put32(h.Magic)
	put32(h.Version)
	n += copy(buf[n:], h.Label[:])
	put64(h.TotalDevblocks)
	put32(h.BAMStart)
	put32(h.BAMDevblocks)
	put32(h.DevblockBase)
	put64(h.TrackedBlocks)
	put64(h.TotalBlocks)
	put64(h.FreeBlocks)
	put64(h.FirstFree)
	put64(h.LastAllocated)
	put32(h.ReservedDiskLo)
	put32(h.ReservedRAMLo)
	put64(h.CreatedTime)
	put64(h.MountedTime)
	put64(h.HdrCRC)
	return n
}

// Unmarshal decodes a header from a DeviceSector-sized buffer. It returns
// an error if buf is too short, but does not itself validate the magic —
// callers check Magic/Version per spec.md's "valid v2 header" test.
func (h *VolumeHeader) Unmarshal(buf []byte) error {
	if len(buf) < headerWireSize {
		return fmt.Errorf("blockengine: header buffer too short: %d < %d", len(buf), headerWireSize)
	}
	n := 0
	get32 := func() uint32 { v := binary.LittleEndian.Uint32(buf[n:]); n += 4; return v }
	get64 := func() uint64 { v := binary.LittleEndian.Uint64(buf[n:]); n += 8; return v }

	h.Magic = get32()
	h.Version = get32()
	n += copy(h.Label[:], buf[n:n+36])
	h.TotalDevblocks = get64()
	h.BAMStart = get32()
	h.BAMDevblocks = get32()
	h.DevblockBase = get32()
	h.TrackedBlocks = get64()
	h.TotalBlocks = get64()
	h.FreeBlocks = get64()
	h.FirstFree = get64()
	h.LastAllocated = get64()
	h.ReservedDiskLo = get32()
	h.ReservedRAMLo = get32()
	h.CreatedTime = get64()
	h.MountedTime = get64()
	h.HdrCRC = get64()
	return nil
}

// IsValidV2 reports whether the header looks like a valid StarForth v2
// volume (spec.md §4.3 "On attach_device... If it is a valid v2 header").
func (h *VolumeHeader) IsValidV2() bool {
	return h.Magic == VolumeMagic && h.Version == VolumeVersion
}

// NewLabel generates a fresh administrative label for a newly formatted
// volume.
func NewLabel() [36]byte {
	var out [36]byte
	copy(out[:], uuid.NewString())
	return out
}
