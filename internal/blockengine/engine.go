package blockengine

import (
	"errors"
	"fmt"

	"github.com/rajames440/starforth/internal/blockio"
)

// Logger is the minimal diagnostic surface BlockEngine needs; satisfied by
// internal/telemetry's facade without creating an import cycle back to it.
type Logger interface {
	Warnf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Warnf(string, ...interface{}) {}

// Clock supplies timestamps for metadata created_time/modified_time and
// the volume header's created/mounted times, routed through HostServices
// rather than calling time.Now directly (spec.md §4.2).
type Clock interface {
	MonotonicNS() int64
}

// Engine is the two-layer block subsystem (spec.md §4.3): a RAM window for
// low LBNs, a write-back cached disk backend for the rest.
type Engine struct {
	backend blockio.Device
	log     Logger
	clock   Clock

	ram      []byte // RAMBlocks * ForthBlockSize bytes
	ramDirty []bool // one bool per RAM physical block

	header VolumeHeader
	bam    *BAM
	cache  deviceCache

	attached bool
}

// ErrBAMExhausted is returned by Allocate when no free block remains.
var ErrBAMExhausted = errors.New("blockengine: block allocation map exhausted")

// ErrNotAttached is returned by disk-side operations before AttachDevice
// has succeeded.
var ErrNotAttached = errors.New("blockengine: no device attached")

// NewEngine constructs an Engine over backend, with the RAM window
// pre-zeroed. log and clock may be nil, in which case a no-op logger and a
// zero clock are used (acceptable for tests that don't care about
// timestamps or warnings).
func NewEngine(backend blockio.Device, log Logger, clock Clock) *Engine {
	if DiskStart != RAMBlocks {
		panic("blockengine: DiskStart must equal RAMBlocks (spec.md Open Question)")
	}
	if log == nil {
		log = nopLogger{}
	}
	return &Engine{
		backend:  backend,
		log:      log,
		clock:    clock,
		ram:      make([]byte, RAMBlocks*ForthBlockSize),
		ramDirty: make([]bool, RAMBlocks),
	}
}

func (e *Engine) now() uint64 {
	if e.clock == nil {
		return 0
	}
	return uint64(e.clock.MonotonicNS())
}

// AttachDevice reads device block 0 and either loads an existing v2 volume
// or formats a fresh one, per spec.md §4.3.
func (e *Engine) AttachDevice() error {
	info, err := e.backend.Info()
	if err != nil {
		return fmt.Errorf("blockengine: backend info: %w", err)
	}
	totalDevblocks := info.TotalUnits / DeviceUnitsPerDevblock
	if totalDevblocks < 2 {
		return fmt.Errorf("blockengine: backend too small: %d devblocks", totalDevblocks)
	}

	buf := make([]byte, DeviceSector)
	if err := e.readDevblockRaw(0, buf); err != nil {
		e.log.Warnf("blockengine: header read failed, formatting fresh: %v", err)
		return e.freshFormat(totalDevblocks)
	}

	var hdr VolumeHeader
	if err := hdr.Unmarshal(buf); err != nil || !hdr.IsValidV2() {
		return e.freshFormat(totalDevblocks)
	}

	e.header = hdr
	e.bam = NewBAM(e.header.TrackedBlocks)
	if err := e.loadBAM(); err != nil {
		e.log.Warnf("blockengine: BAM load failed, formatting fresh: %v", err)
		return e.freshFormat(totalDevblocks)
	}

	e.header.MountedTime = e.now()
	e.attached = true
	return nil
}

func (e *Engine) loadBAM() error {
	need := e.header.BAMDevblocks * DeviceSector
	raw := make([]byte, 0, need)
	buf := make([]byte, DeviceSector)
	for i := uint32(0); i < e.header.BAMDevblocks; i++ {
		devblock := uint64(e.header.BAMStart) + uint64(i)
		if err := e.readDevblockRaw(devblock, buf); err != nil {
			return err
		}
		raw = append(raw, buf...)
	}
	e.bam.LoadBytes(raw)
	return nil
}

// freshFormat computes BAM sizing and capacity per spec.md §4.3 and
// writes a new v2 header + zeroed BAM.
func (e *Engine) freshFormat(totalDevblocks uint64) error {
	const bitsPerPage = DeviceSector * 8 // 32768
	bamStart := uint32(1)
	usableDevblocks := totalDevblocks - 1
	bamDevblocks := uint32((3*usableDevblocks + bitsPerPage - 1) / bitsPerPage)
	if bamDevblocks == 0 {
		bamDevblocks = 1
	}
	devblockBase := bamStart + bamDevblocks

	trackedBlocks := uint64(bamDevblocks) * bitsPerPage
	payloadDevblocks := totalDevblocks - uint64(devblockBase)
	totalBlocks := trackedBlocks
	if cap3 := payloadDevblocks * PackRatio; cap3 < totalBlocks {
		totalBlocks = cap3
	}

	e.bam = NewBAM(trackedBlocks)
	e.bam.MarkReservedRange(DSys)

	e.header = VolumeHeader{
		Magic:          VolumeMagic,
		Version:        VolumeVersion,
		Label:          NewLabel(),
		TotalDevblocks: totalDevblocks,
		BAMStart:       bamStart,
		BAMDevblocks:   bamDevblocks,
		DevblockBase:   devblockBase,
		TrackedBlocks:  trackedBlocks,
		TotalBlocks:    totalBlocks,
		FreeBlocks:     totalBlocks - DSys,
		FirstFree:      DiskStart + DSys,
		LastAllocated:  0,
		ReservedDiskLo: DSys,
		ReservedRAMLo:  RSys,
		CreatedTime:    e.now(),
		MountedTime:    e.now(),
	}

	e.attached = true
	return e.Flush(0)
}

// TotalUserLBN returns the number of user-visible logical blocks across
// both RAM and disk tiers (spec.md §3.8).
func (e *Engine) TotalUserLBN() uint64 {
	ramUser := uint64(RAMBlocks - RSys)
	if e.bam == nil {
		return ramUser
	}
	diskUser := uint64(0)
	if e.header.TotalBlocks > DSys {
		diskUser = e.header.TotalBlocks - DSys
	}
	return ramUser + diskUser
}

// GetBuffer returns a 1024-byte window into the engine's owned memory for
// lbn. The pointer is valid until the next GetBuffer, Flush, or shutdown,
// per spec.md §4.3.
func (e *Engine) GetBuffer(lbn uint64, writable bool) ([]byte, error) {
	isRAM, phys := MapLBN(lbn)
	if isRAM {
		off := phys * ForthBlockSize
		if writable {
			e.ramDirty[phys] = true
		}
		return e.ram[off : off+ForthBlockSize], nil
	}
	return e.getDiskBuffer(phys, writable)
}

// GetEmptyBuffer is as GetBuffer but pre-zeroes the window.
func (e *Engine) GetEmptyBuffer(lbn uint64) ([]byte, error) {
	buf, err := e.GetBuffer(lbn, true)
	if err != nil {
		return nil, err
	}
	for i := range buf {
		buf[i] = 0
	}
	return buf, nil
}

func (e *Engine) getDiskBuffer(phys uint64, writable bool) ([]byte, error) {
	if !e.attached {
		return nil, ErrNotAttached
	}
	devblock, slot := DevblockOf(phys)
	idx, err := e.ensureCached(devblock)
	if err != nil {
		return nil, err
	}
	cs := &e.cache.slots[idx]
	if writable {
		cs.dirty = true
	}
	off := slot * ForthBlockSize
	return cs.data[off : off+ForthBlockSize], nil
}

func (e *Engine) ensureCached(devblock uint64) (int, error) {
	if idx := e.cache.find(devblock); idx >= 0 {
		return idx, nil
	}
	idx := e.cache.reserve(devblock, func(victim *cacheSlot) {
		if err := e.writeBackSlot(victim); err != nil {
			e.log.Warnf("blockengine: evicting dirty devblock %d: write-back failed: %v", victim.devblock, err)
		}
	})
	cs := &e.cache.slots[idx]
	buf := cs.data[:]
	if err := e.readDevblockRaw(devblock, buf); err != nil {
		e.log.Warnf("blockengine: devblock %d read failed, zeroing: %v", devblock, err)
		for i := range buf {
			buf[i] = 0
		}
	}
	for i := 0; i < PackRatio; i++ {
		metaBuf := buf[MetaRegionOffset+i*MetaPerBlock : MetaRegionOffset+(i+1)*MetaPerBlock]
		m, err := UnmarshalMetadata(metaBuf)
		if err != nil || m.Magic != MetaMagic {
			m = ZeroedWithMagic()
		}
		cs.meta[i] = m
	}
	cs.devblock = devblock
	cs.valid = true
	cs.loaded = true
	return idx, nil
}

// Update marks lbn dirty; for disk blocks it recomputes the CRC64,
// timestamps, and marks the owning BAM bit allocated, per spec.md §4.3.
func (e *Engine) Update(lbn uint64) error {
	isRAM, phys := MapLBN(lbn)
	if isRAM {
		e.ramDirty[phys] = true
		return nil
	}
	if !e.attached {
		return ErrNotAttached
	}
	devblock, slot := DevblockOf(phys)
	idx, err := e.ensureCached(devblock)
	if err != nil {
		return err
	}
	cs := &e.cache.slots[idx]
	off := slot * ForthBlockSize
	payload := cs.data[off : off+ForthBlockSize]

	m := &cs.meta[slot]
	if m.Magic != MetaMagic {
		*m = ZeroedWithMagic()
		m.CreatedTime = e.now()
	}
	m.Checksum = crc64Checksum(payload)
	m.ModifiedTime = e.now()
	m.WriteCount++

	cs.dirty = true
	cs.metaDirty = true

	bamBit := phys - DiskStart
	if e.bam.Set(bamBit) {
		e.header.FreeBlocks--
	}
	e.header.LastAllocated = lbn
	return nil
}

// ErrNoMetadata is returned by Meta/SetAppData for a RAM-tier LBN: only
// disk-tier blocks carry a packed metadata slice (spec.md §3.7, §4.3).
var ErrNoMetadata = errors.New("blockengine: RAM-tier block has no metadata")

// Meta returns a copy of the decoded metadata slice for a disk-tier LBN
// (spec.md §4.3's per-block metadata), used by the BLK-META@ primitive.
func (e *Engine) Meta(lbn uint64) (Metadata, error) {
	isRAM, phys := MapLBN(lbn)
	if isRAM {
		return Metadata{}, ErrNoMetadata
	}
	if !e.attached {
		return Metadata{}, ErrNotAttached
	}
	devblock, slot := DevblockOf(phys)
	idx, err := e.ensureCached(devblock)
	if err != nil {
		return Metadata{}, err
	}
	return e.cache.slots[idx].meta[slot], nil
}

// SetAppData overwrites the 15 application words of a disk-tier LBN's
// metadata slice, used by the BLK-META! primitive. The remaining fields
// (checksum, timestamps, write_count, ...) are left untouched until the
// next Update recomputes them.
func (e *Engine) SetAppData(lbn uint64, words [15]uint64) error {
	isRAM, phys := MapLBN(lbn)
	if isRAM {
		return ErrNoMetadata
	}
	if !e.attached {
		return ErrNotAttached
	}
	devblock, slot := DevblockOf(phys)
	idx, err := e.ensureCached(devblock)
	if err != nil {
		return err
	}
	cs := &e.cache.slots[idx]
	m := &cs.meta[slot]
	if m.Magic != MetaMagic {
		*m = ZeroedWithMagic()
		m.CreatedTime = e.now()
	}
	m.AppData = words
	cs.metaDirty = true
	return nil
}

// Flush writes dirty state back to the backend. lbn==0 flushes everything
// (all dirty devblocks, the BAM, and the header); otherwise it flushes
// only the devblock containing lbn, and is a no-op if that devblock isn't
// cached (spec.md §4.3, §8).
func (e *Engine) Flush(lbn uint64) error {
	if lbn == 0 {
		return e.flushAll()
	}
	isRAM, phys := MapLBN(lbn)
	if isRAM {
		return nil // RAM blocks have no backend to flush to individually
	}
	devblock, _ := DevblockOf(phys)
	idx := e.cache.find(devblock)
	if idx < 0 {
		return nil
	}
	return e.writeBackSlot(&e.cache.slots[idx])
}

func (e *Engine) flushAll() error {
	for _, idx := range e.cache.dirtySlots() {
		if err := e.writeBackSlot(&e.cache.slots[idx]); err != nil {
			return err
		}
	}
	if e.bam != nil {
		if err := e.flushBAM(); err != nil {
			return err
		}
	}
	if err := e.flushHeader(); err != nil {
		return err
	}
	return e.backend.Flush()
}

func (e *Engine) writeBackSlot(cs *cacheSlot) error {
	if !cs.valid || (!cs.dirty && !cs.metaDirty) {
		return nil
	}
	for i := 0; i < PackRatio; i++ {
		metaBuf := cs.meta[i].Marshal()
		copy(cs.data[MetaRegionOffset+i*MetaPerBlock:MetaRegionOffset+(i+1)*MetaPerBlock], metaBuf)
	}
	if err := e.writeDevblockRaw(cs.devblock, cs.data[:]); err != nil {
		return err
	}
	cs.dirty = false
	cs.metaDirty = false
	return nil
}

func (e *Engine) flushBAM() error {
	bytesPerPage := DeviceSector
	data := e.bam.Bytes()
	for i := uint32(0); i < e.header.BAMDevblocks; i++ {
		start := int(i) * bytesPerPage
		end := start + bytesPerPage
		page := make([]byte, bytesPerPage)
		if start < len(data) {
			stop := end
			if len(data) < stop {
				stop = len(data)
			}
			copy(page, data[start:stop])
		}
		if err := e.writeDevblockRaw(uint64(e.header.BAMStart)+uint64(i), page); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) flushHeader() error {
	buf := e.header.Marshal()
	return e.writeDevblockRaw(0, buf)
}

// Allocate scans the BAM from first_free for the first clear bit, marks it
// allocated, and returns the corresponding user-visible LBN (spec.md
// §4.3).
func (e *Engine) Allocate() (uint64, error) {
	if e.bam == nil {
		return 0, ErrNotAttached
	}
	// FirstFree is tracked in disk-physical-block space starting at
	// DiskStart; the BAM is indexed from 0 == DiskStart.
	startBit := uint64(0)
	if e.header.FirstFree > DiskStart {
		startBit = e.header.FirstFree - DiskStart
	}
	bit, ok := e.bam.FirstClear(startBit)
	if !ok {
		return 0, ErrBAMExhausted
	}
	e.bam.Set(bit)
	e.header.FreeBlocks--
	phys := DiskStart + bit
	e.header.FirstFree = phys + 1
	e.header.LastAllocated = phys

	lbn := (RAMBlocks - RSys) + (phys - DiskStart - DSys)
	return lbn, nil
}

func (e *Engine) readDevblockRaw(devblock uint64, buf []byte) error {
	if len(buf) != DeviceSector {
		return fmt.Errorf("blockengine: devblock buffer must be %d bytes", DeviceSector)
	}
	baseUnit := devblock * DeviceUnitsPerDevblock
	for i := 0; i < DeviceUnitsPerDevblock; i++ {
		if err := e.backend.Read(baseUnit+uint64(i), buf[i*1024:(i+1)*1024]); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) writeDevblockRaw(devblock uint64, buf []byte) error {
	if len(buf) != DeviceSector {
		return fmt.Errorf("blockengine: devblock buffer must be %d bytes", DeviceSector)
	}
	baseUnit := devblock * DeviceUnitsPerDevblock
	for i := 0; i < DeviceUnitsPerDevblock; i++ {
		if err := e.backend.Write(baseUnit+uint64(i), buf[i*1024:(i+1)*1024]); err != nil {
			return err
		}
	}
	return nil
}
