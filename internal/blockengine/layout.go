// Package blockengine implements the two-layer block subsystem (spec.md
// §3.7, §3.8, §4.3): a logical block address space mapped onto a RAM window
// for low LBNs and a write-back cached disk backend for the rest, with an
// external block-allocation bitmap and CRC64 per-block integrity metadata.
//
// Grounded on original_source/src/block_subsystem.c and
// include/block_subsystem.h.
package blockengine

const (
	// ForthBlockSize is the user-visible Forth block unit: 1 KiB.
	ForthBlockSize = 1024

	// RAMBlocks is the number of Forth blocks backed by the RAM window.
	RAMBlocks = 1024

	// DiskStart is the first disk-side physical block number. spec.md's
	// open question notes the fresh-format reserved-bit math implicitly
	// assumes DiskStart == RAMBlocks; this port asserts it explicitly in
	// NewEngine rather than relying on silent constant equality.
	DiskStart = 1024

	// DeviceSector is the physical "devblock" size: 4 KiB, four 1 KiB
	// blockio units.
	DeviceSector = 4096

	// PackRatio is the number of 1 KiB data blocks packed per devblock.
	PackRatio = 3

	// MetaRegionOffset is the byte offset of the metadata region within a
	// devblock.
	MetaRegionOffset = PackRatio * ForthBlockSize // 3072

	// MetaRegionSize is the size of the metadata region within a devblock.
	MetaRegionSize = DeviceSector - MetaRegionOffset // 1024

	// MetaPerBlock is the packed size of one block's metadata slice.
	MetaPerBlock = MetaRegionSize / PackRatio // 341

	// RSys is the count of reserved, invisible-to-user RAM blocks at the
	// low end of RAM LBN space.
	RSys = 32

	// DSys is the count of reserved, invisible-to-user disk blocks at the
	// low end of disk LBN space.
	DSys = 32

	// DeviceUnitsPerDevblock is how many blockio.UnitSize units back one
	// 4 KiB devblock.
	DeviceUnitsPerDevblock = DeviceSector / 1024

	// DeviceCacheSlots is the fixed number of device-block cache slots.
	DeviceCacheSlots = 8

	// VolumeMagic identifies a StarForth v2 volume: "STFR".
	VolumeMagic = 0x53544652

	// VolumeVersion is the on-disk header version this port reads/writes.
	VolumeVersion = 2

	// MetaMagic identifies a valid per-block metadata slice: "BLK_STRK".
	MetaMagic = 0x424C4B5F5354524B
)

// MapLBN implements spec.md §3.8's address-space mapping. It returns
// whether lbn is RAM-backed, and the corresponding physical block number
// (a RAM physical block index, or a disk physical block number in the
// DiskStart.. numbering scheme).
func MapLBN(lbn uint64) (isRAM bool, physical uint64) {
	ramUserBlocks := uint64(RAMBlocks - RSys)
	if lbn < ramUserBlocks {
		return true, lbn + RSys
	}
	return false, DiskStart + DSys + (lbn - ramUserBlocks)
}

// DevblockOf maps a disk physical block number to its containing devblock
// index and 0-based pack slot within that devblock, per spec.md §3.8:
// "Disk physical block P maps to device block (P - DISK_START) / 3 at pack
// slot (P - DISK_START) % 3."
func DevblockOf(physicalDiskBlock uint64) (devblock uint64, slot int) {
	rel := physicalDiskBlock - DiskStart
	return rel / PackRatio, int(rel % PackRatio)
}
