package blockengine

import (
	"encoding/binary"
	"fmt"
)

// Metadata is the per-block metadata slice (spec.md §3.7, §6): 341 packed
// bytes, little-endian, three of which are stored per 4 KiB devblock
// immediately after the three 1 KiB data payloads.
type Metadata struct {
	Checksum      uint64 // CRC64 of the 1 KiB block data
	Magic         uint64 // MetaMagic when initialised
	CreatedTime   uint64
	ModifiedTime  uint64
	Flags         uint64
	WriteCount    uint64
	ContentType   uint64
	Encoding      uint64
	ContentLength uint64
	Entropy       [4]uint64
	Hash          [4]uint64
	OwnerID       uint64
	Permissions   uint64
	ACLBlock      uint64
	Signature     [2]uint64
	PrevBlock     uint64
	NextBlock     uint64
	ParentBlock   uint64
	ChainLength   uint64
	AppData       [15]uint64
}

// fieldsWireSize is the number of non-padding bytes; MetaPerBlock - this is
// the zero-pad tail (13 bytes, matching spec.md's "341 bytes... padded").
const fieldsWireSize = 9*8 + 4*8 + 4*8 + 3*8 + 2*8 + 4*8 + 15*8 // 328

func init() {
	if fieldsWireSize > MetaPerBlock {
		panic(fmt.Sprintf("blockengine: metadata fields %d exceed slice size %d", fieldsWireSize, MetaPerBlock))
	}
}

// Marshal encodes the metadata slice into a fresh MetaPerBlock-byte buffer.
func (m *Metadata) Marshal() []byte {
	buf := make([]byte, MetaPerBlock)
	n := 0
	put64 := func(v uint64) { binary.LittleEndian.PutUint64(buf[n:], v); n += 8 }

	put64(m.Checksum)
	put64(m.Magic)
	put64(m.CreatedTime)
	put64(m.ModifiedTime)
	put64(m.Flags)
	put64(m.WriteCount)
	put64(m.ContentType)
	put64(m.Encoding)
	put64(m.ContentLength)
	for _, v := range m.Entropy {
		put64(v)
	}
	for _, v := range m.Hash {
		put64(v)
	}
	put64(m.OwnerID)
	put64(m.Permissions)
	put64(m.ACLBlock)
	for _, v := range m.Signature {
		put64(v)
	}
	put64(m.PrevBlock)
	put64(m.NextBlock)
	put64(m.ParentBlock)
	put64(m.ChainLength)
	for _, v := range m.AppData {
		put64(v)
	}
	return buf
}

// UnmarshalMetadata decodes a MetaPerBlock-byte slice. If the decoded
// magic does not match MetaMagic, callers should substitute a zeroed
// record with the magic set, per spec.md §4.3 ("If the magic is wrong, a
// zeroed record with the correct magic is substituted").
func UnmarshalMetadata(buf []byte) (Metadata, error) {
	var m Metadata
	if len(buf) < fieldsWireSize {
		return m, fmt.Errorf("blockengine: metadata buffer too short: %d < %d", len(buf), fieldsWireSize)
	}
	n := 0
	get64 := func() uint64 { v := binary.LittleEndian.Uint64(buf[n:]); n += 8; return v }

	m.Checksum = get64()
	m.Magic = get64()
	m.CreatedTime = get64()
	m.ModifiedTime = get64()
	m.Flags = get64()
	m.WriteCount = get64()
	m.ContentType = get64()
	m.Encoding = get64()
	m.ContentLength = get64()
	for i := range m.Entropy {
		m.Entropy[i] = get64()
	}
	for i := range m.Hash {
		m.Hash[i] = get64()
	}
	m.OwnerID = get64()
	m.Permissions = get64()
	m.ACLBlock = get64()
	for i := range m.Signature {
		m.Signature[i] = get64()
	}
	m.PrevBlock = get64()
	m.NextBlock = get64()
	m.ParentBlock = get64()
	m.ChainLength = get64()
	for i := range m.AppData {
		m.AppData[i] = get64()
	}
	return m, nil
}

// ZeroedWithMagic returns a freshly zeroed Metadata with only Magic set,
// the substitution spec.md requires when a decoded slice's magic doesn't
// match.
func ZeroedWithMagic() Metadata {
	return Metadata{Magic: MetaMagic}
}
