package words

import (
	"encoding/binary"

	"github.com/rajames440/starforth/internal/blockengine"
	"github.com/rajames440/starforth/internal/dictionary"
)

// cellsPerForthBlock is how many 8-byte cells a 1 KiB Forth block occupies
// once mapped into the VM's block-window arena region.
const cellsPerForthBlock = blockengine.ForthBlockSize / 8

// limiter narrows dictionary.Machine down to the block-window boundary
// VMCore exposes (spec.md §3.2's DICT_LIMIT), needed to place each LBN's
// synced copy at a deterministic arena address.
type limiter interface{ DictLimit() uint64 }

// BlockWords wires BLOCK/UPDATE/FLUSH/BLK-META@/BLK-META! against a
// blockengine.Engine (spec.md §4.3). Grounded on
// original_source/src/block_subsystem.c's public get_buffer/update/flush
// API, generalized to Go: each BLOCK(lbn) call synchronizes the engine's
// 1 KiB payload into the VM arena's block window at a fixed per-LBN
// offset, so ordinary @/! cell access works on it like any other arena
// address; UPDATE copies the window back into the engine's buffer before
// marking it dirty.
type BlockWords struct {
	Engine  *blockengine.Engine
	lastLBN uint64
	hasLast bool
}

// Install registers the block words on d.
func (bw *BlockWords) Install(d *dictionary.Dictionary) {
	d.Create("BLOCK", func(m dictionary.Machine) error {
		lbnVal, err := m.Pop()
		if err != nil {
			return err
		}
		lbn := uint64(lbnVal)
		buf, err := bw.Engine.GetBuffer(lbn, false)
		if err != nil {
			return err
		}
		addr := bw.windowAddr(m, lbn)
		for i := 0; i < cellsPerForthBlock; i++ {
			v := binary.LittleEndian.Uint64(buf[i*8 : i*8+8])
			m.WriteCell(addr+uint64(i), int64(v))
		}
		bw.lastLBN = lbn
		bw.hasLast = true
		m.Push(int64(addr))
		return nil
	})

	d.Create("UPDATE", func(m dictionary.Machine) error {
		if !bw.hasLast {
			return nil
		}
		addr := bw.windowAddr(m, bw.lastLBN)
		buf, err := bw.Engine.GetBuffer(bw.lastLBN, true)
		if err != nil {
			return err
		}
		for i := 0; i < cellsPerForthBlock; i++ {
			binary.LittleEndian.PutUint64(buf[i*8:i*8+8], uint64(m.ReadCell(addr+uint64(i))))
		}
		return bw.Engine.Update(bw.lastLBN)
	})

	d.Create("FLUSH", func(m dictionary.Machine) error {
		return bw.Engine.Flush(0)
	})

	d.Create("BLK-META@", func(m dictionary.Machine) error {
		lbnVal, err := m.Pop()
		if err != nil {
			return err
		}
		meta, err := bw.Engine.Meta(uint64(lbnVal))
		if err != nil {
			return err
		}
		m.Push(int64(meta.AppData[0]))
		return nil
	})

	d.Create("BLK-META!", func(m dictionary.Machine) error {
		lbnVal, err := m.Pop()
		if err != nil {
			return err
		}
		word0, err := m.Pop()
		if err != nil {
			return err
		}
		meta, err := bw.Engine.Meta(uint64(lbnVal))
		if err != nil {
			return err
		}
		words := meta.AppData
		words[0] = uint64(word0)
		return bw.Engine.SetAppData(uint64(lbnVal), words)
	})
}

func (bw *BlockWords) windowAddr(m dictionary.Machine, lbn uint64) uint64 {
	base := uint64(0)
	if l, ok := m.(limiter); ok {
		base = l.DictLimit()
	}
	return base + lbn*cellsPerForthBlock
}
