package vm

import "errors"

// DefaultArenaSize is the default VM arena size (spec.md §3.2).
const DefaultArenaSize = 5 * 1024 * 1024

// cellSize is the width of a cell in bytes; cells are stored as int64 in
// the arena's shadow cell slice rather than packed bytes, matching the
// teacher's flat []int memory model (internals.go's vm.mem) generalized to
// 64-bit cells.
const cellSize = 8

// ErrArenaExhausted is returned when an allot would push HERE past
// DictLimit (spec.md §3.2 invariant: HERE <= DictLimit).
var ErrArenaExhausted = errors.New("vm: dictionary/code arena exhausted")

// Arena is the VM's single contiguous memory region (spec.md §3.2),
// subdivided into a bump-allocated dictionary/code region [0, DictLimit)
// and a block-window region [DictLimit, end), not touched by allot/align,
// into which the BLOCK word copies block payloads (the block engine keeps
// its own buffers; UPDATE copies the window back).
type Arena struct {
	cells     []int64
	here      uint64
	dictLimit uint64
}

// NewArena constructs an arena of totalCells cells, reserving dictLimitCells
// for the dictionary/code region and the remainder for the block window.
func NewArena(totalCells, dictLimitCells uint64) *Arena {
	if dictLimitCells > totalCells {
		dictLimitCells = totalCells
	}
	return &Arena{
		cells:     make([]int64, totalCells),
		dictLimit: dictLimitCells,
	}
}

// Here returns the current bump-allocation cursor.
func (a *Arena) Here() uint64 { return a.here }

// DictLimit returns the first address not available to allot.
func (a *Arena) DictLimit() uint64 { return a.dictLimit }

// Len returns the total addressable cell count, including the block window.
func (a *Arena) Len() uint64 { return uint64(len(a.cells)) }

// ReadCell loads the cell at addr, returning 0 for any address beyond the
// arena (matching the teacher's load()'s implicit zero-fill for growth,
// generalized to a fixed-size arena with no growth).
func (a *Arena) ReadCell(addr uint64) int64 {
	if addr >= uint64(len(a.cells)) {
		return 0
	}
	return a.cells[addr]
}

// WriteCell stores val at addr. Writes past the arena length are silently
// dropped; callers that need a hard bound should check against Len first
// (the block window and dictionary region are both pre-sized, so this path
// is only exercised by defensive callers).
func (a *Arena) WriteCell(addr uint64, val int64) {
	if addr >= uint64(len(a.cells)) {
		return
	}
	a.cells[addr] = val
}

// Allot advances HERE by n cells, bump-allocating dictionary/code space.
// n == 0 is always a no-op success (spec.md §8 "allot(0) is a no-op that
// cannot fail"). A request that would cross DictLimit fails without
// advancing HERE.
func (a *Arena) Allot(n int) error {
	if n == 0 {
		return nil
	}
	if n < 0 {
		// FORGET-style rewind of HERE by |n| cells. Negative allot never
		// fails.
		a.here = uint64(int64(a.here) + int64(n))
		return nil
	}
	next := a.here + uint64(n)
	if next > a.dictLimit {
		return ErrArenaExhausted
	}
	a.here = next
	return nil
}

// Align rounds HERE up to the next cell boundary. Since this arena already
// addresses in whole cells (unlike the teacher's byte-addressed memory),
// Align is a deliberate no-op retained so callers that mirror the
// C-derived `align()` call site keep compiling unchanged; it is kept
// distinct from Allot so a future byte-addressed arena variant has a
// single seam to change.
func (a *Arena) Align() {}

// Compile appends val at HERE and advances HERE by one cell — the
// dictionary/colon-body build primitive (spec.md §3.5), grounded on the
// teacher's internals.go compile().
func (a *Arena) Compile(val int64) error {
	h := a.here
	if err := a.Allot(1); err != nil {
		return err
	}
	a.cells[h] = val
	return nil
}

// Rewind resets HERE to addr, the arena side of a FORGET. It never fails;
// an addr beyond the current HERE is ignored.
func (a *Arena) Rewind(addr uint64) {
	if addr <= a.here {
		a.here = addr
	}
}
