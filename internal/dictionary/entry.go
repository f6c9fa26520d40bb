// Package dictionary implements the dictionary entry representation and
// the hot-words cache with Q48.16 Bayesian telemetry (spec.md §3.4, §3.6,
// §4.4). It is deliberately decoupled from internal/vm: primitive word
// bodies are typed against the small Machine interface below rather than
// a concrete *vm.VM, so the dictionary never imports the VM core (vm
// imports dictionary instead).
package dictionary

import "github.com/rajames440/starforth/internal/fixedmath"

// Flags is the dictionary entry bitset (spec.md §3.4).
type Flags uint8

const (
	Immediate Flags = 1 << iota
	Compiled
	Smudged
	Hidden
)

// Has reports whether all bits in mask are set.
func (f Flags) Has(mask Flags) bool { return f&mask == mask }

// NameMax is the maximum inline word-name length (spec.md §3.4).
const NameMax = 31

// Machine is the minimal surface a primitive WordFunc needs from the VM
// core. internal/vm.VM implements it; dictionary never imports vm.
type Machine interface {
	Push(v int64)
	Pop() (int64, error)
	PushReturn(addr uint64) error
	PopReturn() (uint64, error)
	Here() uint64
	Allot(n int) error
	ReadCell(addr uint64) int64
	WriteCell(addr uint64, v int64)
	State() int64
	SetState(int64)
	SetError(err error)
	Abort()
}

// WordFunc is a primitive word's implementation.
type WordFunc func(m Machine) error

// Physics is the per-entry small telemetry record (spec.md §3.4).
type Physics struct {
	TemperatureQ8 int32
	AvgLatencyNS  int64
	LastActiveNS  int64
}

// Entry is a dictionary entry (spec.md §3.4). Entries are permanent once
// created: never relocated, never mutated by lookup except for the
// counters below. Link forms a newest-to-oldest singly linked list.
type Entry struct {
	Link *Entry
	Flags Flags

	Name   string
	WordID uint32

	Func WordFunc

	// ExecutionHeat is a monotonic Q48.16 counter of how often the word
	// was executed, incremented by fixedmath.One per call via
	// RecordExecution.
	ExecutionHeat fixedmath.Q

	Physics Physics

	// DataField holds the entry's payload cells. For colon definitions,
	// DataField[0] is the vaddr of the threaded body that follows
	// contiguously in the VM arena (spec.md §3.4, §3.5).
	DataField []int64
}

// RecordExecution increments the entry's execution heat and refreshes its
// physics record. nowNS should come from HostServices.MonotonicNS (via
// internal/vm's Execute/runThreaded, or via the Clock passed to Find),
// never from time.Now directly.
func (e *Entry) RecordExecution(nowNS int64) {
	e.ExecutionHeat += fixedmath.One
	if e.Physics.LastActiveNS != 0 {
		e.Physics.AvgLatencyNS = (e.Physics.AvgLatencyNS + (nowNS - e.Physics.LastActiveNS)) / 2
	}
	e.Physics.LastActiveNS = nowNS
}

// BodyAddr returns the colon-body vaddr held in DataField[0], or 0 if this
// entry has no data field (e.g. a bare primitive).
func (e *Entry) BodyAddr() uint64 {
	if len(e.DataField) == 0 {
		return 0
	}
	return uint64(e.DataField[0])
}
