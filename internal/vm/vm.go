// Package vm implements the VM execution core (spec.md §4.5): data/return
// stacks, the dictionary/code arena, compile/interpret mode transitions,
// and the threaded-code inner interpreter. It is grounded on the teacher's
// internals.go/first.go/third.go generalized from byte-addressed []int
// memory to a cell-addressed Arena plus an out-of-arena Dictionary
// (internal/dictionary), since spec.md's dictionary carries far richer
// per-entry telemetry than the teacher's bare link/name/code layout.
package vm

import (
	"fmt"
	"io"

	"github.com/rajames440/starforth/internal/dictionary"
	"github.com/rajames440/starforth/internal/hostsvc"
)

// Compile/interpret states (spec.md §4.5): STATE is both an in-arena cell
// and this mirrored host field, kept equal at every transition.
const (
	StateInterpret int64 = 0
	StateCompile   int64 = -1
)

// stateCellAddr is the arena cell that mirrors VM.state (spec.md §4.5
// "STATE is both an in-arena cell and a mirrored host-side field").
const stateCellAddr = 0

// VM is one StarForth virtual machine instance. Per spec.md §5, a VM is
// single-threaded cooperative; multiple VMs may run concurrently provided
// each owns its own HostServices (or shares a serializing one).
type VM struct {
	Arena  *Arena
	Data   *Stack
	Return *Stack
	Dict   *dictionary.Dictionary
	Host   hostsvc.Services

	Out   io.Writer
	input io.RuneScanner

	Base int // numeric BASE, 2..36 (spec.md §4.5 parse_number)

	state          int64
	err            error
	abortRequested bool
	exitColon      bool

	logfn func(mess string, args ...interface{})
}

// New constructs a VM with the given options applied over sane defaults
// (a DefaultArenaSize-byte arena of 8-byte cells, the lower half of it the
// dictionary/code region and the upper half the block window, base 10, a
// disabled hot cache unless WithHotCache is supplied, and a POSIX
// HostServices writing to io.Discard).
func New(opts ...Option) *VM {
	m := &VM{
		Arena:  NewArena(DefaultArenaSize/cellSize, DefaultArenaSize/cellSize/2),
		Data:   NewStack(),
		Return: NewStack(),
		Dict:   dictionary.New(nil),
		Host:   hostsvc.NewPOSIX(io.Discard),
		Out:    io.Discard,
		Base:   10,
		state:  StateInterpret,
	}
	for _, opt := range opts {
		opt.apply(m)
	}
	// Reserve cell 0 for the STATE mirror (stateCellAddr) so the first
	// compiled body never lands on it — done after options so a
	// WithArena-supplied arena is reserved too (spec.md §8 "STATE mirror
	// and arena cell are equal at every quiesce point").
	m.Arena.Allot(1)
	m.SetState(m.state)
	return m
}

// State returns the current compile/interpret mode.
func (m *VM) State() int64 { return m.state }

// SetState transitions the VM between Interpret and Compile, keeping the
// arena mirror cell in sync (spec.md §4.5, §8 "STATE mirror and arena cell
// are equal at every outer-interpreter quiesce point").
func (m *VM) SetState(s int64) {
	m.state = s
	m.Arena.WriteCell(stateCellAddr, s)
}

// Here returns the arena's bump-allocation cursor.
func (m *VM) Here() uint64 { return m.Arena.Here() }

// DictLimit returns the first cell address reserved for the block window
// (spec.md §3.2), i.e. the arena boundary BLOCK word addresses are offset
// from.
func (m *VM) DictLimit() uint64 { return m.Arena.DictLimit() }

// Allot advances HERE, implementing dictionary.Machine.
func (m *VM) Allot(n int) error { return m.Arena.Allot(n) }

// ReadCell implements dictionary.Machine.
func (m *VM) ReadCell(addr uint64) int64 { return m.Arena.ReadCell(addr) }

// WriteCell implements dictionary.Machine.
func (m *VM) WriteCell(addr uint64, v int64) { m.Arena.WriteCell(addr, v) }

// Push implements dictionary.Machine: a data-stack overflow sets the error
// flag rather than propagating, matching the Machine interface's
// no-error Push signature.
func (m *VM) Push(v int64) {
	if err := m.Data.Push(v); err != nil {
		m.SetError(err)
	}
}

// Pop implements dictionary.Machine.
func (m *VM) Pop() (int64, error) { return m.Data.Pop() }

// PushReturn implements dictionary.Machine.
func (m *VM) PushReturn(addr uint64) error { return m.Return.Push(int64(addr)) }

// PopReturn implements dictionary.Machine.
func (m *VM) PopReturn() (uint64, error) {
	v, err := m.Return.Pop()
	return uint64(v), err
}

// Err returns the sticky per-VM error flag (spec.md §4.5/§7), cleared only
// by the outer interpreter at quiesce points via ClearError.
func (m *VM) Err() error { return m.err }

// SetError implements dictionary.Machine: sets the sticky error flag and
// logs it. Primitive words call this instead of raising (spec.md §7
// "primitive words set the VM's error flag and log; they do not raise").
func (m *VM) SetError(err error) {
	if err == nil {
		return
	}
	m.err = err
	m.logf("!", "error: %v", err)
}

// ClearError clears the sticky error flag; only the outer interpreter
// calls this, at a quiesce point (spec.md §7).
func (m *VM) ClearError() { m.err = nil }

// Abort implements dictionary.Machine: sets abort_requested and clears
// both stacks (spec.md §4.5 "abort_requested ... unwinds the return stack
// to zero"; §7 "ABORT clears both stacks").
func (m *VM) Abort() {
	m.abortRequested = true
	m.Data.Reset()
	m.Return.Reset()
}

// AbortRequested reports whether Abort was called since the last clear.
func (m *VM) AbortRequested() bool { return m.abortRequested }

// clearAbort resets the one-shot abort flag; called by the inner
// interpreter once it has unwound (spec.md §4.5).
func (m *VM) clearAbort() { m.abortRequested = false }

func (m *VM) logf(mark, mess string, args ...interface{}) {
	if m.logfn == nil {
		return
	}
	if len(args) > 0 {
		mess = fmt.Sprintf(mess, args...)
	}
	m.logfn("%v %v", mark, mess)
}

// Print writes to the VM's configured output, used by primitives like `.`
// and `EMIT`.
func (m *VM) Print(s string) {
	io.WriteString(m.Out, s)
}
