// Package hostsvc provides the HostServices trait (spec.md §4.2): the
// pluggable capability set the VM core consumes for everything
// side-effecting. The VM core (internal/vm) imports none of time, sync or
// os; internal/dictionary and internal/telemetry use sync directly for their
// own locks, and cmd/starforth's wiring uses time and os directly.
package hostsvc

import (
	"io"
	"sync"
	"time"
)

// Services is the capability set a VM instance is constructed with.
// Allocation is modeled implicitly by Go's own allocator/GC — the arena is
// a plain []int64 of cells owned by the VM — so, unlike spec.md's C-shaped
// alloc/free pair, Services only needs to expose time, synchronization,
// console I/O, and guardrails.
type Services interface {
	// MonotonicNS returns nanoseconds since an arbitrary epoch,
	// non-decreasing across calls.
	MonotonicNS() int64

	// NewMutex returns a fresh mutex handle; may be a no-op mutex in
	// single-threaded embeddings.
	NewMutex() sync.Locker

	// Console is the byte sink for `puts`/`putc`.
	Console() io.Writer

	// Panic aborts the process with a guardrail message. It never
	// returns.
	Panic(msg string)

	// ParityMode reports whether MonotonicNS is a deterministic counter
	// (for bit-reproducible `--doe` runs) rather than wall-clock time.
	ParityMode() bool
}

// POSIX is the default, real-clock implementation.
type POSIX struct {
	Out io.Writer
}

// NewPOSIX returns a POSIX HostServices writing console output to w.
func NewPOSIX(w io.Writer) *POSIX { return &POSIX{Out: w} }

func (p *POSIX) MonotonicNS() int64       { return time.Now().UnixNano() }
func (p *POSIX) NewMutex() sync.Locker    { return &sync.Mutex{} }
func (p *POSIX) Console() io.Writer       { return p.Out }
func (p *POSIX) ParityMode() bool         { return false }
func (p *POSIX) Panic(msg string)         { panic(GuardrailError(msg)) }

// GuardrailError is raised by Panic; it is a distinct type so callers can
// tell a guardrail abort from an ordinary runtime panic via errors.As on
// the recovered value.
type GuardrailError string

func (e GuardrailError) Error() string { return "guardrail violation: " + string(e) }

// Parity is a deterministic HostServices for `--doe` and test harnesses:
// MonotonicNS returns a strictly-incrementing counter instead of wall-clock
// time, so two runs over the same input produce bit-identical telemetry.
type Parity struct {
	Out     io.Writer
	counter int64
	mu      sync.Mutex
}

// NewParity returns a Parity HostServices writing console output to w.
func NewParity(w io.Writer) *Parity { return &Parity{Out: w} }

func (p *Parity) MonotonicNS() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counter += 1000 // 1us per tick, deterministic
	return p.counter
}

func (p *Parity) NewMutex() sync.Locker { return &sync.Mutex{} }
func (p *Parity) Console() io.Writer    { return p.Out }
func (p *Parity) ParityMode() bool      { return true }
func (p *Parity) Panic(msg string)      { panic(GuardrailError(msg)) }
