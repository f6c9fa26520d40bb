package vm

import (
	"github.com/rajames440/starforth/internal/dictionary"
)

// litMarker is a reserved word ID that can never be assigned to a real
// dictionary entry (WordID starts at 0 and increases by one per Create
// call), used to tag a compiled literal: a LIT marker cell followed
// immediately by the literal value cell (spec.md §3.5, §4.5 "Numbers
// compile as a LIT reference followed by the value").
const litMarker int64 = -1

// BeginColonDefinition implements `:` (spec.md §4.5): creates a smudged
// entry, allocates the body base address, and enters Compile mode. The
// data field holds the arena address where the compiled body will begin;
// the body cells themselves are WordIDs (or litMarker/value pairs),
// resolved through m.Dict.ByID at execution time (spec.md §9).
func (m *VM) BeginColonDefinition(name string) (*dictionary.Entry, error) {
	if m.state != StateInterpret {
		return nil, ErrInvalidCompileState
	}
	e := m.Dict.CreateSmudged(name)
	bodyAddr := m.Arena.Here()
	e.DataField = []int64{int64(bodyAddr)}
	e.Func = m.colonRunnerFor(e)
	m.SetState(StateCompile)
	return e, nil
}

// EndColonDefinition implements `;` (spec.md §4.5): compiles an EXIT
// reference, clears the smudge flag, and returns to Interpret.
func (m *VM) EndColonDefinition(exitID uint32) error {
	if m.state != StateCompile {
		return ErrInvalidCompileState
	}
	if err := m.Arena.Compile(int64(exitID)); err != nil {
		return err
	}
	e := m.Dict.Last()
	if e != nil {
		e.Flags &^= dictionary.Smudged
	}
	m.SetState(StateInterpret)
	return nil
}

// CompileCall appends id (a WordID) to the body under construction,
// implementing the compile-mode "every non-immediate token is appended to
// the body as ... its dictionary entry" rule.
func (m *VM) CompileCall(id uint32) error {
	return m.Arena.Compile(int64(id))
}

// CompileLiteral appends a LIT marker followed by val, implementing
// "Numbers compile as a LIT reference followed by the value."
func (m *VM) CompileLiteral(val int64) error {
	if err := m.Arena.Compile(litMarker); err != nil {
		return err
	}
	return m.Arena.Compile(val)
}

// colonRunnerFor returns the WordFunc installed on a colon-defined entry:
// it threads through the body recorded in e.DataField[0].
func (m *VM) colonRunnerFor(e *dictionary.Entry) dictionary.WordFunc {
	return func(_ dictionary.Machine) error {
		return m.runThreaded(e.BodyAddr())
	}
}

// runThreaded is the inner interpreter (spec.md §4.5): it walks a threaded
// body starting at ip, pushing resume addresses on the return stack and
// calling each target's Func, until EXIT, an error, or an abort request.
func (m *VM) runThreaded(ip uint64) error {
	for {
		cell := m.Arena.ReadCell(ip)
		ip++

		if cell == litMarker {
			val := m.Arena.ReadCell(ip)
			ip++
			m.Push(val)
			if m.err != nil {
				return m.err
			}
			continue
		}

		target := m.Dict.ByID(uint32(cell))
		if target == nil {
			m.SetError(ErrUnknownWord)
			return m.err
		}

		if err := m.PushReturn(ip); err != nil {
			m.SetError(err)
			return m.err
		}

		target.RecordExecution(m.Host.MonotonicNS())
		if target.Func == nil {
			m.SetError(ErrUnknownWord)
			return m.err
		}
		callErr := target.Func(m)

		if callErr != nil {
			m.SetError(callErr)
			return m.err
		}
		if m.err != nil {
			return m.err
		}
		if m.abortRequested {
			m.clearAbort()
			return nil
		}
		if m.exitColon {
			m.exitColon = false
			if _, err := m.PopReturn(); err != nil {
				return err
			}
			return nil
		}

		resume, err := m.PopReturn()
		if err != nil {
			m.SetError(err)
			return m.err
		}
		ip = resume
	}
}

// PatchReturnTop overwrites the return stack's top cell, the mechanism
// branch/loop primitives use to redirect the inner interpreter's next IP
// without ordinary return-stack unwinding (spec.md §4.5 "Rationale for
// push-then-call").
func (m *VM) PatchReturnTop(addr uint64) error { return m.Return.SetTop(int64(addr)) }

// RequestExit implements EXIT (spec.md §4.5): sets the one-shot
// exit_colon flag instead of popping, so runThreaded discards the resume
// address rather than following it.
func (m *VM) RequestExit() { m.exitColon = true }

// Execute runs a single dictionary entry directly (used by the outer
// interpreter for interpret-mode token execution; runThreaded calls the
// Func of each word in a colon body itself, without Execute).
func (m *VM) Execute(e *dictionary.Entry) error {
	if e.Func == nil {
		return ErrUnknownWord
	}
	e.RecordExecution(m.Host.MonotonicNS())
	if err := e.Func(m); err != nil {
		m.SetError(err)
		return err
	}
	if m.abortRequested {
		m.clearAbort()
	}
	return m.err
}
