package vm

import (
	"io"

	"github.com/rajames440/starforth/internal/dictionary"
)

// SetInput installs the rune source the outer interpreter reads tokens
// from (spec.md §4.5 parser).
func (m *VM) SetInput(r io.RuneScanner) { m.input = r }

// NextWord reads one whitespace-delimited token (spec.md's parse_word,
// grounded on the teacher's internals.go scan()).
func (m *VM) NextWord() (string, error) { return ScanWord(m.input) }

// InterpretAll runs the outer interpreter to exhaustion of the installed
// input: for every token, probe the dictionary, execute or compile it, and
// clear the sticky error flag at each quiesce point (spec.md §7 "the outer
// interpreter surfaces the error to its caller" — here, to the installed
// logf sink — and §4.5 parser/state-machine semantics).
func (m *VM) InterpretAll() error {
	for {
		tok, err := m.NextWord()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		m.interpretToken(tok)

		if m.err != nil {
			m.logf("!", "%v: %v", tok, m.err)
			m.ClearError()
			// A compile-mode error abandons the definition in progress: it
			// stays smudged forever (never reachable by lookup) and the
			// outer interpreter falls back to Interpret so the rest of the
			// input is not silently absorbed into a dead body.
			if m.state == StateCompile {
				m.SetState(StateInterpret)
			}
		}
		if m.abortRequested {
			m.clearAbort()
		}
	}
}

// interpretToken dispatches a single token through the colon-definition
// control words, dictionary lookup, or number parsing (spec.md §4.5).
func (m *VM) interpretToken(tok string) {
	switch tok {
	case ":":
		name, err := m.NextWord()
		if err != nil {
			m.SetError(err)
			return
		}
		if _, err := m.BeginColonDefinition(name); err != nil {
			m.SetError(err)
		}
		return
	case ";":
		exit := m.Dict.Find("EXIT", m.Host)
		if exit == nil {
			m.SetError(ErrUnknownWord)
			return
		}
		if err := m.EndColonDefinition(exit.WordID); err != nil {
			m.SetError(err)
		}
		return
	case "IMMEDIATE":
		if e := m.Dict.Last(); e != nil {
			e.Flags |= dictionary.Immediate
		}
		return
	}

	if e := m.Dict.Find(tok, m.Host); e != nil {
		if m.state == StateCompile && !e.Flags.Has(dictionary.Immediate) {
			if err := m.CompileCall(e.WordID); err != nil {
				m.SetError(err)
			}
			return
		}
		m.Execute(e)
		return
	}

	n, err := ParseNumber(tok, m.Base)
	if err != nil {
		m.SetError(ErrUnknownWord)
		return
	}
	if m.state == StateCompile {
		if err := m.CompileLiteral(n); err != nil {
			m.SetError(err)
		}
		return
	}
	m.Push(n)
}
