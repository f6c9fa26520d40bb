// Package words installs the Forth-79 primitive word library against
// internal/dictionary.Dictionary and internal/vm.VM — the "use but are not
// of" layer spec.md §1 places outside the core (arithmetic, stack
// shuffling, block words, the guardrail words). Grounded on the teacher's
// third.go primitive table shape: one small function per word, all routed
// through the dictionary.Machine interface rather than a concrete VM type.
package words

import "github.com/rajames440/starforth/internal/dictionary"

// InstallStack registers the data-stack shuffling words (spec.md §1's
// Forth-79 word library; no direct spec.md component owns these, they are
// built on top of VMCore's Push/Pop).
func InstallStack(d *dictionary.Dictionary) {
	d.Create("DUP", func(m dictionary.Machine) error {
		v, err := m.Pop()
		if err != nil {
			return err
		}
		m.Push(v)
		m.Push(v)
		return nil
	})
	d.Create("DROP", func(m dictionary.Machine) error {
		_, err := m.Pop()
		return err
	})
	d.Create("SWAP", func(m dictionary.Machine) error {
		b, err := m.Pop()
		if err != nil {
			return err
		}
		a, err := m.Pop()
		if err != nil {
			return err
		}
		m.Push(b)
		m.Push(a)
		return nil
	})
	d.Create("OVER", func(m dictionary.Machine) error {
		b, err := m.Pop()
		if err != nil {
			return err
		}
		a, err := m.Pop()
		if err != nil {
			return err
		}
		m.Push(a)
		m.Push(b)
		m.Push(a)
		return nil
	})
	d.Create("ROT", func(m dictionary.Machine) error {
		c, err := m.Pop()
		if err != nil {
			return err
		}
		b, err := m.Pop()
		if err != nil {
			return err
		}
		a, err := m.Pop()
		if err != nil {
			return err
		}
		m.Push(b)
		m.Push(c)
		m.Push(a)
		return nil
	})
	d.Create("?DUP", func(m dictionary.Machine) error {
		v, err := m.Pop()
		if err != nil {
			return err
		}
		m.Push(v)
		if v != 0 {
			m.Push(v)
		}
		return nil
	})
}
