package words

import (
	"strconv"

	"github.com/rajames440/starforth/internal/dictionary"
)

// exiter and printer narrow dictionary.Machine down to the two VMCore
// capabilities (spec.md §4.5's exit_colon flag, §4.2's console output) that
// are not part of the Machine contract itself, since EXIT and printing
// words are Forth-79 library words layered on top of VMCore rather than
// core primitives every Machine must expose.
type exiter interface{ RequestExit() }
type printer interface{ Print(string) }

// InstallControl registers EXIT plus the minimal console-output words
// (spec.md §1's Forth-79 word library).
func InstallControl(d *dictionary.Dictionary) {
	d.Create("EXIT", func(m dictionary.Machine) error {
		if ex, ok := m.(exiter); ok {
			ex.RequestExit()
		}
		return nil
	})
	d.Create(".", func(m dictionary.Machine) error {
		v, err := m.Pop()
		if err != nil {
			return err
		}
		if p, ok := m.(printer); ok {
			p.Print(strconv.FormatInt(v, 10) + " ")
		}
		return nil
	})
	d.Create("EMIT", func(m dictionary.Machine) error {
		v, err := m.Pop()
		if err != nil {
			return err
		}
		if p, ok := m.(printer); ok {
			p.Print(string(rune(v)))
		}
		return nil
	})
	d.Create("CR", func(m dictionary.Machine) error {
		if p, ok := m.(printer); ok {
			p.Print("\n")
		}
		return nil
	})
	d.Create("ABORT", func(m dictionary.Machine) error {
		m.Abort()
		return nil
	})
}
