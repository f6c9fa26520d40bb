package words

import (
	"github.com/rajames440/starforth/internal/dictionary"
	"github.com/rajames440/starforth/internal/fixedmath"
)

// GuardrailWords wires ENTROPY@/ENTROPY! (spec.md §4.4 "Guardrails"), which
// read/write a dictionary entry's execution_heat counter given a pointer
// taken off the data stack. Grounded directly on
// original_source/src/word_source/starforth_words.c's
// starforth_word_execution_heat_fetch/_store and its is_valid_dict_entry
// walk, adapted to this port's WordID-as-pointer threaded-code addressing
// (internal/dictionary's entries vector) rather than a raw DictEntry*.
type GuardrailWords struct {
	Dict *dictionary.Dictionary
}

// Install registers ENTROPY@ and ENTROPY! on d (ordinarily the same
// dictionary as gw.Dict).
func (gw *GuardrailWords) Install(d *dictionary.Dictionary) {
	d.Create("ENTROPY@", func(m dictionary.Machine) error {
		ptr, err := m.Pop()
		if err != nil {
			return err
		}
		e, err := gw.resolve(ptr)
		if err != nil {
			return err
		}
		m.Push(int64(e.ExecutionHeat))
		return nil
	})

	d.Create("ENTROPY!", func(m dictionary.Machine) error {
		ptr, err := m.Pop()
		if err != nil {
			return err
		}
		value, err := m.Pop()
		if err != nil {
			return err
		}
		e, err := gw.resolve(ptr)
		if err != nil {
			return err
		}
		e.ExecutionHeat = fixedmath.Q(value)
		return nil
	})
}

func (gw *GuardrailWords) resolve(ptr int64) (*dictionary.Entry, error) {
	if ptr < 0 {
		return nil, ErrGuardrailViolation
	}
	e := gw.Dict.ByID(uint32(ptr))
	if e == nil || !gw.Dict.Reachable(e) {
		return nil, ErrGuardrailViolation
	}
	return e, nil
}
