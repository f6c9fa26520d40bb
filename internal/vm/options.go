package vm

import (
	"io"

	"github.com/rajames440/starforth/internal/dictionary"
	"github.com/rajames440/starforth/internal/fixedmath"
	"github.com/rajames440/starforth/internal/hostsvc"
)

// Option configures a VM at construction time, grounded on the teacher's
// functional-options VMOption/options.go pattern.
type Option interface{ apply(m *VM) }

type optionFunc func(m *VM)

func (f optionFunc) apply(m *VM) { f(m) }

// WithArena replaces the default arena with one of the given total/dict
// cell counts.
func WithArena(totalCells, dictLimitCells uint64) Option {
	return optionFunc(func(m *VM) {
		m.Arena = NewArena(totalCells, dictLimitCells)
	})
}

// WithHost installs a HostServices implementation (spec.md §4.2); the
// core never calls platform APIs directly.
func WithHost(h hostsvc.Services) Option {
	return optionFunc(func(m *VM) { m.Host = h })
}

// WithInput installs the outer interpreter's token source.
func WithInput(r io.RuneScanner) Option {
	return optionFunc(func(m *VM) { m.input = r })
}

// WithOutput sets the console output sink.
func WithOutput(w io.Writer) Option {
	return optionFunc(func(m *VM) { m.Out = w })
}

// WithBase sets the initial numeric BASE (2..36).
func WithBase(base int) Option {
	return optionFunc(func(m *VM) {
		if base >= 2 && base <= 36 {
			m.Base = base
		}
	})
}

// WithHotCache installs a hot-words cache of the given capacity and
// promotion threshold (spec.md §3.6); capacity <= 0 selects
// dictionary.DefaultCacheCapacity, threshold == 0 selects
// dictionary.DefaultPromotionThreshold.
func WithHotCache(capacity int, promotionThreshold fixedmath.Q) Option {
	return optionFunc(func(m *VM) {
		m.Dict.Cache = dictionary.NewHotCache(capacity, promotionThreshold)
	})
}

// WithLogf installs a printf-style structured-log sink, grounded on the
// teacher's logging.logfn field.
func WithLogf(logfn func(mess string, args ...interface{})) Option {
	return optionFunc(func(m *VM) { m.logfn = logfn })
}
