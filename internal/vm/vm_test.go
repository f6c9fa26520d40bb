package vm_test

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/rajames440/starforth/internal/dictionary"
	"github.com/rajames440/starforth/internal/vm"
	"github.com/stretchr/testify/require"
)

// bootstrapArithmetic installs just enough primitives to drive spec.md §8's
// end-to-end scenarios: EXIT (required by every colon definition), DUP,
// the arithmetic operators, and `.` (print top of stack, space-separated).
// internal/words installs the full Forth-79 library; this is deliberately
// minimal and lives only in this test.
func bootstrapArithmetic(m *vm.VM) {
	m.Dict.Create("EXIT", func(mm dictionary.Machine) error {
		type exiter interface{ RequestExit() }
		mm.(exiter).RequestExit()
		return nil
	})
	m.Dict.Create("DUP", func(mm dictionary.Machine) error {
		v, err := mm.Pop()
		if err != nil {
			return err
		}
		mm.Push(v)
		mm.Push(v)
		return nil
	})
	m.Dict.Create("+", func(mm dictionary.Machine) error {
		b, err := mm.Pop()
		if err != nil {
			return err
		}
		a, err := mm.Pop()
		if err != nil {
			return err
		}
		mm.Push(a + b)
		return nil
	})
	m.Dict.Create("*", func(mm dictionary.Machine) error {
		b, err := mm.Pop()
		if err != nil {
			return err
		}
		a, err := mm.Pop()
		if err != nil {
			return err
		}
		mm.Push(a * b)
		return nil
	})
	m.Dict.Create(".", func(mm dictionary.Machine) error {
		v, err := mm.Pop()
		if err != nil {
			return err
		}
		type printer interface{ Print(string) }
		mm.(printer).Print(strconv.FormatInt(v, 10) + " ")
		return nil
	})
	m.Dict.SetBootFence()
}

func newTestVM(t *testing.T, src string) (*vm.VM, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	m := vm.New(
		vm.WithOutput(&out),
		vm.WithInput(strings.NewReader(src)),
	)
	bootstrapArithmetic(m)
	return m, &out
}

func TestArithmeticAndPrint(t *testing.T) {
	m, out := newTestVM(t, "1 2 + .")
	require.NoError(t, m.InterpretAll())
	require.Contains(t, out.String(), "3")
	require.Equal(t, 0, m.Data.Depth())
	require.NoError(t, m.Err())
}

func TestColonDefinition(t *testing.T) {
	m, out := newTestVM(t, ": SQUARE DUP * ; 5 SQUARE .")
	require.NoError(t, m.InterpretAll())
	require.Contains(t, out.String(), "25")

	e := m.Dict.Find("SQUARE", nil)
	require.NotNil(t, e)
	require.Equal(t, "SQUARE", e.Name)
	require.False(t, e.Flags.Has(dictionary.Immediate))
	require.False(t, e.Flags.Has(dictionary.Smudged))
}

func TestCompileModeErrorRecovery(t *testing.T) {
	m, _ := newTestVM(t, ": BAD UNKNOWNWORD ;")
	require.NoError(t, m.InterpretAll())
	require.NoError(t, m.Err(), "outer loop must clear the sticky error flag")

	// The smudged partial definition is not visible to lookup.
	require.Nil(t, m.Dict.Find("BAD", nil))

	// Subsequent interactive input still works.
	m.SetInput(strings.NewReader("1 2 + ."))
	var out2 bytes.Buffer
	m.Out = &out2
	require.NoError(t, m.InterpretAll())
	require.Contains(t, out2.String(), "3")
}

func TestStackUnderflowSetsError(t *testing.T) {
	var logged []string
	m := vm.New(
		vm.WithInput(strings.NewReader("+")),
		vm.WithLogf(func(mess string, args ...interface{}) {
			logged = append(logged, fmt.Sprintf(mess, args...))
		}),
	)
	bootstrapArithmetic(m)
	require.NoError(t, m.InterpretAll())
	require.Contains(t, strings.Join(logged, "\n"), vm.ErrStackUnderflow.Error())
	require.NoError(t, m.Err(), "outer loop clears error at quiesce")
}
