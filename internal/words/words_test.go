package words_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rajames440/starforth/internal/blockengine"
	"github.com/rajames440/starforth/internal/blockio"
	"github.com/rajames440/starforth/internal/dictionary"
	"github.com/rajames440/starforth/internal/vm"
	"github.com/rajames440/starforth/internal/words"
	"github.com/stretchr/testify/require"
)

func newAttachedEngine(t *testing.T, mb uint) *blockengine.Engine {
	t.Helper()
	dev := blockio.NewRAMDevice(uint64(mb) * 1024 * 1024)
	require.NoError(t, dev.Open())
	eng := blockengine.NewEngine(dev, nil, nil)
	require.NoError(t, eng.AttachDevice())
	return eng
}

func newTestVM(t *testing.T, src string) (*vm.VM, *bytes.Buffer, *blockengine.Engine) {
	t.Helper()
	var out bytes.Buffer
	m := vm.New(
		vm.WithOutput(&out),
		vm.WithInput(strings.NewReader(src)),
	)
	words.InstallCore(m.Dict)
	eng := newAttachedEngine(t, 2)
	words.InstallBlockWords(m.Dict, eng)
	m.Dict.SetBootFence()
	return m, &out, eng
}

func TestArithmeticAndPrintEndToEnd(t *testing.T) {
	m, out, _ := newTestVM(t, "1 2 + .")
	require.NoError(t, m.InterpretAll())
	require.Contains(t, out.String(), "3")
	require.Equal(t, 0, m.Data.Depth())
	require.NoError(t, m.Err())
}

func TestColonDefinitionEndToEnd(t *testing.T) {
	m, out, _ := newTestVM(t, ": SQUARE DUP * ; 5 SQUARE .")
	require.NoError(t, m.InterpretAll())
	require.Contains(t, out.String(), "25")
}

func TestBlockRoundTrip(t *testing.T) {
	m, _, _ := newTestVM(t, "0 BLOCK")
	require.NoError(t, m.InterpretAll())

	addr, err := m.Data.Pop()
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		m.WriteCell(uint64(addr)+uint64(i), int64(i+1))
	}

	m.SetInput(strings.NewReader("UPDATE FLUSH"))
	require.NoError(t, m.InterpretAll())

	m.SetInput(strings.NewReader("0 BLOCK"))
	require.NoError(t, m.InterpretAll())
	addr2, err := m.Data.Pop()
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		require.EqualValues(t, i+1, m.ReadCell(uint64(addr2)+uint64(i)))
	}
}

func TestGuardrailRejectsUnownedPointer(t *testing.T) {
	m, _, _ := newTestVM(t, "")
	e := m.Dict.Find("DUP", nil)
	require.NotNil(t, e)

	m.Data.Push(int64(e.WordID))
	entropyEntry := m.Dict.Find("ENTROPY@", nil)
	require.NoError(t, m.Execute(entropyEntry))
	_, err := m.Data.Pop()
	require.NoError(t, err)

	m.Data.Push(999999)
	require.Error(t, m.Execute(entropyEntry))
}

func TestGuardrailEntryNotRegisteredIsRejected(t *testing.T) {
	m, _, _ := newTestVM(t, "")
	ghost := &dictionary.Entry{Name: "GHOST", WordID: 0}
	require.False(t, m.Dict.Reachable(ghost))
}
