package vm_test

import (
	"strings"
	"testing"

	"github.com/rajames440/starforth/internal/vm"
	"github.com/stretchr/testify/require"
)

func TestScanWordSkipsWhitespace(t *testing.T) {
	r := strings.NewReader("  DUP   SWAP\t\n+ ")
	tok, err := vm.ScanWord(r)
	require.NoError(t, err)
	require.Equal(t, "DUP", tok)

	tok, err = vm.ScanWord(r)
	require.NoError(t, err)
	require.Equal(t, "SWAP", tok)

	tok, err = vm.ScanWord(r)
	require.NoError(t, err)
	require.Equal(t, "+", tok)
}

func TestParseNumberBase10(t *testing.T) {
	n, err := vm.ParseNumber("-42", 10)
	require.NoError(t, err)
	require.EqualValues(t, -42, n)
}

func TestParseNumberHexBase(t *testing.T) {
	n, err := vm.ParseNumber("ff", 16)
	require.NoError(t, err)
	require.EqualValues(t, 255, n)
}

func TestParseNumberRejectsDigitBeyondBase(t *testing.T) {
	_, err := vm.ParseNumber("19", 2)
	require.ErrorIs(t, err, vm.ErrBadDigit)
}

func TestParseNumberEmptyFails(t *testing.T) {
	_, err := vm.ParseNumber("", 10)
	require.ErrorIs(t, err, vm.ErrEmptyNumber)
}

func TestParseNumberBadBaseFails(t *testing.T) {
	_, err := vm.ParseNumber("5", 1)
	require.ErrorIs(t, err, vm.ErrBadBase)
}
