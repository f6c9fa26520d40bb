package main

import (
	"bufio"
	"os"
)

// namedStdin reads os.Stdin through one shared buffered rune reader,
// created at package initialisation, matching io.RuneScanner without
// forcing every harness mode to construct one.
type namedStdin struct{}

var stdinReader = bufio.NewReader(os.Stdin)

func (namedStdin) ReadRune() (rune, int, error) { return stdinReader.ReadRune() }
func (namedStdin) UnreadRune() error            { return stdinReader.UnreadRune() }
