package vm

import "errors"

// Sentinel errors for the structural/lookup/guardrail error kinds spec.md
// §7 enumerates abstractly. Nothing classifies them by kind: the VM only
// checks whether err is nil and logs the error text.
var (
	ErrUnknownWord         = errors.New("vm: unknown word")
	ErrInvalidCompileState = errors.New("vm: invalid compile-state transition")
	ErrNotAPointer         = errors.New("vm: value is not a reachable dictionary pointer")
	ErrAbort               = errors.New("vm: abort")
)
