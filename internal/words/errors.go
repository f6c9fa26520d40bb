package words

import "errors"

var (
	// ErrDivideByZero is the structural error / and MOD return on a zero
	// divisor (spec.md §7 "Structural" error kind).
	ErrDivideByZero = errors.New("words: division by zero")
	// ErrGuardrailViolation is returned by ENTROPY@/ENTROPY! when the
	// argument is not a pointer reachable from the dictionary head
	// (spec.md §4.4 "Guardrails", §7 "Guardrail" error kind).
	ErrGuardrailViolation = errors.New("words: pointer not reachable from dictionary head")
)
