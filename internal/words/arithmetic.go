package words

import "github.com/rajames440/starforth/internal/dictionary"

func binOp(d *dictionary.Dictionary, name string, f func(a, b int64) int64) {
	d.Create(name, func(m dictionary.Machine) error {
		b, err := m.Pop()
		if err != nil {
			return err
		}
		a, err := m.Pop()
		if err != nil {
			return err
		}
		m.Push(f(a, b))
		return nil
	})
}

func boolOp(d *dictionary.Dictionary, name string, f func(a, b int64) bool) {
	binOp(d, name, func(a, b int64) int64 {
		if f(a, b) {
			return -1 // Forth-79 true is all-bits-set
		}
		return 0
	})
}

// InstallArithmetic registers the integer arithmetic, comparison, and
// bitwise words (spec.md §1's Forth-79 word library).
func InstallArithmetic(d *dictionary.Dictionary) {
	binOp(d, "+", func(a, b int64) int64 { return a + b })
	binOp(d, "-", func(a, b int64) int64 { return a - b })
	binOp(d, "*", func(a, b int64) int64 { return a * b })
	d.Create("/", func(m dictionary.Machine) error {
		b, err := m.Pop()
		if err != nil {
			return err
		}
		a, err := m.Pop()
		if err != nil {
			return err
		}
		if b == 0 {
			return ErrDivideByZero
		}
		m.Push(a / b)
		return nil
	})
	d.Create("MOD", func(m dictionary.Machine) error {
		b, err := m.Pop()
		if err != nil {
			return err
		}
		a, err := m.Pop()
		if err != nil {
			return err
		}
		if b == 0 {
			return ErrDivideByZero
		}
		m.Push(a % b)
		return nil
	})

	boolOp(d, "=", func(a, b int64) bool { return a == b })
	boolOp(d, "<", func(a, b int64) bool { return a < b })
	boolOp(d, ">", func(a, b int64) bool { return a > b })

	binOp(d, "AND", func(a, b int64) int64 { return a & b })
	binOp(d, "OR", func(a, b int64) int64 { return a | b })
	binOp(d, "XOR", func(a, b int64) int64 { return a ^ b })

	d.Create("INVERT", func(m dictionary.Machine) error {
		v, err := m.Pop()
		if err != nil {
			return err
		}
		m.Push(^v)
		return nil
	})
	d.Create("NEGATE", func(m dictionary.Machine) error {
		v, err := m.Pop()
		if err != nil {
			return err
		}
		m.Push(-v)
		return nil
	})
	d.Create("0=", func(m dictionary.Machine) error {
		v, err := m.Pop()
		if err != nil {
			return err
		}
		if v == 0 {
			m.Push(-1)
		} else {
			m.Push(0)
		}
		return nil
	})
	d.Create("1+", func(m dictionary.Machine) error {
		v, err := m.Pop()
		if err != nil {
			return err
		}
		m.Push(v + 1)
		return nil
	})
	d.Create("1-", func(m dictionary.Machine) error {
		v, err := m.Pop()
		if err != nil {
			return err
		}
		m.Push(v - 1)
		return nil
	})
}
