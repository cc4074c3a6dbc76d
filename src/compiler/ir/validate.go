package ir

import "tlog.app/go/errors"

// Shared validation helpers (§9: "per-variant constructors that call
// shared helpers: valid_count, all_boxed, valid_type"). Every family
// validator in hir.go/arith.go/bitwise.go/compare.go/control.go/call.go/
// convert.go/memory.go/move.go/phi.go is built out of these instead of a
// type hierarchy.

func validCount(in []Value, n int) error {
	if len(in) != n {
		return errors.New("expected %d input(s), got %d", n, len(in))
	}
	return nil
}

func validCountRange(in []Value, min, max int) error {
	if len(in) < min || (max >= 0 && len(in) > max) {
		return errors.New("expected between %d and %d input(s), got %d", min, max, len(in))
	}
	return nil
}

func validTypeParamCount(tp []*Type, n int) error {
	if len(tp) != n {
		return errors.New("expected %d type parameter(s), got %d", n, len(tp))
	}
	return nil
}

func allBoxed(in []Value) error {
	for idx, v := range in {
		if v.Type() != Box {
			return errors.New("input %d: expected box, got %v", idx, v.Type())
		}
	}
	return nil
}

func validType(v Value, want *Type) error {
	if v.Type() != want {
		return errors.New("expected %v, got %v", want, v.Type())
	}
	return nil
}

func validTypeAny(v Value, want ...*Type) error {
	for _, t := range want {
		if v.Type() == t {
			return nil
		}
	}
	return errors.New("expected one of %v, got %v", want, v.Type())
}

func sameType(a, b Value) error {
	if a.Type() != b.Type() {
		return errors.New("mismatched types %v and %v", a.Type(), b.Type())
	}
	return nil
}
