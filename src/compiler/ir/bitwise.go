package ir

import "tlog.app/go/errors"

// Bitwise (§4.3 "Bitwise"). Two inputs; permitted combinations are
// (box, box), (box, pint), or two integers of the same type. Output
// equals the second input's type. not is unary and preserves its input
// type.

func init() {
	registerOp(OpAnd, opSpec{Name: "and", Validate: bitwiseBinValidator})
	registerOp(OpOr, opSpec{Name: "or", Validate: bitwiseBinValidator})
	registerOp(OpXor, opSpec{Name: "xor", Validate: bitwiseBinValidator})
	registerOp(OpShl, opSpec{Name: "shl", Validate: bitwiseBinValidator})
	registerOp(OpShr, opSpec{Name: "shr", Validate: bitwiseBinValidator})
	registerOp(OpBNot, opSpec{Name: "not", Validate: bitwiseNotValidator})
}

func bitwiseBinValidator(f *Func, tp []*Type, in []Value, targets []*Block) (*Type, bool, error) {
	if err := validTypeParamCount(tp, 0); err != nil {
		return nil, false, err
	}
	if err := validCount(in, 2); err != nil {
		return nil, false, err
	}

	l, r := in[0].Type(), in[1].Type()

	switch {
	case l == Box && r == Box:
		return r, false, nil
	case l == Box && r == Pint:
		return r, false, nil
	case l.IsInt() && l == r:
		return r, false, nil
	default:
		return nil, false, errors.New("bitwise op: unsupported operand types %v, %v", l, r)
	}
}

func bitwiseNotValidator(f *Func, tp []*Type, in []Value, targets []*Block) (*Type, bool, error) {
	if err := validTypeParamCount(tp, 0); err != nil {
		return nil, false, err
	}
	if err := validCount(in, 1); err != nil {
		return nil, false, err
	}

	t := in[0].Type()
	if t != Box && !t.IsInt() {
		return nil, false, errors.New("not: expected box or integer, got %v", t)
	}

	return t, false, nil
}
