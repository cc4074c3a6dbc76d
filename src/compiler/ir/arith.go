package ir

import "tlog.app/go/errors"

// Arithmetic, no overflow (§4.3 "Arithmetic (no overflow)"). Two inputs
// of matching type; output equals input type. add/sub carry pointer-
// arithmetic specialisations; mul/div/mod use the default rule. Box
// inputs are permitted uniformly (box is just another "matching type").

func init() {
	registerOp(OpAdd, opSpec{Name: "add", Validate: addValidator})
	registerOp(OpSub, opSpec{Name: "sub", Validate: subValidator})
	registerOp(OpMul, opSpec{Name: "mul", Validate: arithDefaultValidator})
	registerOp(OpDiv, opSpec{Name: "div", Validate: arithDefaultValidator})
	registerOp(OpMod, opSpec{Name: "mod", Validate: arithDefaultValidator})

	registerOp(OpAddOvf, opSpec{Name: "add_ovf", Validate: ovfValidator, Roles: []string{"normal", "overflow"}})
	registerOp(OpSubOvf, opSpec{Name: "sub_ovf", Validate: ovfValidator, Roles: []string{"normal", "overflow"}})
	registerOp(OpMulOvf, opSpec{Name: "mul_ovf", Validate: ovfValidator, Roles: []string{"normal", "overflow"}})
}

func arithDefaultValidator(f *Func, tp []*Type, in []Value, targets []*Block) (*Type, bool, error) {
	if err := validTypeParamCount(tp, 0); err != nil {
		return nil, false, err
	}
	if err := validCount(in, 2); err != nil {
		return nil, false, err
	}
	if err := sameType(in[0], in[1]); err != nil {
		return nil, false, err
	}
	return in[0].Type(), false, nil
}

func addValidator(f *Func, tp []*Type, in []Value, targets []*Block) (*Type, bool, error) {
	if err := validTypeParamCount(tp, 0); err != nil {
		return nil, false, err
	}
	if err := validCount(in, 2); err != nil {
		return nil, false, err
	}

	l, r := in[0].Type(), in[1].Type()

	switch {
	case l == r:
		return l, false, nil
	case l == Rptr && r == Pint:
		return Rptr, false, nil
	default:
		return nil, false, errors.New("add: unsupported operand types %v, %v", l, r)
	}
}

func subValidator(f *Func, tp []*Type, in []Value, targets []*Block) (*Type, bool, error) {
	if err := validTypeParamCount(tp, 0); err != nil {
		return nil, false, err
	}
	if err := validCount(in, 2); err != nil {
		return nil, false, err
	}

	l, r := in[0].Type(), in[1].Type()

	switch {
	case l == Rptr && r == Rptr:
		return Pint, false, nil
	case l == Rptr && r == Pint:
		return Rptr, false, nil
	case l == r:
		return l, false, nil
	default:
		return nil, false, errors.New("sub: unsupported operand types %v, %v", l, r)
	}
}

// Arithmetic with overflow (§4.3 "Arithmetic with overflow"): two inputs
// of identical type, either both pint or both box; output type equals
// input type. Branch instruction with targets [normal, overflow].
func ovfValidator(f *Func, tp []*Type, in []Value, targets []*Block) (*Type, bool, error) {
	if err := validTypeParamCount(tp, 0); err != nil {
		return nil, false, err
	}
	if err := validCount(in, 2); err != nil {
		return nil, false, err
	}
	if err := sameType(in[0], in[1]); err != nil {
		return nil, false, err
	}

	t := in[0].Type()
	if t != Pint && t != Box {
		return nil, false, errors.New("overflow arithmetic requires pint or box operands, got %v", t)
	}

	if len(targets) != 2 {
		return nil, false, errors.New("overflow arithmetic requires exactly 2 branch targets [normal, overflow], got %d", len(targets))
	}

	return t, false, nil
}
