package ir

import "tlog.app/go/errors"

// Type conversions (§4.3 "Type conversions"). Resolves the two
// inconsistencies flagged in §9's Open Questions by construction:
//
//   - itof<f64> takes one type parameter (f64) and one input (pint); the
//     teacher's draft instead ran validNumParams(inputVals, 1) against
//     the type-parameter count, which is the bug §9 calls out.
//   - ftoi<pint> validates typeParams[0] == pint and inputVals[0].Type()
//     == f64 (the teacher's draft compared typeParams[0] against f64 and
//     the input against pint, backwards).

func init() {
	registerOp(OpUnbox, opSpec{Name: "unbox", Validate: unboxValidator})
	registerOp(OpBox, opSpec{Name: "box", Validate: boxValidator})
	registerOp(OpICast, opSpec{Name: "icast", Validate: icastValidator})
	registerOp(OpItof, opSpec{Name: "itof", Validate: itofValidator})
	registerOp(OpFtoi, opSpec{Name: "ftoi", Validate: ftoiValidator})
}

func unboxValidator(f *Func, tp []*Type, in []Value, targets []*Block) (*Type, bool, error) {
	if err := validTypeParamCount(tp, 1); err != nil {
		return nil, false, err
	}
	if err := validCount(in, 1); err != nil {
		return nil, false, err
	}
	if err := validType(in[0], Box); err != nil {
		return nil, false, err
	}

	t := tp[0]
	if t == Box || t == None {
		return nil, false, errors.New("unbox<%v>: target type must not be box/none", t)
	}

	return t, false, nil
}

func boxValidator(f *Func, tp []*Type, in []Value, targets []*Block) (*Type, bool, error) {
	if err := validTypeParamCount(tp, 1); err != nil {
		return nil, false, err
	}
	if err := validCount(in, 1); err != nil {
		return nil, false, err
	}

	t := tp[0]
	if t == Box || t == None {
		return nil, false, errors.New("box<%v>: source type must not be box/none", t)
	}
	if err := validType(in[0], t); err != nil {
		return nil, false, err
	}

	return Box, false, nil
}

func icastValidator(f *Func, tp []*Type, in []Value, targets []*Block) (*Type, bool, error) {
	if err := validTypeParamCount(tp, 1); err != nil {
		return nil, false, err
	}
	if err := validCount(in, 1); err != nil {
		return nil, false, err
	}

	t := tp[0]
	if !t.IsInt() && t != Box && t != Rptr {
		return nil, false, errors.New("icast<%v>: target must be an integer type, box, or rptr", t)
	}

	it := in[0].Type()
	if !it.IsInt() && it != Box && it != Rptr {
		return nil, false, errors.New("icast<%v>: input type %v must be an integer type, box, or rptr", t, it)
	}

	return t, false, nil
}

func itofValidator(f *Func, tp []*Type, in []Value, targets []*Block) (*Type, bool, error) {
	if err := validTypeParamCount(tp, 1); err != nil {
		return nil, false, err
	}
	if tp[0] != F64 {
		return nil, false, errors.New("itof: type parameter must be f64, got %v", tp[0])
	}
	if err := validCount(in, 1); err != nil {
		return nil, false, err
	}
	if err := validType(in[0], Pint); err != nil {
		return nil, false, err
	}

	return F64, false, nil
}

func ftoiValidator(f *Func, tp []*Type, in []Value, targets []*Block) (*Type, bool, error) {
	if err := validTypeParamCount(tp, 1); err != nil {
		return nil, false, err
	}
	if tp[0] != Pint {
		return nil, false, errors.New("ftoi: type parameter must be pint, got %v", tp[0])
	}
	if err := validCount(in, 1); err != nil {
		return nil, false, err
	}
	if err := validType(in[0], F64); err != nil {
		return nil, false, err
	}

	return Pint, false, nil
}
