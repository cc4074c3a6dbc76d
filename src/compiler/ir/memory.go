package ir

import "tlog.app/go/errors"

// Memory access (§4.3 "Memory"). load<T>(ptr, offset:pint) -> T and
// store<T>(ptr, offset:pint, value:T) -> none where ptr is box or rptr;
// store has side effects. get_ctx/set_ctx read/write the current
// runtime-context pointer.

func init() {
	registerOp(OpLoad, opSpec{Name: "load", Validate: loadValidator})
	registerOp(OpStore, opSpec{Name: "store", Validate: storeValidator})
	registerOp(OpGetCtx, opSpec{Name: "get_ctx", Validate: getCtxValidator})
	registerOp(OpSetCtx, opSpec{Name: "set_ctx", Validate: setCtxValidator})
}

func loadValidator(f *Func, tp []*Type, in []Value, targets []*Block) (*Type, bool, error) {
	if err := validTypeParamCount(tp, 1); err != nil {
		return nil, false, err
	}
	if err := validCount(in, 2); err != nil {
		return nil, false, err
	}
	if err := validTypeAny(in[0], Box, Rptr); err != nil {
		return nil, false, errors.Wrap(err, "load: ptr operand")
	}
	if err := validType(in[1], Pint); err != nil {
		return nil, false, errors.Wrap(err, "load: offset operand")
	}

	return tp[0], false, nil
}

func storeValidator(f *Func, tp []*Type, in []Value, targets []*Block) (*Type, bool, error) {
	if err := validTypeParamCount(tp, 1); err != nil {
		return nil, false, err
	}
	if err := validCount(in, 3); err != nil {
		return nil, false, err
	}
	if err := validTypeAny(in[0], Box, Rptr); err != nil {
		return nil, false, errors.Wrap(err, "store: ptr operand")
	}
	if err := validType(in[1], Pint); err != nil {
		return nil, false, errors.Wrap(err, "store: offset operand")
	}
	if err := validType(in[2], tp[0]); err != nil {
		return nil, false, errors.Wrap(err, "store: value operand")
	}

	return None, true, nil
}

func getCtxValidator(f *Func, tp []*Type, in []Value, targets []*Block) (*Type, bool, error) {
	if err := validTypeParamCount(tp, 0); err != nil {
		return nil, false, err
	}
	if err := validCount(in, 0); err != nil {
		return nil, false, err
	}
	return Rptr, false, nil
}

func setCtxValidator(f *Func, tp []*Type, in []Value, targets []*Block) (*Type, bool, error) {
	if err := validTypeParamCount(tp, 0); err != nil {
		return nil, false, err
	}
	if err := validCount(in, 1); err != nil {
		return nil, false, err
	}
	if err := validType(in[0], Rptr); err != nil {
		return nil, false, err
	}
	return None, true, nil
}
