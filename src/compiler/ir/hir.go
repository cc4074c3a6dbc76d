package ir

// HIR family: operations on boxed JavaScript values (§4.3 "HIR family
// (boxed)"). All inputs must be box; output is box unless the op is
// declared void; sideEffects is set for the mutating subset named in the
// spec (del_prop_val, put_cell, put_clos, and — in the call family —
// every call).

func init() {
	registerOp(OpNot, opSpec{Name: "not", Validate: hirValidator(1, 1, false, false)})
	registerOp(OpTypeof, opSpec{Name: "typeof", Validate: hirValidator(1, 1, false, false)})
	registerOp(OpInstanceof, opSpec{Name: "instanceof", Validate: hirValidator(2, 2, false, false)})
	registerOp(OpCatch, opSpec{Name: "catch", Validate: hirValidator(0, 0, false, false)})
	registerOp(OpHasProp, opSpec{Name: "has_prop", Validate: hirValidator(2, 2, false, false)})
	registerOp(OpEnumProp, opSpec{Name: "enum_prop", Validate: hirValidator(1, 1, false, false)})
	registerOp(OpDelPropVal, opSpec{Name: "del_prop_val", Validate: hirValidator(2, 2, false, true)})
	registerOp(OpNewArgObj, opSpec{Name: "new_arg_obj", Validate: hirValidator(0, -1, false, false)})
	registerOp(OpNewCell, opSpec{Name: "new_cell", Validate: hirValidator(0, 1, false, false)})
	registerOp(OpGetCell, opSpec{Name: "get_cell", Validate: hirValidator(1, 1, false, false)})
	registerOp(OpPutCell, opSpec{Name: "put_cell", Validate: hirValidator(2, 2, true, true)})
	registerOp(OpNewClos, opSpec{Name: "new_clos", Validate: hirValidator(0, -1, false, false)})
	registerOp(OpGetClos, opSpec{Name: "get_clos", Validate: hirValidator(2, 2, false, false)})
	registerOp(OpPutClos, opSpec{Name: "put_clos", Validate: hirValidator(3, 3, true, true)})
	registerOp(OpNewObj, opSpec{Name: "new_obj", Validate: hirValidator(0, -1, false, false)})
	registerOp(OpNewArr, opSpec{Name: "new_arr", Validate: hirValidator(0, -1, false, false)})
}

// hirValidator builds a Validator for a HIR op: min/max input arity (max
// -1 means unbounded), whether the op is void (no output), and whether
// it carries side effects.
func hirValidator(min, max int, void, sideEffects bool) Validator {
	return func(f *Func, tp []*Type, in []Value, targets []*Block) (*Type, bool, error) {
		if err := validTypeParamCount(tp, 0); err != nil {
			return nil, false, err
		}
		if err := validCountRange(in, min, max); err != nil {
			return nil, false, err
		}
		if err := allBoxed(in); err != nil {
			return nil, false, err
		}

		if void {
			return None, sideEffects, nil
		}
		return Box, sideEffects, nil
	}
}
