package ir

import "tlog.app/go/errors"

// Comparison (§4.3 "Comparison"). Two inputs of identical type; inputs
// must be box or numeric. Output is box when inputs are box, else i8
// (0 or 1). seq/nseq are strict JS equality and accept any box pair.

func init() {
	registerOp(OpLt, opSpec{Name: "lt", Validate: orderedCompareValidator})
	registerOp(OpLte, opSpec{Name: "lte", Validate: orderedCompareValidator})
	registerOp(OpGt, opSpec{Name: "gt", Validate: orderedCompareValidator})
	registerOp(OpGte, opSpec{Name: "gte", Validate: orderedCompareValidator})
	registerOp(OpEq, opSpec{Name: "eq", Validate: orderedCompareValidator})
	registerOp(OpNeq, opSpec{Name: "neq", Validate: orderedCompareValidator})
	registerOp(OpSeq, opSpec{Name: "seq", Validate: strictCompareValidator})
	registerOp(OpNseq, opSpec{Name: "nseq", Validate: strictCompareValidator})
}

func orderedCompareValidator(f *Func, tp []*Type, in []Value, targets []*Block) (*Type, bool, error) {
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
	if t != Box && !t.IsNumber() {
		return nil, false, errors.New("comparison requires box or numeric operands, got %v", t)
	}

	if t == Box {
		return Box, false, nil
	}
	return I8, false, nil
}

func strictCompareValidator(f *Func, tp []*Type, in []Value, targets []*Block) (*Type, bool, error) {
	if err := validTypeParamCount(tp, 0); err != nil {
		return nil, false, err
	}
	if err := validCount(in, 2); err != nil {
		return nil, false, err
	}
	if err := allBoxed(in); err != nil {
		return nil, false, err
	}

	return Box, false, nil
}
