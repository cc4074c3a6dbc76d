package ir

// LIR move (§4.3 "LIR move", §3 "Lifecycles"): a source operand whose
// value flows into this instruction's own output slot, which register
// allocation or edge-transition insertion assigns a physical location
// to. move is never produced by front-end lowering (§4.3): the builder
// (builder.go) has no move method, and nothing in this module calls
// NewInstr(OpMove, ...); the backend's edge stubs emit back.MergeMoves
// entries directly without constructing move instructions.

func init() {
	registerOp(OpMove, opSpec{Name: "move", Validate: moveValidator})
}

func moveValidator(f *Func, tp []*Type, in []Value, targets []*Block) (*Type, bool, error) {
	if err := validTypeParamCount(tp, 0); err != nil {
		return nil, false, err
	}
	if err := validCount(in, 1); err != nil {
		return nil, false, err
	}

	return in[0].Type(), false, nil
}
