package ir

// Callee is implemented by Values (FuncRef, func.go) that carry a
// declared result-type signature. call's output type derives from it
// when available (§4.3 "Call family").
type Callee interface {
	CalleeResults() []*Type
}

// Call family (§4.3): exception-producing instructions with target roles
// [continue, throw], both optional. call/construct/get_prop_val/
// put_prop_val are all calls because property access may invoke getters
// or setters. Calls default to sideEffects = true.

func init() {
	registerOp(OpCall, opSpec{Name: "call", Validate: callValidator, Roles: []string{"continue", "throw"}})
	registerOp(OpConstruct, opSpec{Name: "construct", Validate: constructValidator, Roles: []string{"continue", "throw"}})
	registerOp(OpGetPropVal, opSpec{Name: "get_prop_val", Validate: propGetValidator, Roles: []string{"continue", "throw"}})
	registerOp(OpPutPropVal, opSpec{Name: "put_prop_val", Validate: propPutValidator, Roles: []string{"continue", "throw"}})
}

func callValidator(f *Func, tp []*Type, in []Value, targets []*Block) (*Type, bool, error) {
	if err := validTypeParamCount(tp, 0); err != nil {
		return nil, false, err
	}
	if err := validCountRange(in, 2, -1); err != nil {
		return nil, false, err
	}
	if err := allBoxed(in); err != nil {
		return nil, false, err
	}

	if callee, ok := in[0].(Callee); ok {
		if res := callee.CalleeResults(); len(res) > 0 {
			return res[0], true, nil
		}
	}

	return Box, true, nil
}

func constructValidator(f *Func, tp []*Type, in []Value, targets []*Block) (*Type, bool, error) {
	if err := validTypeParamCount(tp, 0); err != nil {
		return nil, false, err
	}
	if err := validCountRange(in, 2, -1); err != nil {
		return nil, false, err
	}
	if err := allBoxed(in); err != nil {
		return nil, false, err
	}

	return Box, true, nil
}

func propGetValidator(f *Func, tp []*Type, in []Value, targets []*Block) (*Type, bool, error) {
	if err := validTypeParamCount(tp, 0); err != nil {
		return nil, false, err
	}
	if err := validCount(in, 2); err != nil {
		return nil, false, err
	}
	if err := allBoxed(in); err != nil {
		return nil, false, err
	}

	return Box, true, nil
}

func propPutValidator(f *Func, tp []*Type, in []Value, targets []*Block) (*Type, bool, error) {
	if err := validTypeParamCount(tp, 0); err != nil {
		return nil, false, err
	}
	if err := validCount(in, 3); err != nil {
		return nil, false, err
	}
	if err := allBoxed(in); err != nil {
		return nil, false, err
	}

	return None, true, nil
}

// Continue returns the call's normal-continuation target, or nil if
// absent.
func (i *Instr) Continue() *Block {
	if len(i.targets) < 1 {
		return nil
	}
	return i.targets[0]
}

// ThrowTarget returns the call's in-procedure catch target, or nil if
// absent.
func (i *Instr) ThrowTarget() *Block {
	if len(i.targets) < 2 {
		return nil
	}
	return i.targets[1]
}

// SetContinue and SetThrowTarget mutate the targets array in place,
// preserving role order and trimming trailing absent roles (§4.3 "Setters
// /getters for continuation and throw target mutate the targets array
// preserving role order and trimming trailing absent roles").
func (i *Instr) SetContinue(b *Block) {
	i.setCallTarget(0, b)
}

func (i *Instr) SetThrowTarget(b *Block) {
	i.setCallTarget(1, b)
}

func (i *Instr) setCallTarget(role int, b *Block) {
	for len(i.targets) <= role {
		i.targets = append(i.targets, nil)
	}

	i.targets[role] = b

	for len(i.targets) > 0 && i.targets[len(i.targets)-1] == nil {
		i.targets = i.targets[:len(i.targets)-1]
	}
}
