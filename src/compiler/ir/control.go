package ir

import "tlog.app/go/errors"

// Control flow (§4.3 "Control flow"). jump/ret/if/throw; ret and throw
// are always terminal regardless of how many targets they carry
// (IsBranch override via opSpec.AlwaysBranch).

func init() {
	registerOp(OpJump, opSpec{Name: "jump", Validate: jumpValidator, Roles: []string{"target"}})
	registerOp(OpRet, opSpec{Name: "ret", Validate: retValidator, AlwaysBranch: true})
	registerOp(OpIf, opSpec{Name: "if", Validate: ifValidator, Roles: []string{"then", "else"}})
	registerOp(OpThrow, opSpec{Name: "throw", Validate: throwValidator, Roles: []string{"catch"}, AlwaysBranch: true})
}

func jumpValidator(f *Func, tp []*Type, in []Value, targets []*Block) (*Type, bool, error) {
	if err := validTypeParamCount(tp, 0); err != nil {
		return nil, false, err
	}
	if err := validCount(in, 0); err != nil {
		return nil, false, err
	}
	if len(targets) != 1 {
		return nil, false, errors.New("jump requires exactly 1 target, got %d", len(targets))
	}
	return None, true, nil
}

func retValidator(f *Func, tp []*Type, in []Value, targets []*Block) (*Type, bool, error) {
	if err := validTypeParamCount(tp, 0); err != nil {
		return nil, false, err
	}
	if err := validCount(in, 1); err != nil {
		return nil, false, err
	}
	if len(targets) != 0 {
		return nil, false, errors.New("ret takes no branch targets, got %d", len(targets))
	}
	return None, false, nil
}

func ifValidator(f *Func, tp []*Type, in []Value, targets []*Block) (*Type, bool, error) {
	if err := validTypeParamCount(tp, 0); err != nil {
		return nil, false, err
	}
	if err := validCount(in, 1); err != nil {
		return nil, false, err
	}
	if err := validTypeAny(in[0], Box, I8); err != nil {
		return nil, false, err
	}
	if len(targets) != 2 {
		return nil, false, errors.New("if requires exactly 2 targets [then, else], got %d", len(targets))
	}
	return None, false, nil
}

func throwValidator(f *Func, tp []*Type, in []Value, targets []*Block) (*Type, bool, error) {
	if err := validTypeParamCount(tp, 0); err != nil {
		return nil, false, err
	}
	if err := validCount(in, 1); err != nil {
		return nil, false, err
	}
	if err := validType(in[0], Box); err != nil {
		return nil, false, err
	}
	if len(targets) > 1 {
		return nil, false, errors.New("throw takes zero or one target, got %d", len(targets))
	}
	return None, false, nil
}
