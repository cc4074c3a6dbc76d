package ir

import "strings"

// synthesizeMnemonic implements §3 "Mnemonic synthesis": base optionally
// suffixed by _<type> tokens. If explicit type parameters exist they are
// appended; otherwise, if all input types are identical and not box,
// that type is appended; otherwise every input type is appended in
// order. add and sub with an rptr operand (the pointer-arithmetic forms
// rptr+pint, rptr-pint, rptr-rptr) are the one case where the operand types are already
// unambiguous from the op itself, so the suffix is suppressed (§8: these
// lower to the bare "add"/"sub" mnemonic, not "add_rptr_pint").
func synthesizeMnemonic(base string, tp []*Type, in []Value) string {
	var tokens []string

	switch {
	case len(tp) > 0:
		for _, t := range tp {
			tokens = append(tokens, t.Name())
		}
	case len(in) == 0:
		// no type parameters, no inputs: nothing to suffix with.
	case (base == "add" || base == "sub") && hasRptrOperand(in):
		// pointer-arithmetic specialisation: no suffix.
	case allSameType(in) && in[0].Type() != Box:
		tokens = append(tokens, in[0].Type().Name())
	default:
		for _, v := range in {
			tokens = append(tokens, v.Type().Name())
		}
	}

	if len(tokens) == 0 {
		return base
	}

	return base + "_" + strings.Join(tokens, "_")
}

func hasRptrOperand(in []Value) bool {
	for _, v := range in {
		if v.Type() == Rptr {
			return true
		}
	}
	return false
}

func allSameType(in []Value) bool {
	if len(in) == 0 {
		return true
	}

	t := in[0].Type()
	for _, v := range in[1:] {
		if v.Type() != t {
			return false
		}
	}

	return true
}
