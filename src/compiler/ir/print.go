package ir

import (
	"fmt"
	"strings"
)

// String renders one instruction in the textual form §6 describes
// ("diagnostic surface, not bit-exact"):
//
//	<type> <name> = <mnemonic> <operand>, ... <target-role> <targetName> ...
//
// phi instead prints its mnemonic followed by [<value> <predName>], ...;
// move prints "move <src>, <dst>".
func (i *Instr) String() string {
	var b strings.Builder

	if i.typ != None && i.op != OpMove {
		fmt.Fprintf(&b, "%s %s = ", i.typ.Name(), i.ValueName())
	}

	b.WriteString(i.mnemonic)

	switch i.op {
	case OpPhi:
		for k, u := range i.uses {
			if k > 0 {
				b.WriteString(",")
			}
			fmt.Fprintf(&b, " [%s %s]", u.ValueName(), i.phiPreds[k].Name())
		}
	case OpMove:
		fmt.Fprintf(&b, " %s, %s", i.uses[0].ValueName(), i.ValueName())
	default:
		for k, u := range i.uses {
			if k > 0 {
				b.WriteString(",")
			}
			fmt.Fprintf(&b, " %s", u.ValueName())
		}

		spec := opTable[i.op]
		for k, t := range i.targets {
			role := fmt.Sprintf("target%d", k)
			if spec.Roles != nil && k < len(spec.Roles) {
				role = spec.Roles[k]
			}
			if t == nil {
				continue
			}
			fmt.Fprintf(&b, " %s %s", role, t.Name())
		}
	}

	return b.String()
}
