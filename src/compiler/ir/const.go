package ir

import (
	"fmt"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"
	"tlog.app/go/tlog/tlwire"
)

// Const is a uniqued (literal, type) pair (§3 "Constant"). Two calls to
// Session.GetConst with an equal (value, type) always return the same
// *Const; callers may compare constants by pointer.
type Const struct {
	Value any
	Typ   *Type
}

func (c *Const) Type() *Type { return c.Typ }

func (c *Const) ValueName() string {
	return fmt.Sprintf("%v", c.Value)
}

// TlogAppend lets a Const dump into a tlog trace stream without
// reflection, the same pattern the teacher uses for PhiBranch (ir5.go)
// and Bits (set/bits.go).
func (c *Const) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	b = e.AppendMap(b, 2)
	b = e.AppendKeyString(b, "v", fmt.Sprintf("%v", c.Value))
	b = e.AppendKeyString(b, "t", c.Typ.Name())

	return b
}

// Session owns the process's append-only constant-uniquing table (§5:
// "the constant-uniquing table (append-only)"). Callers wanting parallel
// compilation replicate a Session per worker rather than share one, per
// §5's guidance.
type Session struct {
	consts map[any]map[*Type]*Const
}

func NewSession() *Session {
	return &Session{consts: map[any]map[*Type]*Const{}}
}

// GetConst is the factory described in §4.2: getConst(value, type=box).
// Rejection criteria (assertions, §4.2):
//   - integer types require an integer-valued literal
//   - float types require a numeric literal
//   - only Box admits a string literal
func (s *Session) GetConst(value any, typ *Type) (*Const, error) {
	if typ == nil {
		typ = Box
	}

	if err := validateConstLiteral(value, typ); err != nil {
		return nil, errors.Wrap(err, "const %v@%v", value, typ)
	}

	byType, ok := s.consts[value]
	if !ok {
		byType = map[*Type]*Const{}
		s.consts[value] = byType
	}

	if c, ok := byType[typ]; ok {
		return c, nil
	}

	c := &Const{Value: value, Typ: typ}
	byType[typ] = c

	tlog.V("const").Printw("new const", "value", value, "type", typ.Name())

	return c, nil
}

func validateConstLiteral(value any, typ *Type) error {
	switch v := value.(type) {
	case string:
		if typ != Box {
			return errors.New("string literal only valid at type box, got %v", typ)
		}
	case int64:
		if !typ.IsInt() && !typ.IsFP() && typ != Box {
			return errors.New("integer literal %d not valid at type %v", v, typ)
		}
	case float64:
		if !typ.IsFP() && typ != Box {
			return errors.New("float literal %v not valid at type %v", v, typ)
		}
		if typ.IsInt() {
			return errors.New("float literal %v not valid at integer type %v", v, typ)
		}
	case bool:
		if typ != Box {
			return errors.New("bool literal only valid at type box, got %v", typ)
		}
	default:
		return errors.New("unsupported literal kind %T", value)
	}

	return nil
}
