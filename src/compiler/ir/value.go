package ir

// Value is the polymorphic root for everything an instruction may consume
// (§3 "IR Value"): a Const, an Arg, or an *Instr.
type Value interface {
	Type() *Type

	// ValueName returns the name pretty-printing uses for this value.
	// An instruction without an explicit output name synthesises
	// $t_<id> (Instr.ValueName, instr.go); a Const formats its literal
	// and an Arg returns its Name.
	ValueName() string
}

// Arg represents a formal parameter (§3 "Argument value"). Its Name is
// user-visible in diagnostics and in pretty-printed IR.
type Arg struct {
	typ   *Type
	Name  string
	Index int
}

func NewArg(typ *Type, name string, index int) *Arg {
	return &Arg{typ: typ, Name: name, Index: index}
}

func (a *Arg) Type() *Type      { return a.typ }
func (a *Arg) ValueName() string { return a.Name }
