package ir

import (
	"fmt"

	"tlog.app/go/errors"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"
)

// Op is the instruction taxonomy's tag (§4.3). Every concrete instruction
// kind the core knows about is one Op; Op dispatches to a validating
// initialiser and a set of branch-target role names via opTable.
type Op int

// Validator is the "validating initialiser" of §4.3(b): given the
// partitioned construction arguments, it decides the output type and the
// side-effect flag, or fails with a diagnostic. Family commonality
// (arithmetic, compare, call) is shared by multiple ops pointing at the
// same Validator, not by a type hierarchy (§9 "Family commonality...
// becomes shared helper functions, not inheritance").
type Validator func(f *Func, tp []*Type, in []Value, targets []*Block) (outType *Type, sideEffects bool, err error)

// opSpec is one row of the taxonomy (§4.3: base mnemonic, validating
// initialiser, branch-target role names, optional shared family
// behaviour).
type opSpec struct {
	Name         string // base mnemonic, e.g. "add"; see mnemonic.go for suffixing
	Validate     Validator
	Roles        []string // branch-target role names, nil if non-branching
	AlwaysBranch bool     // ret/throw: isBranch() is true even with len(targets)==0
}

var opTable = map[Op]opSpec{}

// registerOp is called from each family file's init() to populate
// opTable; it panics on a duplicate registration, which would be a
// programming error in this package, not a caller-reachable failure.
func registerOp(op Op, spec opSpec) {
	if _, dup := opTable[op]; dup {
		panic(fmt.Sprintf("ir: op %d registered twice", op))
	}
	opTable[op] = spec
}

// Instr is the uniform instruction envelope described in §3. Every
// instruction kind — HIR, arithmetic, compare, control flow, call,
// conversion, memory, the LIR move, and phi — is one Instr value; Op
// selects behaviour out of opTable instead of a subtype.
type Instr struct {
	id  int
	op  Op
	typ *Type

	typeParams []*Type
	outName    string
	mnemonic   string

	uses    []Value
	targets []*Block

	sideEffects bool

	parent *Block
	dests  map[*Instr]struct{}

	// phiPreds is parallel to uses and only meaningful when op == OpPhi
	// (§3 "Phi"): phiPreds[k] is the predecessor block uses[k] flows
	// from.
	phiPreds []*Block
}

func (i *Instr) ID() int          { return i.id }
func (i *Instr) Op() Op           { return i.op }
func (i *Instr) Type() *Type      { return i.typ }
func (i *Instr) Uses() []Value    { return i.uses }
func (i *Instr) Targets() []*Block { return i.targets }
func (i *Instr) SideEffects() bool { return i.sideEffects }
func (i *Instr) Parent() *Block   { return i.parent }
func (i *Instr) TypeParams() []*Type { return i.typeParams }
func (i *Instr) Mnemonic() string { return i.mnemonic }

func (i *Instr) SetOutName(name string) { i.outName = name }

// ValueName implements Value: an explicit output name if one was set,
// else the synthesised $t_<id> (§3 "Lifecycles"/"pretty-printing").
func (i *Instr) ValueName() string {
	if i.outName != "" {
		return i.outName
	}
	return fmt.Sprintf("$t_%d", i.id)
}

// Dests returns the destination set (the use-list inverted, §3): every
// instruction that uses this one as an operand.
func (i *Instr) Dests() []*Instr {
	out := make([]*Instr, 0, len(i.dests))
	for d := range i.dests {
		out = append(out, d)
	}
	return out
}

func (i *Instr) addDest(d *Instr) {
	if i.dests == nil {
		i.dests = map[*Instr]struct{}{}
	}
	i.dests[d] = struct{}{}
}

func (i *Instr) removeDest(d *Instr) {
	delete(i.dests, d)
}

// IsBranch reports whether this instruction ends its block (§4.4): true
// iff it has branch targets, unconditionally true for ret/throw.
func (i *Instr) IsBranch() bool {
	spec, ok := opTable[i.op]
	if !ok {
		return false
	}
	return spec.AlwaysBranch || len(i.targets) > 0
}

// partition implements §4.3's construction contract: positional
// arguments run type parameters, then input values, then branch targets,
// in that order; a mixed or out-of-order sequence is rejected.
func partition(args []any) (tp []*Type, in []Value, targets []*Block, err error) {
	const (
		stageType = iota
		stageValue
		stageTarget
	)

	stage := stageType

	for idx, a := range args {
		var next int

		switch v := a.(type) {
		case *Type:
			next = stageType
			if next < stage {
				return nil, nil, nil, errors.New("argument %d: type parameter after input/target", idx)
			}
			tp = append(tp, v)
		case *Block:
			next = stageTarget
			if next < stage {
				return nil, nil, nil, errors.New("argument %d: branch target out of order", idx)
			}
			targets = append(targets, v)
		case Value:
			next = stageValue
			if next < stage {
				return nil, nil, nil, errors.New("argument %d: input value after branch target", idx)
			}
			in = append(in, v)
		default:
			return nil, nil, nil, errors.New("argument %d: unsupported construction argument %T", idx, a)
		}

		stage = next
	}

	return tp, in, targets, nil
}

// NewInstr is the generic instruction-constructor factory of §4.3. args
// is the mixed, ordered (type params..., inputs..., targets...) argument
// list; explicitMnemonic overrides synthesis (pass "" to synthesise, see
// mnemonic.go).
func (f *Func) NewInstr(op Op, explicitMnemonic string, args ...any) (*Instr, error) {
	spec, ok := opTable[op]
	if !ok {
		return nil, errors.New("unknown op %d", op)
	}

	tp, in, targets, err := partition(args)
	if err != nil {
		return nil, errors.Wrap(err, "%s", spec.Name)
	}

	if spec.Roles != nil && len(targets) > len(spec.Roles) {
		return nil, errors.New("%s: too many branch targets: got %d, want at most %d", spec.Name, len(targets), len(spec.Roles))
	}

	outType, sideEffects, err := spec.Validate(f, tp, in, targets)
	if err != nil {
		return nil, errors.Wrap(err, "%s", spec.Name)
	}

	instr := &Instr{
		id:          f.nextID(),
		op:          op,
		typ:         outType,
		typeParams: tp,
		uses:        in,
		targets:     targets,
		sideEffects: sideEffects,
	}

	if explicitMnemonic != "" {
		instr.mnemonic = explicitMnemonic
	} else {
		instr.mnemonic = synthesizeMnemonic(spec.Name, tp, in)
	}

	for _, u := range in {
		if ui, ok := u.(*Instr); ok {
			ui.addDest(instr)
		}
	}

	return instr, nil
}

// replUse rewrites every occurrence of old in this instruction's uses
// with new, updating both sides' dest/use linkage (§3 invariant 1).
func (i *Instr) replUse(old, new Value) {
	changed := false

	for k, u := range i.uses {
		if u != old {
			continue
		}
		i.uses[k] = new
		changed = true
	}

	if !changed {
		return
	}

	if oi, ok := old.(*Instr); ok {
		stillUsed := false
		for _, u := range i.uses {
			if u == old {
				stillUsed = true
				break
			}
		}
		if !stillUsed {
			oi.removeDest(i)
		}
	}

	if ni, ok := new.(*Instr); ok {
		ni.addDest(i)
	}

	tlog.V("replace").Printw("use replaced", "in", i.id, "old", old.ValueName(), "new", new.ValueName(), "from", loc.Callers(1, 3))
}

// replDest rewrites old to new among this instruction's dests (§9 open
// question: the source's ReplDest references an undefined name; the
// obvious fix mirrors replUse's find-and-replace shape, applied to the
// dest set instead of the use list). It only patches this instruction's
// own dest set; keeping the users' use lists consistent is left to the
// caller. replUse, by contrast, updates both sides of the link itself.
func (i *Instr) replDest(old, new *Instr) {
	if _, ok := i.dests[old]; !ok {
		return
	}

	delete(i.dests, old)
	i.addDest(new)

	tlog.V("replace").Printw("dest replaced", "in", i.id, "old", old.ValueName(), "new", new.ValueName(), "from", loc.Callers(1, 3))
}

// copy produces an orphan clone: same mnemonic, type parameters, uses,
// targets and output name, but no parent block and no dests (§3
// "Lifecycles", §8 round-trip property).
func (i *Instr) copy() *Instr {
	c := &Instr{
		id:          i.id,
		op:          i.op,
		typ:         i.typ,
		typeParams: append([]*Type(nil), i.typeParams...),
		outName:     i.outName,
		mnemonic:    i.mnemonic,
		uses:        append([]Value(nil), i.uses...),
		targets:     append([]*Block(nil), i.targets...),
		sideEffects: i.sideEffects,
		phiPreds:    append([]*Block(nil), i.phiPreds...),
	}

	return c
}

// Copy is the public, spec-named entry point (§3 "copy operation", §8
// round-trip property).
func (i *Instr) Copy() *Instr { return i.copy() }
