package ir

import (
	"tlog.app/go/errors"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"
)

// Phi (§3 "Phi", §4.4 "Branch targets and phi linkage"): parallel arrays
// uses/preds of equal length, one predecessor block per input value.
// Phi doesn't go through NewInstr's generic (type params, inputs,
// targets) partitioning — its arguments are (value, pred) pairs added
// incrementally, not a single ordered construction call — so it gets its
// own constructor and mutators instead.

func init() {
	registerOp(OpPhi, opSpec{Name: "phi", Validate: phiValidator})
}

// phiValidator exists so opTable has an entry for OpPhi (IsBranch,
// mnemonic lookups); NewPhi builds instances directly rather than
// through NewInstr.
func phiValidator(f *Func, tp []*Type, in []Value, targets []*Block) (*Type, bool, error) {
	return None, false, nil
}

// NewPhi creates an empty phi (§3: "type none if empty at construction,
// becoming concrete at first addIncoming").
func (f *Func) NewPhi() *Instr {
	return &Instr{
		id:       f.nextID(),
		op:       OpPhi,
		typ:      None,
		mnemonic: "phi",
	}
}

// AddIncoming appends an (value, pred) pair, enforcing the uniform-type
// invariant (§3, §4.4): every input must share the same type as the
// phi's existing inputs, and the phi's type collapses from none to that
// type on the first call.
func (i *Instr) AddIncoming(v Value, pred *Block) error {
	if i.op != OpPhi {
		return errors.New("AddIncoming on non-phi instruction %v", i.mnemonic)
	}

	if len(i.uses) == 0 {
		i.typ = v.Type()
	} else if v.Type() != i.typ {
		return errors.New("phi: incoming value type %v does not match phi type %v", v.Type(), i.typ)
	}

	i.uses = append(i.uses, v)
	i.phiPreds = append(i.phiPreds, pred)

	if vi, ok := v.(*Instr); ok {
		vi.addDest(i)
	}

	tlog.V("phi").Printw("incoming added", "phi", i.id, "value", v.ValueName(), "pred", pred.Name(), "from", loc.Callers(1, 3))

	return nil
}

// GetIncoming returns the use matched to predecessor pred (§4.4). pred
// not being one of the phi's predecessors is a compiler-bug invariant
// violation (§7), not a caller-recoverable condition, so it panics
// rather than returning an error.
func (i *Instr) GetIncoming(pred *Block) Value {
	if i.op != OpPhi {
		panic(errors.New("GetIncoming on non-phi instruction %v", i.mnemonic))
	}

	for k, p := range i.phiPreds {
		if p == pred {
			return i.uses[k]
		}
	}

	panic(errors.New("phi: %v is not a predecessor", pred.Name()))
}

// ReplPred rewrites the predecessor slot matched to old, leaving
// uses[k] untouched (§4.4): the incoming value keeps flowing from the
// same position, only the block it's attributed to changes. old not
// being one of the phi's predecessors is a compiler-bug invariant
// violation (§7), so it panics rather than returning an error.
func (i *Instr) ReplPred(old, new *Block) {
	if i.op != OpPhi {
		panic(errors.New("ReplPred on non-phi instruction %v", i.mnemonic))
	}

	for k, p := range i.phiPreds {
		if p == old {
			i.phiPreds[k] = new
			tlog.V("phi").Printw("pred replaced", "phi", i.id, "old", old.Name(), "new", new.Name(), "from", loc.Callers(1, 3))
			return
		}
	}

	panic(errors.New("phi: %v is not a predecessor", old.Name()))
}

// Preds returns the phi's predecessor-block array, parallel to Uses().
func (i *Instr) Preds() []*Block { return i.phiPreds }
