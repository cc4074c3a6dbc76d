package ir

import "tlog.app/go/errors"

// Block is a basic block (§3): an ordered instruction list terminated by
// a branch, plus the predecessor/successor lists the terminator's
// targets imply.
type Block struct {
	id     int
	name   string
	parent *Func

	Instrs []*Instr

	preds []*Block
	succs []*Block
}

func (b *Block) ID() int          { return b.id }
func (b *Block) Name() string     { return b.name }
func (b *Block) Parent() *Func    { return b.parent }
func (b *Block) Preds() []*Block  { return b.preds }
func (b *Block) Succs() []*Block  { return b.succs }

// Terminator returns the block's last instruction, or nil if the block
// is still being built.
func (b *Block) Terminator() *Instr {
	if len(b.Instrs) == 0 {
		return nil
	}
	return b.Instrs[len(b.Instrs)-1]
}

// AppendInstr links i into b as its next instruction (§3 "instructions
// are created by passes, linked into exactly one parent block"). It
// rejects appending after a terminator is already in place, and wires up
// CFG successor/predecessor links the moment a branch instruction is
// appended (§8 invariant 5: every block's final instruction is a
// branch, no non-terminal instruction is).
func (b *Block) AppendInstr(i *Instr) error {
	if term := b.Terminator(); term != nil && term.IsBranch() {
		return errors.New("block %v: already terminated by %v, cannot append %v", b.name, term.mnemonic, i.mnemonic)
	}

	if i.parent != nil {
		return errors.New("instr %v: already linked into block %v", i.mnemonic, i.parent.name)
	}

	i.parent = b
	b.Instrs = append(b.Instrs, i)

	if i.IsBranch() {
		b.linkSuccessors(i.targets)
	}

	return nil
}

func (b *Block) linkSuccessors(targets []*Block) {
	b.succs = append([]*Block(nil), targets...)

	for _, s := range targets {
		s.preds = append(s.preds, b)
	}
}

// RemoveInstr unlinks i from b (§3 "freed only by removal from their
// block") and drops i from the dest sets of the instructions it uses.
// Instructions that still use i keep it in their use lists.
func (b *Block) RemoveInstr(i *Instr) {
	for k, x := range b.Instrs {
		if x != i {
			continue
		}

		b.Instrs = append(b.Instrs[:k], b.Instrs[k+1:]...)
		break
	}

	for _, u := range i.uses {
		if ui, ok := u.(*Instr); ok {
			ui.removeDest(i)
		}
	}

	i.parent = nil
}

// Edge is a CFG edge key (pred, succ), exactly the shape §6's
// register-allocation contract keys mergeMoves by.
type Edge struct {
	Pred *Block
	Succ *Block
}

// Edges enumerates every (pred, succ) pair in the function in block
// order (§3, §4.6).
func (f *Func) Edges() []Edge {
	var edges []Edge

	for _, b := range f.Blocks {
		for _, s := range b.succs {
			edges = append(edges, Edge{Pred: b, Succ: s})
		}
	}

	return edges
}

// IsCriticalEdge reports whether e is a critical edge (glossary): its
// source has more than one successor and its target has more than one
// predecessor. The emitter routes critical edges, and any edge that
// carries merge moves, through an edge-transition stub; every such stub
// is emitted after the last block body, not at the top of the successor
// and not directly after the predecessor.
func (e Edge) IsCriticalEdge() bool {
	return len(e.Pred.succs) > 1 && len(e.Succ.preds) > 1
}
