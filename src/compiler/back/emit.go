package back

import (
	"context"

	"nikand.dev/go/heap"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/Snger/Tachyon/src/compiler/asm"
	"github.com/Snger/Tachyon/src/compiler/ir"
	"github.com/Snger/Tachyon/src/compiler/set"
)

// excFlagReg is the register the native calling convention dedicates to
// signalling "the callee threw" back to its caller; genRuntimeCall tests
// it immediately after a call that has a throw target (§4.3 "the call
// family... may transfer control to an in-procedure catch target").
const excFlagReg = asm.RBX

// Emitter drives §4.6's emission sequence over one function: prologue,
// label materialisation, the block loop (pre-moves + genCode per
// instruction), critical-edge stubs, and the epilogue folded into every
// ret.
type Emitter struct {
	a    asm.Assembler
	plan *AllocPlan
	sm   *StackMap
	mm   MergeMoves
	cc   CallConv

	blockLbl map[*ir.Block]*asm.Label
	blockIdx map[*ir.Block]int
	edgeLbl  map[ir.Edge]*asm.Label
	helpers  map[string]*asm.Label

	// stubs holds edges whose stub body hasn't been emitted yet, ordered
	// by predecessor layout position rather than discovery order: a
	// critical edge can be recorded from any block's terminator, in any
	// order the block loop happens to walk them in, but draining them by
	// blockIdx keeps generated stub labels appearing in the same order
	// their predecessors appear in the function, independent of map or
	// slice iteration order.
	stubs heap.Heap[stubJob]

	// emitted marks the block ids whose own body has already been walked
	// by the main block loop. Edge stubs run after that loop, once every
	// block body has been emitted, so emitEdgeStub asserts its edge's
	// predecessor is already a member before touching it.
	emitted set.Bits[int]

	cur *ir.Block
}

// stubJob is one not-yet-labelled edge waiting for its stub body.
type stubJob struct {
	edge ir.Edge
}

func NewEmitter(a asm.Assembler, plan *AllocPlan, sm *StackMap, mm MergeMoves, cc CallConv) *Emitter {
	e := &Emitter{
		a: a, plan: plan, sm: sm, mm: mm, cc: cc,
		blockLbl: map[*ir.Block]*asm.Label{},
		blockIdx: map[*ir.Block]int{},
		edgeLbl:  map[ir.Edge]*asm.Label{},
		helpers:  map[string]*asm.Label{},
	}

	e.stubs.Less = func(d []stubJob, i, j int) bool {
		pi, pj := e.blockIdx[d[i].edge.Pred], e.blockIdx[d[j].edge.Pred]
		if pi != pj {
			return pi < pj
		}
		return e.blockIdx[d[i].edge.Succ] < e.blockIdx[d[j].edge.Succ]
	}

	return e
}

// Emit lowers f in full: prologue, every block in layout order, then the
// edge stubs (critical edges and edges with merge moves) that the block
// loop deferred, nothing else.
func Emit(ctx context.Context, a asm.Assembler, f *ir.Func, plan *AllocPlan, sm *StackMap, mm MergeMoves, cc CallConv) (err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "emit_func", "func", f.Name)
	defer func() { tr.Finish("err", &err) }()

	e := NewEmitter(a, plan, sm, mm, cc)

	for idx, b := range f.Blocks {
		e.blockLbl[b] = a.NewLabel(labelName(f, b))
		e.blockIdx[b] = idx
	}

	e.prologue(f)

	for _, b := range f.Blocks {
		if err := e.emitBlock(b); err != nil {
			return errors.Wrap(err, "block %v", b.Name())
		}
	}

	for e.stubs.Len() != 0 {
		job := e.stubs.Pop()
		e.emitEdgeStub(job.edge)
	}

	if tr.If("emit") {
		tr.Printw("emitted", "blocks", len(f.Blocks))
	}

	return nil
}

func labelName(f *ir.Func, b *ir.Block) string {
	if b.Name() != "" {
		return f.Name + "." + b.Name()
	}
	return f.Name + ".L"
}

func (e *Emitter) prologue(f *ir.Func) {
	for idx, r := range e.sm.CalleeSaved {
		e.a.Mov(e.a.Mem(64, asm.RSP, int32(-8*(idx+1))), r)
	}

	if e.sm.FrameSize > 0 {
		e.a.Sub(asm.RSP, asm.Imm(int64(e.sm.FrameSize)))
	}

	for idx, p := range f.Params {
		if idx >= len(e.cc.ArgRegs) {
			break
		}
		if dst, ok := e.plan.RegOf(p); ok {
			e.a.Mov(dst, e.cc.ArgRegs[idx])
		} else if slot, ok := e.plan.SlotOf(p); ok {
			e.a.Mov(slot, e.cc.ArgRegs[idx])
		}
	}
}

func (e *Emitter) epilogue() {
	if e.sm.FrameSize > 0 {
		e.a.Add(asm.RSP, asm.Imm(int64(e.sm.FrameSize)))
	}
	for i := len(e.sm.CalleeSaved) - 1; i >= 0; i-- {
		e.a.Mov(e.sm.CalleeSaved[i], e.a.Mem(64, asm.RSP, int32(-8*(i+1))))
	}
	e.a.Ret()
}

func (e *Emitter) emitBlock(b *ir.Block) error {
	e.cur = b
	e.a.AddInstr(e.blockLbl[b])

	for idx, i := range b.Instrs {
		if i.Op() == ir.OpPhi {
			// phi carries no code of its own: its value arrives via the
			// merge move each predecessor edge emits into it.
			continue
		}

		for _, mv := range e.plan.PreMovesFor(i) {
			e.moveIfNeeded(e.dest(mv.Dst), e.operand(mv.Src))
		}

		last := idx == len(b.Instrs)-1
		if !last || !i.IsBranch() {
			if err := e.genCode(i); err != nil {
				return err
			}
			continue
		}

		if err := e.emitTerminator(i); err != nil {
			return err
		}
	}

	e.emitted.Set(b.ID())

	return nil
}

func (e *Emitter) genCode(i *ir.Instr) error {
	d, ok := policies[i.Op()]
	if !ok || d.GenCode == nil {
		return errors.New("no backend policy for op %v (%v)", i.Op(), i.Mnemonic())
	}
	d.GenCode(e, i)
	return nil
}

func (e *Emitter) emitTerminator(i *ir.Instr) error {
	switch i.Op() {
	case ir.OpJump:
		e.emitSingleBranch(i.Targets()[0])
		return nil
	case ir.OpIf:
		e.emitIf(i)
		return nil
	case ir.OpRet:
		e.emitRet(i)
		return nil
	default:
		// add_ovf/sub_ovf/mul_ovf emit their own branch at the tail of
		// GenCode (emitOvfBranch); the call family and throw do the same
		// via genRuntimeCall/emitThrow.
		return e.genCode(i)
	}
}

func (e *Emitter) emitRet(i *ir.Instr) {
	if len(i.Uses()) == 1 {
		e.moveIfNeeded(e.cc.RetReg, e.operand(i.Uses()[0]))
	}
	e.epilogue()
}

// emitSingleBranch jumps straight to target's block label when the edge
// is neither critical nor carries merge moves, eliding the jmp when
// target is the next block in layout order; otherwise it jumps to the
// edge's stub label (edgeLabel), whose body is emitted later.
func (e *Emitter) emitSingleBranch(target *ir.Block) {
	edge := ir.Edge{Pred: e.cur, Succ: target}

	if !edge.IsCriticalEdge() && len(e.mm[edge]) == 0 {
		if e.isFallthrough(target) {
			return
		}
		e.a.Jmp(e.blockLbl[target])
		return
	}

	e.a.Jmp(e.edgeLabel(edge))
}

func (e *Emitter) isFallthrough(target *ir.Block) bool {
	idx, ok := e.blockIdx[e.cur]
	if !ok {
		return false
	}
	tidx, ok := e.blockIdx[target]
	return ok && tidx == idx+1
}

// edgeLabel returns edge's stub label, creating it and enqueuing the
// stub body (moves, then jmp to the real successor) on first reference.
func (e *Emitter) edgeLabel(edge ir.Edge) *asm.Label {
	if l, ok := e.edgeLbl[edge]; ok {
		return l
	}

	l := e.a.NewLabel(labelName(edge.Pred.Parent(), edge.Pred) + "_to_" + labelName(edge.Succ.Parent(), edge.Succ))
	e.edgeLbl[edge] = l
	e.stubs.Push(stubJob{edge: edge})

	return l
}

func (e *Emitter) emitEdgeStub(edge ir.Edge) {
	if !e.emitted.IsSet(edge.Pred.ID()) {
		panic(errors.New("back: edge stub for %v emitted before its predecessor's own body", edge.Pred.Name()))
	}

	e.cur = edge.Pred
	e.a.AddInstr(e.edgeLbl[edge])

	for _, mv := range e.mm[edge] {
		e.moveIfNeeded(e.dest(mv.Dst), e.operand(mv.Src))
	}

	if e.isFallthrough(edge.Succ) {
		return
	}
	e.a.Jmp(e.blockLbl[edge.Succ])
}

// emitIf selects a signed or unsigned conditional jump based on the
// producing comparison, when the condition value is directly the result
// of a comparison instruction (§4.6 "If-instruction lowering", §9 Open
// Question 4); otherwise it falls back to comparing the condition
// against zero.
func (e *Emitter) emitIf(i *ir.Instr) {
	cond := i.Uses()[0]
	then, els := i.Targets()[0], i.Targets()[1]

	cc := asm.CCNE
	if ci, ok := cond.(*ir.Instr); ok && ir.IsCompare(ci.Op()) {
		pair := compareCC[ci.Op()]
		t := ci.Uses()[0].Type()
		if len(ci.Uses()) == 2 && t.IsInt() && !t.IsSigned() {
			cc = pair.Unsigned
		} else {
			cc = pair.Signed
		}
	} else {
		e.a.Cmp(e.operand(cond), asm.Imm(0))
	}

	thenLbl := e.branchLabel(then)
	e.a.Jcc(cc, thenLbl)

	if e.needsExplicitJump(els) {
		e.a.Jmp(e.branchLabel(els))
	}
}

// branchLabel resolves target's label for a branch out of the current
// block: an edge-stub label when the edge is critical or carries merge
// moves (the stub runs those moves before reaching target), otherwise
// target's own block label directly.
func (e *Emitter) branchLabel(target *ir.Block) *asm.Label {
	edge := ir.Edge{Pred: e.cur, Succ: target}
	if edge.IsCriticalEdge() || len(e.mm[edge]) > 0 {
		return e.edgeLabel(edge)
	}
	return e.blockLbl[target]
}

// needsExplicitJump reports whether reaching target requires emitting a
// jmp: false only when target is both reachable by falling through in
// block-layout order and needs no edge stub of its own.
func (e *Emitter) needsExplicitJump(target *ir.Block) bool {
	edge := ir.Edge{Pred: e.cur, Succ: target}
	if edge.IsCriticalEdge() || len(e.mm[edge]) > 0 {
		return true
	}
	return !e.isFallthrough(target)
}

func (e *Emitter) emitOvfBranch(i *ir.Instr) {
	normal, overflow := i.Targets()[0], i.Targets()[1]
	e.a.Jcc(asm.CCO, e.branchLabel(overflow))
	if e.needsExplicitJump(normal) {
		e.a.Jmp(e.branchLabel(normal))
	}
}

// genRuntimeCall lowers the call family and every HIR op uniformly: move
// arguments into the convention's argument registers, call the callee
// (an operand, for call and construct) or a named runtime helper (HIR
// ops, get_prop_val and put_prop_val),
// move the result into the destination, then branch on the throw flag
// before falling into the continuation (§4.3 "Call family").
func (e *Emitter) genRuntimeCall(i *ir.Instr) {
	uses := i.Uses()
	args := uses

	indirect := i.Op() == ir.OpCall || i.Op() == ir.OpConstruct
	if indirect {
		args = uses[1:] // uses[0] is the callee itself, not an argument
	}

	srcs := make([]asm.Operand, len(args))
	for idx, u := range args {
		srcs[idx] = e.operand(u)
	}

	// A later arg whose source already sits in an earlier arg's
	// convention register gets clobbered by the sequential moves below
	// before it's ever read; rescue it into a scratch register first
	// (§6 "scratchRegs").
	scratch := e.plan.ScratchFor(i)
	for idx := range srcs {
		if idx >= len(e.cc.ArgRegs) {
			break
		}
		dstReg := e.cc.ArgRegs[idx]
		for later := idx + 1; later < len(srcs) && later < len(e.cc.ArgRegs); later++ {
			if r, ok := srcs[later].(asm.Reg); ok && r == dstReg && len(scratch) > 0 {
				e.a.Mov(scratch[0], srcs[later])
				srcs[later] = scratch[0]
			}
		}
	}

	for idx, src := range srcs {
		if idx >= len(e.cc.ArgRegs) {
			break
		}
		e.a.Mov(e.cc.ArgRegs[idx], src)
	}

	if indirect {
		e.a.Call(e.operand(uses[0]))
	} else {
		e.a.Call(e.runtimeHelper(i.Mnemonic()))
	}

	if i.Type() != ir.None {
		if dst, ok := e.dest(i).(asm.Reg); ok && dst != e.cc.RetReg {
			e.a.Mov(dst, e.cc.RetReg)
		}
	}

	throwTarget := i.ThrowTarget()
	if throwTarget != nil {
		e.a.Test(excFlagReg, excFlagReg)
		e.a.Jcc(asm.CCNE, e.branchLabel(throwTarget))
	}

	if cont := i.Continue(); cont != nil {
		e.emitSingleBranch(cont)
	}
}

// emitThrow lowers ir.OpThrow: hand the thrown value to the runtime
// unwinder and, if an in-procedure catch target was given, branch there
// (§4.3 "throw... an optional catch target").
func (e *Emitter) emitThrow(i *ir.Instr) {
	if len(e.cc.ArgRegs) > 0 {
		e.a.Mov(e.cc.ArgRegs[0], e.operand(i.Uses()[0]))
	}
	e.a.Call(e.runtimeHelper("throw"))

	if catch := i.Targets(); len(catch) == 1 {
		e.emitSingleBranch(catch[0])
	}
}

func (e *Emitter) runtimeHelper(name string) *asm.Label {
	if l, ok := e.helpers[name]; ok {
		return l
	}
	l := e.a.NewLabel("rt_" + name)
	e.helpers[name] = l
	return l
}

// dest resolves v's own output location: a register if the allocator put
// it in one, else its stack slot.
func (e *Emitter) dest(v ir.Value) asm.Operand {
	if r, ok := e.plan.RegOf(v); ok {
		return r
	}
	if m, ok := e.plan.SlotOf(v); ok {
		return m
	}
	panic(errors.New("back: %v has no allocation", v.ValueName()))
}

// operand resolves a use: a constant becomes an immediate (or, for
// string/box constants too wide to fit, a memory reference into the
// constant pool — left to the allocator, which always gives those a
// slot), otherwise the allocator's register or stack-slot assignment.
func (e *Emitter) operand(v ir.Value) asm.Operand {
	if c, ok := v.(*ir.Const); ok {
		if n, ok := c.Value.(int64); ok {
			return asm.Imm(n)
		}
	}
	if ref, ok := v.(*ir.FuncRef); ok {
		return e.runtimeHelper(ref.Name)
	}
	if r, ok := e.plan.RegOf(v); ok {
		return r
	}
	if m, ok := e.plan.SlotOf(v); ok {
		return m
	}
	panic(errors.New("back: %v has no allocation", v.ValueName()))
}

func (e *Emitter) constOffset(v ir.Value) int32 {
	c, ok := v.(*ir.Const)
	if !ok {
		return 0
	}
	n, _ := c.Value.(int64)
	return int32(n)
}

func (e *Emitter) moveIfNeeded(dst, src asm.Operand) {
	if dst == src {
		return
	}
	if dr, ok := dst.(asm.Reg); ok {
		if sr, ok := src.(asm.Reg); ok && dr == sr {
			return
		}
	}

	if _, dstMem := dst.(asm.Mem); dstMem {
		if _, srcMem := src.(asm.Mem); srcMem {
			panic(errors.New("back: mem-to-mem move %v <- %v has no register leg", dst, src))
		}
	}

	e.a.Mov(dst, src)
}
