package back

import (
	"github.com/Snger/Tachyon/src/compiler/asm"
	"github.com/Snger/Tachyon/src/compiler/ir"
)

// The types below are exactly what §6 says the emission driver
// "consumes": an allocation plan, a stack map, and a per-edge merge-move
// list. Producing them is a register allocator's job, not the core's —
// here they are the narrow, concrete shape the driver reads, the same
// way asm.Assembler is the narrow shape it writes to.

// AllocPlan is the register/stack assignment a prior allocation pass
// computed, keyed by ir.Value identity. PreMoves and Scratch are the
// remaining two fields of §6's instrMap record: the moves that must run
// immediately before a given instruction's own genCode (reconciling its
// operands' locations with what genCode expects), and the registers set
// aside for genCode to use as a temporary without clobbering a live
// value.
type AllocPlan struct {
	Reg      map[ir.Value]asm.Reg
	Slot     map[ir.Value]asm.Mem
	PreMoves map[*ir.Instr][]Move
	Scratch  map[*ir.Instr][]asm.Reg
}

func NewAllocPlan() *AllocPlan {
	return &AllocPlan{
		Reg:      map[ir.Value]asm.Reg{},
		Slot:     map[ir.Value]asm.Mem{},
		PreMoves: map[*ir.Instr][]Move{},
		Scratch:  map[*ir.Instr][]asm.Reg{},
	}
}

func (p *AllocPlan) RegOf(v ir.Value) (asm.Reg, bool) {
	r, ok := p.Reg[v]
	return r, ok
}

func (p *AllocPlan) SlotOf(v ir.Value) (asm.Mem, bool) {
	m, ok := p.Slot[v]
	return m, ok
}

// PreMovesFor returns the moves that must run before i's own genCode,
// empty if the allocator left none.
func (p *AllocPlan) PreMovesFor(i *ir.Instr) []Move {
	return p.PreMoves[i]
}

// ScratchFor returns the registers the allocator reserved for i's
// genCode to use as temporaries, empty if none.
func (p *AllocPlan) ScratchFor(i *ir.Instr) []asm.Reg {
	return p.Scratch[i]
}

// StackMap describes the frame the prologue/epilogue build: its size and
// which callee-saved registers the allocator actually touched (and so
// must be preserved).
type StackMap struct {
	FrameSize   int32
	CalleeSaved []asm.Reg
}

// Move is one half of a parallel move: dst gets src's value. The
// allocator emits these to resolve phi nodes and reconcile differing
// register assignments across a CFG edge (§4.4 "Branch targets and phi
// linkage", §4.6 "pre-moves").
type Move struct {
	Dst, Src ir.Value
}

// MergeMoves is the register-allocation contract's per-edge move list,
// keyed by exactly the (pred, succ) pair ir.Edge already names.
type MergeMoves map[ir.Edge][]Move

// CallConv resolves the "per-'c' vs native-compiler convention" split
// §6 calls out: a function either follows the platform C ABI (for
// interop with hand-written runtime helpers) or this compiler's own
// native convention (tighter, register-only for small functions).
type CallConv struct {
	Native      bool
	RetReg      asm.Reg
	ArgRegs     []asm.Reg
	CalleeSave  []asm.Reg
}

func SystemVCallConv() CallConv {
	return CallConv{
		Native:     false,
		RetReg:     asm.RAX,
		ArgRegs:    []asm.Reg{asm.RDI, asm.RSI, asm.RDX, asm.RCX, asm.R8, asm.R9},
		CalleeSave: calleeSaved,
	}
}

func NativeCallConv() CallConv {
	return CallConv{
		Native:     true,
		RetReg:     asm.RAX,
		ArgRegs:    []asm.Reg{asm.RAX, asm.RCX, asm.RDX, asm.RSI, asm.RDI, asm.R8, asm.R9, asm.R10},
		CalleeSave: calleeSaved,
	}
}
