// Package asm names the external collaborator §6 calls "Consumed from
// the assembler": the object the emission driver and the backend policy
// descriptors issue mnemonic calls against. Its own encoding (how "add"
// becomes bytes) is out of scope for the core — only the interface
// shape and the x86 register/condition vocabulary the policy
// descriptors need to talk about live here.
package asm

import "fmt"

// Reg is a physical x86-64 general-purpose register, numbered the way
// the ModRM/REX encoding does (grounded on the register layout used
// throughout the pack's x86 backends).
type Reg int8

const (
	RAX Reg = iota
	RCX
	RDX
	RBX
	RSP
	RBP
	RSI
	RDI
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15

	NoReg Reg = -1
)

var regNames = [...]string{
	RAX: "rax", RCX: "rcx", RDX: "rdx", RBX: "rbx",
	RSP: "rsp", RBP: "rbp", RSI: "rsi", RDI: "rdi",
	R8: "r8", R9: "r9", R10: "r10", R11: "r11",
	R12: "r12", R13: "r13", R14: "r14", R15: "r15",
}

func (r Reg) String() string {
	if r == NoReg {
		return "-"
	}
	if int(r) < 0 || int(r) >= len(regNames) {
		return fmt.Sprintf("r?%d", r)
	}
	return regNames[r]
}

// CC is a jump/setcc condition code token (§4.6 "If-instruction
// lowering": "the emitter selects a signed or unsigned jump mnemonic
// based on input signedness").
type CC string

const (
	CCE  CC = "e"  // equal / zero
	CCNE CC = "ne" // not equal / not zero
	CCL  CC = "l"  // less, signed
	CCLE CC = "le" // less or equal, signed
	CCG  CC = "g"  // greater, signed
	CCGE CC = "ge" // greater or equal, signed
	CCB  CC = "b"  // below, unsigned
	CCBE CC = "be" // below or equal, unsigned
	CCA  CC = "a"  // above, unsigned
	CCAE CC = "ae" // above or equal, unsigned
	CCO  CC = "o"  // overflow
	CCNO CC = "no" // no overflow
)

// Label is an assembler-owned position marker: blocks and CFG edges each
// get one (§4.6 "Label materialisation").
type Label struct {
	Name string
}

// Imm is an immediate operand.
type Imm int64

// Mem is a base+offset memory operand: [base + offset], sized in bits.
// Memory-to-memory moves never occur in this core — the allocator routes
// through a register (§4.6 "Move lowering").
type Mem struct {
	Bits   int
	Base   Reg
	Offset int32
}

// Operand is whatever a genCode hook hands the assembler for one operand
// slot: a Reg, a Mem, or an Imm.
type Operand any

// Assembler is the collaborator interface §6 names: "an object with
// methods mov, add, sub, mul, imul, div, idiv, cqo, cdq, sal, cmp, jmp,
// j<cc>, ret, nop, addInstr(label), mem(bitsize, base, offset), and a
// Label constructor." Beyond that listing it also carries Test, And, Or,
// Xor, Not and Call, which the back package's policies need; the policy
// descriptors issue no calls outside this interface.
type Assembler interface {
	Mov(dst, src Operand)
	Add(dst, src Operand)
	Sub(dst, src Operand)
	Mul(src Operand)                 // unsigned multiply: implicit rax in, rax:rdx out
	IMul2(dst, src Operand)          // signed two-operand form
	IMul3(dst, src Operand, imm Imm) // signed three-operand immediate form
	Div(src Operand)
	IDiv(src Operand)
	Cqo()
	Cdq()
	Sal(dst Operand, count Operand)
	Cmp(a, b Operand)
	Test(a, b Operand)
	And(dst, src Operand)
	Or(dst, src Operand)
	Xor(dst, src Operand)
	Not(dst Operand)
	Jmp(l *Label)
	Jcc(cc CC, l *Label)
	Ret()
	Nop()

	// Call issues a call to target, which is either a Label (a statically
	// known callee or runtime helper) or a Reg/Mem holding a function
	// pointer. §6's assembler listing doesn't name "call" explicitly, but
	// the call family (ir.OpCall/OpConstruct/OpGetPropVal/OpPutPropVal)
	// cannot be lowered without one.
	Call(target Operand)

	// NewLabel is the "Label constructor" of §6.
	NewLabel(name string) *Label

	// AddInstr places a label at the current emission position (§4.6
	// step 2, step 4).
	AddInstr(l *Label)

	// Mem builds a [base + offset] operand of the given bit size.
	Mem(bitSize int, base Reg, offset int32) Mem
}
