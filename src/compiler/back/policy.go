// Package back is the x86-64 backend: per-instruction-kind policy
// descriptors (§4.5) plus the emission driver that walks a function's
// blocks and issues assembler calls against them (§4.6).
package back

import (
	"math"

	"github.com/Snger/Tachyon/src/compiler/asm"
	"github.com/Snger/Tachyon/src/compiler/ir"
)

// RegSet is a bitmask over the sixteen general-purpose registers. It
// exists instead of reusing set.Bits because asm.Reg is int8-backed and
// small enough that a plain bitmask is both cheaper and reads better at
// a call site ("args" or "allGPR") than a generic bitset would.
type RegSet uint16

func RS(regs ...asm.Reg) RegSet {
	var s RegSet
	for _, r := range regs {
		s |= 1 << uint(r)
	}
	return s
}

func (s RegSet) Has(r asm.Reg) bool {
	return r >= 0 && int(r) < 16 && s&(1<<uint(r)) != 0
}

var (
	allGPR = RS(asm.RAX, asm.RCX, asm.RDX, asm.RBX, asm.RSI, asm.RDI,
		asm.R8, asm.R9, asm.R10, asm.R11, asm.R12, asm.R13, asm.R14, asm.R15)

	// calleeSaved is the System V AMD64 callee-saved set, shared by both
	// CallConv constructors as CalleeSave. The prologue itself spills
	// StackMap.CalleeSaved, not this list.
	calleeSaved = []asm.Reg{asm.RBX, asm.RBP, asm.R12, asm.R13, asm.R14, asm.R15}
)

// OperandPolicy is one use-slot's constraint (§4.5: "operand must be
// register", "operand register set", "operand can be an immediate").
type OperandPolicy struct {
	MustBeReg bool
	Regs      RegSet // empty means "any GPR"
	CanBeImm  bool
}

// Descriptor is the policy row for one Op (§4.5): constraints on each
// operand, how many of them may simultaneously be immediates, the
// destination's own register constraint, whether the destination must
// physically coincide with operand 0 (x86's two-address shape), and the
// genCode hook that turns a validated instruction into assembler calls.
type Descriptor struct {
	Operands       []OperandPolicy
	MaxImmOperands int
	DestMustBeReg  bool
	DestRegs       RegSet
	DestIsOperand0 bool
	GenCode        func(e *Emitter, i *ir.Instr)

	// WriteRegSet is §4.5's writeRegSet(instr): registers this op's
	// genCode clobbers beyond its declared operands and destination (e.g.
	// rdx trashed by an unsigned mul, or whichever of rax/rdx isn't the
	// declared dest for div/mod). nil means no extra clobbers. An
	// allocator consults this the same way it consults Operands/DestRegs,
	// to keep a live value out of a register genCode is about to stomp.
	WriteRegSet func(i *ir.Instr) RegSet
}

// Clobbers returns d's extra clobber set for instruction i, or the empty
// set if d declares none.
func (d Descriptor) Clobbers(i *ir.Instr) RegSet {
	if d.WriteRegSet == nil {
		return 0
	}
	return d.WriteRegSet(i)
}

var policies = map[ir.Op]Descriptor{}

func registerPolicy(op ir.Op, d Descriptor) {
	if _, dup := policies[op]; dup {
		panic("back: op policy registered twice")
	}
	policies[op] = d
}

// PolicyFor returns the registered Descriptor for op, if any. Exported
// so a register allocator (or a test) can read the operand/destination
// constraints without reaching into package internals.
func PolicyFor(op ir.Op) (Descriptor, bool) {
	d, ok := policies[op]
	return d, ok
}

func init() {
	twoAddr := OperandPolicy{CanBeImm: true}

	arith := Descriptor{
		Operands:       []OperandPolicy{{}, twoAddr},
		MaxImmOperands: 1,
		DestMustBeReg:  true,
		DestRegs:       allGPR,
		DestIsOperand0: true,
	}

	add := arith
	add.GenCode = func(e *Emitter, i *ir.Instr) { e.genTwoAddr(i, asm.Assembler.Add) }
	registerPolicy(ir.OpAdd, add)

	sub := arith
	sub.GenCode = func(e *Emitter, i *ir.Instr) { e.genTwoAddr(i, asm.Assembler.Sub) }
	registerPolicy(ir.OpSub, sub)

	registerPolicy(ir.OpAnd, Descriptor{
		Operands: arith.Operands, MaxImmOperands: 1, DestMustBeReg: true, DestRegs: allGPR,
		DestIsOperand0: true, GenCode: func(e *Emitter, i *ir.Instr) { e.genBitwise(i, bitAnd) },
	})
	registerPolicy(ir.OpOr, Descriptor{
		Operands: arith.Operands, MaxImmOperands: 1, DestMustBeReg: true, DestRegs: allGPR,
		DestIsOperand0: true, GenCode: func(e *Emitter, i *ir.Instr) { e.genBitwise(i, bitOr) },
	})
	registerPolicy(ir.OpXor, Descriptor{
		Operands: arith.Operands, MaxImmOperands: 1, DestMustBeReg: true, DestRegs: allGPR,
		DestIsOperand0: true, GenCode: func(e *Emitter, i *ir.Instr) { e.genBitwise(i, bitXor) },
	})

	registerPolicy(ir.OpShl, shiftDescriptor())
	registerPolicy(ir.OpShr, shiftDescriptor())

	registerPolicy(ir.OpBNot, Descriptor{
		Operands:       []OperandPolicy{{}},
		DestMustBeReg:  true,
		DestRegs:       allGPR,
		DestIsOperand0: true,
		GenCode: func(e *Emitter, i *ir.Instr) {
			dst := e.dest(i)
			e.moveIfNeeded(dst, e.operand(i.Uses()[0]))
			e.a.Not(dst)
		},
	})

	// Multiplication (§4.6 "Multiplication"): signed operands lower to
	// the two- or three-operand imul forms, which don't pin rax; unsigned
	// operands fall back to the one-operand widening mul, which does
	// (rax in, rax:rdx out).
	registerPolicy(ir.OpMul, Descriptor{
		Operands:       []OperandPolicy{{}, {CanBeImm: true}},
		MaxImmOperands: 1,
		DestMustBeReg:  true,
		DestRegs:       allGPR,
		DestIsOperand0: true,
		GenCode: func(e *Emitter, i *ir.Instr) {
			if i.Uses()[0].Type().IsSigned() {
				e.genSignedMul(i)
				return
			}

			e.a.Mov(asm.RAX, e.operand(i.Uses()[0]))
			e.a.Mul(e.operand(i.Uses()[1]))
			e.moveIfNeeded(e.dest(i), asm.RAX)
		},
		WriteRegSet: func(i *ir.Instr) RegSet {
			if i.Uses()[0].Type().IsSigned() {
				return 0
			}
			return RS(asm.RAX, asm.RDX)
		},
	})

	// Division and modulo (§4.6 "Modulo"): dividend in rax, rdx zeroed
	// (unsigned) or sign-extended via cqo/cdq (signed) ahead of
	// div/idiv; quotient lands in rax, remainder in rdx.
	registerPolicy(ir.OpDiv, divModDescriptor(false))
	registerPolicy(ir.OpMod, divModDescriptor(true))

	registerPolicy(ir.OpAddOvf, ovfDescriptor(asm.Assembler.Add))
	registerPolicy(ir.OpSubOvf, ovfDescriptor(asm.Assembler.Sub))
	registerPolicy(ir.OpMulOvf, Descriptor{
		Operands:       []OperandPolicy{{MustBeReg: true, Regs: RS(asm.RAX)}, {}},
		DestMustBeReg:  true,
		DestRegs:       RS(asm.RAX),
		DestIsOperand0: true,
		GenCode: func(e *Emitter, i *ir.Instr) {
			e.a.Mov(asm.RAX, e.operand(i.Uses()[0]))
			e.a.IMul2(asm.RAX, e.operand(i.Uses()[1]))
			e.emitOvfBranch(i)
		},
	})

	registerPolicy(ir.OpLt, compareDescriptor(asm.CCL, asm.CCB))
	registerPolicy(ir.OpLte, compareDescriptor(asm.CCLE, asm.CCBE))
	registerPolicy(ir.OpGt, compareDescriptor(asm.CCG, asm.CCA))
	registerPolicy(ir.OpGte, compareDescriptor(asm.CCGE, asm.CCAE))
	registerPolicy(ir.OpEq, compareDescriptor(asm.CCE, asm.CCE))
	registerPolicy(ir.OpNeq, compareDescriptor(asm.CCNE, asm.CCNE))
	registerPolicy(ir.OpSeq, compareDescriptor(asm.CCE, asm.CCE))
	registerPolicy(ir.OpNseq, compareDescriptor(asm.CCNE, asm.CCNE))

	registerPolicy(ir.OpMove, Descriptor{
		Operands:       []OperandPolicy{{CanBeImm: true}},
		MaxImmOperands: 1,
		DestMustBeReg:  false,
		DestRegs:       allGPR,
		GenCode: func(e *Emitter, i *ir.Instr) {
			e.moveIfNeeded(e.dest(i), e.operand(i.Uses()[0]))
		},
	})

	registerPolicy(ir.OpLoad, Descriptor{
		Operands:      []OperandPolicy{{MustBeReg: true, Regs: allGPR}, {CanBeImm: true}},
		DestMustBeReg: true,
		DestRegs:      allGPR,
		GenCode: func(e *Emitter, i *ir.Instr) {
			base := e.operand(i.Uses()[0]).(asm.Reg)
			off := e.constOffset(i.Uses()[1])
			mem := e.a.Mem(i.Type().Size()*8, base, off)
			e.a.Mov(e.dest(i), mem)
		},
	})
	registerPolicy(ir.OpStore, Descriptor{
		Operands:      []OperandPolicy{{MustBeReg: true, Regs: allGPR}, {CanBeImm: true}, {CanBeImm: true}},
		DestMustBeReg: false,
		GenCode: func(e *Emitter, i *ir.Instr) {
			base := e.operand(i.Uses()[0]).(asm.Reg)
			off := e.constOffset(i.Uses()[1])
			mem := e.a.Mem(i.Uses()[2].Type().Size()*8, base, off)
			e.a.Mov(mem, e.operand(i.Uses()[2]))
		},
	})

	registerPolicy(ir.OpUnbox, identityConvert())
	registerPolicy(ir.OpBox, identityConvert())
	registerPolicy(ir.OpICast, identityConvert())
	registerPolicy(ir.OpItof, identityConvert())
	registerPolicy(ir.OpFtoi, identityConvert())

	// jump, ret and if materialise targets rather than operands; the
	// emission driver (emit.go) lowers them directly instead of through
	// genCode, since what they emit depends on block layout (fall-through
	// vs explicit jump), not just on their own operand list. They still
	// get table entries so their Descriptor.Operands can be looked up.
	// throw and the call family do go through genCode (emitThrow,
	// genRuntimeCall), which emits their branches itself.
	registerPolicy(ir.OpJump, Descriptor{})
	registerPolicy(ir.OpRet, Descriptor{Operands: []OperandPolicy{{CanBeImm: true}}, MaxImmOperands: 1})
	registerPolicy(ir.OpIf, Descriptor{Operands: []OperandPolicy{{}}})
	registerPolicy(ir.OpThrow, Descriptor{
		Operands: []OperandPolicy{{MustBeReg: true}},
		GenCode:  func(e *Emitter, i *ir.Instr) { e.emitThrow(i) },
	})

	for _, op := range []ir.Op{ir.OpCall, ir.OpConstruct, ir.OpGetPropVal, ir.OpPutPropVal} {
		registerPolicy(op, runtimeCallDescriptor())
	}

	for _, op := range hirOps {
		registerPolicy(op, runtimeCallDescriptor())
	}
	registerPolicy(ir.OpGetCtx, Descriptor{DestMustBeReg: true, DestRegs: allGPR, GenCode: func(e *Emitter, i *ir.Instr) {
		e.a.Mov(e.dest(i), e.a.Mem(ir.Rptr.Size()*8, contextReg, 0))
	}})
	registerPolicy(ir.OpSetCtx, Descriptor{Operands: []OperandPolicy{{MustBeReg: true}}, GenCode: func(e *Emitter, i *ir.Instr) {
		e.a.Mov(e.a.Mem(ir.Rptr.Size()*8, contextReg, 0), e.operand(i.Uses()[0]))
	}})
}

// hirOps is every HIR-family op (§4.3 "HIR"): operations on boxed
// JavaScript values that this backend lowers uniformly to a runtime-
// helper call, the same shared-behaviour-not-inheritance approach the
// ir package uses for its validators (§9).
var hirOps = []ir.Op{
	ir.OpNot, ir.OpTypeof, ir.OpInstanceof, ir.OpCatch, ir.OpHasProp,
	ir.OpEnumProp, ir.OpDelPropVal, ir.OpNewArgObj, ir.OpNewCell,
	ir.OpGetCell, ir.OpPutCell, ir.OpNewClos, ir.OpGetClos, ir.OpPutClos,
	ir.OpNewObj, ir.OpNewArr,
}

// contextReg is the register the calling convention dedicates to the
// current runtime-context pointer across a function body (§4.3
// "get_ctx/set_ctx").
const contextReg = asm.R14

type bitOp int

const (
	bitAnd bitOp = iota
	bitOr
	bitXor
)

func (e *Emitter) genBitwise(i *ir.Instr, op bitOp) {
	dst := e.dest(i)
	e.moveIfNeeded(dst, e.operand(i.Uses()[0]))
	src := e.operand(i.Uses()[1])
	switch op {
	case bitAnd:
		e.a.And(dst, src)
	case bitOr:
		e.a.Or(dst, src)
	case bitXor:
		e.a.Xor(dst, src)
	}
}

func (e *Emitter) genTwoAddr(i *ir.Instr, op func(a asm.Assembler, dst, src asm.Operand)) {
	dst := e.dest(i)
	e.moveIfNeeded(dst, e.operand(i.Uses()[0]))
	op(e.a, dst, e.operand(i.Uses()[1]))
}

// genSignedMul lowers a signed multiply to the three-operand immediate
// form when the second operand is a constant that fits a 16-bit
// immediate, else the two-operand register form (§4.6 "Multiplication").
func (e *Emitter) genSignedMul(i *ir.Instr) {
	dst := e.dest(i)
	a, b := i.Uses()[0], i.Uses()[1]

	if c, ok := b.(*ir.Const); ok {
		if n, ok := c.Value.(int64); ok && n >= math.MinInt16 && n <= math.MaxInt16 {
			e.a.IMul3(dst, e.operand(a), asm.Imm(n))
			return
		}
	}

	e.moveIfNeeded(dst, e.operand(a))
	e.a.IMul2(dst, e.operand(b))
}

func shiftDescriptor() Descriptor {
	return Descriptor{
		Operands:       []OperandPolicy{{}, {MustBeReg: true, Regs: RS(asm.RCX), CanBeImm: true}},
		MaxImmOperands: 1,
		DestMustBeReg:  true,
		DestRegs:       allGPR,
		DestIsOperand0: true,
		GenCode: func(e *Emitter, i *ir.Instr) {
			dst := e.dest(i)
			e.moveIfNeeded(dst, e.operand(i.Uses()[0]))
			count := e.operand(i.Uses()[1])
			if _, ok := count.(asm.Imm); !ok {
				e.a.Mov(asm.RCX, count)
				count = asm.RCX
			}
			e.a.Sal(dst, count)
		},
	}
}

func divModDescriptor(mod bool) Descriptor {
	destReg := asm.RAX
	if mod {
		destReg = asm.RDX
	}
	return Descriptor{
		Operands:      []OperandPolicy{{MustBeReg: true, Regs: RS(asm.RAX)}, {MustBeReg: true}},
		DestMustBeReg: true,
		DestRegs:      RS(destReg),
		GenCode: func(e *Emitter, i *ir.Instr) {
			t := i.Uses()[0].Type()
			e.a.Mov(asm.RAX, e.operand(i.Uses()[0]))
			divisor := e.operand(i.Uses()[1])
			if t.IsSigned() {
				if t.Size() == 8 {
					e.a.Cqo()
				} else {
					e.a.Cdq()
				}
				e.a.IDiv(divisor)
			} else {
				e.a.Mov(asm.RDX, asm.Imm(0))
				e.a.Div(divisor)
			}
			if mod {
				e.a.Mov(e.dest(i), asm.RDX)
			} else {
				e.a.Mov(e.dest(i), asm.RAX)
			}
		},
		WriteRegSet: func(i *ir.Instr) RegSet {
			if mod {
				return RS(asm.RAX)
			}
			return RS(asm.RDX)
		},
	}
}

func ovfDescriptor(op func(a asm.Assembler, dst, src asm.Operand)) Descriptor {
	return Descriptor{
		Operands:       []OperandPolicy{{}, {CanBeImm: true}},
		MaxImmOperands: 1,
		DestMustBeReg:  true,
		DestRegs:       allGPR,
		DestIsOperand0: true,
		GenCode: func(e *Emitter, i *ir.Instr) {
			dst := e.dest(i)
			e.moveIfNeeded(dst, e.operand(i.Uses()[0]))
			op(e.a, dst, e.operand(i.Uses()[1]))
			e.emitOvfBranch(i)
		},
	}
}

// compareCC records which jcc mnemonic each comparison op lowers to,
// signed and unsigned, so emitIf can look it up when an ir.If consumes
// a comparison's result directly (§4.6 "If-instruction lowering").
var compareCC = map[ir.Op]struct{ Signed, Unsigned asm.CC }{}

func compareDescriptor(signed, unsigned asm.CC) Descriptor {
	return Descriptor{
		Operands: []OperandPolicy{{}, {CanBeImm: true}},
		GenCode: func(e *Emitter, i *ir.Instr) {
			e.a.Cmp(e.operand(i.Uses()[0]), e.operand(i.Uses()[1]))
		},
	}
}

func init() {
	compareCC[ir.OpLt] = struct{ Signed, Unsigned asm.CC }{asm.CCL, asm.CCB}
	compareCC[ir.OpLte] = struct{ Signed, Unsigned asm.CC }{asm.CCLE, asm.CCBE}
	compareCC[ir.OpGt] = struct{ Signed, Unsigned asm.CC }{asm.CCG, asm.CCA}
	compareCC[ir.OpGte] = struct{ Signed, Unsigned asm.CC }{asm.CCGE, asm.CCAE}
	compareCC[ir.OpEq] = struct{ Signed, Unsigned asm.CC }{asm.CCE, asm.CCE}
	compareCC[ir.OpNeq] = struct{ Signed, Unsigned asm.CC }{asm.CCNE, asm.CCNE}
	compareCC[ir.OpSeq] = struct{ Signed, Unsigned asm.CC }{asm.CCE, asm.CCE}
	compareCC[ir.OpNseq] = struct{ Signed, Unsigned asm.CC }{asm.CCNE, asm.CCNE}
}

func identityConvert() Descriptor {
	return Descriptor{
		Operands:       []OperandPolicy{{CanBeImm: true}},
		MaxImmOperands: 1,
		DestMustBeReg:  false,
		DestRegs:       allGPR,
		GenCode: func(e *Emitter, i *ir.Instr) {
			e.moveIfNeeded(e.dest(i), e.operand(i.Uses()[0]))
		},
	}
}

// runtimeCallDescriptor covers the call family and every HIR op: all of
// them invoke a runtime helper under the native calling convention
// (§4.3's rationale for folding property access into the call family —
// "property access may invoke getters or setters").
func runtimeCallDescriptor() Descriptor {
	return Descriptor{
		DestMustBeReg: false,
		GenCode:       func(e *Emitter, i *ir.Instr) { e.genRuntimeCall(i) },
	}
}
