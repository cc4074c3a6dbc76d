package ir

// The closed instruction taxonomy (§2.3, §4.3), grouped by family. Each
// constant is registered into opTable by the matching family file's
// init().
const (
	// HIR family: operations on boxed JavaScript values (hir.go).
	OpNot Op = iota
	OpTypeof
	OpInstanceof
	OpCatch
	OpHasProp
	OpEnumProp
	OpDelPropVal
	OpNewArgObj
	OpNewCell
	OpGetCell
	OpPutCell
	OpNewClos
	OpGetClos
	OpPutClos
	OpNewObj
	OpNewArr

	// Arithmetic, no overflow (arith.go).
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod

	// Arithmetic with overflow (arith.go).
	OpAddOvf
	OpSubOvf
	OpMulOvf

	// Bitwise (bitwise.go).
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpBNot

	// Comparison (compare.go).
	OpLt
	OpLte
	OpGt
	OpGte
	OpEq
	OpNeq
	OpSeq
	OpNseq

	// Control flow (control.go).
	OpJump
	OpRet
	OpIf
	OpThrow

	// Call family (call.go).
	OpCall
	OpConstruct
	OpGetPropVal
	OpPutPropVal

	// Type conversions (convert.go).
	OpUnbox
	OpBox
	OpICast
	OpItof
	OpFtoi

	// Memory (memory.go).
	OpLoad
	OpStore
	OpGetCtx
	OpSetCtx

	// LIR move (move.go).
	OpMove

	// Phi (phi.go).
	OpPhi
)

// compareOps lists the comparison family members, used by the emitter's
// if-lowering (back package) to recognise a producing comparison and
// take its signed/unsigned jump condition from it rather than
// re-comparing against zero.
var compareOps = map[Op]bool{
	OpLt: true, OpLte: true, OpGt: true, OpGte: true,
	OpEq: true, OpNeq: true, OpSeq: true, OpNseq: true,
}

// IsCompare reports whether op is one of the eight comparison ops.
func IsCompare(op Op) bool { return compareOps[op] }
