package ir

// Builder convenience methods. §4.3's NewInstr is the spec-mandated
// generic factory (mixed, ordered args); these are the typed, ergonomic
// entry points a front end (or a test) actually calls, each one just
// partitioning its own arguments and appending the result to blk.

func (blk *Block) build(op Op, args ...any) (*Instr, error) {
	i, err := blk.parent.NewInstr(op, "", args...)
	if err != nil {
		return nil, err
	}
	if err := blk.AppendInstr(i); err != nil {
		return nil, err
	}
	return i, nil
}

func (blk *Block) Add(l, r Value) (*Instr, error) { return blk.build(OpAdd, l, r) }
func (blk *Block) Sub(l, r Value) (*Instr, error) { return blk.build(OpSub, l, r) }
func (blk *Block) Mul(l, r Value) (*Instr, error) { return blk.build(OpMul, l, r) }
func (blk *Block) Div(l, r Value) (*Instr, error) { return blk.build(OpDiv, l, r) }
func (blk *Block) Mod(l, r Value) (*Instr, error) { return blk.build(OpMod, l, r) }

func (blk *Block) AddOvf(l, r Value, normal, overflow *Block) (*Instr, error) {
	return blk.build(OpAddOvf, l, r, normal, overflow)
}
func (blk *Block) SubOvf(l, r Value, normal, overflow *Block) (*Instr, error) {
	return blk.build(OpSubOvf, l, r, normal, overflow)
}
func (blk *Block) MulOvf(l, r Value, normal, overflow *Block) (*Instr, error) {
	return blk.build(OpMulOvf, l, r, normal, overflow)
}

func (blk *Block) And(l, r Value) (*Instr, error) { return blk.build(OpAnd, l, r) }
func (blk *Block) Or(l, r Value) (*Instr, error)  { return blk.build(OpOr, l, r) }
func (blk *Block) Xor(l, r Value) (*Instr, error) { return blk.build(OpXor, l, r) }
func (blk *Block) Shl(l, r Value) (*Instr, error) { return blk.build(OpShl, l, r) }
func (blk *Block) Shr(l, r Value) (*Instr, error) { return blk.build(OpShr, l, r) }
func (blk *Block) BNot(v Value) (*Instr, error)   { return blk.build(OpBNot, v) }

func (blk *Block) Lt(l, r Value) (*Instr, error)   { return blk.build(OpLt, l, r) }
func (blk *Block) Lte(l, r Value) (*Instr, error)  { return blk.build(OpLte, l, r) }
func (blk *Block) Gt(l, r Value) (*Instr, error)   { return blk.build(OpGt, l, r) }
func (blk *Block) Gte(l, r Value) (*Instr, error)  { return blk.build(OpGte, l, r) }
func (blk *Block) Eq(l, r Value) (*Instr, error)   { return blk.build(OpEq, l, r) }
func (blk *Block) Neq(l, r Value) (*Instr, error)  { return blk.build(OpNeq, l, r) }
func (blk *Block) Seq(l, r Value) (*Instr, error)  { return blk.build(OpSeq, l, r) }
func (blk *Block) Nseq(l, r Value) (*Instr, error) { return blk.build(OpNseq, l, r) }

func (blk *Block) Jump(target *Block) (*Instr, error) { return blk.build(OpJump, target) }
func (blk *Block) Ret(v Value) (*Instr, error)        { return blk.build(OpRet, v) }
func (blk *Block) If(cond Value, then, els *Block) (*Instr, error) {
	return blk.build(OpIf, cond, then, els)
}
func (blk *Block) Throw(v Value, catch *Block) (*Instr, error) {
	if catch == nil {
		return blk.build(OpThrow, v)
	}
	return blk.build(OpThrow, v, catch)
}

func (blk *Block) Call(fn Value, this Value, args ...Value) (*Instr, error) {
	all := append([]any{fn, this}, valuesToAny(args)...)
	return blk.build(OpCall, all...)
}
func (blk *Block) Construct(fn Value, this Value, args ...Value) (*Instr, error) {
	all := append([]any{fn, this}, valuesToAny(args)...)
	return blk.build(OpConstruct, all...)
}
func (blk *Block) GetPropVal(obj, key Value) (*Instr, error) {
	return blk.build(OpGetPropVal, obj, key)
}
func (blk *Block) PutPropVal(obj, key, val Value) (*Instr, error) {
	return blk.build(OpPutPropVal, obj, key, val)
}

func (blk *Block) Unbox(t *Type, v Value) (*Instr, error)  { return blk.build(OpUnbox, t, v) }
func (blk *Block) Box(t *Type, v Value) (*Instr, error)    { return blk.build(OpBox, t, v) }
func (blk *Block) ICast(t *Type, v Value) (*Instr, error)  { return blk.build(OpICast, t, v) }
func (blk *Block) Itof(v Value) (*Instr, error)            { return blk.build(OpItof, F64, v) }
func (blk *Block) Ftoi(v Value) (*Instr, error)            { return blk.build(OpFtoi, Pint, v) }

func (blk *Block) Load(t *Type, ptr, offset Value) (*Instr, error) {
	return blk.build(OpLoad, t, ptr, offset)
}
func (blk *Block) Store(t *Type, ptr, offset, val Value) (*Instr, error) {
	return blk.build(OpStore, t, ptr, offset, val)
}
func (blk *Block) GetCtx() (*Instr, error)        { return blk.build(OpGetCtx) }
func (blk *Block) SetCtx(v Value) (*Instr, error) { return blk.build(OpSetCtx, v) }

func (blk *Block) Not(v Value) (*Instr, error)       { return blk.build(OpNot, v) }
func (blk *Block) Typeof(v Value) (*Instr, error)    { return blk.build(OpTypeof, v) }
func (blk *Block) Instanceof(l, r Value) (*Instr, error) {
	return blk.build(OpInstanceof, l, r)
}

func valuesToAny(vs []Value) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}
