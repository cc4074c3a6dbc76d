package back

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Snger/Tachyon/src/compiler/asm"
	"github.com/Snger/Tachyon/src/compiler/ir"
)

// fakeAsm is a minimal asm.Assembler that just logs every call it
// receives, in order, the same role the teacher's in-memory byte buffer
// plays for its ARM64 backend: enough to assert on shape without a real
// encoder.
type fakeAsm struct {
	calls  []string
	labels int
}

func (f *fakeAsm) log(s string) { f.calls = append(f.calls, s) }

func (f *fakeAsm) Mov(dst, src asm.Operand) { f.log("mov") }
func (f *fakeAsm) Add(dst, src asm.Operand) { f.log("add") }
func (f *fakeAsm) Sub(dst, src asm.Operand) { f.log("sub") }
func (f *fakeAsm) Mul(src asm.Operand)      { f.log("mul") }
func (f *fakeAsm) IMul2(dst, src asm.Operand)          { f.log("imul2") }
func (f *fakeAsm) IMul3(dst, src asm.Operand, i asm.Imm) { f.log("imul3") }
func (f *fakeAsm) Div(src asm.Operand)  { f.log("div") }
func (f *fakeAsm) IDiv(src asm.Operand) { f.log("idiv") }
func (f *fakeAsm) Cqo()                 { f.log("cqo") }
func (f *fakeAsm) Cdq()                 { f.log("cdq") }
func (f *fakeAsm) Sal(dst, count asm.Operand) { f.log("sal") }
func (f *fakeAsm) Cmp(a, b asm.Operand)       { f.log("cmp") }
func (f *fakeAsm) Test(a, b asm.Operand)      { f.log("test") }
func (f *fakeAsm) And(dst, src asm.Operand)   { f.log("and") }
func (f *fakeAsm) Or(dst, src asm.Operand)    { f.log("or") }
func (f *fakeAsm) Xor(dst, src asm.Operand)   { f.log("xor") }
func (f *fakeAsm) Not(dst asm.Operand)        { f.log("not") }
func (f *fakeAsm) Call(target asm.Operand)    { f.log("call") }
func (f *fakeAsm) Jmp(l *asm.Label)           { f.log("jmp:" + l.Name) }
func (f *fakeAsm) Jcc(cc asm.CC, l *asm.Label) { f.log("j" + string(cc) + ":" + l.Name) }
func (f *fakeAsm) Ret()                       { f.log("ret") }
func (f *fakeAsm) Nop()                       { f.log("nop") }
func (f *fakeAsm) AddInstr(l *asm.Label)      { f.log("label:" + l.Name) }

func (f *fakeAsm) NewLabel(name string) *asm.Label {
	f.labels++
	return &asm.Label{Name: name}
}

func (f *fakeAsm) Mem(bits int, base asm.Reg, offset int32) asm.Mem {
	return asm.Mem{Bits: bits, Base: base, Offset: offset}
}

func TestEmitStraightLineAdd(t *testing.T) {
	sess := ir.NewSession()
	f := ir.NewFunc(sess, "add_one", []*ir.Type{ir.I32}, []string{"n"}, []*ir.Type{ir.I32})
	entry := f.NewBlock("entry")

	one := mustConst(t, sess, int64(1), ir.I32)
	sum, err := entry.Add(f.Params[0], one)
	require.NoError(t, err)
	_, err = entry.Ret(sum)
	require.NoError(t, err)

	plan := NewAllocPlan()
	plan.Reg[f.Params[0]] = asm.RDI
	plan.Reg[sum] = asm.RDI

	a := &fakeAsm{}
	sm := &StackMap{CalleeSaved: nil}
	err = Emit(context.Background(), a, f, plan, sm, nil, NativeCallConv())
	require.NoError(t, err)

	assert.Contains(t, a.calls, "label:add_one.entry")
	assert.Contains(t, a.calls, "add")
	assert.Contains(t, a.calls, "ret")
}

func TestEmitIfBranchUsesComparisonCC(t *testing.T) {
	sess := ir.NewSession()
	f := ir.NewFunc(sess, "max0", []*ir.Type{ir.I32}, []string{"n"}, []*ir.Type{ir.I32})
	entry := f.NewBlock("entry")
	then := f.NewBlock("then")
	els := f.NewBlock("else")

	zero := mustConst(t, sess, int64(0), ir.I32)
	cond, err := entry.Lt(f.Params[0], zero)
	require.NoError(t, err)
	_, err = entry.If(cond, then, els)
	require.NoError(t, err)

	_, err = then.Ret(zero)
	require.NoError(t, err)
	_, err = els.Ret(f.Params[0])
	require.NoError(t, err)

	plan := NewAllocPlan()
	plan.Reg[f.Params[0]] = asm.RDI

	a := &fakeAsm{}
	sm := &StackMap{}
	err = Emit(context.Background(), a, f, plan, sm, nil, NativeCallConv())
	require.NoError(t, err)

	assert.Contains(t, a.calls, "cmp")
	assert.Contains(t, a.calls, "j"+string(asm.CCL)+":max0.then", "a signed comparison must lower to a signed jump")
}

func mustConst(t *testing.T, sess *ir.Session, v any, typ *ir.Type) *ir.Const {
	t.Helper()
	c, err := sess.GetConst(v, typ)
	require.NoError(t, err)
	return c
}
