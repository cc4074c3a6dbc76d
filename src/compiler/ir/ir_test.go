package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstUniquing(t *testing.T) {
	sess := NewSession()

	a, err := sess.GetConst(int64(3), I32)
	require.NoError(t, err)

	b, err := sess.GetConst(int64(3), I32)
	require.NoError(t, err)

	assert.Same(t, a, b, "equal (value, type) pairs must unique to the same *Const")

	c, err := sess.GetConst(int64(3), I64)
	require.NoError(t, err)
	assert.NotSame(t, a, c, "same value, different type must not unique together")

	_, err = sess.GetConst("hi", I32)
	assert.Error(t, err, "a string literal is only valid at type box")

	_, err = sess.GetConst(3.5, I32)
	assert.Error(t, err, "a float literal is not valid at an integer type")
}

func TestAddDerivesOperandType(t *testing.T) {
	sess := NewSession()
	f := NewFunc(sess, "f", []*Type{I32, I32}, []string{"a", "b"}, []*Type{I32})
	blk := f.NewBlock("entry")

	add, err := blk.Add(f.Params[0], f.Params[1])
	require.NoError(t, err)
	assert.Equal(t, I32, add.Type())

	_, err = blk.Ret(add)
	require.NoError(t, err)
}

func TestAddPointerArithmetic(t *testing.T) {
	sess := NewSession()
	f := NewFunc(sess, "f", []*Type{Rptr, Pint}, []string{"p", "n"}, nil)
	blk := f.NewBlock("entry")

	add, err := blk.Add(f.Params[0], f.Params[1])
	require.NoError(t, err)
	assert.Same(t, Rptr, add.Type())
	assert.Equal(t, "add", add.Mnemonic(), "pointer-arithmetic add keeps the bare mnemonic")

	sub, err := blk.Sub(f.Params[0], f.Params[0])
	require.NoError(t, err)
	assert.Same(t, Pint, sub.Type(), "rptr - rptr yields pint")
	assert.Equal(t, "sub", sub.Mnemonic(), "pointer-arithmetic sub keeps the bare mnemonic")
}

func TestMulOvfRequiresTwoTargets(t *testing.T) {
	sess := NewSession()
	f := NewFunc(sess, "f", []*Type{Pint, Pint}, []string{"a", "b"}, nil)
	normal := f.NewBlock("normal")
	overflow := f.NewBlock("overflow")
	entry := f.NewBlock("entry")

	instr, err := entry.MulOvf(f.Params[0], f.Params[1], normal, overflow)
	require.NoError(t, err)
	assert.True(t, instr.IsBranch())
	assert.Len(t, instr.Targets(), 2)

	_, err = f.NewInstr(OpMulOvf, "", f.Params[0], f.Params[1], normal)
	assert.Error(t, err, "a single branch target must be rejected")
}

func TestUseDestSymmetry(t *testing.T) {
	sess := NewSession()
	f := NewFunc(sess, "f", []*Type{I32, I32}, []string{"a", "b"}, nil)
	blk := f.NewBlock("entry")

	add, err := blk.Add(f.Params[0], f.Params[1])
	require.NoError(t, err)

	sub, err := blk.Sub(add, add)
	require.NoError(t, err)

	dests := add.Dests()
	require.Len(t, dests, 1)
	assert.Same(t, sub, dests[0])
}

func TestTerminatorInvariant(t *testing.T) {
	sess := NewSession()
	f := NewFunc(sess, "f", nil, nil, nil)
	blk := f.NewBlock("entry")
	zero := mustConst(t, sess, int64(0), I32)

	_, err := blk.Ret(zero)
	require.NoError(t, err)

	_, err = blk.Add(zero, zero)
	assert.Error(t, err, "appending after a terminator must fail")
}

func TestPhiRequiresUniformType(t *testing.T) {
	sess := NewSession()
	f := NewFunc(sess, "f", nil, nil, nil)
	left := f.NewBlock("left")
	right := f.NewBlock("right")
	join := f.NewBlock("join")

	phi := f.NewPhi()
	require.NoError(t, phi.AddIncoming(mustConst(t, sess, int64(1), I32), left))
	require.NoError(t, phi.AddIncoming(mustConst(t, sess, int64(2), I32), right))
	assert.Same(t, I32, phi.Type())

	err := phi.AddIncoming(mustConst(t, sess, int64(3), I64), join)
	assert.Error(t, err, "an incoming value of a different type must be rejected")
}

func TestItofFtoiTypeParameterDirection(t *testing.T) {
	sess := NewSession()
	f := NewFunc(sess, "f", []*Type{Pint, F64}, []string{"n", "x"}, nil)
	blk := f.NewBlock("entry")

	itof, err := blk.Itof(f.Params[0])
	require.NoError(t, err)
	assert.Same(t, F64, itof.Type())

	ftoi, err := blk.Ftoi(f.Params[1])
	require.NoError(t, err)
	assert.Same(t, Pint, ftoi.Type())

	_, err = f.NewInstr(OpItof, "", Pint, f.Params[0])
	assert.Error(t, err, "itof's type parameter must be f64, not pint")
}

func TestCopyProducesOrphan(t *testing.T) {
	sess := NewSession()
	f := NewFunc(sess, "f", []*Type{I32, I32}, []string{"a", "b"}, nil)
	blk := f.NewBlock("entry")

	add, err := blk.Add(f.Params[0], f.Params[1])
	require.NoError(t, err)

	clone := add.Copy()
	assert.Nil(t, clone.Parent())
	assert.Empty(t, clone.Dests())
	assert.Equal(t, add.Mnemonic(), clone.Mnemonic())
}

func mustConst(t *testing.T, sess *Session, v any, typ *Type) *Const {
	t.Helper()
	c, err := sess.GetConst(v, typ)
	require.NoError(t, err)
	return c
}
