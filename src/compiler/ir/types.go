package ir

import "math/bits"

// Kind enumerates the closed set of IR value types (§3, §4.1). Kind is an
// index into the process-wide Type singleton table, never compared on its
// own — callers compare *Type by identity.
type Kind int8

const (
	KindNone Kind = iota
	KindBox
	KindRptr
	KindI8
	KindI16
	KindI32
	KindI64
	KindU8
	KindU16
	KindU32
	KindU64
	KindF64

	numKinds
)

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return "kind?"
	}
	return kindNames[k]
}

var kindNames = [numKinds]string{
	KindNone: "none",
	KindBox:  "box",
	KindRptr: "rptr",
	KindI8:   "i8",
	KindI16:  "i16",
	KindI32:  "i32",
	KindI64:  "i64",
	KindU8:   "u8",
	KindU16:  "u16",
	KindU32:  "u32",
	KindU64:  "u64",
	KindF64:  "f64",
}

// Type is an IR value type: a platform-parameterised, process-wide
// singleton. Equality is always identity (compare *Type values directly).
type Type struct {
	kind Kind
	name string
	size int
}

func (t *Type) Kind() Kind  { return t.kind }
func (t *Type) Name() string { return t.name }
func (t *Type) Size() int    { return t.size }
func (t *Type) String() string { return t.name }

func (t *Type) IsPtr() bool    { return t == Box || t == Rptr }
func (t *Type) IsInt() bool {
	switch t {
	case I8, I16, I32, I64, U8, U16, U32, U64:
		return true
	}
	return false
}
func (t *Type) IsFP() bool     { return t == F64 }
func (t *Type) IsNumber() bool { return t.IsInt() || t.IsFP() }

// IsSigned reports whether an integer type is signed. Only meaningful when
// IsInt() is true; used by the emitter's if-lowering to choose a signed vs
// unsigned jump mnemonic (§4.6 "If-instruction lowering").
func (t *Type) IsSigned() bool {
	switch t {
	case I8, I16, I32, I64:
		return true
	}
	return false
}

// The closed set of type singletons (§3). None of these are ever
// reassigned after package init; platformInit below only trims which of
// I64/U64 are considered valid and rebinds Pint.
var (
	None = &Type{kind: KindNone, name: "none", size: 0}
	Box  = &Type{kind: KindBox, name: "box", size: 8}
	Rptr = &Type{kind: KindRptr, name: "rptr", size: 8}
	I8   = &Type{kind: KindI8, name: "i8", size: 1}
	I16  = &Type{kind: KindI16, name: "i16", size: 2}
	I32  = &Type{kind: KindI32, name: "i32", size: 4}
	I64  = &Type{kind: KindI64, name: "i64", size: 8}
	U8   = &Type{kind: KindU8, name: "u8", size: 1}
	U16  = &Type{kind: KindU16, name: "u16", size: 2}
	U32  = &Type{kind: KindU32, name: "u32", size: 4}
	U64  = &Type{kind: KindU64, name: "u64", size: 8}
	F64  = &Type{kind: KindF64, name: "f64", size: 8}

	// Pint is bound by platformInit to I64 on 64-bit platforms, I32 on
	// 32-bit. It is the platform-width signed integer (glossary: pint).
	Pint *Type

	wordBits int
	has64    bool
)

func init() {
	platformInit(bits.UintSize)
}

// platformInit runs the §4.1 platform-selection step: on 32-bit platforms
// i64/u64 drop out of the valid set and Pint aliases i32; on 64-bit
// platforms both widths stay and Pint aliases i64. It is total — there is
// no failure mode, only a binding.
func platformInit(ptrBits int) {
	wordBits = ptrBits
	has64 = ptrBits >= 64

	if has64 {
		Pint = I64
	} else {
		Pint = I32
	}
}

// PointerBits reports the platform pointer width this process was
// initialised for (§3's "platform pointer size").
func PointerBits() int { return wordBits }

// ValidType reports whether t is part of the currently selected lattice.
// On a 32-bit platform i64/u64 are not valid; everything else always is.
func ValidType(t *Type) bool {
	if t == nil {
		return false
	}
	if !has64 && (t == I64 || t == U64) {
		return false
	}
	switch t {
	case None, Box, Rptr, I8, I16, I32, U8, U16, U32, F64:
		return true
	case I64, U64:
		return has64
	default:
		return false
	}
}

// Lookup resolves a type name (as the front end or tp.Name spells it) to
// its singleton, honouring the platform-selection step: "i64"/"u64"
// resolve to nil on a 32-bit platform, and "pint" always resolves to the
// platform-width signed integer.
func Lookup(name string) *Type {
	switch name {
	case "none":
		return None
	case "box":
		return Box
	case "rptr":
		return Rptr
	case "i8":
		return I8
	case "i16":
		return I16
	case "i32":
		return I32
	case "i64":
		if !has64 {
			return nil
		}
		return I64
	case "u8":
		return U8
	case "u16":
		return U16
	case "u32":
		return U32
	case "u64":
		if !has64 {
			return nil
		}
		return U64
	case "f64":
		return F64
	case "pint":
		return Pint
	default:
		return nil
	}
}
