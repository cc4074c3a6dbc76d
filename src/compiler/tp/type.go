// Package tp describes the declared, source-level types of callees that
// the IR's call family consults when it derives an output type (§4.3 Call
// family: "the output type is derived from the callee's declared return
// type if available, else box"). It is deliberately thin: the real type
// checker lives upstream of the core and is out of scope here.
package tp

type (
	// Type is a declared source type: a function signature, a struct
	// shape, or a leaf scalar. The IR only ever asks a Type for its
	// Signature; everything else is carried for callers that want to
	// print or compare declared types.
	Type interface {
		Signature() (in, out []Name)
	}

	// Name is a type name as the front end spelled it, not an ir.Type.
	// The core maps a Name to an ir.Type lazily, on demand, via
	// ir.Lookup.
	Name string

	Func struct {
		In  []Name
		Out []Name
	}

	Scalar struct {
		N Name
	}
)

func (f Func) Signature() (in, out []Name) { return f.In, f.Out }
func (s Scalar) Signature() (in, out []Name) { return nil, []Name{s.N} }
