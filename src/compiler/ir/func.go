package ir

import "github.com/Snger/Tachyon/src/compiler/tp"

// Func is one compiled function: its formal parameters, declared result
// types (used by the call family's output-type rule, §4.3), and the
// blocks that make up its body.
type Func struct {
	Name    string
	Params  []*Arg
	Results []*Type

	Entry  *Block
	Blocks []*Block

	sess    *Session
	idSeq   int
}

// NewFunc creates an empty function bound to sess's constant table. sess
// may be shared across functions compiled in the same session (§5); it
// must not be shared across concurrently-compiling sessions.
func NewFunc(sess *Session, name string, paramTypes []*Type, paramNames []string, results []*Type) *Func {
	f := &Func{
		Name:    name,
		Results: append([]*Type(nil), results...),
		sess:    sess,
	}

	for idx, t := range paramTypes {
		name := ""
		if idx < len(paramNames) {
			name = paramNames[idx]
		}
		f.Params = append(f.Params, NewArg(t, name, idx))
	}

	return f
}

func (f *Func) nextID() int {
	f.idSeq++
	return f.idSeq
}

// Const is a convenience wrapper around Session.GetConst scoped to this
// function's session (§4.2).
func (f *Func) Const(value any, typ *Type) (*Const, error) {
	return f.sess.GetConst(value, typ)
}

// NewBlock appends a fresh, empty basic block to the function and returns
// it. The first block ever added becomes Entry.
func (f *Func) NewBlock(name string) *Block {
	b := &Block{
		id:     len(f.Blocks),
		name:   name,
		parent: f,
	}

	f.Blocks = append(f.Blocks, b)

	if f.Entry == nil {
		f.Entry = b
	}

	return b
}

// FuncRef is a Value referring to a callee function by its declared
// signature (§4.3 Call family: "the output type is derived from the
// callee's declared return type if available"). A callee compiled in
// the same session already carries its lowered Results directly; a
// callee only declared so far (a forward reference, or an external
// function the front end hasn't lowered yet) carries Decl instead,
// naming its return types the way the source spelled them. The core
// only reads Results/Decl; it never constructs either.
type FuncRef struct {
	Name    string
	Params  []*Type
	Results []*Type
	Decl    tp.Type
}

func (r *FuncRef) Type() *Type       { return Box }
func (r *FuncRef) ValueName() string { return r.Name }

// CalleeResults implements the calleeResults lookup the call family's
// validator consults (call.go): Results if the callee is already
// lowered, else Decl's declared output names resolved through Lookup,
// else nil (callValidator's "else box" fallback applies).
func (r *FuncRef) CalleeResults() []*Type {
	if len(r.Results) > 0 || r.Decl == nil {
		return r.Results
	}

	_, out := r.Decl.Signature()
	results := make([]*Type, 0, len(out))
	for _, name := range out {
		if t := Lookup(string(name)); t != nil {
			results = append(results, t)
		}
	}
	return results
}

// Package is a compilation unit: a path and the functions defined in it
// (§3 "Package").
type Package struct {
	Path  string
	Funcs []*Func
}
