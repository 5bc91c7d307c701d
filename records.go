// Completion: 100% - Function/struct/object runtime records complete
package main

// StructTemplate is the arena-allocated payload for a `struct` definition:
// its field list plus default-value expressions, evaluated once per
// ObjectInstance construction that omits the field (spec §4.6, "field
// type annotations are parsed but only used by the evaluator for
// defaulting").
type StructTemplate struct {
	Name   string
	Fields []StructField
}

// ObjectInstance is a pointer to its struct template plus a scope
// initialized from the template's fields (spec §4.4, "value representation
// for object instances").
type ObjectInstance struct {
	Template *StructTemplate
	Fields   *Scope
}

// NativeArity selects the fixed calling convention a native is dispatched
// through (spec §4.8).
type NativeArity int

const (
	ArityVariadic NativeArity = iota
	Arity0
	Arity1
	Arity2
	Arity3
)

// NativeFunc is the C-style function pointer spec §4.8 describes, bound
// with a fixed arity marker.
type NativeFunc func(ctx *EvalContext, args []Box) Box

// FunctionRecord is a callable value: either a user function capturing its
// defining scope, or a native bound at driver start. Closures escape only
// as heap-allocated FunctionRecords, keeping invariant 5 ("a function
// record's captured scope pointer remains valid for the record's
// lifetime") true by construction — Go's GC keeps Captured reachable for
// as long as the record is.
type FunctionRecord struct {
	Name        string
	Params      []Param
	Body        []Statement
	Expr        Expression
	Captured    *Scope
	IsGenerator bool

	Native      NativeFunc
	NativeArity NativeArity
}

func (f *FunctionRecord) IsNative() bool { return f.Native != nil }
