// Completion: 100% - AST node types complete
package main

import (
	"strconv"
	"strings"
)

// Node is the common interface for every AST node; Pos locates it in
// source for diagnostics.
type Node interface {
	Pos() SourceLocation
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

type baseNode struct{ Loc SourceLocation }

func (b baseNode) Pos() SourceLocation { return b.Loc }

// Program is the root node: a flat sequence of top-level statements, the
// module's transparent block (spec GLOSSARY, "transparent block").
type Program struct {
	baseNode
	Statements []Statement
}

// ---------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------

type ExprStmt struct {
	baseNode
	Expr Expression
}

func (*ExprStmt) statementNode() {}

// DiscardStmt is the `;` token parsed as a statement on its own.
type DiscardStmt struct{ baseNode }

func (*DiscardStmt) statementNode() {}

type ConstDecl struct {
	baseNode
	Name  string
	Value Expression
	Doc   string
}

func (*ConstDecl) statementNode() {}

// MutDecl is a bare `mut name = expr` local mutable binding.
type MutDecl struct {
	baseNode
	Name  string
	Value Expression
}

func (*MutDecl) statementNode() {}

// AssignStmt handles `name <- expr`, rebinding an existing mutable name in
// the nearest enclosing scope that defines it.
type AssignStmt struct {
	baseNode
	Name  string
	Value Expression
}

func (*AssignStmt) statementNode() {}

// Param is one formal parameter; Type/Qualifiers are parsed and stored for
// defaulting only, never interpreted as a type system (spec §4.6).
type Param struct {
	Name       string
	Type       string
	Default    Expression
	Qualifiers []string // dyn, mut, mut* (ref is not a keyword, so it is never collected)
}

// FnDecl is a named function definition: `fn name(params) = expr` or
// `fn name(params) :=` + block. IsGenerator is set by a leading `loop`
// keyword (spec §4.6, "loop fn marks the function as a generator").
type FnDecl struct {
	baseNode
	Name        string
	Params      []Param
	Body        []Statement
	Expr        Expression // single-line `= expr` form; nil if Body is used
	IsGenerator bool
	Doc         string
}

func (*FnDecl) statementNode() {}

type StructField struct {
	Name    string
	Type    string
	Default Expression
}

type StructDecl struct {
	baseNode
	Name   string
	Fields []StructField
	Doc    string
}

func (*StructDecl) statementNode() {}

// TraitDecl and MacroDecl are parsed and retained but, per spec §9's
// not-implemented stance on anything beyond the core pipeline, never
// interpreted: evaluating one yields a Not-implemented error box.
type TraitDecl struct {
	baseNode
	Name    string
	Methods []string
}

func (*TraitDecl) statementNode() {}

type MacroDecl struct {
	baseNode
	Name string
	Body []Statement
}

func (*MacroDecl) statementNode() {}

type ModDecl struct {
	baseNode
	Name string
	Body []Statement
}

func (*ModDecl) statementNode() {}

// UseStmt loads a module; module resolution is explicitly unspecified
// (spec §9 Open Questions), so evaluating it always yields a
// Not-implemented error box.
type UseStmt struct {
	baseNode
	Path string
	As   string
}

func (*UseStmt) statementNode() {}

type ReturnStmt struct {
	baseNode
	Value Expression // nil for a bare `return`
}

func (*ReturnStmt) statementNode() {}

type YieldStmt struct {
	baseNode
	Value Expression
}

func (*YieldStmt) statementNode() {}

// DoneStmt is the bare `done` keyword: ends the innermost loop or
// generator early, carrying the StateDone sentinel (spec §3 invariant 7).
type DoneStmt struct{ baseNode }

func (*DoneStmt) statementNode() {}

// Binding is one entry of a bindings group after let/loop/for. Stream is
// true for a `<-` binding (draws from a sequence); false for `=`.
type Binding struct {
	Name       string
	Value      Expression
	Stream     bool
	Qualifiers []string
}

// LoopKind disambiguates the loop-without-condition forms the source
// conflates (spec §9 Open Questions), per the expansion's resolution:
// two concrete AST variants rather than one ambiguous shape.
type LoopKind int

const (
	LoopCond LoopKind = iota // has a Cond, runs while truthy
	LoopStream                // has bindings, no Cond: one pass per binding round
	LoopForever                // no bindings, no Cond: runs until a state sentinel
)

// LoopExpr models both `loop` and `for`; IsComprehension marks the `for`
// form, whose body values are collected into a sequence rather than
// discarded (spec §4.7, "for is identical to loop structurally").
type LoopExpr struct {
	baseNode
	Kind           LoopKind
	Bindings       []Binding
	Cond           Expression
	Body           []Statement
	IsComprehension bool
}

func (*LoopExpr) statementNode()  {}
func (*LoopExpr) expressionNode() {}

// ---------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------

type Identifier struct {
	baseNode
	Name string
}

func (*Identifier) expressionNode() {}

// TypeRef is a bare TYPE token used as a value, e.g. the head of an object
// literal or a match-arm pattern naming a struct.
type TypeRef struct {
	baseNode
	Name string
}

func (*TypeRef) expressionNode() {}

type TagLiteral struct {
	baseNode
	Name string
}

func (*TagLiteral) expressionNode() {}

type IntLiteral struct {
	baseNode
	Value int64
}

func (*IntLiteral) expressionNode() {}

type DoubleLiteral struct {
	baseNode
	Value float64
}

func (*DoubleLiteral) expressionNode() {}

type FloatLiteral struct {
	baseNode
	Value float32
}

func (*FloatLiteral) expressionNode() {}

type StringLiteral struct {
	baseNode
	Value string
}

func (*StringLiteral) expressionNode() {}

type BinaryExpr struct {
	baseNode
	Op          string
	Left, Right Expression
}

func (*BinaryExpr) expressionNode() {}

type UnaryExpr struct {
	baseNode
	Op      string
	Operand Expression
}

func (*UnaryExpr) expressionNode() {}

type CallExpr struct {
	baseNode
	Callee Expression
	Args   []Expression
}

func (*CallExpr) expressionNode() {}

// MemberExpr is both property access and the entry point for method
// resolution (spec §4.7): the evaluator decides which at call time.
type MemberExpr struct {
	baseNode
	Object Expression
	Name   string
}

func (*MemberExpr) expressionNode() {}

type FieldInit struct {
	Name  string
	Value Expression
}

// ObjectLiteral is `Name { field = expr, ... }`.
type ObjectLiteral struct {
	baseNode
	Type   string
	Fields []FieldInit
}

func (*ObjectLiteral) expressionNode() {}

// FnExpr is an anonymous function: `fn(params) -> expr`.
type FnExpr struct {
	baseNode
	Params      []Param
	Body        []Statement
	Expr        Expression
	IsGenerator bool
}

func (*FnExpr) expressionNode() {}

// LetExpr creates a child scope, binds Bindings left to right into it,
// then evaluates Body in that scope; its value is the block's value
// (spec §4.7).
type LetExpr struct {
	baseNode
	Bindings []Binding
	Body     []Statement
}

func (*LetExpr) expressionNode() {}

type IfExpr struct {
	baseNode
	Cond Expression
	Then []Statement
	Else []Statement // nil when no else-body
}

func (*IfExpr) expressionNode() {}

// MatchArm is `if pattern -> expr` or `else -> expr`; Cond is nil for the
// else arm.
type MatchArm struct {
	Cond Expression
	Body Expression
}

type MatchExpr struct {
	baseNode
	Scrutinee Expression
	Arms      []MatchArm
}

func (*MatchExpr) expressionNode() {}

// BlockExpr wraps a statement sequence used where the grammar expects a
// single expression (e.g. a `:=` block passed as an argument).
type BlockExpr struct {
	baseNode
	Statements []Statement
}

func (*BlockExpr) expressionNode() {}

// String renders a small, deterministic debug form; only Program and the
// handful of nodes worth eyeballing in a token/AST dump get one, matching
// the corpus's habit of not templating String() onto every node.
func (p *Program) String() string {
	var out strings.Builder
	for _, s := range p.Statements {
		if e, ok := s.(*ExprStmt); ok {
			out.WriteString(exprString(e.Expr))
		} else {
			out.WriteString("<stmt>")
		}
		out.WriteString("\n")
	}
	return out.String()
}

func exprString(e Expression) string {
	switch v := e.(type) {
	case *Identifier:
		return v.Name
	case *IntLiteral:
		return strconv.FormatInt(v.Value, 10)
	default:
		return "<expr>"
	}
}
