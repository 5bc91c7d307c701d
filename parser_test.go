package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseSource(t *testing.T, src string) (*Program, *DiagnosticCollector) {
	t.Helper()
	diags := NewDiagnosticCollector(50)
	diags.SetSourceCode(src)
	tokens := NewLexer(src, defaultIndentUnit, diags).Lex()
	prog := NewParser(tokens, diags).ParseProgram()
	return prog, diags
}

func TestParseConstDecl(t *testing.T) {
	prog, diags := parseSource(t, "const x = 1\n")
	require.False(t, diags.HasErrors())
	require.Len(t, prog.Statements, 1)
	decl, ok := prog.Statements[0].(*ConstDecl)
	require.True(t, ok)
	assert.Equal(t, "x", decl.Name)
	lit, ok := decl.Value.(*IntLiteral)
	require.True(t, ok)
	assert.Equal(t, int64(1), lit.Value)
}

func TestParseBinaryPrecedenceMulBeforeAdd(t *testing.T) {
	prog, diags := parseSource(t, "const x = 1 + 2 * 3\n")
	require.False(t, diags.HasErrors())
	decl := prog.Statements[0].(*ConstDecl)
	bin, ok := decl.Value.(*BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "+", bin.Op)
	rhs, ok := bin.Right.(*BinaryExpr)
	require.True(t, ok, "expected 2 * 3 to bind tighter than +")
	assert.Equal(t, "*", rhs.Op)
}

func TestParseFnDeclSingleExprBody(t *testing.T) {
	prog, diags := parseSource(t, "fn add(a, b) = a + b\n")
	require.False(t, diags.HasErrors())
	fn, ok := prog.Statements[0].(*FnDecl)
	require.True(t, ok)
	assert.Equal(t, "add", fn.Name)
	assert.False(t, fn.IsGenerator)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "a", fn.Params[0].Name)
	assert.Equal(t, "b", fn.Params[1].Name)
	require.Len(t, fn.Body, 1)
}

func TestParseFnDeclIndentedBlockBody(t *testing.T) {
	prog, diags := parseSource(t, "fn main() :=\n    const x = 1\n    log(x)\n")
	require.False(t, diags.HasErrors())
	fn, ok := prog.Statements[0].(*FnDecl)
	require.True(t, ok)
	assert.Len(t, fn.Body, 2)
}

func TestParseLoopKeywordFnIsGenerator(t *testing.T) {
	prog, diags := parseSource(t, "loop fn counter() :=\n    yield 1\n")
	require.False(t, diags.HasErrors())
	fn, ok := prog.Statements[0].(*FnDecl)
	require.True(t, ok)
	assert.True(t, fn.IsGenerator)
}

func TestParseLoopConditionForm(t *testing.T) {
	prog, diags := parseSource(t, "fn main() :=\n    loop x :=\n        yield 1\n")
	require.False(t, diags.HasErrors())
	fn := prog.Statements[0].(*FnDecl)
	stmt := fn.Body[0].(*ExprStmt)
	loop, ok := stmt.Expr.(*LoopExpr)
	require.True(t, ok)
	assert.Equal(t, LoopCond, loop.Kind)
}

func TestParseLoopStreamForm(t *testing.T) {
	prog, diags := parseSource(t, "fn main() :=\n    loop (v <- range(1, 3)) -> log(v)\n")
	require.False(t, diags.HasErrors())
	fn := prog.Statements[0].(*FnDecl)
	stmt := fn.Body[0].(*ExprStmt)
	loop, ok := stmt.Expr.(*LoopExpr)
	require.True(t, ok)
	assert.Equal(t, LoopStream, loop.Kind)
	require.Len(t, loop.Bindings, 1)
	assert.Equal(t, "v", loop.Bindings[0].Name)
	assert.True(t, loop.Bindings[0].Stream)
}

func TestParseLoopForeverForm(t *testing.T) {
	prog, diags := parseSource(t, "fn main() :=\n    loop :=\n        done\n")
	require.False(t, diags.HasErrors())
	fn := prog.Statements[0].(*FnDecl)
	stmt := fn.Body[0].(*ExprStmt)
	loop, ok := stmt.Expr.(*LoopExpr)
	require.True(t, ok)
	assert.Equal(t, LoopForever, loop.Kind)
}

func TestParseIfElseExpr(t *testing.T) {
	prog, diags := parseSource(t, "fn main() :=\n    if 1 :=\n        log(1)\n    else :=\n        log(0)\n")
	require.False(t, diags.HasErrors())
	fn := prog.Statements[0].(*FnDecl)
	stmt := fn.Body[0].(*ExprStmt)
	ifExpr, ok := stmt.Expr.(*IfExpr)
	require.True(t, ok)
	assert.Len(t, ifExpr.Then, 1)
	assert.Len(t, ifExpr.Else, 1)
}

func TestParseMatchExprArms(t *testing.T) {
	src := "fn main() :=\n    match 1\n        if 1 -> log(1)\n        else -> log(0)\n"
	prog, diags := parseSource(t, src)
	require.False(t, diags.HasErrors())
	fn := prog.Statements[0].(*FnDecl)
	stmt := fn.Body[0].(*ExprStmt)
	match, ok := stmt.Expr.(*MatchExpr)
	require.True(t, ok)
	require.Len(t, match.Arms, 2)
	assert.NotNil(t, match.Arms[0].Cond)
	assert.Nil(t, match.Arms[1].Cond)
}

func TestParseStructDeclFields(t *testing.T) {
	prog, diags := parseSource(t, "struct Point :=\n    x\n    y\n")
	require.False(t, diags.HasErrors())
	decl, ok := prog.Statements[0].(*StructDecl)
	require.True(t, ok)
	assert.Equal(t, "Point", decl.Name)
	require.Len(t, decl.Fields, 2)
	assert.Equal(t, "x", decl.Fields[0].Name)
	assert.Equal(t, "y", decl.Fields[1].Name)
}

func TestParseMemberAndCallChain(t *testing.T) {
	prog, diags := parseSource(t, "const x = p.x()\n")
	require.False(t, diags.HasErrors())
	decl := prog.Statements[0].(*ConstDecl)
	call, ok := decl.Value.(*CallExpr)
	require.True(t, ok)
	_, ok = call.Callee.(*MemberExpr)
	assert.True(t, ok)
}

func TestParseObjectLiteral(t *testing.T) {
	prog, diags := parseSource(t, "const p = Point {x = 1, y = 2}\n")
	require.False(t, diags.HasErrors())
	decl := prog.Statements[0].(*ConstDecl)
	lit, ok := decl.Value.(*ObjectLiteral)
	require.True(t, ok)
	assert.Equal(t, "Point", lit.Type)
	require.Len(t, lit.Fields, 2)
}

func TestParseUnexpectedTokenRecordsDiagnosticAndRecovers(t *testing.T) {
	_, diags := parseSource(t, "const = 1\nconst y = 2\n")
	assert.True(t, diags.HasErrors())
}
