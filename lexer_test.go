package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lexAll(t *testing.T, src string) []Token {
	t.Helper()
	diags := NewDiagnosticCollector(50)
	diags.SetSourceCode(src)
	toks := NewLexer(src, defaultIndentUnit, diags).Lex()
	require.False(t, diags.HasErrors(), "unexpected lex errors: %s", diags.Report(false))
	return toks
}

func kinds(toks []Token) []TokenKind {
	out := make([]TokenKind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestLexIndentAndDedentBalance(t *testing.T) {
	toks := lexAll(t, "fn main() :=\n    const x = 1\n    log(x)\n")
	indents, dedents := 0, 0
	for _, tk := range toks {
		switch tk.Kind {
		case TokIndent:
			indents++
		case TokDedent:
			dedents++
		}
	}
	assert.Equal(t, indents, dedents, "every INDENT must be balanced by a DEDENT")
}

func TestLexNestedIndentProducesOneIndentPerLevel(t *testing.T) {
	src := "fn main() :=\n    if 1\n        log(1)\n"
	toks := lexAll(t, src)
	count := 0
	for _, tk := range toks {
		if tk.Kind == TokIndent {
			count++
		}
	}
	assert.Equal(t, 2, count)
}

func TestLexKeywordsAreClassifiedSeparatelyFromIdentifiers(t *testing.T) {
	toks := lexAll(t, "const fn struct\n")
	for _, tk := range toks[:3] {
		assert.Equal(t, TokKeyword, tk.Kind, "token %q should classify as keyword", tk.Value)
	}
}

func TestLexUppercaseStartIsType(t *testing.T) {
	toks := lexAll(t, "Point\n")
	require.NotEmpty(t, toks)
	assert.Equal(t, TokType, toks[0].Kind)
}

func TestLexTagSymbolLiteral(t *testing.T) {
	toks := lexAll(t, "#MCMC\n")
	require.NotEmpty(t, toks)
	assert.Equal(t, TokTag, toks[0].Kind)
	assert.Equal(t, "#MCMC", toks[0].Value)
}

func TestLexIntegerVsFloatVsDoubleLiterals(t *testing.T) {
	toks := lexAll(t, "1 2.0 3.0f\n")
	var gotKinds []TokenKind
	for _, tk := range toks {
		if tk.Kind == TokInt || tk.Kind == TokFloat || tk.Kind == TokDouble {
			gotKinds = append(gotKinds, tk.Kind)
		}
	}
	assert.Equal(t, []TokenKind{TokInt, TokDouble, TokFloat}, gotKinds)
}

func TestLexStringLiteral(t *testing.T) {
	toks := lexAll(t, `"hello world"` + "\n")
	require.NotEmpty(t, toks)
	assert.Equal(t, TokString, toks[0].Kind)
	assert.Equal(t, "hello world", toks[0].Value)
}

func TestLexBlankAndCommentOnlyLinesProduceNoTokens(t *testing.T) {
	withBlank := lexAll(t, "const x = 1\n\n// note\nconst y = 2\n")
	withoutBlank := lexAll(t, "const x = 1\nconst y = 2\n")
	assert.Equal(t, kinds(withoutBlank), kinds(withBlank), "a blank or comment-only line must not change the token stream")
}

func TestLexArrowAndWalrusAreAssignTokens(t *testing.T) {
	toks := lexAll(t, "fn f() -> 1\nx := 1\n")
	foundArrow, foundWalrus := false, false
	for _, tk := range toks {
		if tk.Kind == TokAssign && tk.Value == "->" {
			foundArrow = true
		}
		if tk.Kind == TokAssign && tk.Value == ":=" {
			foundWalrus = true
		}
	}
	assert.True(t, foundArrow, "expected a '->' ASSIGN token")
	assert.True(t, foundWalrus, "expected a ':=' ASSIGN token")
}

func TestLexMemberDerefToken(t *testing.T) {
	toks := lexAll(t, "p.x\n")
	found := false
	for _, tk := range toks {
		if tk.Kind == TokDeref {
			found = true
		}
	}
	assert.True(t, found, "expected a DEREF token for '.'")
}

func TestLexStreamOperatorIsDistinctAssign(t *testing.T) {
	toks := lexAll(t, "x <- range(1, 3)\n")
	found := false
	for _, tk := range toks {
		if tk.Kind == TokAssign && tk.Value == "<-" {
			found = true
		}
	}
	assert.True(t, found, "expected a '<-' ASSIGN token for stream bindings")
}
