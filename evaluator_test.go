package main

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runProgram lexes, parses, and evaluates source end-to-end, capturing
// whatever the `log` native wrote to stdout. It mirrors the driver's own
// pipeline (main.go's runSource) closely enough to exercise the same path
// the end-to-end scenarios in spec §8 describe.
func runProgram(t *testing.T, source string) (stdout string, result Box, mainFound bool) {
	t.Helper()

	diags := NewDiagnosticCollector(50)
	diags.SetSourceCode(source)

	tokens := NewLexer(source, defaultIndentUnit, diags).Lex()
	require.False(t, diags.HasErrors(), "lex errors: %s", diags.Report(false))

	program := NewParser(tokens, diags).ParseProgram()
	require.False(t, diags.HasErrors(), "parse errors: %s", diags.Report(false))

	arena := NewArena(LifetimeModule)
	heap := NewHeap()
	evaluator := NewEvaluator(diags, arena, heap)
	ctx := &EvalContext{Arena: arena, Heap: heap, Eval: evaluator}

	stdout = captureStdout(t, func() {
		WithContext(ctx, func() {
			result, mainFound = evaluator.EvalProgram(program, []string{"test.doubt"})
		})
	})
	return stdout, result, mainFound
}

// captureStdout redirects os.Stdout for the duration of fn and returns
// whatever was written, restoring the original stream on every exit path.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	done := make(chan string, 1)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		done <- buf.String()
	}()

	fn()
	_ = w.Close()
	out := <-done
	return out
}

func TestHelloWorldWithConst(t *testing.T) {
	out, result, found := runProgram(t, "const msg = \"hi\"\nfn main() :=\n    log(msg)\n")
	require.True(t, found)
	assert.False(t, result.IsError(), "unexpected error: %v", result)
	assert.Equal(t, "hi\n", out)
}

func TestArithmeticAndCalls(t *testing.T) {
	out, result, found := runProgram(t, "fn add(a, b) = a + b\nfn main() :=\n    log(add(2, 3))\n")
	require.True(t, found)
	assert.False(t, result.IsError(), "unexpected error: %v", result)
	assert.Equal(t, "5\n", out)
}

func TestRangeAndLog(t *testing.T) {
	out, result, found := runProgram(t, "fn main() :=\n    log(range(1, 3))\n")
	require.True(t, found)
	assert.False(t, result.IsError(), "unexpected error: %v", result)
	assert.Contains(t, out, "[1, 2, 3]")
}

func TestStructInstanceAndMemberAccess(t *testing.T) {
	src := "struct Point :=\n    x\n    y\nfn main() :=\n    const p = Point {x = 10, y = 20}\n    log(p.x, p.y)\n"
	out, result, found := runProgram(t, src)
	require.True(t, found)
	assert.False(t, result.IsError(), "unexpected error: %v", result)
	assert.Equal(t, "10 20\n", out)
}

func TestMatchSelectsFirstEqualArm(t *testing.T) {
	src := "fn main() :=\n    match 2\n        if 1 -> log(\"one\")\n        if 2 -> log(\"two\")\n        else -> log(\"other\")\n"
	out, result, found := runProgram(t, src)
	require.True(t, found)
	assert.False(t, result.IsError(), "unexpected error: %v", result)
	assert.Equal(t, "two\n", out)
}

func TestDivisionByZeroProducesErrorBox(t *testing.T) {
	_, result, found := runProgram(t, "fn main() :=\n    log(1 / 0)\n")
	require.True(t, found)
	require.True(t, result.IsError())
	assert.Contains(t, result.AsError().Message, "division by zero")
}

func TestMissingMainIsAnError(t *testing.T) {
	_, _, found := runProgram(t, "const x = 1\n")
	assert.False(t, found)
}

func TestOnlyCommentsBehavesLikeEmptySource(t *testing.T) {
	_, _, found := runProgram(t, "// just a comment\n")
	assert.False(t, found)
}

func TestReturnOnlyFunctionReturnsItsValue(t *testing.T) {
	out, result, found := runProgram(t, "fn identity(x) :=\n    return x\nfn main() :=\n    log(identity(7))\n")
	require.True(t, found)
	assert.False(t, result.IsError())
	assert.Equal(t, "7\n", out)
}

func TestConstRedefinitionInSameScopeIsAnError(t *testing.T) {
	out, result, found := runProgram(t, "fn main() :=\n    const x = 1\n    const x = 2\n    log(x)\n")
	require.True(t, found)
	require.True(t, result.IsError())
	assert.Equal(t, "", out)
}

func TestIfTruthiness(t *testing.T) {
	out, result, found := runProgram(t, "fn main() :=\n    if 0 :=\n        log(\"truthy\")\n    else :=\n        log(\"falsy\")\n")
	require.True(t, found)
	assert.False(t, result.IsError())
	assert.Equal(t, "falsy\n", out)
}

func TestForComprehensionCollectsValues(t *testing.T) {
	out, result, found := runProgram(t, "fn main() :=\n    const xs = for (v <- range(1, 3)) -> v * 2\n    log(xs)\n")
	require.True(t, found)
	assert.False(t, result.IsError(), "unexpected error: %v", result)
	assert.Contains(t, out, "[2, 4, 6]")
}

func TestGeneratorYieldsLazily(t *testing.T) {
	src := "loop fn counter() :=\n    yield 1\n    yield 2\nfn main() :=\n    const g = counter()\n    log(g)\n"
	_, result, found := runProgram(t, src)
	require.True(t, found)
	assert.False(t, result.IsError(), "unexpected error: %v", result)
}

func TestArityMismatchNamesTheNative(t *testing.T) {
	_, result, found := runProgram(t, "fn main() :=\n    log(sqrt(1, 2))\n")
	require.True(t, found)
	require.True(t, result.IsError())
	assert.Contains(t, result.AsError().Message, "sqrt")
}
