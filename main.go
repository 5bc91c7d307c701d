// Completion: 100% - Driver complete
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
)

const versionString = "doubt 0.1.0"

// main is the driver spec §6 and §2 describe: source -> lex -> parse ->
// evaluate -> call main. Flags mirror the teacher's own main.go (a plain
// flag.FlagSet, no subcommands for this smaller surface), wrapped by
// config.go's flag/env/default precedence.
func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	fs := flag.NewFlagSet("doubt", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	sourceFlag := fs.String("source", "", fmt.Sprintf("path to the source file (default %q)", defaultSourcePath))
	indentFlag := fs.String("indent", "", "indentation unit, e.g. four spaces (default DOUBT_INDENT or four spaces)")
	helpFlag := fs.Bool("help", false, "print usage and exit")
	versionFlag := fs.Bool("version", false, "print version and exit")

	if err := fs.Parse(argv); err != nil {
		return 2
	}

	if *helpFlag {
		printUsage(os.Stdout)
		return 0
	}
	if *versionFlag {
		fmt.Println(versionString)
		return 0
	}

	sourceSet := flagWasSet(fs, "source")
	indentSet := flagWasSet(fs, "indent")
	cfg := Config{
		SourcePath: resolveSource(*sourceFlag, sourceSet),
		IndentUnit: resolveIndent(*indentFlag, indentSet),
	}

	return runSource(cfg, fs.Args())
}

func flagWasSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// runSource executes the driver pipeline for one source file: read, lex,
// parse, evaluate, call main. Returns the process exit code per spec §6
// ("Exit code 0 on successful completion of main; non-zero on parse
// errors, unhandled runtime errors, or missing main").
func runSource(cfg Config, extraArgs []string) int {
	data, err := os.ReadFile(cfg.SourcePath)
	if err != nil {
		wrapped := errors.Wrapf(err, "reading source file %q", cfg.SourcePath)
		fmt.Fprintln(os.Stderr, wrapped.Error())
		return 1
	}
	source := string(data)

	diags := NewDiagnosticCollector(50)
	diags.SetSourceCode(source)

	lx := NewLexer(source, cfg.IndentUnit, diags)
	tokens := lx.Lex()

	if diags.HasErrors() {
		fmt.Fprint(os.Stderr, diags.Report(false))
		return 1
	}

	parser := NewParser(tokens, diags)
	program := parser.ParseProgram()

	// The driver refuses to evaluate a module once any lex/parse error was
	// recorded against it, regardless of how many more statements parsed
	// cleanly after the first fault (spec §4.6, §7).
	if diags.HasErrors() {
		fmt.Fprint(os.Stderr, diags.Report(false))
		return 1
	}

	arena := NewArena(LifetimeModule)
	heap := NewHeap()
	evaluator := NewEvaluator(diags, arena, heap)

	ctx := &EvalContext{Arena: arena, Heap: heap, Eval: evaluator}
	argv := append([]string{cfg.SourcePath}, extraArgs...)

	var result Box
	var mainFound bool
	WithContext(ctx, func() {
		result, mainFound = evaluator.EvalProgram(program, argv)
	})

	if !mainFound {
		fmt.Fprintln(os.Stderr, result.String())
		return 1
	}
	if result.IsError() {
		printRuntimeError(os.Stderr, result.AsError(), ctx)
		return 1
	}
	if result.IsState() && result.State() == StateExit {
		return 0
	}
	return 0
}

// printRuntimeError prints the single concise fault message plus a
// traceback of function frames in deepest-first order, per spec §7
// ("User-visible failure behavior").
func printRuntimeError(w io.Writer, e *ErrorValue, ctx *EvalContext) {
	fmt.Fprintf(w, "%s: %s\n", e.Category, e.Error())
	for i := len(ctx.CallStack) - 1; i >= 0; i-- {
		f := ctx.CallStack[i]
		fmt.Fprintf(w, "  at %s (%s)\n", f.FuncName, f.Location)
	}
}
