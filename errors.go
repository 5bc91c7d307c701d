// Completion: 100% - Diagnostics and runtime errors complete
package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrorLevel indicates the severity of a diagnostic.
type ErrorLevel int

const (
	LevelWarning ErrorLevel = iota
	LevelError
	LevelFatal
)

func (l ErrorLevel) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal error"
	default:
		return "unknown"
	}
}

// ErrorCategory classifies a diagnostic or runtime error along the stages
// described in spec §7: lexing, parsing, native-call misuse, interpreter
// (evaluation-time) faults, and features the interpreter parses but refuses
// to run.
type ErrorCategory int

const (
	CategoryLex ErrorCategory = iota
	CategoryParse
	CategoryNative
	CategoryInterpreter
	CategoryNotImplemented
)

func (c ErrorCategory) String() string {
	switch c {
	case CategoryLex:
		return "lex"
	case CategoryParse:
		return "parse"
	case CategoryNative:
		return "native"
	case CategoryInterpreter:
		return "interpreter"
	case CategoryNotImplemented:
		return "not-implemented"
	default:
		return "unknown"
	}
}

// SourceLocation represents a position in source code.
type SourceLocation struct {
	File   string
	Line   int
	Column int
	Length int
}

func (loc SourceLocation) String() string {
	if loc.File == "" {
		return fmt.Sprintf("%d:%d", loc.Line, loc.Column)
	}
	return fmt.Sprintf("%s:%d:%d", loc.File, loc.Line, loc.Column)
}

// DiagnosticContext carries the extra information a formatted diagnostic
// prints alongside its message.
type DiagnosticContext struct {
	SourceLine string
	Suggestion string
	HelpText   string
}

// Diagnostic is a single lex/parse-time finding, identified by a UUID so
// that structured output can correlate it across a run without re-parsing
// the formatted text.
type Diagnostic struct {
	ID       string
	Level    ErrorLevel
	Category ErrorCategory
	Message  string
	Location SourceLocation
	Context  DiagnosticContext
}

func newDiagnosticID() string { return uuid.NewString() }

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s", d.Location, d.Message)
}

// Format renders d the way the driver prints diagnostics to stderr: a
// colorized header, `-->` location line, source snippet with a caret
// underline, then optional help/suggestion lines. Per spec §7 this
// rendering applies only to diagnostics, never to the `log` native's
// token/value dumps.
func (d Diagnostic) Format(useColor bool) string {
	var sb strings.Builder

	if useColor {
		sb.WriteString("\033[1;31m")
	}
	sb.WriteString(d.Level.String())
	sb.WriteString(": ")
	if useColor {
		sb.WriteString("\033[0m")
	}
	sb.WriteString(d.Message)
	sb.WriteString("\n")

	if useColor {
		sb.WriteString("\033[1;34m")
	}
	sb.WriteString("  --> ")
	sb.WriteString(d.Location.String())
	if useColor {
		sb.WriteString("\033[0m")
	}
	sb.WriteString("\n")

	if d.Context.SourceLine != "" {
		lineNum := fmt.Sprintf("%d", d.Location.Line)
		padding := strings.Repeat(" ", len(lineNum)+1)

		sb.WriteString(padding)
		sb.WriteString("|\n")
		sb.WriteString(lineNum)
		sb.WriteString(" | ")
		sb.WriteString(d.Context.SourceLine)
		sb.WriteString("\n")
		sb.WriteString(padding)
		sb.WriteString("| ")

		if d.Location.Column > 0 {
			sb.WriteString(strings.Repeat(" ", d.Location.Column-1))
			if useColor {
				sb.WriteString("\033[1;31m")
			}
			if d.Location.Length > 0 {
				sb.WriteString(strings.Repeat("^", d.Location.Length))
			} else {
				sb.WriteString("^")
			}
			if useColor {
				sb.WriteString("\033[0m")
			}
			sb.WriteString("\n")
		}
	}

	if d.Context.Suggestion != "" {
		if useColor {
			sb.WriteString("\033[1;32m")
		}
		sb.WriteString("   help: ")
		if useColor {
			sb.WriteString("\033[0m")
		}
		sb.WriteString(d.Context.Suggestion)
		sb.WriteString("\n")
	}

	if d.Context.HelpText != "" {
		if useColor {
			sb.WriteString("\033[1;36m")
		}
		sb.WriteString("   note: ")
		if useColor {
			sb.WriteString("\033[0m")
		}
		sb.WriteString(d.Context.HelpText)
		sb.WriteString("\n")
	}

	return sb.String()
}

// DiagnosticCollector accumulates lex/parse diagnostics. Per spec §7, the
// driver refuses to evaluate a module once any error-or-worse diagnostic
// has been recorded against it, regardless of how many more tokens remain.
type DiagnosticCollector struct {
	errors     []Diagnostic
	warnings   []Diagnostic
	maxErrors  int
	sourceCode string
}

func NewDiagnosticCollector(maxErrors int) *DiagnosticCollector {
	if maxErrors <= 0 {
		maxErrors = 10
	}
	return &DiagnosticCollector{maxErrors: maxErrors}
}

func (dc *DiagnosticCollector) SetSourceCode(source string) { dc.sourceCode = source }

func (dc *DiagnosticCollector) AddError(d Diagnostic) {
	if d.ID == "" {
		d.ID = newDiagnosticID()
	}
	if d.Context.SourceLine == "" && dc.sourceCode != "" {
		d.Context.SourceLine = dc.getSourceLine(d.Location.Line)
	}
	if d.Level == LevelFatal || d.Level == LevelError {
		dc.errors = append(dc.errors, d)
	} else {
		dc.warnings = append(dc.warnings, d)
	}
}

func (dc *DiagnosticCollector) AddWarning(d Diagnostic) {
	d.Level = LevelWarning
	if d.ID == "" {
		d.ID = newDiagnosticID()
	}
	if d.Context.SourceLine == "" && dc.sourceCode != "" {
		d.Context.SourceLine = dc.getSourceLine(d.Location.Line)
	}
	dc.warnings = append(dc.warnings, d)
}

func (dc *DiagnosticCollector) getSourceLine(lineNum int) string {
	if dc.sourceCode == "" || lineNum <= 0 {
		return ""
	}
	lines := strings.Split(dc.sourceCode, "\n")
	if lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

func (dc *DiagnosticCollector) HasErrors() bool { return len(dc.errors) > 0 }

func (dc *DiagnosticCollector) HasFatalError() bool {
	for _, d := range dc.errors {
		if d.Level == LevelFatal {
			return true
		}
	}
	return false
}

func (dc *DiagnosticCollector) ErrorCount() int   { return len(dc.errors) }
func (dc *DiagnosticCollector) WarningCount() int { return len(dc.warnings) }
func (dc *DiagnosticCollector) ShouldStop() bool  { return len(dc.errors) >= dc.maxErrors }

func (dc *DiagnosticCollector) Report(useColor bool) string {
	var sb strings.Builder
	for i, d := range dc.errors {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(d.Format(useColor))
	}
	for i, w := range dc.warnings {
		if i > 0 || len(dc.errors) > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(w.Format(useColor))
	}
	if len(dc.errors) > 0 || len(dc.warnings) > 0 {
		sb.WriteString("\n")
		if len(dc.errors) > 0 {
			if useColor {
				sb.WriteString("\033[1;31m")
			}
			sb.WriteString(fmt.Sprintf("%d error(s)", len(dc.errors)))
			if useColor {
				sb.WriteString("\033[0m")
			}
		}
		if len(dc.warnings) > 0 {
			if len(dc.errors) > 0 {
				sb.WriteString(", ")
			}
			if useColor {
				sb.WriteString("\033[1;33m")
			}
			sb.WriteString(fmt.Sprintf("%d warning(s)", len(dc.warnings)))
			if useColor {
				sb.WriteString("\033[0m")
			}
		}
		sb.WriteString(" found\n")
	}
	return sb.String()
}

func (dc *DiagnosticCollector) Clear() {
	dc.errors = nil
	dc.warnings = nil
}

// Lex/parse diagnostic constructors.

func UnexpectedCharError(ch byte, loc SourceLocation) Diagnostic {
	return Diagnostic{
		Level:    LevelError,
		Category: CategoryLex,
		Message:  fmt.Sprintf("unexpected character %q", ch),
		Location: loc,
	}
}

func InconsistentIndentError(loc SourceLocation) Diagnostic {
	return Diagnostic{
		Level:    LevelError,
		Category: CategoryLex,
		Message:  "inconsistent indentation",
		Location: loc,
		Context:  DiagnosticContext{HelpText: "indentation must use a consistent unit throughout a block"},
	}
}

func UnexpectedTokenError(expected, got string, loc SourceLocation) Diagnostic {
	return Diagnostic{
		Level:    LevelError,
		Category: CategoryParse,
		Message:  fmt.Sprintf("expected %s, got %s", expected, got),
		Location: loc,
	}
}

func SyntaxError(message string, loc SourceLocation) Diagnostic {
	return Diagnostic{
		Level:    LevelError,
		Category: CategoryParse,
		Message:  message,
		Location: loc,
	}
}

func UndefinedVariableError(name string, loc SourceLocation) Diagnostic {
	return Diagnostic{
		Level:    LevelError,
		Category: CategoryInterpreter,
		Message:  fmt.Sprintf("undefined name %q", name),
		Location: loc,
		Context:  DiagnosticContext{HelpText: "names must be bound with let/const/fn before use"},
	}
}

func ImmutableUpdateError(name string, loc SourceLocation) Diagnostic {
	return Diagnostic{
		Level:    LevelError,
		Category: CategoryInterpreter,
		Message:  fmt.Sprintf("cannot update constant %q", name),
		Location: loc,
		Context:  DiagnosticContext{Suggestion: fmt.Sprintf("declare %q with `let mut` instead of `const`", name)},
	}
}

func NotImplementedError(feature string, loc SourceLocation) Diagnostic {
	return Diagnostic{
		Level:    LevelFatal,
		Category: CategoryNotImplemented,
		Message:  fmt.Sprintf("%s is parsed but not evaluated", feature),
		Location: loc,
	}
}

// ---------------------------------------------------------------------
// ErrorValue: a runtime error boxed as a first-class value
// ---------------------------------------------------------------------

// ErrorValue is the payload of a PtrError Box: a runtime fault raised by a
// native or an evaluation rule (division by zero, missing field, wrong
// arity), carried as a plain value rather than a Go panic so it can flow
// through match arms like any other Box (spec §4.7, invariant 6).
type ErrorValue struct {
	ID       string
	Category ErrorCategory
	Message  string
	Location SourceLocation
}

func (e *ErrorValue) Error() string {
	if e.Location.Line == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Location, e.Message)
}

// NewNativeError builds an ErrorValue tagged CategoryNative, for misuse of
// a built-in (wrong arity, wrong argument tag, fixed-capacity overflow).
func NewNativeError(format string, args ...any) *ErrorValue {
	return &ErrorValue{ID: newDiagnosticID(), Category: CategoryNative, Message: fmt.Sprintf(format, args...)}
}

// NewInterpreterError builds an ErrorValue tagged CategoryInterpreter, for
// faults raised by an evaluation rule itself (division by zero, undefined
// member, pattern match exhaustion).
func NewInterpreterError(loc SourceLocation, format string, args ...any) *ErrorValue {
	return &ErrorValue{ID: newDiagnosticID(), Category: CategoryInterpreter, Message: fmt.Sprintf(format, args...), Location: loc}
}
