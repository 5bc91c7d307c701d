// Completion: 100% - Ambient evaluator context complete
package main

import "github.com/timandy/routine"

// EvalContext is the ambient state spec §5 describes: the current arena,
// the current heap, and the call-stack trace, shared process-wide but
// mutated only by the evaluator thread. It is carried in goroutine-local
// storage (github.com/timandy/routine, already a dependency of the wider
// pack via its debug-logging use of routine.Goid) rather than a bare
// package-level variable, so that a future concurrent driver (tests
// running evaluators in parallel, say) does not have to retrofit
// thread-safety into every allocation call site.
type EvalContext struct {
	Arena     *Arena
	Heap      *Heap
	CallStack []Frame

	// CurrentGenerator is non-nil only inside the goroutine running a
	// generator's body; a `yield` looks here to find the channel pair to
	// hand its value to (generator.go).
	CurrentGenerator *GeneratorRecord

	// Eval gives natives that need it (sample's method-dispatch case,
	// native.go) a way back into method resolution without every native
	// taking an *Evaluator parameter.
	Eval *Evaluator
}

// Frame is one entry of the call-stack trace the driver prints on an
// unhandled runtime error (spec §7, "traceback showing function frames
// in deepest-first order").
type Frame struct {
	FuncName string
	Location SourceLocation
}

var contextLocal = routine.NewThreadLocal[*EvalContext]()

// CurrentContext returns the active context for this goroutine, or nil if
// none has been installed.
func CurrentContext() *EvalContext {
	return contextLocal.Get()
}

// WithContext installs ctx for the duration of fn and restores whatever
// was previously installed on every exit path, including a panic — the
// "swap the context pointer for scoped use, guaranteed restoration"
// contract spec §5 requires.
func WithContext(ctx *EvalContext, fn func()) {
	prev := contextLocal.Get()
	contextLocal.Set(ctx)
	defer contextLocal.Set(prev)
	fn()
}

// PushFrame appends a call frame, used on user-function entry.
func (c *EvalContext) PushFrame(f Frame) { c.CallStack = append(c.CallStack, f) }

// PopFrame removes the most recently pushed frame, used on successful
// function return; on an error short-circuit the frame is kept for the
// driver's traceback.
func (c *EvalContext) PopFrame() {
	if len(c.CallStack) > 0 {
		c.CallStack = c.CallStack[:len(c.CallStack)-1]
	}
}

// Roots implements RootProvider over the evaluator's current scope chain.
// The evaluator installs the live module/call scope before any Heap.Alloc
// that might trigger a collection (spec §4.3, "mark roots: the
// evaluator's current scope chain").
func (c *EvalContext) Roots(liveScope *Scope) RootProvider {
	return func(mark func(Box)) {
		if liveScope != nil {
			for cur := liveScope; cur != nil; cur = cur.parent {
				cur.dict.each(func(_ StrView, v Box) { mark(v) })
			}
		}
	}
}
