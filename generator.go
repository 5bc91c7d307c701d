// Completion: 100% - Generator state machine complete
package main

// GeneratorState mirrors the function-execution state machine of spec
// §4.7 restricted to the generator path: Ready, Running, Yielded,
// Returned, Errored.
type GeneratorState int

const (
	GenReady GeneratorState = iota
	GenRunning
	GenYielded
	GenDone
	GenErrored
)

type generatorSignalKind int

const (
	sigYield generatorSignalKind = iota
	sigDone
	sigError
)

type generatorSignal struct {
	kind  generatorSignalKind
	value Box
}

// GeneratorRecord is the resumable record spec §9's design note calls for
// ("paused_at, local_scope, next()"), implemented with a goroutine and a
// pair of unbuffered channels rather than a hand-rolled AST resume-index:
// the evaluator is a plain tree-walker with no continuation-passing
// transform, so the channel pair plays the role of "paused_at" while
// letting ordinary Go control flow (including intermediate calls, ifs,
// loops within the generator body) suspend at a `yield` anywhere in the
// body, not just at statement-list boundaries. Scope holds the record's
// locals; Fn is never re-entered concurrently because resumeCh/valueCh
// hand off control exactly once per Next call.
type GeneratorRecord struct {
	Fn    *FunctionRecord
	Scope *Scope

	state    GeneratorState
	started  bool
	resumeCh chan struct{}
	valueCh  chan generatorSignal
}

// NewGeneratorRecord builds a generator bound to fn's body, with args
// already positionally bound into scope by the caller (the same binding
// rule ordinary calls use).
func NewGeneratorRecord(fn *FunctionRecord, scope *Scope) *GeneratorRecord {
	return &GeneratorRecord{
		Fn:       fn,
		Scope:    scope,
		state:    GenReady,
		resumeCh: make(chan struct{}),
		valueCh:  make(chan generatorSignal),
	}
}

// start launches the body goroutine. It installs an EvalContext copy with
// CurrentGenerator set to gr, so a `yield` anywhere inside the body (via
// the ambient context, spec §5) reaches this record's channels.
func (gr *GeneratorRecord) start(outer *EvalContext, eval *Evaluator) {
	gr.started = true
	gr.state = GenRunning
	genCtx := &EvalContext{Arena: outer.Arena, Heap: outer.Heap}
	go func() {
		var result Box
		WithContext(genCtx, func() {
			genCtx.CurrentGenerator = gr
			result = eval.evalBlock(gr.Fn.Body, gr.Scope)
		})
		kind := sigDone
		if result.IsError() {
			kind = sigError
		}
		gr.valueCh <- generatorSignal{kind: kind, value: result}
	}()
}

// Next resumes the generator and returns the next yielded value, or the
// final/return value with done=true. A generator that has already
// finished returns (BoxNull(), true) for every subsequent call.
func (gr *GeneratorRecord) Next(outer *EvalContext, eval *Evaluator) (Box, bool) {
	if gr.state == GenDone || gr.state == GenErrored {
		return BoxNull(), true
	}
	if !gr.started {
		gr.start(outer, eval)
	} else {
		gr.state = GenRunning
		gr.resumeCh <- struct{}{}
	}
	sig := <-gr.valueCh
	switch sig.kind {
	case sigYield:
		gr.state = GenYielded
		return sig.value, false
	case sigError:
		gr.state = GenErrored
		return sig.value, true
	default:
		gr.state = GenDone
		return sig.value, true
	}
}

// yieldFromGenerator is called by the evaluator's YieldStmt handler when
// CurrentGenerator is non-nil: it hands value to whoever called Next and
// blocks until the next Next call resumes this goroutine.
func yieldFromGenerator(gr *GeneratorRecord, value Box) {
	gr.valueCh <- generatorSignal{kind: sigYield, value: value}
	<-gr.resumeCh
}
