// Completion: 100% - Native prelude complete
package main

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
	mrand "math/rand"
	"os"
	"strings"
)

// bindNatives installs the native prelude into scope, one FunctionRecord
// per entry of spec §4.8's table. Each record carries a Go closure as its
// C-style function pointer plus the fixed arity marker the calling
// convention dispatches on (records.go).
func bindNatives(e *Evaluator, scope *Scope) {
	def := func(name string, arity NativeArity, fn NativeFunc) {
		fr := &FunctionRecord{Name: name, Native: fn, NativeArity: arity}
		obj := e.heap.Alloc(TypeFunctionRecord, 0, fr, nil)
		scope.DefineLocal(name, BoxHeap(obj))
	}

	def("log", ArityVariadic, nativeLog)
	def("observe", ArityVariadic, nativeLog) // probabilistic semantics deferred, same surface as log
	def("range", ArityVariadic, nativeRange)
	def("sqrt", Arity1, nativeSqrt)
	def("infer", Arity2, nativeInfer)
	def("sample", Arity1, nativeSample)
	def("take", ArityVariadic, nativeTake)
	def("normal", Arity2, nativeNormal)
	def("gamma", Arity2, nativeGamma)
}

func nativeLog(ctx *EvalContext, args []Box) Box {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	fmt.Fprintln(os.Stdout, strings.Join(parts, " "))
	return BoxNull()
}

// nativeRange builds a fixed-array of integers inclusive of endpoints, per
// spec §4.8's three overloads. A step of 0, or a negative step paired with
// ascending bounds, is a native error.
func nativeRange(ctx *EvalContext, args []Box) Box {
	var from, to, step int64 = 0, 0, 1
	switch len(args) {
	case 1:
		to = args[0].Int()
	case 2:
		from, to = args[0].Int(), args[1].Int()
	case 3:
		from, to, step = args[0].Int(), args[1].Int(), args[2].Int()
	default:
		return BoxError(NewNativeError("range: expected 1, 2, or 3 arguments, got %d", len(args)))
	}
	if step == 0 {
		return BoxError(NewNativeError("range: step must not be 0"))
	}
	if step < 0 && from <= to {
		return BoxError(NewNativeError("range: negative step with ascending bounds (%d, %d)", from, to))
	}
	count := 0
	if step > 0 {
		for v := from; v <= to; v += step {
			count++
		}
	} else {
		for v := from; v >= to; v += step {
			count++
		}
	}
	arr := NewFixedArray(ctx.Arena, count)
	fa := arr.payload.(*FixedArray)
	if step > 0 {
		for v := from; v <= to; v += step {
			_ = fa.Append(BoxInt(v))
		}
	} else {
		for v := from; v >= to; v += step {
			_ = fa.Append(BoxInt(v))
		}
	}
	return BoxArena(arr)
}

func nativeSqrt(ctx *EvalContext, args []Box) Box {
	f, ok := numericFloat(args[0])
	if !ok {
		return BoxError(NewNativeError("sqrt: argument must be numeric"))
	}
	return BoxFloat(float32(math.Sqrt(f)))
}

// nativeInfer takes the probabilistic model (a function) and a tag naming
// the inference algorithm (#MCMC, #HMC, ...) and returns an empty growable
// array as a stub iterator: iterating it yields no values, since actual
// inference is out of scope for the core (spec §4.8, "return a stub iterator").
func nativeInfer(ctx *EvalContext, args []Box) Box {
	if args[1].Tag != TagTagSym {
		return BoxError(NewNativeError("infer: second argument must be a tag symbol"))
	}
	fa := &FlexibleArray{}
	obj := ctx.Heap.Alloc(TypeGrowableArray, 0, fa, nil)
	return BoxHeap(obj)
}

// nativeSample returns its argument unchanged when numeric, dispatches to
// the argument's own `sample` method when it is an object that has one,
// and errors otherwise (spec §4.8).
func nativeSample(ctx *EvalContext, args []Box) Box {
	v := args[0]
	if _, ok := numericFloat(v); ok {
		return v
	}
	if ctx.Eval != nil {
		if fn, prependRecv, found := ctx.Eval.findMethod(v, "sample"); found {
			var callArgs []Box
			if prependRecv {
				callArgs = []Box{v}
			}
			return ctx.Eval.invoke(fn, callArgs, SourceLocation{})
		}
	}
	return BoxError(NewNativeError("sample: argument has no sample method"))
}

// nativeTake returns a fixed-array of up to the first n values of a
// sequence argument. The stub form spec §4.8 describes (no real generator
// protocol wired to inference yet) returns whatever prefix the argument
// already holds.
func nativeTake(ctx *EvalContext, args []Box) Box {
	if len(args) == 0 {
		return BoxError(NewNativeError("take: expected at least 1 argument"))
	}
	n := 0
	seqIdx := 0
	if len(args) >= 2 {
		n = int(args[0].Int())
		seqIdx = 1
	} else {
		n = 3
	}
	values, gen, ok := asIterable(args[seqIdx])
	if !ok {
		return BoxError(NewNativeError("take: argument is not iterable"))
	}
	if gen != nil {
		return BoxError(NewNativeError("take: generator arguments are not supported by this native"))
	}
	out := make([]Box, 0, n)
	for i := 0; i < n && i < len(values); i++ {
		out = append(out, values[i])
	}
	arr := NewFixedArray(ctx.Arena, len(out))
	fa := arr.payload.(*FixedArray)
	for _, v := range out {
		_ = fa.Append(v)
	}
	return BoxArena(arr)
}

// seededRand produces a math/rand source seeded from crypto/rand where the
// platform provides it, falling back to the fixed seed 1 otherwise
// (spec §4.8: "cryptographically-seeded RNG on supported platforms; fall
// back to a standard PRNG"). No pack library offers distribution sampling,
// so this one corner stays on the standard library; see DESIGN.md.
func seededRand() *mrand.Rand {
	var seedBytes [8]byte
	if _, err := rand.Read(seedBytes[:]); err != nil {
		return mrand.New(mrand.NewSource(1))
	}
	seed := int64(binary.LittleEndian.Uint64(seedBytes[:]))
	return mrand.New(mrand.NewSource(seed))
}

func nativeNormal(ctx *EvalContext, args []Box) Box {
	mean, ok1 := numericFloat(args[0])
	stddev, ok2 := numericFloat(args[1])
	if !ok1 || !ok2 {
		return BoxError(NewNativeError("normal: both arguments must be numeric"))
	}
	r := seededRand()
	return BoxFloat(float32(mean + stddev*r.NormFloat64()))
}

func nativeGamma(ctx *EvalContext, args []Box) Box {
	shape, ok1 := numericFloat(args[0])
	scale, ok2 := numericFloat(args[1])
	if !ok1 || !ok2 {
		return BoxError(NewNativeError("gamma: both arguments must be numeric"))
	}
	r := seededRand()
	return BoxFloat(float32(sampleGamma(r, shape, scale)))
}

// sampleGamma implements the Marsaglia-Tsang method for shape >= 1,
// boosting shape < 1 by one and correcting with a uniform draw, the
// standard transform used when a platform RNG exposes only a normal
// and a uniform generator.
func sampleGamma(r *mrand.Rand, shape, scale float64) float64 {
	if shape <= 0 {
		shape = 1
	}
	boost := 1.0
	if shape < 1 {
		boost = math.Pow(r.Float64(), 1/shape)
		shape += 1
	}
	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9*d)
	for {
		x := r.NormFloat64()
		v := 1 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := r.Float64()
		if u < 1-0.0331*x*x*x*x {
			return d * v * scale * boost
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v * scale * boost
		}
	}
}
