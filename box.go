// Completion: 100% - Value representation complete
package main

import (
	"fmt"
	"math"
	"strings"
)

// BoxTag discriminates the payload carried by a Box. Tags below PtrArena are
// unboxed: the payload is the value itself. Tags at or above PtrArena are
// boxed: the payload is a pointer into an arena or the GC heap, and the
// referent begins with an ObjectHeader (see arena.go / heap.go).
type BoxTag uint8

const (
	TagNull BoxTag = iota
	TagBool
	TagInt
	TagUint
	TagByte
	TagChar
	TagFloat
	TagState
	TagTagSym // base-37 packed #SYMBOL
	TagFlags
	TagPtr // raw opaque pointer payload, used internally by natives

	PtrArena // payload is *ArenaObject header embedder
	PtrHeap  // payload is *HeapObject header embedder
	PtrError // payload is *ErrorValue
)

// StateKind enumerates the control-flow sentinels described in spec §3
// invariant 7 and §4.7.
type StateKind uint8

const (
	StateBreak StateKind = iota
	StateContinue
	StateReturn
	StateYield
	StateDone
	StateExit
)

func (k StateKind) String() string {
	switch k {
	case StateBreak:
		return "BREAK"
	case StateContinue:
		return "CONTINUE"
	case StateReturn:
		return "RETURN"
	case StateYield:
		return "YIELD"
	case StateDone:
		return "DONE"
	case StateExit:
		return "EXIT"
	default:
		return "STATE?"
	}
}

// Box is the runtime value. It is a tagged union in spirit: only the field
// matching Tag is meaningful. This trades the source's packed 64-bit word
// for Go-native correctness, per the design note that the bit-layout is a
// C-level optimization secondary to getting tag discipline right.
type Box struct {
	Tag   BoxTag
	i     int64   // Int/Uint/Byte/Char/Bool/State/Flags payload
	f     uint32  // Float payload, IEEE-754 bits (Box_wrap_float contract)
	tagID uint64  // base-37 packed symbol, meaningful when Tag == TagTagSym
	ptr   any     // ArenaObject / HeapObject / ErrorValue / native payload
}

func BoxNull() Box                { return Box{Tag: TagNull} }
func BoxBool(b bool) Box          { return Box{Tag: TagBool, i: boolToInt(b)} }
func BoxInt(v int64) Box          { return Box{Tag: TagInt, i: v} }
func BoxUint(v uint64) Box        { return Box{Tag: TagUint, i: int64(v)} }
func BoxByte(v byte) Box          { return Box{Tag: TagByte, i: int64(v)} }
func BoxChar(v rune) Box          { return Box{Tag: TagChar, i: int64(v)} }
func BoxState(k StateKind) Box    { return Box{Tag: TagState, i: int64(k)} }

// BoxStateValue is a control-flow sentinel that also carries a value, used
// for `return` (the function's result rides along with the RETURN signal
// until the call boundary unwraps it, per spec §4.7).
func BoxStateValue(k StateKind, payload Box) Box {
	return Box{Tag: TagState, i: int64(k), ptr: &payload}
}

// StatePayload returns the value a BoxStateValue sentinel carries, or
// BoxNull() for a bare BoxState with no payload.
func (b Box) StatePayload() Box {
	if b.ptr == nil {
		return BoxNull()
	}
	p, ok := b.ptr.(*Box)
	if !ok {
		return BoxNull()
	}
	return *p
}
func BoxFlags(v uint64) Box       { return Box{Tag: TagFlags, i: int64(v)} }
func BoxPtr(p any) Box            { return Box{Tag: TagPtr, ptr: p} }

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// BoxFloat wraps a float32 by copying its IEEE-754 bits into the payload,
// matching the "Box_wrap_float / Box_unwrap_float round-trips bit-identical"
// law in spec §8.
func BoxFloat(v float32) Box {
	return Box{Tag: TagFloat, f: math.Float32bits(v)}
}

func (b Box) UnwrapFloat() float32 { return math.Float32frombits(b.f) }

// BoxTagSymbol packs name (up to 11 chars in [A-Z0-9], optionally prefixed
// with '#') into a base-37 payload.
func BoxTagSymbol(name string) (Box, error) {
	id, err := EncodeTagSymbol(name)
	if err != nil {
		return Box{}, err
	}
	return Box{Tag: TagTagSym, tagID: id}, nil
}

// MustBoxTagSymbol panics on malformed symbols; used for interpreter-internal
// sentinels (e.g. distribution names) known to be valid at compile time.
func MustBoxTagSymbol(name string) Box {
	b, err := BoxTagSymbol(name)
	if err != nil {
		panic(err)
	}
	return b
}

func (b Box) UnwrapTagSymbol() string { return DecodeTagSymbol(b.tagID) }

func BoxArena(o *ArenaObject) Box { return Box{Tag: PtrArena, ptr: o} }
func BoxHeap(o *HeapObject) Box   { return Box{Tag: PtrHeap, ptr: o} }

// BoxError wraps a structured error. Per invariant 6, error boxes never
// chain: wrapping an existing error box is a bug in the caller, not
// something this constructor tries to flatten.
func BoxError(e *ErrorValue) Box { return Box{Tag: PtrError, ptr: e} }

func (b Box) IsError() bool { return b.Tag == PtrError }

func (b Box) AsError() *ErrorValue {
	if b.Tag != PtrError {
		return nil
	}
	return b.ptr.(*ErrorValue)
}

func (b Box) Bool() bool     { return b.i != 0 }
func (b Box) Int() int64     { return b.i }
func (b Box) Uint() uint64   { return uint64(b.i) }
func (b Box) Byte() byte     { return byte(b.i) }
func (b Box) Char() rune     { return rune(b.i) }
func (b Box) State() StateKind { return StateKind(b.i) }
func (b Box) Flags() uint64  { return uint64(b.i) }

func (b Box) Arena() *ArenaObject {
	if b.Tag != PtrArena {
		return nil
	}
	return b.ptr.(*ArenaObject)
}

func (b Box) Heap() *HeapObject {
	if b.Tag != PtrHeap {
		return nil
	}
	return b.ptr.(*HeapObject)
}

// IsState reports whether this box is one of the control-flow sentinels
// that must propagate unchanged through expression contexts (invariant 7).
func (b Box) IsState() bool { return b.Tag == TagState }

// Truthy implements the truthiness rule for `if`/`match`/loop conditions:
// false, zero, and empty values are falsy; everything else is truthy.
func (b Box) Truthy() bool {
	switch b.Tag {
	case TagNull:
		return false
	case TagBool:
		return b.i != 0
	case TagInt, TagUint, TagByte, TagFlags:
		return b.i != 0
	case TagChar:
		return b.i != 0
	case TagFloat:
		return b.UnwrapFloat() != 0
	case PtrArena:
		if o := b.Arena(); o != nil {
			return !o.isEmpty()
		}
		return true
	case PtrHeap:
		if o := b.Heap(); o != nil {
			return !o.isEmpty()
		}
		return true
	default:
		return true
	}
}

// Equal implements tag-aware Box equality used by `match` arms and the `=`
// comparison operator.
func (b Box) Equal(o Box) bool {
	if b.Tag != o.Tag {
		// INT/FLOAT mixed comparisons are allowed by numeric promotion.
		if isNumericTag(b.Tag) && isNumericTag(o.Tag) {
			return numericEqual(b, o)
		}
		return false
	}
	switch b.Tag {
	case TagNull:
		return true
	case TagBool, TagInt, TagUint, TagByte, TagChar, TagState, TagFlags:
		return b.i == o.i
	case TagFloat:
		return b.UnwrapFloat() == o.UnwrapFloat()
	case TagTagSym:
		return b.tagID == o.tagID
	case PtrArena:
		sa, oka := b.Arena().asString()
		sb, okb := o.Arena().asString()
		if oka && okb {
			return sa == sb
		}
		return b.ptr == o.ptr
	case PtrHeap:
		return b.ptr == o.ptr
	case PtrError:
		return b.ptr == o.ptr
	default:
		return b.ptr == o.ptr
	}
}

func isNumericTag(t BoxTag) bool {
	switch t {
	case TagInt, TagUint, TagByte, TagFloat:
		return true
	}
	return false
}

func numericEqual(a, b Box) bool {
	af, _ := numericFloat(a)
	bf, _ := numericFloat(b)
	return af == bf
}

func numericFloat(b Box) (float64, bool) {
	switch b.Tag {
	case TagInt:
		return float64(b.i), true
	case TagUint:
		return float64(uint64(b.i)), true
	case TagByte:
		return float64(byte(b.i)), true
	case TagFloat:
		return float64(b.UnwrapFloat()), true
	default:
		return 0, false
	}
}

// String renders a Box for `log`/diagnostics.
func (b Box) String() string {
	switch b.Tag {
	case TagNull:
		return "null"
	case TagBool:
		return fmt.Sprintf("%v", b.i != 0)
	case TagInt:
		return fmt.Sprintf("%d", b.i)
	case TagUint:
		return fmt.Sprintf("%d", uint64(b.i))
	case TagByte:
		return fmt.Sprintf("%d", byte(b.i))
	case TagChar:
		return string(rune(b.i))
	case TagFloat:
		return fmt.Sprintf("%g", b.UnwrapFloat())
	case TagState:
		return b.State().String()
	case TagTagSym:
		return b.UnwrapTagSymbol()
	case TagFlags:
		return fmt.Sprintf("0x%x", uint64(b.i))
	case PtrArena:
		return b.Arena().String()
	case PtrHeap:
		return b.Heap().String()
	case PtrError:
		return b.AsError().Error()
	default:
		return "<box>"
	}
}

const tagBase = 37
const tagMaxLen = 11
const tagTerminator = 36

func tagDigit(ch byte) (int, bool) {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch - '0'), true
	case ch >= 'A' && ch <= 'Z':
		return int(ch-'A') + 10, true
	default:
		return 0, false
	}
}

func tagChar(d int) byte {
	if d < 10 {
		return byte('0' + d)
	}
	return byte('A' + (d - 10))
}

// EncodeTagSymbol packs an up-to-11-character [A-Z0-9] symbol (optionally
// prefixed with '#') into a base-37 uint64, per spec §3.
func EncodeTagSymbol(name string) (uint64, error) {
	s := strings.TrimPrefix(name, "#")
	if len(s) == 0 || len(s) > tagMaxLen {
		return 0, fmt.Errorf("tag symbol %q must be 1-%d characters", name, tagMaxLen)
	}
	var v uint64
	for i := 0; i < tagMaxLen; i++ {
		digit := uint64(tagTerminator)
		if i < len(s) {
			d, ok := tagDigit(s[i])
			if !ok {
				return 0, fmt.Errorf("tag symbol %q: invalid character %q", name, s[i])
			}
			digit = uint64(d)
		}
		v = v*tagBase + digit
	}
	return v, nil
}

// DecodeTagSymbol reverses EncodeTagSymbol, re-prefixing the result with '#'.
func DecodeTagSymbol(v uint64) string {
	digits := make([]int, tagMaxLen)
	for i := tagMaxLen - 1; i >= 0; i-- {
		digits[i] = int(v % tagBase)
		v /= tagBase
	}
	var sb strings.Builder
	sb.WriteByte('#')
	for _, d := range digits {
		if d == tagTerminator {
			break
		}
		sb.WriteByte(tagChar(d))
	}
	return sb.String()
}
