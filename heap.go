// Completion: 100% - GC heap complete
package main

import "fmt"

// HeapObject is a GC-tracked allocation: an ObjectHeader plus a payload,
// threaded onto the heap's free list via ObjectHeader.next when swept.
type HeapObject struct {
	ObjectHeader
	owner   *Heap
	payload any // *FlexibleArray, *FlexibleDict, *FunctionRecord, *GeneratorRecord, *ObjectInstance, *NumericVec
}

func (o *HeapObject) isEmpty() bool {
	switch p := o.payload.(type) {
	case *FlexibleArray:
		return len(p.items) == 0
	case *FlexibleDict:
		return p.count == 0
	default:
		return false
	}
}

func (o *HeapObject) String() string {
	if s, ok := o.payload.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("<%v>", o.Type)
}

// primeCapacities is the fixed table of growth sizes the heap's handle
// vector advances through, per spec §4.3 ("extend the handle vector (next
// prime capacity from a fixed table)").
var primeCapacities = []int{17, 37, 79, 163, 331, 673, 1361, 2729, 5471, 10949, 21911, 43853, 87719, 175447}

func nextPrimeCapacity(atLeast int) int {
	for _, p := range primeCapacities {
		if p >= atLeast {
			return p
		}
	}
	return atLeast * 2
}

// Heap is a growable pool of GC-tracked objects with an intrusive free list
// and a byte-threshold-triggered mark-and-sweep collector, per spec §4.3.
type Heap struct {
	objects     []*HeapObject
	freeHead    int // index into objects, or -1
	bytesLive   int
	threshold   int
	collections int
}

// DefaultGCThreshold is the number of bytes allocated since the last
// collection that triggers the next one.
const DefaultGCThreshold = 1 << 20

func NewHeap() *Heap {
	return &Heap{freeHead: -1, threshold: DefaultGCThreshold}
}

// RootProvider supplies the evaluator's live roots to the collector: the
// current scope chain and any in-flight values the native calling
// convention is holding (spec §4.3, "Mark roots").
type RootProvider func(mark func(Box))

// Alloc allocates a heap object of the given size class. If the free list
// is non-empty its head entry is popped and reinitialized (step 1 of §4.3);
// otherwise the handle vector is extended to the next prime capacity
// (step 2) and a fresh object appended. A collection runs first if the
// byte threshold has been crossed — collection never happens "mid
// allocation" (spec §4.3/§5): roots is consulted, if non-nil, strictly
// before bytesLive is mutated for this call.
func (h *Heap) Alloc(t TypeCode, size int, payload any, roots RootProvider) *HeapObject {
	if h.bytesLive+size > h.threshold && roots != nil {
		h.Collect(roots)
	}
	if h.freeHead >= 0 {
		idx := h.freeHead
		o := h.objects[idx]
		h.freeHead = o.next
		o.ObjectHeader = newHeader(t, LifetimeAuto)
		o.payload = payload
		o.ObjectHeader.Size = size
		h.bytesLive += size
		return o
	}
	if cap(h.objects) <= len(h.objects) {
		newCap := nextPrimeCapacity(len(h.objects) + 1)
		grown := make([]*HeapObject, len(h.objects), newCap)
		copy(grown, h.objects)
		h.objects = grown
	}
	o := &HeapObject{ObjectHeader: newHeader(t, LifetimeAuto), owner: h, payload: payload}
	o.ObjectHeader.Size = size
	h.objects = append(h.objects, o)
	h.bytesLive += size
	return o
}

// Collect runs one mark-and-sweep pass. Mark roots via the provided
// RootProvider, then sweep every object whose mark bit is still false onto
// the free list. The collector never moves objects and never runs while a
// native call is mid-execution against a raw payload pointer, because the
// only entry point is Alloc, called only between native calls by the
// calling convention (spec §4.3/§5).
func (h *Heap) Collect(roots RootProvider) {
	for _, o := range h.objects {
		if o.live {
			o.mark = false
		}
	}
	if roots != nil {
		roots(func(b Box) { h.markBox(b) })
	}
	liveBytes := 0
	for _, o := range h.objects {
		if !o.live {
			continue
		}
		if o.mark {
			liveBytes += o.Size
			continue
		}
		o.live = false
		o.payload = nil
		o.next = h.freeHead
		h.freeHead = objectIndex(h.objects, o)
	}
	h.bytesLive = liveBytes
	h.collections++
}

func objectIndex(objs []*HeapObject, target *HeapObject) int {
	for i, o := range objs {
		if o == target {
			return i
		}
	}
	return -1
}

func (h *Heap) markBox(b Box) {
	if b.Tag != PtrHeap {
		return
	}
	o := b.Heap()
	if o == nil || !o.live || o.mark {
		return
	}
	o.mark = true
	switch p := o.payload.(type) {
	case *FlexibleArray:
		for _, v := range p.items {
			h.markBox(v)
		}
	case *FlexibleDict:
		p.each(func(_ StrView, v Box) { h.markBox(v) })
	case *FunctionRecord:
		if p.Captured != nil {
			h.markScope(p.Captured)
		}
	case *GeneratorRecord:
		if p.Scope != nil {
			h.markScope(p.Scope)
		}
	case *ObjectInstance:
		if p.Fields != nil {
			h.markScope(p.Fields)
		}
	}
}

func (h *Heap) markScope(s *Scope) {
	for cur := s; cur != nil; cur = cur.parent {
		cur.dict.each(func(_ StrView, v Box) { h.markBox(v) })
	}
}

// Stats reports the live object count and bytes, useful for tests
// asserting the GC-safety invariant in spec §8.
func (h *Heap) Stats() (liveObjects, bytesLive int) {
	for _, o := range h.objects {
		if o.live {
			liveObjects++
		}
	}
	return liveObjects, h.bytesLive
}
