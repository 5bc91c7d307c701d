// Completion: 100% - Containers module complete
//
// This file adapts the teacher's own Vibe67HashMap (a chained hash table
// keyed by a uint64 and dedicated to float64 values) into the general
// StrView -> Box chained hash table spec §4.4 calls the "Fixed dict", plus
// the fixed array and the heap-backed flexible array/dict. The scope chain
// built on FixedDict lives in scope.go.
package main

// ---------------------------------------------------------------------
// Fixed array (arena-backed, fixed capacity)
// ---------------------------------------------------------------------

// FixedArray is an arena-backed array with capacity fixed at creation.
// Pushes beyond capacity fail with a structured error rather than growing
// (spec §4.4).
type FixedArray struct {
	items []Box
	cap   int
}

func NewFixedArray(a *Arena, capacity int) *ArenaObject {
	fa := &FixedArray{items: make([]Box, 0, capacity), cap: capacity}
	o := a.AllocObject(TypeFixedArray, fa)
	o.Capacity = capacity
	o.ElemAlloc = 1
	return o
}

func (fa *FixedArray) Len() int { return len(fa.items) }

// Append pushes v, returning a native error if the array is at capacity.
func (fa *FixedArray) Append(v Box) *ErrorValue {
	if len(fa.items) >= fa.cap {
		return NewNativeError("fixed array capacity exceeded (cap=%d)", fa.cap)
	}
	fa.items = append(fa.items, v)
	return nil
}

func (fa *FixedArray) Get(i int) (Box, bool) {
	if i < 0 || i >= len(fa.items) {
		return Box{}, false
	}
	return fa.items[i], true
}

func (fa *FixedArray) Set(i int, v Box) bool {
	if i < 0 || i >= len(fa.items) {
		return false
	}
	fa.items[i] = v
	return true
}

// WeakUnset replaces the slot with NULL without shrinking the array.
func (fa *FixedArray) WeakUnset(i int) bool {
	if i < 0 || i >= len(fa.items) {
		return false
	}
	fa.items[i] = BoxNull()
	return true
}

// RemoveOrdered removes index i, shifting subsequent elements down.
func (fa *FixedArray) RemoveOrdered(i int) bool {
	if i < 0 || i >= len(fa.items) {
		return false
	}
	fa.items = append(fa.items[:i], fa.items[i+1:]...)
	return true
}

// RemoveUnordered removes index i by swapping with the last element.
func (fa *FixedArray) RemoveUnordered(i int) bool {
	n := len(fa.items)
	if i < 0 || i >= n {
		return false
	}
	fa.items[i] = fa.items[n-1]
	fa.items = fa.items[:n-1]
	return true
}

func (fa *FixedArray) Each(fn func(int, Box)) {
	for i, v := range fa.items {
		fn(i, v)
	}
}

func (fa *FixedArray) String() string {
	s := "["
	for i, v := range fa.items {
		if i > 0 {
			s += ", "
		}
		s += v.String()
	}
	return s + "]"
}

// ---------------------------------------------------------------------
// Fixed dict: chained hash table
// ---------------------------------------------------------------------

// dictEntry is one bucket-chain link. The hash is memoized per invariant 3.
type dictEntry struct {
	hash  uint64
	key   StrView
	value Box
	next  *dictEntry
}

// FixedDict is a chained hash table keyed by StrView, grounded on the
// teacher's Vibe67HashMap (hashmap.go): the same bucket-array-plus-chain
// shape, generalized from a fixed uint64->float64 mapping to StrView->Box.
type FixedDict struct {
	buckets []*dictEntry
	count   int
}

func newFixedDictBuckets(initialSize int) []*dictEntry {
	if initialSize < 16 {
		initialSize = 16
	}
	return make([]*dictEntry, initialSize)
}

func NewFixedDict(a *Arena, initialSize int) *ArenaObject {
	fd := &FixedDict{buckets: newFixedDictBuckets(initialSize)}
	o := a.AllocObject(TypeFixedDict, fd)
	o.Capacity = len(fd.buckets)
	return o
}

func (d *FixedDict) bucketIndex(hash uint64) int { return int(hash % uint64(len(d.buckets))) }

// Insert overwrites any existing entry with an equal key.
func (d *FixedDict) Insert(key StrView, value Box) {
	h := key.Hash()
	idx := d.bucketIndex(h)
	for e := d.buckets[idx]; e != nil; e = e.next {
		if e.hash == h && e.key.Equal(key) {
			e.value = value
			return
		}
	}
	d.buckets[idx] = &dictEntry{hash: h, key: key, value: value, next: d.buckets[idx]}
	d.count++
}

// Find walks the chain for key, returning (value, true) on a hit.
func (d *FixedDict) Find(key StrView) (Box, bool) {
	h := key.Hash()
	idx := d.bucketIndex(h)
	for e := d.buckets[idx]; e != nil; e = e.next {
		if e.hash == h && e.key.Equal(key) {
			return e.value, true
		}
	}
	return Box{}, false
}

// Remove unlinks the entry for key, returning the removed entry's value.
func (d *FixedDict) Remove(key StrView) (Box, bool) {
	h := key.Hash()
	idx := d.bucketIndex(h)
	var prev *dictEntry
	for e := d.buckets[idx]; e != nil; e = e.next {
		if e.hash == h && e.key.Equal(key) {
			if prev == nil {
				d.buckets[idx] = e.next
			} else {
				prev.next = e.next
			}
			d.count--
			return e.value, true
		}
		prev = e
	}
	return Box{}, false
}

func (d *FixedDict) Len() int { return d.count }

// each iterates entries in bucket storage order, per spec §4.4.
func (d *FixedDict) each(fn func(StrView, Box)) {
	for _, head := range d.buckets {
		for e := head; e != nil; e = e.next {
			fn(e.key, e.value)
		}
	}
}

func (d *FixedDict) String() string {
	s := "{"
	first := true
	d.each(func(k StrView, v Box) {
		if !first {
			s += ", "
		}
		first = false
		s += k.String() + ": " + v.String()
	})
	return s + "}"
}

// ---------------------------------------------------------------------
// Flexible array: heap-allocated, growable
// ---------------------------------------------------------------------

type FlexibleArray struct {
	items []Box
}

func NewFlexibleArray(h *Heap, roots RootProvider) *HeapObject {
	fa := &FlexibleArray{}
	return h.Alloc(TypeGrowableArray, 0, fa, roots)
}

func (fa *FlexibleArray) Len() int { return len(fa.items) }

func (fa *FlexibleArray) Push(v Box) { fa.items = append(fa.items, v) }

func (fa *FlexibleArray) Get(i int) (Box, bool) {
	if i < 0 || i >= len(fa.items) {
		return Box{}, false
	}
	return fa.items[i], true
}

func (fa *FlexibleArray) Set(i int, v Box) bool {
	if i < 0 || i >= len(fa.items) {
		return false
	}
	fa.items[i] = v
	return true
}

func (fa *FlexibleArray) String() string {
	s := "["
	for i, v := range fa.items {
		if i > 0 {
			s += ", "
		}
		s += v.String()
	}
	return s + "]"
}

// ---------------------------------------------------------------------
// Flexible dict: heap-allocated, open addressing with linear probing
// ---------------------------------------------------------------------

type flexSlot struct {
	used  bool
	key   StrView
	value Box
}

// FlexibleDict is an open-addressed hash table that rehashes into a larger
// table (next prime capacity) once it is half full. Unlike FixedDict's
// canonical FNV-1a key hash, the probe sequence here is seeded by
// github.com/dolthub/maphash (carried from flier-goutil's own
// pkg/arena/swiss map, an open-addressing table keyed the same way): a
// second, faster hash is appropriate here because probe placement has no
// externally observable contract, whereas FixStr_hash (used for dict-key
// equality elsewhere) does.
type FlexibleDict struct {
	slots []flexSlot
	count int
	seed  maphashSeed
}

func NewFlexibleDict(h *Heap, roots RootProvider) *HeapObject {
	fd := &FlexibleDict{slots: make([]flexSlot, 17), seed: newMaphashSeed()}
	return h.Alloc(TypeGrowableDict, 0, fd, roots)
}

func (d *FlexibleDict) probe(key StrView) int {
	h := probeHash(d.seed, key)
	return int(h % uint64(len(d.slots)))
}

func (d *FlexibleDict) Insert(key StrView, value Box) {
	if d.count*2 >= len(d.slots) {
		d.rehash(nextPrimeCapacity(len(d.slots) * 2))
	}
	idx := d.probe(key)
	for {
		s := &d.slots[idx]
		if !s.used {
			*s = flexSlot{used: true, key: key, value: value}
			d.count++
			return
		}
		if s.key.Equal(key) {
			s.value = value
			return
		}
		idx = (idx + 1) % len(d.slots)
	}
}

func (d *FlexibleDict) Find(key StrView) (Box, bool) {
	if len(d.slots) == 0 {
		return Box{}, false
	}
	idx := d.probe(key)
	for start := idx; ; {
		s := &d.slots[idx]
		if !s.used {
			return Box{}, false
		}
		if s.key.Equal(key) {
			return s.value, true
		}
		idx = (idx + 1) % len(d.slots)
		if idx == start {
			return Box{}, false
		}
	}
}

func (d *FlexibleDict) rehash(newSize int) {
	old := d.slots
	d.slots = make([]flexSlot, newSize)
	d.count = 0
	for _, s := range old {
		if s.used {
			d.Insert(s.key, s.value)
		}
	}
}

func (d *FlexibleDict) each(fn func(StrView, Box)) {
	for _, s := range d.slots {
		if s.used {
			fn(s.key, s.value)
		}
	}
}

func (d *FlexibleDict) String() string {
	s := "{"
	first := true
	d.each(func(k StrView, v Box) {
		if !first {
			s += ", "
		}
		first = false
		s += k.String() + ": " + v.String()
	})
	return s + "}"
}
