// Completion: 100% - Arena allocator complete
package main

import (
	"fmt"
	"runtime"
)

// Lifetime tags an arena (and the objects allocated from it) for debugging
// and allocator-selection policy, per spec §4.2.
type Lifetime uint8

const (
	LifetimeAuto Lifetime = iota
	LifetimeForever
	LifetimeModule
	LifetimeFunction
	LifetimeThread
)

func (l Lifetime) String() string {
	switch l {
	case LifetimeAuto:
		return "auto"
	case LifetimeForever:
		return "forever"
	case LifetimeModule:
		return "module"
	case LifetimeFunction:
		return "function"
	case LifetimeThread:
		return "thread"
	default:
		return "unknown"
	}
}

// TypeCode identifies the concrete shape of an arena- or heap-allocated
// object, stored in its ObjectHeader (spec §3, "Concrete type codes").
type TypeCode uint8

const (
	TypeNone TypeCode = iota
	TypeStringBuf
	TypeFixedArray
	TypeFixedDict
	TypeDictEntry
	TypeScope
	TypeStructTemplate
	TypeNumericVec
	TypeGrowableArray
	TypeGrowableDict
	TypeObjectInstance
	TypeFunctionRecord
	TypeGeneratorRecord
	TypeErrorValue
)

// ObjectHeader is the metadata prefix every boxed object carries, per
// spec §3 ("Metadata header"). alloc_size is the number of bytes backing
// the payload (for arena objects) or reserved for it (for heap objects);
// elemAlloc is the per-element size for container types.
type ObjectHeader struct {
	Size      int
	Capacity  int
	ElemAlloc int
	Type      TypeCode
	Lifetime  Lifetime
	live      bool
	mark      bool // GC mark bit; meaningless for arena objects
	next      int  // free-list thread index; -1 when not on a free list
}

func newHeader(t TypeCode, lt Lifetime) ObjectHeader {
	return ObjectHeader{Type: t, Lifetime: lt, live: true, next: -1}
}

// ArenaObject is the shared embedding for every value an Arena hands out
// through AllocObject: a header plus the concrete payload. Go's own GC
// keeps the memory alive for as long as anything (including the owning
// Arena) references it. Reset clears the header's "live" flag, but Box
// accessors and the evaluator do not check it, so a reference held across
// a Reset still reaches the old payload.
type ArenaObject struct {
	ObjectHeader
	owner   *Arena
	payload any // *stringBuf, *FixedArray, *FixedDict, *Scope, *StructTemplate, ...
}

func (o *ArenaObject) isEmpty() bool {
	switch p := o.payload.(type) {
	case *stringBuf:
		return len(p.s) == 0
	case *FixedArray:
		return len(p.items) == 0
	case *FixedDict:
		return p.count == 0
	default:
		return false
	}
}

func (o *ArenaObject) asString() (string, bool) {
	if p, ok := o.payload.(*stringBuf); ok {
		return p.s, true
	}
	return "", false
}

func (o *ArenaObject) String() string {
	switch p := o.payload.(type) {
	case *stringBuf:
		return p.s
	case fmt.Stringer:
		return p.String()
	default:
		return fmt.Sprintf("<%v>", o.Type)
	}
}

// stringBuf is the payload for a PtrArena box wrapping a boxed string view
// (spec §3, concrete type "string view").
type stringBuf struct{ s string }

// arenaBlock is one bump-allocated chunk. blocks are never resized; a new
// one is appended when the current block cannot satisfy a request.
type arenaBlock struct {
	mem  []byte
	used int
}

// Arena is a single-owner bump allocator, per spec §4.2. It holds a dynamic
// vector of fixed-size blocks plus their sizes; Reset rewinds `used` to
// zero without releasing blocks, and FreeUnderlying releases everything.
type Arena struct {
	Lifetime   Lifetime
	blockSize  int
	blocks     []*arenaBlock
	objects    []*ArenaObject // everything allocated via AllocObject, for Reset/FreeUnderlying bookkeeping
	totalUsed  int
}

// DefaultArenaBlockSize is the size of a freshly appended block when an
// allocation does not itself exceed it.
const DefaultArenaBlockSize = 64 * 1024

// NewArena creates an arena tagged with the given lifetime class.
func NewArena(lt Lifetime) *Arena {
	return &Arena{Lifetime: lt, blockSize: DefaultArenaBlockSize}
}

// NewArenaSize creates an arena whose blocks are at least blockSize bytes.
// No block is allocated before the first Alloc, and newBlock never makes a
// block smaller than 4096 bytes.
func NewArenaSize(lt Lifetime, blockSize int) *Arena {
	if blockSize <= 0 {
		blockSize = DefaultArenaBlockSize
	}
	return &Arena{Lifetime: lt, blockSize: blockSize}
}

func alignUp8(n int) int { return (n + 7) &^ 7 }

// newBlock allocates a raw block of at least size bytes. On platforms where
// golang.org/x/sys exposes anonymous mmap (the teacher's own native arena
// runtime does the same for the *compiled* program's arenas; here we do the
// analogous thing for the host interpreter's own arena), the block is
// backed by an mmap'd page so FreeUnderlying can give it back to the OS
// immediately rather than waiting on Go's GC. Elsewhere we fall back to a
// plain make([]byte, size).
func newBlock(size int) *arenaBlock {
	if size < 4096 {
		size = 4096
	}
	if mem, ok := mmapAnon(size); ok {
		return &arenaBlock{mem: mem}
	}
	return &arenaBlock{mem: make([]byte, size)}
}

func releaseBlock(b *arenaBlock) {
	if !munmapAnon(b.mem) {
		b.mem = nil
	}
}

// Alloc reserves size bytes, 8-byte aligned, from the current block,
// growing the arena with a new block if necessary.
func (a *Arena) Alloc(size int) []byte {
	aligned := alignUp8(size)
	if len(a.blocks) > 0 {
		cur := a.blocks[len(a.blocks)-1]
		if cur.used+aligned <= len(cur.mem) {
			start := cur.used
			cur.used += aligned
			a.totalUsed += aligned
			return cur.mem[start : start+size : start+aligned]
		}
	}
	newSize := a.blockSize
	if aligned > newSize {
		newSize = aligned
	}
	block := newBlock(newSize)
	a.blocks = append(a.blocks, block)
	block.used = aligned
	a.totalUsed += aligned
	return block.mem[0:size:aligned]
}

// AllocObject allocates a Go-managed object (not backed by the byte-block
// storage) and pins it to the arena's lifetime via the objects list, giving
// it an ObjectHeader and liveness tracking per spec §3/§4.2. This is the
// "arena owns storage, callers hold typed references with the arena's
// lifetime" translation recommended in spec §9 design notes, used for
// every container/record type that isn't raw bytes (scopes, dicts,
// fixed arrays, struct templates).
func (a *Arena) AllocObject(t TypeCode, payload any) *ArenaObject {
	o := &ArenaObject{
		ObjectHeader: newHeader(t, a.Lifetime),
		owner:        a,
		payload:      payload,
	}
	a.objects = append(a.objects, o)
	return o
}

// Used returns the number of bytes bump-allocated since the last Reset.
func (a *Arena) Used() int { return a.totalUsed }

// Reset rewinds the arena to empty without releasing its blocks, per spec
// §4.2. Every ArenaObject allocated from it is marked dead (live=false);
// nothing in Box or the evaluator checks that flag before dereferencing.
func (a *Arena) Reset() {
	for _, b := range a.blocks {
		b.used = 0
	}
	for _, o := range a.objects {
		o.live = false
	}
	a.objects = a.objects[:0]
	a.totalUsed = 0
	runtime.KeepAlive(a)
}

// FreeUnderlying releases all blocks. The arena itself remains usable (a
// subsequent Alloc grows a fresh block), matching "free-underlying releases
// all blocks" rather than destroying the Arena value.
func (a *Arena) FreeUnderlying() {
	for _, b := range a.blocks {
		releaseBlock(b)
	}
	a.blocks = nil
	a.Reset()
}

// Free is the arena-wide no-op required by spec §4.2 ("An arena-wide
// free(ptr) is a no-op by contract"); individual allocations are never
// released piecemeal.
func (a *Arena) Free(ptr []byte) {}

// Save serializes the concatenated, in-use bytes of every block, for
// snapshot tests (spec §4.2 "Save/load").
func (a *Arena) Save() []byte {
	out := make([]byte, 0, a.totalUsed)
	for _, b := range a.blocks {
		out = append(out, b.mem[:b.used]...)
	}
	return out
}

// Load replaces the arena's contents with a single block holding data,
// with `used` set to len(data). This is the inverse of Save for snapshot
// round-tripping; it does not attempt to recover the original block
// boundaries, which Save does not preserve either.
func (a *Arena) Load(data []byte) {
	a.FreeUnderlying()
	block := newBlock(len(data))
	copy(block.mem, data)
	block.used = len(data)
	a.blocks = []*arenaBlock{block}
	a.totalUsed = len(data)
}
