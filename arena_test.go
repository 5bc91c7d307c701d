package main

import "testing"

func TestArenaBasicAllocation(t *testing.T) {
	a := NewArena(LifetimeAuto)
	buf := a.Alloc(100)
	if len(buf) != 100 {
		t.Fatalf("expected 100 bytes, got %d", len(buf))
	}
	if a.Used() == 0 {
		t.Fatal("expected Used() to advance past zero")
	}
}

func TestArenaMultipleAllocations(t *testing.T) {
	a := NewArena(LifetimeAuto)
	a.Alloc(10)
	a.Alloc(20)
	a.Alloc(30)
	if a.Used() < 60 {
		t.Fatalf("expected at least 60 bytes used, got %d", a.Used())
	}
}

func TestArenaGrowth(t *testing.T) {
	a := NewArenaSize(LifetimeAuto, 64)
	buf := a.Alloc(1000)
	if len(buf) != 1000 {
		t.Fatalf("expected a fresh block to satisfy an oversized request, got %d bytes", len(buf))
	}
	if len(a.blocks) < 2 {
		t.Fatalf("expected the initial small block plus a grown block, got %d blocks", len(a.blocks))
	}
}

func TestArenaReset(t *testing.T) {
	a := NewArena(LifetimeFunction)
	o := NewFixedArray(a, 4)
	a.Alloc(16)
	if !o.live {
		t.Fatal("expected a freshly allocated object to be live")
	}
	a.Reset()
	if o.live {
		t.Fatal("expected Reset to mark prior arena objects dead (invariant 2)")
	}
	if a.Used() != 0 {
		t.Fatalf("expected Reset to rewind Used() to zero, got %d", a.Used())
	}
}

func TestArenaFreeUnderlying(t *testing.T) {
	a := NewArena(LifetimeAuto)
	a.Alloc(100)
	a.FreeUnderlying()
	if len(a.blocks) != 0 {
		t.Fatalf("expected FreeUnderlying to release all blocks, got %d remaining", len(a.blocks))
	}
	// the arena stays usable after FreeUnderlying
	buf := a.Alloc(10)
	if len(buf) != 10 {
		t.Fatalf("expected arena to remain usable after FreeUnderlying, got %d bytes", len(buf))
	}
}

func TestArenaSaveLoad(t *testing.T) {
	a := NewArena(LifetimeAuto)
	buf := a.Alloc(5)
	copy(buf, []byte("hello"))
	snapshot := a.Save()

	b := NewArena(LifetimeAuto)
	b.Load(snapshot)
	if b.Used() != len(snapshot) {
		t.Fatalf("expected Load to restore %d used bytes, got %d", len(snapshot), b.Used())
	}
}

func TestArenaAllocObjectHeader(t *testing.T) {
	a := NewArena(LifetimeModule)
	o := NewFixedArray(a, 8)
	if o.Type != TypeFixedArray {
		t.Fatalf("expected TypeFixedArray, got %v", o.Type)
	}
	if o.Capacity != 8 {
		t.Fatalf("expected capacity 8, got %d", o.Capacity)
	}
	if o.Lifetime != LifetimeModule {
		t.Fatalf("expected the object to inherit the arena's lifetime class, got %v", o.Lifetime)
	}
}

func TestArenaStringAllocation(t *testing.T) {
	a := NewArena(LifetimeAuto)
	v := NewArenaString(a, "42")
	if v.String() != "42" {
		t.Fatalf("expected %q, got %q", "42", v.String())
	}
}

func TestArenaFixedArrayAllocation(t *testing.T) {
	a := NewArena(LifetimeAuto)
	o := NewFixedArray(a, 3)
	fa := o.payload.(*FixedArray)
	for _, v := range []int64{1, 2, 3} {
		if err := fa.Append(BoxInt(v)); err != nil {
			t.Fatalf("unexpected append error: %v", err)
		}
	}
	for i, want := range []int64{1, 2, 3} {
		got, ok := fa.Get(i)
		if !ok || got.Int() != want {
			t.Fatalf("index %d: expected %d, got %v (ok=%v)", i, want, got, ok)
		}
	}
}
