package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedDictInsertFindRemove(t *testing.T) {
	a := NewArena(LifetimeAuto)
	o := NewFixedDict(a, 16)
	d := o.payload.(*FixedDict)

	k := NewStrView("alpha")
	d.Insert(k, BoxInt(1))
	v, ok := d.Find(k)
	require.True(t, ok)
	assert.Equal(t, int64(1), v.Int())

	d.Insert(k, BoxInt(2))
	v, ok = d.Find(k)
	require.True(t, ok)
	assert.Equal(t, int64(2), v.Int(), "re-insert with an equal key overwrites")

	removed, ok := d.Remove(k)
	require.True(t, ok)
	assert.Equal(t, int64(2), removed.Int())
	_, ok = d.Find(k)
	assert.False(t, ok)
}

func TestFixedDictEqualByteIdenticalKeysHashTheSame(t *testing.T) {
	a := NewStrView("same-bytes")
	b := NewStrView("same-bytes")
	assert.Equal(t, a.Hash(), b.Hash(), "byte-identical StrViews must hash identically")
}

func TestFixedArrayCapacityEnforced(t *testing.T) {
	a := NewArena(LifetimeAuto)
	o := NewFixedArray(a, 2)
	fa := o.payload.(*FixedArray)
	assert.Nil(t, fa.Append(BoxInt(1)))
	assert.Nil(t, fa.Append(BoxInt(2)))
	err := fa.Append(BoxInt(3))
	assert.NotNil(t, err, "appending past capacity must fail")
}

func TestFixedArrayRemoveOrderedPreservesOrder(t *testing.T) {
	a := NewArena(LifetimeAuto)
	o := NewFixedArray(a, 3)
	fa := o.payload.(*FixedArray)
	fa.Append(BoxInt(1))
	fa.Append(BoxInt(2))
	fa.Append(BoxInt(3))
	fa.RemoveOrdered(0)
	v0, _ := fa.Get(0)
	v1, _ := fa.Get(1)
	assert.Equal(t, int64(2), v0.Int())
	assert.Equal(t, int64(3), v1.Int())
}

func TestFlexibleDictGrowsAndKeepsAllEntries(t *testing.T) {
	h := NewHeap()
	o := NewFlexibleDict(h, nil)
	d := o.payload.(*FlexibleDict)

	for i := 0; i < 100; i++ {
		d.Insert(NewStrView(keyName(i)), BoxInt(int64(i)))
	}
	for i := 0; i < 100; i++ {
		v, ok := d.Find(NewStrView(keyName(i)))
		require.True(t, ok, "missing key %d after growth", i)
		assert.Equal(t, int64(i), v.Int())
	}
}

func keyName(i int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	return string(letters[i%len(letters)]) + string(rune('0'+i/len(letters)))
}

func TestFlexibleArrayPushGetSet(t *testing.T) {
	h := NewHeap()
	o := NewFlexibleArray(h, nil)
	fa := o.payload.(*FlexibleArray)
	fa.Push(BoxInt(10))
	fa.Push(BoxInt(20))
	require.Equal(t, 2, fa.Len())
	ok := fa.Set(0, BoxInt(99))
	require.True(t, ok)
	v, _ := fa.Get(0)
	assert.Equal(t, int64(99), v.Int())
}

func TestHeapCollectSweepsUnreachableObjects(t *testing.T) {
	h := NewHeap()
	kept := NewFlexibleArray(h, nil)
	discarded := NewFlexibleArray(h, nil)
	_ = discarded

	roots := func(mark func(Box)) {
		mark(BoxHeap(kept))
	}
	liveBefore, _ := h.Stats()
	assert.Equal(t, 2, liveBefore)

	h.Collect(roots)

	liveAfter, _ := h.Stats()
	assert.Equal(t, 1, liveAfter, "only the rooted object should survive collection")
}

func TestHeapCollectKeepsTransitivelyReachableValues(t *testing.T) {
	h := NewHeap()
	inner := NewFlexibleArray(h, nil)
	inner.payload.(*FlexibleArray).Push(BoxInt(42))
	outer := NewFlexibleArray(h, nil)
	outer.payload.(*FlexibleArray).Push(BoxHeap(inner))

	roots := func(mark func(Box)) { mark(BoxHeap(outer)) }
	h.Collect(roots)

	live, _ := h.Stats()
	assert.Equal(t, 2, live, "inner array reachable through outer must survive")
}
