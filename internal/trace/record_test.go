package trace

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordCleanResetsEverything(t *testing.T) {
	rec := NewRecord(nil)
	rec.state = stateOpen
	rec.classID = 5
	rec.methodID = 6
	rec.signatureID = 7
	rec.timeNS = 1234
	rec.calls = 3
	rec.errors = 1
	rec.exception = errors.New("boom")
	rec.SetAttr(1, "value")
	rec.MarkFlag(FlagTraceBegin)
	rec.MarkOverflow()
	rec.SetMarker(NewMarker(nil, rec, 9, 0, 0))
	rec.AddChild(NewRecord(nil))

	rec.Clean()

	assert.True(t, rec.IsEmpty())
	assert.Equal(t, int32(0), rec.ClassID())
	assert.Equal(t, int64(0), rec.Time())
	assert.Equal(t, int64(0), rec.Calls())
	assert.Equal(t, int64(0), rec.Errors())
	assert.Nil(t, rec.Exception())
	assert.Nil(t, rec.Marker())
	assert.Nil(t, rec.Parent())
	assert.Empty(t, rec.Children())
	assert.False(t, rec.HasFlag(FlagTraceBegin))
	assert.False(t, rec.HasOverflow())
	_, ok := rec.Attr(1)
	assert.False(t, ok)
}

func TestRecordCleanIsIdempotent(t *testing.T) {
	rec := NewRecord(nil)
	rec.state = stateOpen
	rec.classID = 5
	rec.Clean()
	rec.Clean()
	assert.True(t, rec.IsEmpty())
}

func TestAddChildReparents(t *testing.T) {
	parent := NewRecord(nil)
	orphan := NewRecord(nil)

	parent.AddChild(orphan)

	require.Len(t, parent.Children(), 1)
	assert.Same(t, parent, orphan.Parent())
	assert.Same(t, orphan, parent.Children()[0])
}

func TestAttrsCreatedLazily(t *testing.T) {
	rec := NewRecord(nil)
	assert.Nil(t, rec.attrs)

	rec.SetAttr(3, 42)
	v, ok := rec.Attr(3)
	require.True(t, ok)
	assert.Equal(t, 42, v)

	seen := map[int32]any{}
	rec.EachAttr(func(id int32, val any) { seen[id] = val })
	assert.Equal(t, map[int32]any{3: 42}, seen)
}

func TestFlags(t *testing.T) {
	rec := NewRecord(nil)

	assert.False(t, rec.HasFlag(FlagTraceBegin))
	rec.MarkFlag(FlagTraceBegin)
	assert.True(t, rec.HasFlag(FlagTraceBegin))

	assert.False(t, rec.HasOverflow())
	rec.MarkOverflow()
	assert.True(t, rec.HasOverflow())
	assert.True(t, rec.HasFlag(FlagTraceBegin|FlagOverflow))
}

func TestActiveMarkerWalksAncestors(t *testing.T) {
	root := NewRecord(nil)
	mid := NewRecord(root)
	leaf := NewRecord(mid)

	assert.Nil(t, leaf.ActiveMarker())
	assert.False(t, leaf.InTrace())

	m := NewMarker(nil, root, 1, 0, 0)
	root.SetMarker(m)

	assert.Same(t, m, leaf.ActiveMarker())
	assert.True(t, leaf.InTrace())

	inner := NewMarker(m, mid, 2, 0, 0)
	mid.SetMarker(inner)

	assert.Same(t, inner, leaf.ActiveMarker())
	assert.Same(t, m, root.ActiveMarker())
}

func TestMarkerFlagMerge(t *testing.T) {
	outer := NewMarker(nil, nil, 1, 0, 100)
	inner := NewMarker(outer, nil, 2, 0, 100)

	inner.MarkOverflow()
	assert.True(t, inner.HasOverflow())
	assert.False(t, outer.HasOverflow())

	outer.MergeFlags(inner.Flags())
	assert.True(t, outer.HasOverflow())
}

func TestMarkerMinTimeMutable(t *testing.T) {
	m := NewMarker(nil, nil, 1, 77, 100)
	assert.Equal(t, int64(100), m.MinTime())
	assert.Equal(t, int64(77), m.Clock())

	m.SetMinTime(500)
	assert.Equal(t, int64(500), m.MinTime())
}

func TestPoolRecyclesRecords(t *testing.T) {
	p := newPool(2)

	rec := p.get()
	rec.state = stateOpen
	rec.classID = 1
	p.put(rec)

	again := p.get()
	assert.Same(t, rec, again)
	assert.True(t, again.IsEmpty())

	// Free list is bounded.
	a, b, c := p.get(), p.get(), p.get()
	p.put(a)
	p.put(b)
	p.put(c)
	assert.Len(t, p.free, 2)
}
