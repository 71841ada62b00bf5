package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixjones/tinyheap/heap"
)

func TestCoalesce_ThreeNeighbours(t *testing.T) {
	a, _ := newTestTiny(t, testBase, testLimit, nil)

	pa := mustAlloc(t, a, 64)
	pb := mustAlloc(t, a, 64)
	pc := mustAlloc(t, a, 64)
	pd := mustAlloc(t, a, 64)

	require.NoError(t, a.Free(pa))
	require.NoError(t, a.Free(pc))
	assert.Equal(t, []Block{{Addr: 0x1000, Size: 64}, {Addr: 0x1080, Size: 64}}, a.Snapshot().Free)
	assertInvariants(t, a)

	require.NoError(t, a.Free(pb))
	assert.Equal(t, []Block{{Addr: 0x1000, Size: 192}}, a.Snapshot().Free)
	assert.Equal(t, 2, a.Stats().Merges)
	assert.Equal(t, 6, a.FreshBlockCount(), "absorbed records return to fresh")
	assertInvariants(t, a)

	require.NoError(t, a.Free(pd))
	assert.Empty(t, a.Snapshot().Free)
	assert.Equal(t, testBase, a.Top())
	assert.Equal(t, 8, a.FreshBlockCount())
	assert.Equal(t, 1, a.Stats().TopTrims)
	assertInvariants(t, a)
}

func TestCoalesce_OrderIndependent(t *testing.T) {
	orders := [][]int{
		{0, 1, 2},
		{2, 1, 0},
		{1, 0, 2},
		{1, 2, 0},
		{0, 2, 1},
		{2, 0, 1},
	}

	for _, order := range orders {
		a, _ := newTestTiny(t, testBase, testLimit, nil)
		var ptrs [3]heap.Addr
		for i := range ptrs {
			ptrs[i] = mustAlloc(t, a, 32)
		}
		mustAlloc(t, a, 16) // guard keeps the run off top

		for _, i := range order {
			require.NoError(t, a.Free(ptrs[i]))
			assertInvariants(t, a)
		}
		assert.Equal(t, []Block{{Addr: 0x1000, Size: 96}}, a.Snapshot().Free, "order %v", order)
	}
}

func TestCoalesce_GapPreventsMerge(t *testing.T) {
	a, _ := newTestTiny(t, testBase, testLimit, nil)

	p1 := mustAlloc(t, a, 32)
	mustAlloc(t, a, 4)
	p3 := mustAlloc(t, a, 32)
	mustAlloc(t, a, 4)

	require.NoError(t, a.Free(p1))
	require.NoError(t, a.Free(p3))
	assert.Len(t, a.Snapshot().Free, 2)
	assert.Zero(t, a.Stats().Merges)
	assertInvariants(t, a)
}

func TestCoalesce_SplitAfterMerge(t *testing.T) {
	a, _ := newTestTiny(t, testBase, testLimit, nil)

	p1 := mustAlloc(t, a, 128)
	p2 := mustAlloc(t, a, 64)
	mustAlloc(t, a, 16)

	require.NoError(t, a.Free(p2))
	require.NoError(t, a.Free(p1))
	require.Equal(t, []Block{{Addr: 0x1000, Size: 192}}, a.Snapshot().Free)

	q := mustAlloc(t, a, 32)
	assert.Equal(t, p1, q)
	assert.Equal(t, []Block{{Addr: 0x1020, Size: 160}}, a.Snapshot().Free)
	assertInvariants(t, a)
}
