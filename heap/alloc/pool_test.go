package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixjones/tinyheap/heap"
)

func contentOfList(p *blockPool, l *blockList) []blockRef {
	var result []blockRef
	for ref := l.head; ref != nullRef; ref = p.blocks[ref].next {
		result = append(result, ref)
	}
	return result
}

func TestNewBlockPool(t *testing.T) {
	p, fresh := newBlockPool(4)

	assert.Equal(t, 4, fresh.n)
	assert.Equal(t, []blockRef{0, 1, 2, 3}, contentOfList(&p, &fresh))
	assert.Equal(t, nullRef, p.blocks[3].next)
}

func TestBlockPool_PushPop(t *testing.T) {
	p, fresh := newBlockPool(3)
	used := blockList{head: nullRef}

	ref := p.pop(&fresh)
	assert.Equal(t, blockRef(0), ref)
	assert.Equal(t, 2, fresh.n)

	p.push(&used, ref)
	p.push(&used, p.pop(&fresh))
	assert.Equal(t, []blockRef{1, 0}, contentOfList(&p, &used))

	p.pop(&fresh)
	assert.Equal(t, nullRef, p.pop(&fresh))
	assert.Equal(t, 0, fresh.n)
}

func TestBlockPool_UnlinkAndFind(t *testing.T) {
	p, fresh := newBlockPool(4)
	used := blockList{head: nullRef}
	for i := range 4 {
		ref := p.pop(&fresh)
		p.at(ref).addr = heap.Addr(0x100 * (i + 1))
		p.push(&used, ref)
	}
	// used: 3(0x400) 2(0x300) 1(0x200) 0(0x100)

	prev, ref := p.find(&used, 0x200)
	assert.Equal(t, blockRef(2), prev)
	assert.Equal(t, blockRef(1), ref)

	p.unlink(&used, prev, ref)
	assert.Equal(t, []blockRef{3, 2, 0}, contentOfList(&p, &used))
	assert.Equal(t, 3, used.n)

	prev, ref = p.find(&used, 0x400)
	assert.Equal(t, nullRef, prev)
	p.unlink(&used, prev, ref)
	assert.Equal(t, []blockRef{2, 0}, contentOfList(&p, &used))

	_, ref = p.find(&used, 0x999)
	assert.Equal(t, nullRef, ref)
}

func TestBlockPool_Release(t *testing.T) {
	p, fresh := newBlockPool(2)
	ref := p.pop(&fresh)
	p.at(ref).addr = 0x1000
	p.at(ref).size = 64

	p.release(&fresh, ref)
	assert.Equal(t, heap.Nil, p.at(ref).addr)
	assert.Zero(t, p.at(ref).size)
	assert.Equal(t, ref, fresh.head)
	assert.Equal(t, 2, fresh.n)
}

func TestBlockPool_WalkDetectsCycle(t *testing.T) {
	p, fresh := newBlockPool(3)
	n, ok := p.walk(&fresh, 3, nil)
	require.True(t, ok)
	assert.Equal(t, 3, n)

	p.blocks[2].next = 0
	_, ok = p.walk(&fresh, 3, nil)
	assert.False(t, ok)
}
