package alloc

import "github.com/felixjones/tinyheap/heap"

// blockRef indexes a record in the metadata slab.
type blockRef = int32

// nullRef terminates a list.
const nullRef blockRef = -1

// block is one metadata record. It describes memory but never lives in it.
type block struct {
	addr heap.Addr
	size uintptr
	next blockRef
}

func (b *block) end() heap.Addr {
	return b.addr + heap.Addr(b.size)
}

// blockList is a singly linked list threaded through the slab.
type blockList struct {
	head blockRef
	n    int
}

// blockPool is the fixed slab all three lists share.
type blockPool struct {
	blocks []block
}

// newBlockPool allocates n records and links all of them into fresh.
func newBlockPool(n int) (blockPool, blockList) {
	p := blockPool{blocks: make([]block, n)}
	for i := range p.blocks {
		p.blocks[i].next = blockRef(i + 1)
	}
	p.blocks[n-1].next = nullRef
	return p, blockList{head: 0, n: n}
}

func (p *blockPool) at(ref blockRef) *block {
	return &p.blocks[ref]
}

// push links ref at the head of l.
func (p *blockPool) push(l *blockList, ref blockRef) {
	p.blocks[ref].next = l.head
	l.head = ref
	l.n++
}

// pop unlinks the head of l, returning nullRef when l is empty.
func (p *blockPool) pop(l *blockList) blockRef {
	ref := l.head
	if ref == nullRef {
		return nullRef
	}
	l.head = p.blocks[ref].next
	p.blocks[ref].next = nullRef
	l.n--
	return ref
}

// unlink removes ref from l given its predecessor (nullRef for the head).
func (p *blockPool) unlink(l *blockList, prev, ref blockRef) {
	if prev == nullRef {
		l.head = p.blocks[ref].next
	} else {
		p.blocks[prev].next = p.blocks[ref].next
	}
	p.blocks[ref].next = nullRef
	l.n--
}

// find returns the record in l whose address is addr, and its predecessor.
func (p *blockPool) find(l *blockList, addr heap.Addr) (prev, ref blockRef) {
	prev = nullRef
	for ref = l.head; ref != nullRef; prev, ref = ref, p.blocks[ref].next {
		if p.blocks[ref].addr == addr {
			return prev, ref
		}
	}
	return nullRef, nullRef
}

// release clears ref and returns it to fresh.
func (p *blockPool) release(fresh *blockList, ref blockRef) {
	b := &p.blocks[ref]
	b.addr = heap.Nil
	b.size = 0
	p.push(fresh, ref)
}

// walk counts the records reachable from l, giving up after limit steps so
// a corrupted (cyclic) list terminates.
func (p *blockPool) walk(l *blockList, limit int, fn func(*block)) (int, bool) {
	n := 0
	for ref := l.head; ref != nullRef; ref = p.blocks[ref].next {
		if n == limit || ref < 0 || int(ref) >= len(p.blocks) {
			return n, false
		}
		if fn != nil {
			fn(&p.blocks[ref])
		}
		n++
	}
	return n, true
}
