package alloc

import (
	"github.com/cockroachdb/errors"

	"github.com/felixjones/tinyheap/heap"
	"github.com/felixjones/tinyheap/internal/buf"
)

// Realloc moves the allocation at ptr into a new block of size bytes.
//
// The new block is always allocated before the old one is released, even
// when the old block could grow in place, so the two never overlap. The copy
// is clamped to the smaller block. On failure the old block is untouched.
func (t *Tiny) Realloc(ptr heap.Addr, size uintptr) (heap.Addr, error) {
	if ptr == heap.Nil {
		return t.Alloc(size)
	}
	t.stats.ReallocCalls++

	if _, old := t.pool.find(&t.used, ptr); old == nullRef {
		if err := t.invalidFree("realloc", ptr); err != nil {
			return heap.Nil, err
		}
		// Lenient: the unknown pointer is dropped and a fresh block returned.
		return t.Alloc(size)
	}
	if !t.r.Backed() {
		return heap.Nil, errors.Wrapf(ErrNoBacking, "realloc 0x%X", ptr)
	}

	ref, err := t.alloc(size)
	if err != nil {
		return heap.Nil, t.fail(size, err)
	}
	nb := t.pool.at(ref)
	t.poison(nb, PoisonAlloc)

	prev, old := t.pool.find(&t.used, ptr)
	ob := t.pool.at(old)
	t.copyBytes(nb.addr, ob.addr, min(ob.size, nb.size))

	t.pool.unlink(&t.used, prev, old)
	t.releaseBlock(old)
	return nb.addr, nil
}

// Calloc allocates count*size bytes and zero-fills the whole block.
func (t *Tiny) Calloc(count, size uintptr) (heap.Addr, error) {
	t.stats.CallocCalls++

	total, ok := buf.MulOverflowSafe(count, size)
	if !ok {
		return heap.Nil, errors.Wrapf(ErrSizeOverflow, "calloc %d * %d", count, size)
	}
	if !t.r.Backed() {
		return heap.Nil, errors.Wrap(ErrNoBacking, "calloc")
	}

	ref, err := t.alloc(total)
	if err != nil {
		return heap.Nil, t.fail(total, err)
	}
	b := t.pool.at(ref)
	if err := t.r.Zero(b.addr, b.size); err != nil {
		panic(errors.NewAssertionErrorWithWrappedErrf(err, "calloc: zero block 0x%X", b.addr))
	}
	return b.addr, nil
}

func (t *Tiny) copyBytes(dst, src heap.Addr, n uintptr) {
	if err := t.r.Copy(dst, src, n); err != nil {
		panic(errors.NewAssertionErrorWithWrappedErrf(err, "realloc: copy 0x%X <- 0x%X", dst, src))
	}
}
