package alloc

import (
	"github.com/cockroachdb/errors"

	"github.com/felixjones/tinyheap/heap"
)

// Free releases the block at ptr. Nil is a no-op. Addresses that are not
// allocated follow the configured FreePolicy.
func (t *Tiny) Free(ptr heap.Addr) error {
	if ptr == heap.Nil {
		return nil
	}
	t.stats.FreeCalls++

	prev, ref := t.pool.find(&t.used, ptr)
	if ref == nullRef {
		return t.invalidFree("free", ptr)
	}
	t.pool.unlink(&t.used, prev, ref)
	t.releaseBlock(ref)
	return nil
}

// releaseBlock moves an unlinked used record onto free and restores the
// free list invariants.
func (t *Tiny) releaseBlock(ref blockRef) {
	b := t.pool.at(ref)
	t.stats.BytesInUse -= b.size
	t.poison(b, PoisonFree)

	t.insertSorted(ref)
	t.coalesce()
	if !t.conf.RetainTop {
		t.trimTop()
	}
}

// insertSorted splices ref into free before the first block at a higher or
// equal address.
func (t *Tiny) insertSorted(ref blockRef) {
	addr := t.pool.at(ref).addr

	prev := nullRef
	cur := t.free.head
	for cur != nullRef && t.pool.at(cur).addr < addr {
		prev, cur = cur, t.pool.at(cur).next
	}

	t.pool.at(ref).next = cur
	if prev == nullRef {
		t.free.head = ref
	} else {
		t.pool.at(prev).next = ref
	}
	t.free.n++
}

// coalesce merges every run of exactly adjacent free blocks into the first
// block of the run and returns the absorbed records to fresh.
func (t *Tiny) coalesce() {
	for ref := t.free.head; ref != nullRef; ref = t.pool.at(ref).next {
		b := t.pool.at(ref)

		last := ref
		scan := b.next
		for scan != nullRef && t.pool.at(last).end() == t.pool.at(scan).addr {
			last, scan = scan, t.pool.at(scan).next
		}
		if last == ref {
			continue
		}

		merged := t.pool.at(last).end()
		for c := b.next; c != scan; {
			next := t.pool.at(c).next
			t.free.n--
			t.pool.release(&t.fresh, c)
			t.stats.Merges++
			c = next
		}
		b.next = scan

		if t.debug {
			t.log.Debug("free: coalesce", "addr", b.addr, "from", b.size, "to", uintptr(merged-b.addr))
		}
		b.size = uintptr(merged - b.addr)
	}
}

// trimTop hands a free block that ends at top back to the untouched region.
func (t *Tiny) trimTop() {
	prev, last := nullRef, nullRef
	for ref := t.free.head; ref != nullRef; ref = t.pool.at(ref).next {
		prev, last = last, ref
	}
	if last == nullRef {
		return
	}

	b := t.pool.at(last)
	if b.end() != t.top {
		return
	}
	t.top = b.addr
	t.pool.unlink(&t.free, prev, last)
	t.pool.release(&t.fresh, last)
	t.stats.TopTrims++

	if t.debug {
		t.log.Debug("free: trim top", "top", t.top)
	}
}

// invalidFree applies the FreePolicy to an unknown address.
func (t *Tiny) invalidFree(op string, ptr heap.Addr) error {
	t.stats.InvalidFrees++
	if t.conf.FreePolicy == FreeLenient {
		if t.debug {
			t.log.Debug(op+": ignoring unallocated address", "addr", ptr)
		}
		return nil
	}

	err := errors.Wrapf(ErrInvalidFree, "%s 0x%X", op, ptr)
	t.log.Warn(op+": unallocated address", "addr", ptr)
	if t.conf.OnFailure == FailPanic {
		panic(err)
	}
	return err
}
