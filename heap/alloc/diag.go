package alloc

import "github.com/felixjones/tinyheap/heap"

// FreeBlockCount returns the number of records on the free list.
func (t *Tiny) FreeBlockCount() int { return t.free.n }

// UsedBlockCount returns the number of live allocations.
func (t *Tiny) UsedBlockCount() int { return t.used.n }

// FreshBlockCount returns the number of unused metadata records.
func (t *Tiny) FreshBlockCount() int { return t.fresh.n }

// MaxBlocks returns the size of the metadata pool.
func (t *Tiny) MaxBlocks() int { return t.conf.MaxBlocks }

// Base returns the first managed address.
func (t *Tiny) Base() heap.Addr { return t.base }

// Limit returns the address one past the managed region.
func (t *Tiny) Limit() heap.Addr { return t.limit }

// Top returns the bump cursor.
func (t *Tiny) Top() heap.Addr { return t.top }

// Stats returns a copy of the allocator counters.
func (t *Tiny) Stats() Stats { return t.stats }

// BlockSize returns the recorded size of the live allocation at ptr.
func (t *Tiny) BlockSize(ptr heap.Addr) (uintptr, bool) {
	_, ref := t.pool.find(&t.used, ptr)
	if ref == nullRef {
		return 0, false
	}
	return t.pool.at(ref).size, true
}

// InvariantCheck walks all three lists and reports whether every record is
// accounted for exactly once: free + used + fresh == MaxBlocks, with the
// walked lengths matching the cached counts.
func (t *Tiny) InvariantCheck() bool {
	limit := t.conf.MaxBlocks
	nf, okf := t.pool.walk(&t.free, limit, nil)
	nu, oku := t.pool.walk(&t.used, limit, nil)
	nr, okr := t.pool.walk(&t.fresh, limit, nil)
	if !okf || !oku || !okr {
		return false
	}
	if nf != t.free.n || nu != t.used.n || nr != t.fresh.n {
		return false
	}
	return nf+nu+nr == t.conf.MaxBlocks
}

// Snapshot copies the current lists.
func (t *Tiny) Snapshot() Snapshot {
	s := Snapshot{
		Base:      t.base,
		Limit:     t.limit,
		Top:       t.top,
		Alignment: t.conf.Alignment,
		MaxBlocks: t.conf.MaxBlocks,
		Free:      make([]Block, 0, t.free.n),
		Used:      make([]Block, 0, t.used.n),
	}
	limit := t.conf.MaxBlocks
	t.pool.walk(&t.free, limit, func(b *block) {
		s.Free = append(s.Free, Block{Addr: b.addr, Size: b.size})
	})
	t.pool.walk(&t.used, limit, func(b *block) {
		s.Used = append(s.Used, Block{Addr: b.addr, Size: b.size})
	})
	s.Fresh, _ = t.pool.walk(&t.fresh, limit, nil)
	return s
}

// Compile-time interface checks
var (
	_ Allocator    = (*Tiny)(nil)
	_ Introspector = (*Tiny)(nil)
)
