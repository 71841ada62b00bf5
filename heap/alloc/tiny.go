package alloc

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"

	"github.com/felixjones/tinyheap/heap"
	"github.com/felixjones/tinyheap/internal/align"
)

// Tiny is an address-ordered, coalescing allocator over a fixed region with
// a fixed pool of block metadata records.
//
//   - free:  address-sorted, maximally coalesced between calls
//   - used:  unordered, most recent allocation at the head
//   - fresh: unused records, LIFO
//
// top is the boundary between memory ever handed out by the bump path and
// memory never touched. Every block on free or used ends at or below top.
type Tiny struct {
	r    *heap.Region
	conf Config

	base  heap.Addr
	limit heap.Addr
	top   heap.Addr

	pool  blockPool
	free  blockList
	used  blockList
	fresh blockList

	stats Stats

	log   *slog.Logger
	debug bool
}

// New creates a Tiny allocator managing [r.Base(), r.Limit()).
func New(r *heap.Region, conf Config) (*Tiny, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	if err := conf.validateRegion(r); err != nil {
		return nil, err
	}

	pool, fresh := newBlockPool(conf.MaxBlocks)
	t := &Tiny{
		r:     r,
		conf:  conf,
		base:  r.Base(),
		limit: r.Limit(),
		top:   r.Base(),
		pool:  pool,
		free:  blockList{head: nullRef},
		used:  blockList{head: nullRef},
		fresh: fresh,
		log:   conf.Logger,
	}
	if t.log == nil {
		t.log = defaultLogger()
	}
	t.debug = t.log.Enabled(context.Background(), slog.LevelDebug)
	t.stats.PeakTop = t.top

	return t, nil
}

// Alloc allocates size bytes rounded up to the configured alignment.
func (t *Tiny) Alloc(size uintptr) (heap.Addr, error) {
	t.stats.AllocCalls++

	ref, err := t.alloc(size)
	if err != nil {
		return heap.Nil, t.fail(size, err)
	}
	b := t.pool.at(ref)
	t.poison(b, PoisonAlloc)
	return b.addr, nil
}

// alloc finds or carves a block of at least size bytes and moves it to used.
// State is only modified once the allocation is certain to succeed.
func (t *Tiny) alloc(size uintptr) (blockRef, error) {
	if size == 0 {
		return nullRef, ErrZeroSize
	}
	need, ok := align.UpChecked(size, t.conf.Alignment)
	if !ok || need > uintptr(t.limit-t.base) {
		t.stats.HeapExhausted++
		return nullRef, errors.Wrapf(ErrHeapExhausted, "%d bytes exceeds region of %d bytes",
			size, uintptr(t.limit-t.base))
	}

	ref := t.takeFree(need)
	if ref == nullRef {
		var err error
		if ref, err = t.bump(need); err != nil {
			return nullRef, err
		}
	}

	t.stats.BytesInUse += t.pool.at(ref).size
	return ref, nil
}

// takeFree scans free in address order for the first usable block.
//
// The block ending at top can be resized in place as long as the result
// stays under limit, whether that shrinks or grows it. Any other block must
// already be large enough, and is split when the leftover is worth a record.
func (t *Tiny) takeFree(need uintptr) blockRef {
	prev := nullRef
	for ref := t.free.head; ref != nullRef; prev, ref = ref, t.pool.at(ref).next {
		b := t.pool.at(ref)

		if b.end() >= t.top && uintptr(t.limit-b.addr) >= need {
			t.pool.unlink(&t.free, prev, ref)
			t.pool.push(&t.used, ref)
			b.size = need
			t.setTop(b.end())
			t.stats.TopReuses++
			if t.debug {
				t.log.Debug("alloc: reuse top block", "addr", b.addr, "size", need, "top", t.top)
			}
			return ref
		}

		if b.size >= need {
			t.pool.unlink(&t.free, prev, ref)
			t.pool.push(&t.used, ref)
			t.split(ref, need)
			t.stats.FreeListHits++
			return ref
		}
	}
	return nullRef
}

// split trims ref to need bytes and returns the leftover to free when it is
// at least SplitThreshold and a fresh record is available. Otherwise the
// block stays oversized.
func (t *Tiny) split(ref blockRef, need uintptr) {
	b := t.pool.at(ref)
	leftover := b.size - need
	if leftover == 0 || leftover < t.conf.SplitThreshold {
		return
	}
	rest := t.pool.pop(&t.fresh)
	if rest == nullRef {
		return
	}

	b.size = need
	r := t.pool.at(rest)
	r.addr = b.end()
	r.size = leftover

	t.stats.Splits++
	if t.debug {
		t.log.Debug("alloc: split", "addr", b.addr, "size", need, "rest", r.addr, "rest_size", leftover)
	}

	t.insertSorted(rest)
	t.coalesce()
}

// bump carves need bytes at top.
func (t *Tiny) bump(need uintptr) (blockRef, error) {
	if uintptr(t.limit-t.top) < need {
		t.stats.HeapExhausted++
		return nullRef, errors.Wrapf(ErrHeapExhausted, "need %d bytes, %d free above top 0x%X",
			need, uintptr(t.limit-t.top), t.top)
	}
	ref := t.pool.pop(&t.fresh)
	if ref == nullRef {
		t.stats.MetadataExhausted++
		return nullRef, errors.Wrapf(ErrMetadataExhausted, "all %d block records in use", t.conf.MaxBlocks)
	}

	b := t.pool.at(ref)
	b.addr = t.top
	b.size = need
	t.pool.push(&t.used, ref)
	t.setTop(b.end())
	t.stats.BumpAllocs++

	if t.debug {
		t.log.Debug("alloc: bump", "addr", b.addr, "size", need, "top", t.top)
	}
	return ref, nil
}

func (t *Tiny) setTop(top heap.Addr) {
	t.top = top
	if top > t.stats.PeakTop {
		t.stats.PeakTop = top
	}
}

// fail applies the failure policy to an allocation error.
func (t *Tiny) fail(size uintptr, err error) error {
	if !isExhaustion(err) {
		return err
	}
	t.log.Warn("alloc: allocation failed", "size", size, "top", t.top,
		"free_blocks", t.free.n, "fresh_blocks", t.fresh.n, "err", err)
	if t.conf.OnFailure == FailPanic {
		panic(&OutOfMemoryError{Size: size, Err: err})
	}
	return err
}
