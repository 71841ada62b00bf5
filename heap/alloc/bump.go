package alloc

import (
	"context"
	"log/slog"
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/felixjones/tinyheap/heap"
	"github.com/felixjones/tinyheap/internal/align"
	"github.com/felixjones/tinyheap/internal/buf"
)

// BumpAllocator is an append-only allocator used as a baseline against Tiny.
// It uses a simple bump pointer for O(1) allocation.
//
// Key characteristics:
//   - O(1) allocation: advance top, no list search
//   - No metadata pool: MaxBlocks and SplitThreshold are ignored
//   - Free() only reclaims space when ptr is the most recent allocation;
//     any other freed block becomes dead space until the region is reset
//   - Realloc() of the most recent allocation resizes it in place
type BumpAllocator struct {
	r    *heap.Region
	conf Config

	// top is the bump pointer - the address where the next allocation occurs.
	top heap.Addr

	// last is the most recent live allocation, Nil once it has been freed.
	last heap.Addr

	// sizes records live allocations so Free and Realloc can validate
	// pointers and copy contents.
	sizes map[heap.Addr]uintptr

	stats Stats
	log   *slog.Logger
	debug bool
}

// NewBump creates a BumpAllocator over r. Only Alignment, OnFailure,
// FreePolicy, Poison, and Logger are used from conf.
func NewBump(r *heap.Region, conf Config) (*BumpAllocator, error) {
	if conf.MaxBlocks == 0 {
		conf.MaxBlocks = 1
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	if err := conf.validateRegion(r); err != nil {
		return nil, err
	}

	ba := &BumpAllocator{
		r:     r,
		conf:  conf,
		top:   r.Base(),
		sizes: make(map[heap.Addr]uintptr),
		log:   conf.Logger,
	}
	if ba.log == nil {
		ba.log = defaultLogger()
	}
	ba.debug = ba.log.Enabled(context.Background(), slog.LevelDebug)
	ba.stats.PeakTop = ba.top
	return ba, nil
}

// Alloc allocates size bytes at the bump pointer.
func (ba *BumpAllocator) Alloc(size uintptr) (heap.Addr, error) {
	ba.stats.AllocCalls++
	addr, err := ba.alloc(size)
	if err != nil {
		return heap.Nil, ba.fail(size, err)
	}
	ba.poison(addr, ba.sizes[addr], PoisonAlloc)
	return addr, nil
}

func (ba *BumpAllocator) alloc(size uintptr) (heap.Addr, error) {
	if size == 0 {
		return heap.Nil, ErrZeroSize
	}
	need, ok := align.UpChecked(size, ba.conf.Alignment)
	if !ok || uintptr(ba.r.Limit()-ba.top) < need {
		ba.stats.HeapExhausted++
		return heap.Nil, errors.Wrapf(ErrHeapExhausted, "need %d bytes, %d free above top 0x%X",
			size, uintptr(ba.r.Limit()-ba.top), ba.top)
	}

	addr := ba.top
	ba.setTop(addr + heap.Addr(need))
	ba.sizes[addr] = need
	ba.last = addr
	ba.stats.BumpAllocs++
	ba.stats.BytesInUse += need

	if ba.debug {
		ba.log.Debug("bump: alloc", "addr", addr, "size", need, "top", ba.top)
	}
	return addr, nil
}

// Free forgets the allocation at ptr. Space is reclaimed only for the most
// recent allocation.
func (ba *BumpAllocator) Free(ptr heap.Addr) error {
	if ptr == heap.Nil {
		return nil
	}
	ba.stats.FreeCalls++

	size, ok := ba.sizes[ptr]
	if !ok {
		return ba.invalidFree("free", ptr)
	}
	delete(ba.sizes, ptr)
	ba.stats.BytesInUse -= size
	ba.poison(ptr, size, PoisonFree)

	if ptr == ba.last {
		ba.top = ptr
		ba.last = heap.Nil
		ba.stats.TopTrims++
	}
	return nil
}

// Realloc resizes the most recent allocation in place when it fits and
// otherwise allocates, copies, and frees.
func (ba *BumpAllocator) Realloc(ptr heap.Addr, size uintptr) (heap.Addr, error) {
	if ptr == heap.Nil {
		return ba.Alloc(size)
	}
	ba.stats.ReallocCalls++

	oldSize, ok := ba.sizes[ptr]
	if !ok {
		if err := ba.invalidFree("realloc", ptr); err != nil {
			return heap.Nil, err
		}
		return ba.Alloc(size)
	}

	if ptr == ba.last && size != 0 {
		need, ok := align.UpChecked(size, ba.conf.Alignment)
		if ok && uintptr(ba.r.Limit()-ptr) >= need {
			ba.sizes[ptr] = need
			ba.stats.BytesInUse = ba.stats.BytesInUse - oldSize + need
			ba.setTop(ptr + heap.Addr(need))
			return ptr, nil
		}
	}

	if !ba.r.Backed() {
		return heap.Nil, errors.Wrapf(ErrNoBacking, "realloc 0x%X", ptr)
	}
	addr, err := ba.alloc(size)
	if err != nil {
		return heap.Nil, ba.fail(size, err)
	}
	if err := ba.r.Copy(addr, ptr, min(oldSize, ba.sizes[addr])); err != nil {
		panic(errors.NewAssertionErrorWithWrappedErrf(err, "realloc: copy 0x%X <- 0x%X", addr, ptr))
	}
	delete(ba.sizes, ptr)
	ba.stats.BytesInUse -= oldSize
	return addr, nil
}

// Calloc allocates count*size zeroed bytes.
func (ba *BumpAllocator) Calloc(count, size uintptr) (heap.Addr, error) {
	ba.stats.CallocCalls++
	total, ok := buf.MulOverflowSafe(count, size)
	if !ok {
		return heap.Nil, errors.Wrapf(ErrSizeOverflow, "calloc %d * %d", count, size)
	}
	if !ba.r.Backed() {
		return heap.Nil, errors.Wrap(ErrNoBacking, "calloc")
	}
	addr, err := ba.alloc(total)
	if err != nil {
		return heap.Nil, ba.fail(total, err)
	}
	if err := ba.r.Zero(addr, ba.sizes[addr]); err != nil {
		panic(errors.NewAssertionErrorWithWrappedErrf(err, "calloc: zero block 0x%X", addr))
	}
	return addr, nil
}

// Top returns the bump pointer.
func (ba *BumpAllocator) Top() heap.Addr { return ba.top }

// Stats returns a copy of the allocator counters.
func (ba *BumpAllocator) Stats() Stats { return ba.stats }

// Snapshot reports live allocations in address order. A bump allocator has
// no free list and no metadata pool, so MaxBlocks equals the live count.
func (ba *BumpAllocator) Snapshot() Snapshot {
	s := Snapshot{
		Base:      ba.r.Base(),
		Limit:     ba.r.Limit(),
		Top:       ba.top,
		Alignment: ba.conf.Alignment,
		MaxBlocks: len(ba.sizes),
		Used:      make([]Block, 0, len(ba.sizes)),
	}
	for addr, size := range ba.sizes {
		s.Used = append(s.Used, Block{Addr: addr, Size: size})
	}
	sort.Slice(s.Used, func(i, j int) bool { return s.Used[i].Addr < s.Used[j].Addr })
	return s
}

func (ba *BumpAllocator) setTop(top heap.Addr) {
	ba.top = top
	if top > ba.stats.PeakTop {
		ba.stats.PeakTop = top
	}
}

func (ba *BumpAllocator) poison(addr heap.Addr, n uintptr, v byte) {
	if !ba.conf.Poison || !ba.r.Backed() {
		return
	}
	_ = ba.r.Fill(addr, n, v)
}

func (ba *BumpAllocator) fail(size uintptr, err error) error {
	if !isExhaustion(err) {
		return err
	}
	ba.log.Warn("bump: allocation failed", "size", size, "top", ba.top, "err", err)
	if ba.conf.OnFailure == FailPanic {
		panic(&OutOfMemoryError{Size: size, Err: err})
	}
	return err
}

func (ba *BumpAllocator) invalidFree(op string, ptr heap.Addr) error {
	ba.stats.InvalidFrees++
	if ba.conf.FreePolicy == FreeLenient {
		return nil
	}
	err := errors.Wrapf(ErrInvalidFree, "%s 0x%X", op, ptr)
	if ba.conf.OnFailure == FailPanic {
		panic(err)
	}
	return err
}

// Compile-time interface checks
var (
	_ Allocator    = (*BumpAllocator)(nil)
	_ Introspector = (*BumpAllocator)(nil)
)
