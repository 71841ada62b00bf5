// Package alloc provides block allocation over a bounded heap region for
// targets with no operating system and no underlying allocator.
//
// # Overview
//
// The Tiny allocator manages a fixed [base, limit) region. Block bookkeeping
// lives in a statically sized pool of metadata records that is never grown,
// so allocation never depends on another heap. Free blocks are kept sorted by
// address which lets a single linear pass merge neighbours, and a bump cursor
// (top) grows into untouched memory when no free block fits.
//
// # Allocator Interface
//
// The core abstraction is the Allocator interface:
//
//   - Alloc(size): allocate size bytes, rounded up to the alignment
//   - Calloc(count, size): allocate count*size zeroed bytes
//   - Realloc(ptr, size): move an allocation to a block of the new size
//   - Free(ptr): release an allocation
//
// # Implementations
//
// Tiny: address-ordered, coalescing free list allocator
//
//   - Three intrusive lists over one metadata slab: free, used, fresh
//   - First-fit search in address order, bump allocation past top
//   - Split only when the leftover reaches SplitThreshold
//   - Coalescing after every free and every split
//
// BumpAllocator: append-only baseline
//
//   - O(1) allocation, no metadata pool
//   - Free releases space only for the most recent allocation
//
// Locked: mutex wrapper for hosts that share one allocator between goroutines.
//
// # Usage Example
//
//	r, err := heap.Map(0x2000000, 256<<10)
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	conf := alloc.DefaultConfig()
//	conf.MaxBlocks = 128
//	t, err := alloc.New(r, conf)
//	if err != nil {
//	    return err
//	}
//
//	p, err := t.Alloc(100)
//	if err != nil {
//	    return err
//	}
//	defer t.Free(p)
//
// # Block Accounting
//
// Every metadata record sits on exactly one list, so
//
//	FreeBlockCount() + UsedBlockCount() + FreshBlockCount() == MaxBlocks
//
// holds between calls. InvariantCheck walks the lists and verifies it.
// Running out of records (ErrMetadataExhausted) is reported separately from
// running out of bytes (ErrHeapExhausted).
//
// # Failure Policy
//
// With FailReturn (the default) exhaustion returns heap.Nil and an error.
// With FailPanic the allocator panics with *OutOfMemoryError instead.
// Freeing an address that is not allocated is ignored under FreeLenient and
// reported as ErrInvalidFree under FreeStrict.
//
// # Thread Safety
//
// Tiny and BumpAllocator are not safe for concurrent use and must not be
// re-entered (for example from an interrupt handler). Wrap them with
// NewLocked or confine them to one goroutine.
//
// # Debugging
//
// Set TINYHEAP_LOG_ALLOC to log allocator events to stderr when no logger is
// configured. Config.Poison fills newly allocated memory with PoisonAlloc and
// released memory with PoisonFree.
package alloc
