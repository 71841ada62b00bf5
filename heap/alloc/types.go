package alloc

import "github.com/felixjones/tinyheap/heap"

// Allocator defines the malloc/free family over a heap region.
//
// Implementations:
//   - Tiny: coalescing free list allocator with a fixed metadata pool
//   - BumpAllocator: append-only baseline
//   - Locked: mutex wrapper around either
type Allocator interface {
	// Alloc allocates at least size bytes and returns the block address.
	Alloc(size uintptr) (heap.Addr, error)

	// Calloc allocates count*size bytes and zero-fills them.
	Calloc(count, size uintptr) (heap.Addr, error)

	// Realloc allocates a block of the new size, copies the old contents
	// (clamped to the smaller of the two blocks), and frees the old block.
	// A Nil ptr behaves like Alloc. On failure the old block is untouched.
	Realloc(ptr heap.Addr, size uintptr) (heap.Addr, error)

	// Free releases the block at ptr. Freeing Nil is a no-op.
	Free(ptr heap.Addr) error
}

// Introspector exposes allocator state for diagnostics and verification.
type Introspector interface {
	Snapshot() Snapshot
	Stats() Stats
}

// Block is one [Addr, Addr+Size) range as seen by diagnostics.
type Block struct {
	Addr heap.Addr
	Size uintptr
}

// End returns the address one past the block.
func (b Block) End() heap.Addr { return b.Addr + heap.Addr(b.Size) }

// Snapshot is a point-in-time copy of allocator bookkeeping.
type Snapshot struct {
	Base      heap.Addr
	Limit     heap.Addr
	Top       heap.Addr
	Alignment uintptr
	MaxBlocks int

	Free  []Block // list order (ascending address)
	Used  []Block // list order (most recent first)
	Fresh int     // unused metadata records
}

// Stats holds allocator counters.
type Stats struct {
	AllocCalls   int // Alloc() calls
	CallocCalls  int // Calloc() calls
	ReallocCalls int // Realloc() calls with a non-Nil pointer
	FreeCalls    int // Free() calls with a non-Nil pointer

	BumpAllocs   int // allocations served by advancing top
	FreeListHits int // allocations served by a mid-heap free block
	TopReuses    int // allocations served by resizing the free block at top

	Splits   int // free blocks split to return the remainder
	Merges   int // records absorbed by coalescing
	TopTrims int // free blocks returned to the untouched region above top

	HeapExhausted     int // failures for lack of bytes
	MetadataExhausted int // failures for lack of metadata records
	InvalidFrees      int // frees of addresses that were not allocated

	BytesInUse uintptr   // sum of used block sizes
	PeakTop    heap.Addr // highest top ever reached
}
