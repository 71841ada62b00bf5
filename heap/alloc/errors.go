package alloc

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/felixjones/tinyheap/heap"
)

var (
	// ErrHeapExhausted indicates that no free block fits and the bump cursor would pass the limit.
	ErrHeapExhausted = errors.New("alloc: heap exhausted")

	// ErrMetadataExhausted indicates that the block metadata pool has no record left.
	ErrMetadataExhausted = errors.New("alloc: block metadata exhausted")

	// ErrInvalidFree indicates a free or realloc of an address that is not allocated.
	ErrInvalidFree = errors.New("alloc: address not allocated")

	// ErrZeroSize indicates a request for zero bytes.
	ErrZeroSize = errors.New("alloc: zero-size request")

	// ErrSizeOverflow indicates a size computation that does not fit in uintptr.
	ErrSizeOverflow = errors.New("alloc: size overflow")

	// ErrBadConfig indicates an invalid Config or a region it cannot manage.
	ErrBadConfig = errors.New("alloc: invalid config")

	// ErrNoBacking indicates a byte operation on a region without backing memory.
	ErrNoBacking = heap.ErrNoBacking
)

// OutOfMemoryError is the panic value raised under FailPanic.
type OutOfMemoryError struct {
	Size uintptr // requested size before rounding
	Err  error   // ErrHeapExhausted or ErrMetadataExhausted, with context
}

func (e *OutOfMemoryError) Error() string {
	return fmt.Sprintf("alloc: out of memory allocating %d bytes: %v", e.Size, e.Err)
}

func (e *OutOfMemoryError) Unwrap() error { return e.Err }

// isExhaustion reports whether err is subject to the failure policy.
func isExhaustion(err error) bool {
	return errors.Is(err, ErrHeapExhausted) || errors.Is(err, ErrMetadataExhausted)
}
