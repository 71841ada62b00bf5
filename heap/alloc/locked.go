package alloc

import (
	"sync"

	"github.com/felixjones/tinyheap/heap"
)

// Locked serialises every call to an Allocator with a mutex, for hosts where
// more than one goroutine shares a heap.
type Locked struct {
	mu sync.Mutex
	a  Allocator
}

// NewLocked wraps a.
func NewLocked(a Allocator) *Locked {
	return &Locked{a: a}
}

// Alloc calls Alloc on the wrapped allocator under the lock.
func (l *Locked) Alloc(size uintptr) (heap.Addr, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Alloc(size)
}

// Calloc calls Calloc on the wrapped allocator under the lock.
func (l *Locked) Calloc(count, size uintptr) (heap.Addr, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Calloc(count, size)
}

// Realloc calls Realloc on the wrapped allocator under the lock.
func (l *Locked) Realloc(ptr heap.Addr, size uintptr) (heap.Addr, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Realloc(ptr, size)
}

// Free calls Free on the wrapped allocator under the lock.
func (l *Locked) Free(ptr heap.Addr) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Free(ptr)
}

// Snapshot returns the wrapped allocator's snapshot, or a zero Snapshot if
// it does not implement Introspector.
func (l *Locked) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	if in, ok := l.a.(Introspector); ok {
		return in.Snapshot()
	}
	return Snapshot{}
}

// Stats returns the wrapped allocator's counters, or zero Stats if it does
// not implement Introspector.
func (l *Locked) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	if in, ok := l.a.(Introspector); ok {
		return in.Stats()
	}
	return Stats{}
}

// Compile-time interface checks
var (
	_ Allocator    = (*Locked)(nil)
	_ Introspector = (*Locked)(nil)
)
