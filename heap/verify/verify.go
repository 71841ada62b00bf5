package verify

import (
	"fmt"
	"sort"

	"github.com/felixjones/tinyheap/heap"
	"github.com/felixjones/tinyheap/heap/alloc"
)

// ValidationError describes a violated invariant.
type ValidationError struct {
	Type    string
	Message string
	Addr    heap.Addr
	Details map[string]any
}

func (e *ValidationError) Error() string {
	if e.Addr != heap.Nil {
		return fmt.Sprintf("%s at 0x%X: %s", e.Type, e.Addr, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// AllInvariants validates every invariant in one call.
// Returns the first error encountered, or nil if all checks pass.
func AllInvariants(s alloc.Snapshot) error {
	checks := []func(alloc.Snapshot) error{
		Counts,
		Bounds,
		Alignment,
		FreeOrder,
		Coalesced,
		NoOverlap,
	}
	for _, check := range checks {
		if err := check(s); err != nil {
			return err
		}
	}
	return nil
}

// Check snapshots a and validates it.
func Check(a alloc.Introspector) error {
	return AllInvariants(a.Snapshot())
}

// Counts validates that every metadata record is on exactly one list.
func Counts(s alloc.Snapshot) error {
	if s.MaxBlocks == 0 {
		return nil
	}
	total := len(s.Free) + len(s.Used) + s.Fresh
	if total != s.MaxBlocks {
		return &ValidationError{
			Type:    "Counts",
			Message: fmt.Sprintf("free %d + used %d + fresh %d = %d, want %d", len(s.Free), len(s.Used), s.Fresh, total, s.MaxBlocks),
			Details: map[string]any{
				"free":       len(s.Free),
				"used":       len(s.Used),
				"fresh":      s.Fresh,
				"max_blocks": s.MaxBlocks,
			},
		}
	}
	return nil
}

// Bounds validates the cursor and that every block lies between base and top.
func Bounds(s alloc.Snapshot) error {
	if s.Top < s.Base || s.Top > s.Limit {
		return &ValidationError{
			Type:    "Bounds",
			Message: fmt.Sprintf("top 0x%X outside [0x%X, 0x%X]", s.Top, s.Base, s.Limit),
			Details: map[string]any{"top": s.Top, "base": s.Base, "limit": s.Limit},
		}
	}

	check := func(kind string, b alloc.Block) error {
		switch {
		case b.Size == 0:
			return &ValidationError{Type: "Bounds", Message: kind + " block is empty", Addr: b.Addr}
		case b.Addr < s.Base:
			return &ValidationError{
				Type:    "Bounds",
				Message: fmt.Sprintf("%s block below base 0x%X", kind, s.Base),
				Addr:    b.Addr,
			}
		case b.End() < b.Addr || b.End() > s.Top:
			return &ValidationError{
				Type:    "Bounds",
				Message: fmt.Sprintf("%s block ends at 0x%X, above top 0x%X", kind, b.End(), s.Top),
				Addr:    b.Addr,
				Details: map[string]any{"size": b.Size, "top": s.Top},
			}
		}
		return nil
	}
	return eachBlock(s, check)
}

// Alignment validates block addresses and sizes against the alignment.
func Alignment(s alloc.Snapshot) error {
	if s.Alignment == 0 {
		return nil
	}
	return eachBlock(s, func(kind string, b alloc.Block) error {
		if uintptr(b.Addr)%s.Alignment != 0 || b.Size%s.Alignment != 0 {
			return &ValidationError{
				Type:    "Alignment",
				Message: fmt.Sprintf("%s block of %d bytes not %d-byte aligned", kind, b.Size, s.Alignment),
				Addr:    b.Addr,
			}
		}
		return nil
	})
}

// FreeOrder validates that the free list is sorted by address.
func FreeOrder(s alloc.Snapshot) error {
	for i := 1; i < len(s.Free); i++ {
		prev, cur := s.Free[i-1], s.Free[i]
		if cur.Addr <= prev.Addr {
			return &ValidationError{
				Type:    "FreeOrder",
				Message: fmt.Sprintf("free block follows 0x%X", prev.Addr),
				Addr:    cur.Addr,
				Details: map[string]any{"index": i},
			}
		}
	}
	return nil
}

// Coalesced validates that no two consecutive free blocks are adjacent.
// It assumes FreeOrder holds.
func Coalesced(s alloc.Snapshot) error {
	for i := 1; i < len(s.Free); i++ {
		prev, cur := s.Free[i-1], s.Free[i]
		if prev.End() == cur.Addr {
			return &ValidationError{
				Type:    "Coalesced",
				Message: fmt.Sprintf("free block adjacent to free block at 0x%X", prev.Addr),
				Addr:    cur.Addr,
			}
		}
	}
	return nil
}

// NoOverlap validates that no byte belongs to two blocks.
func NoOverlap(s alloc.Snapshot) error {
	all := make([]alloc.Block, 0, len(s.Free)+len(s.Used))
	all = append(all, s.Free...)
	all = append(all, s.Used...)
	sort.Slice(all, func(i, j int) bool { return all[i].Addr < all[j].Addr })

	for i := 1; i < len(all); i++ {
		if all[i-1].End() > all[i].Addr {
			return &ValidationError{
				Type:    "NoOverlap",
				Message: fmt.Sprintf("block overlaps 0x%X..0x%X", all[i-1].Addr, all[i-1].End()),
				Addr:    all[i].Addr,
			}
		}
	}
	return nil
}

func eachBlock(s alloc.Snapshot, fn func(kind string, b alloc.Block) error) error {
	for _, b := range s.Free {
		if err := fn("free", b); err != nil {
			return err
		}
	}
	for _, b := range s.Used {
		if err := fn("used", b); err != nil {
			return err
		}
	}
	return nil
}
