// Package verify provides validation functions for allocator bookkeeping.
//
// # Overview
//
// The checks operate on an alloc.Snapshot, so they work for any allocator
// that implements alloc.Introspector. They are used by the property tests
// and by the tinyctl "check" command after every replayed operation.
//
// Validation categories:
//   - Counts: free + used + fresh records equal MaxBlocks
//   - Bounds: Base <= Top <= Limit, every block non-empty and inside [Base, Top)
//   - Alignment: every address and size is a multiple of the alignment
//   - FreeOrder: free blocks are in strictly ascending address order
//   - Coalesced: no two free blocks touch
//   - NoOverlap: no two blocks, free or used, share a byte
//
// # Quick Start
//
//	s := a.Snapshot()
//	if err := verify.AllInvariants(s); err != nil {
//	    fmt.Printf("Validation failed: %v\n", err)
//	}
//
// # ValidationError
//
// All validation functions return *ValidationError on failure:
//
//	type ValidationError struct {
//	    Type    string         // Check that failed (e.g., "Coalesced")
//	    Message string         // Human-readable description
//	    Addr    heap.Addr      // Block address involved (heap.Nil if N/A)
//	    Details map[string]any // Additional context
//	}
//
// # AllInvariants
//
// Checks performed (in order):
//  1. Counts
//  2. Bounds
//  3. Alignment
//  4. FreeOrder
//  5. Coalesced
//  6. NoOverlap
//
// Returns first error encountered, or nil if all pass.
//
// Note: Counts is skipped for snapshots whose MaxBlocks is zero (allocators
// without a metadata pool).
package verify
