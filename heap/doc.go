// Package heap describes the memory a tiny allocator manages.
//
// # Overview
//
// A Region is a contiguous address range [Base, Limit) handed to an
// allocator by the embedding environment, for example a linker-provided
// free-RAM window or a video memory bank. Addresses are plain integers
// (Addr) and are never dereferenced as Go pointers; when the region has
// backing bytes, Bytes maps an address range onto them.
//
// # Region Kinds
//
//   - NewRegion: backed by a caller-provided byte slice
//   - Map: backed by an anonymous private mapping (unix) or a Go slice
//   - Virtual: bookkeeping only, for memory the host cannot touch
//
// # Null Address
//
// Nil (address zero) is the failure sentinel returned by allocators, so a
// region may not start at address zero.
package heap
