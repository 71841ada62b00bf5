package heap

import (
	"github.com/cockroachdb/errors"

	"github.com/felixjones/tinyheap/internal/buf"
)

// Addr is an address inside a managed region.
type Addr uintptr

// Nil is the null address.
const Nil Addr = 0

var (
	// ErrNilBase indicates a region starting at address zero.
	ErrNilBase = errors.New("heap: region base must be non-zero")

	// ErrEmptyRegion indicates a region whose limit does not exceed its base.
	ErrEmptyRegion = errors.New("heap: region limit must be above base")

	// ErrOutOfRange indicates an access outside [Base, Limit).
	ErrOutOfRange = errors.New("heap: address range outside region")

	// ErrNoBacking indicates a byte access on a Virtual region.
	ErrNoBacking = errors.New("heap: region has no backing memory")
)

// Region is the [Base, Limit) window an allocator manages.
type Region struct {
	base  Addr
	limit Addr
	data  []byte
	unmap func() error
}

// NewRegion wraps data as the backing memory for [base, base+len(data)).
func NewRegion(base Addr, data []byte) (*Region, error) {
	limit, ok := buf.AddOverflowSafe(uintptr(base), uintptr(len(data)))
	if !ok {
		return nil, errors.Newf("heap: region base 0x%X + size %d overflows", base, len(data))
	}
	if err := checkBounds(base, Addr(limit)); err != nil {
		return nil, err
	}
	return &Region{base: base, limit: Addr(limit), data: data}, nil
}

// Virtual creates a region with no backing bytes. Allocators can hand out
// addresses from it but cannot zero, copy, or poison its memory.
func Virtual(base, limit Addr) (*Region, error) {
	if err := checkBounds(base, limit); err != nil {
		return nil, err
	}
	return &Region{base: base, limit: limit}, nil
}

func checkBounds(base, limit Addr) error {
	if base == Nil {
		return ErrNilBase
	}
	if limit <= base {
		return ErrEmptyRegion
	}
	return nil
}

// Base returns the first address of the region.
func (r *Region) Base() Addr { return r.base }

// Limit returns the address one past the end of the region.
func (r *Region) Limit() Addr { return r.limit }

// Size returns Limit - Base.
func (r *Region) Size() uintptr { return uintptr(r.limit - r.base) }

// Backed reports whether the region has host-accessible bytes.
func (r *Region) Backed() bool { return r.data != nil }

// Contains reports whether [addr, addr+n) lies inside the region.
func (r *Region) Contains(addr Addr, n uintptr) bool {
	if addr < r.base {
		return false
	}
	_, err := buf.CheckRange(r.Size(), uintptr(addr-r.base), n)
	return err == nil
}

// Bytes returns the backing bytes for [addr, addr+n).
func (r *Region) Bytes(addr Addr, n uintptr) ([]byte, error) {
	if r.data == nil {
		return nil, ErrNoBacking
	}
	if addr < r.base {
		return nil, errors.Wrapf(ErrOutOfRange, "0x%X below base 0x%X", addr, r.base)
	}
	b, ok := buf.Slice(r.data, uintptr(addr-r.base), n)
	if !ok {
		return nil, errors.Wrapf(ErrOutOfRange, "[0x%X, +%d) past limit 0x%X", addr, n, r.limit)
	}
	return b, nil
}

// Fill sets every byte of [addr, addr+n) to v.
func (r *Region) Fill(addr Addr, n uintptr, v byte) error {
	b, err := r.Bytes(addr, n)
	if err != nil {
		return err
	}
	for i := range b {
		b[i] = v
	}
	return nil
}

// Zero clears [addr, addr+n).
func (r *Region) Zero(addr Addr, n uintptr) error {
	b, err := r.Bytes(addr, n)
	if err != nil {
		return err
	}
	clear(b)
	return nil
}

// Copy copies n bytes from src to dst. Overlapping ranges are handled like
// the builtin copy.
func (r *Region) Copy(dst, src Addr, n uintptr) error {
	to, err := r.Bytes(dst, n)
	if err != nil {
		return err
	}
	from, err := r.Bytes(src, n)
	if err != nil {
		return err
	}
	copy(to, from)
	return nil
}

// Close releases a mapping created by Map. It is a no-op for other regions
// and safe to call more than once.
func (r *Region) Close() error {
	if r.unmap == nil {
		return nil
	}
	err := r.unmap()
	r.unmap = nil
	r.data = nil
	return err
}
