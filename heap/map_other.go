//go:build !unix

package heap

// Map creates a region of size bytes at base backed by a Go slice when
// anonymous mappings are not available.
func Map(base Addr, size int) (*Region, error) {
	if size <= 0 {
		return nil, ErrEmptyRegion
	}
	return NewRegion(base, make([]byte, size))
}
