//go:build unix

package heap

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// Map creates a region of size bytes at base backed by an anonymous private
// mapping. The mapping is zero-filled by the kernel. Call Close to release it.
func Map(base Addr, size int) (*Region, error) {
	if size <= 0 {
		return nil, ErrEmptyRegion
	}
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, errors.Wrapf(err, "heap: mmap %d bytes", size)
	}

	r, err := NewRegion(base, data)
	if err != nil {
		_ = unix.Munmap(data)
		return nil, err
	}
	r.unmap = func() error {
		err := unix.Munmap(data)
		if errors.Is(err, unix.EINVAL) {
			// Treat double-unmap as no-op for callers.
			return nil
		}
		return err
	}
	return r, nil
}
