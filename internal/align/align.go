// Package align holds power-of-two alignment helpers shared by the heap
// packages.
package align

import "golang.org/x/exp/constraints"

// IsPow2 reports whether a is a non-zero power of two.
func IsPow2[T constraints.Unsigned](a T) bool {
	return a != 0 && a&(a-1) == 0
}

// Up returns n rounded up to the next multiple of a. a must be a power of two.
//
// Example:
//
//	Up(1, 4)   = 4
//	Up(4, 4)   = 4
//	Up(101, 4) = 104
func Up[T constraints.Unsigned](n, a T) T {
	mask := a - 1
	return (n + mask) &^ mask
}

// UpChecked is Up that reports false instead of wrapping past the top of T.
func UpChecked[T constraints.Unsigned](n, a T) (T, bool) {
	r := Up(n, a)
	if r < n {
		return 0, false
	}
	return r, true
}

// Is reports whether n is a multiple of a. a must be a power of two.
func Is[T constraints.Unsigned](n, a T) bool {
	return n&(a-1) == 0
}
