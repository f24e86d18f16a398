// Package unsafeutil centralises **all** unavoidable usage of the
// `unsafe` standard-library package so that the rest of qhash stays clean
// and easier to audit.  Every helper is documented with clear pre-/post-
// conditions.
//
// ⚠️  **DISCLAIMER**   These helpers deliberately break the Go memory-safety
// model for the sake of zero-allocation conversions.  Use ONLY inside this
// repository; they are not part of the public API and may change without
// notice.  Misuse will lead to subtle data-races or garbage-collector
// corruption.
//
// All functions are `go:linkname`-free, cgo-free and pure Go 1.21.
//
// © 2025 qhash authors. MIT License.

package unsafeutil

import "unsafe"

/* -------------------------------------------------------------------------
   1. Byte region → typed slice reinterpretation
   ------------------------------------------------------------------------- */

// SliceCast reinterprets the first n*sizeof(T) bytes of b as a []T of length
// n, without copying.  The caller must guarantee that b is large enough, that
// &b[0] satisfies the alignment of T, and that T contains no Go pointers when
// b comes from an untyped allocator (the collector will not scan it as T).
func SliceCast[T any](b []byte, n int) []T {
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), n)
}

// BytesOf returns a []byte view of the memory holding *p.  Primarily used
// for hashing plain-old-data keys by their memory representation.  The view
// aliases *p and must not outlive it.
func BytesOf[T any](p *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(p)), unsafe.Sizeof(*p))
}

/* -------------------------------------------------------------------------
   2. Size, address and alignment helpers
   ------------------------------------------------------------------------- */

// SizeOf returns sizeof(T) in bytes.
func SizeOf[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// Addr returns the address of p as an integer, for pointer-identity hashing.
// The result must never be converted back to a pointer.
func Addr[T any](p *T) uintptr { return uintptr(unsafe.Pointer(p)) }


// AlignUp rounds x up to the nearest multiple of align (which must be a power
// of two).  Fast bit-twiddling alternative to math.Ceil for sizes.
func AlignUp(x, align uintptr) uintptr {
	return (x + align - 1) &^ (align - 1)
}
