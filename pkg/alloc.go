package qhash

// alloc.go defines the allocator interface consumed by the table core and the
// helpers that carve typed parallel arrays out of allocator bytes.  A nil
// Allocator means the Go heap; internal/mempool provides a frame-based pool
// implementation for callers that want allocation batching.
//
// © 2025 qhash authors. MIT License.

import "github.com/Voskan/qhash/internal/unsafeutil"

// Allocator is the memory source backing a table's flag, key, value and hash
// arrays.  Implementations need not be thread-safe: the table serialises all
// calls.
//
// Regions handed out by a non-nil Allocator are reinterpreted as typed
// arrays and are scanned by the collector as plain bytes, so tables whose
// key or value types contain Go pointers must use the heap (nil) allocator.
type Allocator interface {
	// Alloc returns n zero-initialised bytes.
	Alloc(n int) []byte
	// AllocRaw returns n bytes with unspecified contents.
	AllocRaw(n int) []byte
	// Realloc resizes b to n bytes, preserving contents up to min(len(b), n).
	Realloc(b []byte, n int) []byte
	// Free releases a region obtained from this allocator.
	Free(b []byte)
}

// allocSlice obtains a []T of length n from a, or from the heap when a is
// nil.  The raw region is returned alongside so it can be passed back to
// Realloc/Free later; it is nil on the heap path.
func allocSlice[T any](a Allocator, n int) ([]T, []byte) {
	if n == 0 {
		return nil, nil
	}
	if a == nil {
		return make([]T, n), nil
	}
	raw := a.AllocRaw(n * unsafeutil.SizeOf[T]())
	return unsafeutil.SliceCast[T](raw, n), raw
}

// reallocSlice grows s to length n, preserving contents.  Entries past the
// old length have unspecified contents on the allocator path and are zeroed
// on the heap path; the flag array is authoritative either way.
func reallocSlice[T any](a Allocator, s []T, raw []byte, n int) ([]T, []byte) {
	if a == nil {
		ns := make([]T, n)
		copy(ns, s)
		return ns, nil
	}
	raw = a.Realloc(raw, n*unsafeutil.SizeOf[T]())
	return unsafeutil.SliceCast[T](raw, n), raw
}

// allocBits obtains a zeroed flag array for size slots.
func allocBits(a Allocator, size uint32) ([]uint64, []byte) {
	words := bitWords(size)
	if a == nil {
		return make([]uint64, words), nil
	}
	raw := a.Alloc(words * 8)
	return unsafeutil.SliceCast[uint64](raw, words), raw
}

func freeRaw(a Allocator, raw []byte) {
	if a != nil && raw != nil {
		a.Free(raw)
	}
}
