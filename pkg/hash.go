package qhash

// hash.go holds the hash primitives consumed by the table core and the
// default hashers used by the prebuilt key kinds.  All table hashes are
// 32-bit; the probe engine derives both strides from that single seed.
//
// © 2025 qhash authors. MIT License.

import (
	"github.com/cespare/xxhash/v2"

	"github.com/Voskan/qhash/internal/unsafeutil"
)

// probeMix is the odd constant of the secondary stride.  The OR-with-1 in
// probeInc guarantees coprimality with any power-of-two table size, so the
// probe sequence visits every slot exactly once.  The value is the 32-bit
// golden-ratio constant.
const probeMix uint32 = 0x9E3779B1

func probeInc(h uint32) uint32 { return h*probeMix | 1 }

// HashFn hashes a key.  It must be a pure function of *k and must not touch
// the table it serves.
type HashFn[K any] func(k *K) uint32

// EqFn compares two keys.  It must be an equivalence relation consistent
// with the paired HashFn: equal keys must hash equal.
type EqFn[K any] func(a, b *K) bool

// HashU64 folds a 64-bit value into a well-distributed 32-bit hash.
func HashU64(u uint64) uint32 {
	u ^= u >> 33
	u *= 0x9E3779B97F4A7C15
	return uint32(u >> 32)
}

// HashPtr hashes a pointer by address.  Used by the pointer-identity kinds.
func HashPtr[T any](p *T) uint32 {
	return HashU64(uint64(unsafeutil.Addr(p)))
}

// HashBytes hashes an arbitrary byte slice.
func HashBytes(b []byte) uint32 { return uint32(xxhash.Sum64(b)) }

// HashRaw hashes a key by its in-memory representation.  A convenient
// HashFn for vector kinds over plain-old-data structs — every byte of the
// struct takes part, so it must contain no pointers, padding the comparator
// ignores, or other identity-sensitive state.
func HashRaw[T any](p *T) uint32 {
	return HashBytes(unsafeutil.BytesOf(p))
}

// HashString hashes a string without copying it.
func HashString(s string) uint32 { return uint32(xxhash.Sum64String(s)) }
