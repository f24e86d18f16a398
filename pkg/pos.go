package qhash

// pos.go defines the packed position word returned by the reserve family.
// The low 31 bits are the slot index; the top bit signals that the key
// already existed.  Downstream code inspects the top bit directly, so the
// packed form is part of the public contract.
//
// © 2025 qhash authors. MIT License.

// Flags accepted by the Put/Reserve family.
const (
	// Overwrite makes a colliding Put replace the stored key bytes (and, for
	// maps, the value) instead of leaving them untouched.
	Overwrite uint32 = 1 << 0
)

// posCollision is the top bit of a position word.
const posCollision uint32 = 1 << 31

// End is returned by Scan when no occupied slot remains.
const End = ^uint32(0)

// Pos is the result of a reserve operation: a slot index in the 31 least
// significant bits, plus a collision marker in the most significant bit.
type Pos uint32

// Index returns the slot position.
func (p Pos) Index() uint32 { return uint32(p) &^ posCollision }

// Collided reports whether the key already existed before the call.
func (p Pos) Collided() bool { return uint32(p)&posCollision != 0 }
