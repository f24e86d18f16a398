package qhash

// set.go defines the public hash-set type and the typed operations shared by
// sets and maps.  The methods below live on the generic core so every key
// kind gets them for free; the constructors in kinds.go fix K and supply the
// hash/equality callbacks.
//
// © 2025 qhash authors. MIT License.

// Set is a hash set over keys of type K.  Obtain one from NewSet32,
// NewSet64, NewPtrSet, NewRefSet, NewVecSet or NewStrSet — the zero value
// has no hash callbacks and is not usable.
type Set[K any] struct {
	table[K, struct{}]
}

/* -------------------------------------------------------------------------
   Typed operations (promoted into both Set and Map)
   ------------------------------------------------------------------------- */

// Hash returns the table hash of key, for the PutH/FindH family.
func (t *table[K, V]) Hash(key K) uint32 { return t.hash(&key) }

// Put reserves a slot for key.  The returned position carries the collision
// bit when the key already existed; in that case the stored key is replaced
// only when fl carries Overwrite.
func (t *table[K, V]) Put(key K, fl uint32) Pos {
	return t.PutH(t.hash(&key), key, fl)
}

// Add inserts key and reports whether it was absent.
func (t *table[K, V]) Add(key K) bool { return !t.Put(key, 0).Collided() }

// Replace inserts key, overwriting the stored key bytes on collision, and
// reports whether it was absent.
func (t *table[K, V]) Replace(key K) bool { return !t.Put(key, Overwrite).Collided() }

// Find is the migrating lookup: it returns the position of key, advancing
// any in-flight resize, or a negative value on a miss.  Must not be used
// during enumeration — use FindSafe there.
func (t *table[K, V]) Find(key K) int32 { return t.get(t.hash(&key), &key) }

// FindSafe is the non-mutating lookup.
func (t *table[K, V]) FindSafe(key K) int32 { return t.safeGet(t.hash(&key), &key) }

// Contains reports whether key is present, without mutating.
func (t *table[K, V]) Contains(key K) bool { return t.FindSafe(key) >= 0 }

// DelKey finds key with the migrating lookup and deletes it.  It returns
// the position the key occupied, or a negative value if it was absent.
func (t *table[K, V]) DelKey(key K) int32 {
	pos := t.Find(key)
	if pos >= 0 {
		t.delAt(uint32(pos))
	}
	return pos
}

// DelKeySafe is DelKey built on the non-mutating lookup, for use during
// enumeration.
func (t *table[K, V]) DelKeySafe(key K) int32 {
	pos := t.FindSafe(key)
	if pos >= 0 {
		t.delAt(uint32(pos))
	}
	return pos
}
