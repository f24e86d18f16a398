package qhash

// map.go defines the public hash-map type.  A map is a set with a parallel
// value array; the value slot at a reserved position belongs to the caller,
// which is what makes the reserve-then-fill idiom possible:
//
//	pos := m.Reserve(key, 0)
//	if !pos.Collided() {
//		// expensive value construction happens only for fresh keys
//		m.SetValue(pos.Index(), build())
//	}
//
// © 2025 qhash authors. MIT License.

// Map is a hash map from keys of type K to values of type V.  Obtain one
// from NewMap32, NewMap64, NewPtrMap, NewRefMap, NewVecMap or NewStrMap —
// the zero value has no hash callbacks and is not usable.
type Map[K any, V any] struct {
	mapCore[K, V]
}

// mapCore adds the value-aware operations on top of the generic table.  Its
// methods deliberately shadow the key-only Put/PutH/Add/Replace promoted
// from the table.
type mapCore[K, V any] struct {
	table[K, V]
}

// Value returns the value stored at an occupied position.
func (m *mapCore[K, V]) Value(pos uint32) V { return m.vals[pos] }

// SetValue writes the value slot at a position returned by Reserve, Put,
// Find or enumeration.
func (m *mapCore[K, V]) SetValue(pos uint32, v V) { m.vals[pos] = v }

// Reserve finds or reserves the slot for key without touching the value
// slot: on a fresh reservation the key is stored and the caller must fill
// the value; on a collision the stored key follows the Overwrite flag and
// the value is left unchanged either way.
func (m *mapCore[K, V]) Reserve(key K, fl uint32) Pos {
	return m.table.PutH(m.hash(&key), key, fl)
}

// ReserveH is Reserve under a precomputed hash.
func (m *mapCore[K, V]) ReserveH(h uint32, key K, fl uint32) Pos {
	return m.table.PutH(h, key, fl)
}

// Put inserts or updates the pair {key, v}.  Without Overwrite a colliding
// Put leaves both the stored key and value untouched.
func (m *mapCore[K, V]) Put(key K, v V, fl uint32) Pos {
	return m.PutH(m.hash(&key), key, v, fl)
}

// PutH is Put under a precomputed hash.
func (m *mapCore[K, V]) PutH(h uint32, key K, v V, fl uint32) Pos {
	pos := m.table.PutH(h, key, fl)
	if !pos.Collided() || fl&Overwrite != 0 {
		m.vals[pos.Index()] = v
	}
	return pos
}

// Add inserts {key, v} and reports whether the key was absent; when it was
// not, the map is unchanged.
func (m *mapCore[K, V]) Add(key K, v V) bool {
	return !m.Put(key, v, 0).Collided()
}

// Replace inserts or overwrites {key, v} and reports whether the key was
// absent.
func (m *mapCore[K, V]) Replace(key K, v V) bool {
	return !m.Put(key, v, Overwrite).Collided()
}

// Get returns the value for key using the migrating lookup.  Must not be
// used during enumeration.
func (m *mapCore[K, V]) Get(key K) (V, bool) {
	pos := m.Find(key)
	if pos < 0 {
		var zero V
		return zero, false
	}
	return m.vals[pos], true
}

// GetSafe returns the value for key without mutating the table.
func (m *mapCore[K, V]) GetSafe(key K) (V, bool) {
	pos := m.FindSafe(key)
	if pos < 0 {
		var zero V
		return zero, false
	}
	return m.vals[pos], true
}

// GetDef returns the value for key, or def when the key is absent.
func (m *mapCore[K, V]) GetDef(key K, def V) V {
	if v, ok := m.Get(key); ok {
		return v
	}
	return def
}
