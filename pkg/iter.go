package qhash

// iter.go implements enumeration as a proper iterator object.  The iterator
// walks occupied slots across both views by scanning the flag arrays and
// never migrates, so it is stable under an in-flight resize.
//
// The only mutation permitted while an iterator is open is DelAt at the
// position it just yielded.  Put, Find (migrating), Clear and Seal trip the
// debug guard; build with -tags qhash_unchecked to compile the tripwire out.
//
// © 2025 qhash authors. MIT License.

// Iterator enumerates the occupied positions of a table.  Obtain one from
// Iter; it auto-closes once exhausted, Close covers early exits.
type Iterator[K, V any] struct {
	t    *table[K, V]
	next uint32
	open bool
}

// Iter opens an iterator over the table.  The table counts open iterators
// and refuses mutating operations until they are closed.
func (t *table[K, V]) Iter() *Iterator[K, V] {
	t.iters++
	return &Iterator[K, V]{t: t, open: true}
}

// Next yields the next occupied position.  The second return is false once
// the table is exhausted, at which point the iterator closes itself.
func (it *Iterator[K, V]) Next() (uint32, bool) {
	if !it.open {
		return End, false
	}
	pos := it.t.scan(it.next)
	if pos == End {
		it.Close()
		return End, false
	}
	it.next = pos + 1
	return pos, true
}

// Close releases the iterator.  Idempotent; required only when abandoning an
// iterator before exhaustion.
func (it *Iterator[K, V]) Close() {
	if it.open {
		it.open = false
		it.t.iters--
	}
}
