package qhash

// kinds.go instantiates the generic core for the supported key kinds:
// 32-bit integers, 64-bit integers, pointer identity, pointer indirection
// and inline vectors (including the prebuilt string kind).  Everything else
// — probing, incremental resize, seal — is shared; a kind is nothing more
// than a pair of hash/equality callbacks.
//
// © 2025 qhash authors. MIT License.

/* -------------------------------------------------------------------------
   Built-in hashers and comparators
   ------------------------------------------------------------------------- */

func hashU32(k *uint32) uint32 { return *k }
func eqU32(a, b *uint32) bool  { return *a == *b }

func hashU64(k *uint64) uint32 { return HashU64(*k) }
func eqU64(a, b *uint64) bool  { return *a == *b }

func hashPtr[T any](p **T) uint32 { return HashPtr(*p) }
func eqPtr[T any](a, b **T) bool  { return *a == *b }

func hashStr(s *string) uint32 { return HashString(*s) }
func eqStr(a, b *string) bool  { return *a == *b }

func checkCallbacks[K any](hash HashFn[K], eq EqFn[K]) {
	if hash == nil || eq == nil {
		panic("qhash: nil hash or equality callback")
	}
}

/* -------------------------------------------------------------------------
   Integer kinds
   ------------------------------------------------------------------------- */

// NewSet32 creates a hash set over 32-bit integer keys.  The hash is the
// identity on the key.
func NewSet32(opts ...Option) *Set[uint32] {
	s := &Set[uint32]{}
	s.init(hashU32, eqU32, false, opts)
	return s
}

// NewMap32 creates a hash map over 32-bit integer keys.
func NewMap32[V any](opts ...Option) *Map[uint32, V] {
	m := &Map[uint32, V]{}
	m.init(hashU32, eqU32, true, opts)
	return m
}

// NewSet64 creates a hash set over 64-bit integer keys.
func NewSet64(opts ...Option) *Set[uint64] {
	s := &Set[uint64]{}
	s.init(hashU64, eqU64, false, opts)
	return s
}

// NewMap64 creates a hash map over 64-bit integer keys.
func NewMap64[V any](opts ...Option) *Map[uint64, V] {
	m := &Map[uint64, V]{}
	m.init(hashU64, eqU64, true, opts)
	return m
}

/* -------------------------------------------------------------------------
   Pointer kinds
   ------------------------------------------------------------------------- */

// NewPtrSet creates a hash set keyed by pointer identity: the pointer
// itself is stored, compared bit-wise and hashed by address.  Do not
// combine with WithAllocator.
func NewPtrSet[T any](opts ...Option) *Set[*T] {
	s := &Set[*T]{}
	s.init(hashPtr[T], eqPtr[T], false, opts)
	return s
}

// NewPtrMap creates a hash map keyed by pointer identity.
func NewPtrMap[T any, V any](opts ...Option) *Map[*T, V] {
	m := &Map[*T, V]{}
	m.init(hashPtr[T], eqPtr[T], true, opts)
	return m
}

// NewRefSet creates a hash set that stores pointers but dereferences them
// for hashing and equality: two distinct pointers to equal pointees are the
// same key.  Both callbacks are mandatory.
func NewRefSet[T any](hash HashFn[T], eq EqFn[T], opts ...Option) *Set[*T] {
	checkCallbacks(hash, eq)
	s := &Set[*T]{}
	s.init(
		func(p **T) uint32 { return hash(*p) },
		func(a, b **T) bool { return eq(*a, *b) },
		false, opts)
	return s
}

// NewRefMap is the map variant of NewRefSet.
func NewRefMap[T any, V any](hash HashFn[T], eq EqFn[T], opts ...Option) *Map[*T, V] {
	checkCallbacks(hash, eq)
	m := &Map[*T, V]{}
	m.init(
		func(p **T) uint32 { return hash(*p) },
		func(a, b **T) bool { return eq(*a, *b) },
		true, opts)
	return m
}

/* -------------------------------------------------------------------------
   Vector kinds
   ------------------------------------------------------------------------- */

// NewVecSet creates a hash set whose keys are copied inline into the key
// array.  Both callbacks are mandatory and must agree: equal keys must hash
// equal.  Consider WithHashCache when they are expensive.
func NewVecSet[K any](hash HashFn[K], eq EqFn[K], opts ...Option) *Set[K] {
	checkCallbacks(hash, eq)
	s := &Set[K]{}
	s.init(hash, eq, false, opts)
	return s
}

// NewVecMap is the map variant of NewVecSet.
func NewVecMap[K any, V any](hash HashFn[K], eq EqFn[K], opts ...Option) *Map[K, V] {
	checkCallbacks(hash, eq)
	m := &Map[K, V]{}
	m.init(hash, eq, true, opts)
	return m
}

// NewStrSet creates a hash set over string keys: a vector kind prebuilt
// with the string hasher and comparator.
func NewStrSet(opts ...Option) *Set[string] {
	return NewVecSet[string](hashStr, eqStr, opts...)
}

// NewStrMap creates a hash map over string keys.
func NewStrMap[V any](opts ...Option) *Map[string, V] {
	return NewVecMap[string, V](hashStr, eqStr, opts...)
}
