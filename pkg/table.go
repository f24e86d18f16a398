package qhash

// table.go contains the generic table core shared by every key kind: the
// probe engine, the incremental resize controller and the operation layer.
// The typed surface in set.go/map.go and the constructors in kinds.go only
// compute hashes and fix K/V; everything below is kind-agnostic.
//
// Representation
// --------------
// keys, values and hashes are single parallel arrays sized to the *current*
// view; reallocation on resize preserves contents, so entries still owned by
// the old view keep their position.  Only the flag arrays exist twice during
// a resize (hdr for the new view, old for the previous one), which gives the
// unified position space that DelAt, Scan and enumeration rely on.
//
// The core is free of locking: the single-threaded cooperative model is
// guaranteed by the caller.
//
// © 2025 qhash authors. MIT License.

import (
	"math/bits"

	"go.uber.org/zap"

	"github.com/Voskan/qhash/internal/unsafeutil"
)

const (
	// minSlots is the slot count of the first allocation when no minimum
	// size was requested.
	minSlots = 16

	// maxSlots bounds the table: positions must fit in 31 bits.
	maxSlots = 1 << 31

	// drainPerOp is how many old-view entries every mutating operation
	// migrates on top of the touched collision chain.  Two per operation
	// bounds the lifetime of the old view to ~len/2 mutations.
	drainPerOp = 2
)

type table[K, V any] struct {
	hdr header  // current (new) view
	old *header // previous view, non-nil while a resize is in flight

	keys      []K
	keysRaw   []byte
	vals      []V // nil unless hasVals
	valsRaw   []byte
	hashes    []uint32 // nil unless cached
	hashesRaw []byte

	ghosts  uint32 // tombstones in the current view, reusable by inserts
	minsize uint32
	sealed  bool
	cached  bool
	hasVals bool
	iters   int // open-iterator tripwire

	hash HashFn[K]
	eq   EqFn[K]

	alloc Allocator
	name  string
	log   *zap.Logger
	met   metricsSink
}

func (t *table[K, V]) init(hash HashFn[K], eq EqFn[K], hasVals bool, opts []Option) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(cfg)
	}
	t.hash = hash
	t.eq = eq
	t.hasVals = hasVals
	t.cached = cfg.cached
	t.minsize = clampMinsize(cfg.minsize)
	t.alloc = cfg.alloc
	t.name = cfg.name
	t.log = cfg.logger
	t.met = newMetricsSink(cfg.name, cfg.registry)
}

/* -------------------------------------------------------------------------
   Guards
   ------------------------------------------------------------------------- */

func (t *table[K, V]) guardMutable() {
	if !guardsEnabled {
		return
	}
	if t.sealed {
		panic("qhash: mutating operation on a sealed table")
	}
	if t.iters > 0 {
		panic("qhash: mutating operation during enumeration")
	}
}

/* -------------------------------------------------------------------------
   Probe engine
   ------------------------------------------------------------------------- */

// slotHash returns the 32-bit hash of the entry stored at pos, from the hash
// cache when enabled, recomputed otherwise.
func (t *table[K, V]) slotHash(pos uint32) uint32 {
	if t.hashes != nil {
		return t.hashes[pos]
	}
	return t.hash(&t.keys[pos])
}

// findIn walks the probe chain of h in the given view, looking for key.
// Ghosts never terminate the scan; the first empty slot does.
func (t *table[K, V]) findIn(hd *header, h uint32, key *K) int32 {
	mask := hd.size - 1
	inc := probeInc(h)
	pos := h & mask
	for i := uint32(0); i < hd.size; i++ {
		switch slotGetFlags(hd.bits, pos) {
		case flagEmpty:
			return -1
		case flagOccupied:
			if (t.hashes == nil || t.hashes[pos] == h) && t.eq(&t.keys[pos], key) {
				return int32(pos)
			}
		}
		pos = (pos + inc) & mask
	}
	return -1
}

// safeGet is the non-mutating lookup: new view first, then the old one.
func (t *table[K, V]) safeGet(h uint32, key *K) int32 {
	if t.hdr.size == 0 {
		return -1
	}
	if pos := t.findIn(&t.hdr, h, key); pos >= 0 {
		return pos
	}
	if t.old != nil {
		return t.findIn(t.old, h, key)
	}
	return -1
}

// get is the migrating lookup.  While a resize is in flight it first drains
// the old-view collision chain of h into the new view, so that the new view
// becomes authoritative for this key, then performs a plain probe.
func (t *table[K, V]) get(h uint32, key *K) int32 {
	if guardsEnabled && t.iters > 0 {
		panic("qhash: migrating lookup during enumeration")
	}
	if t.hdr.size == 0 {
		return -1
	}
	if t.old != nil {
		t.migrateChain(h)
		t.forceDrain(drainPerOp)
	}
	return t.findIn(&t.hdr, h, key)
}

/* -------------------------------------------------------------------------
   Resize controller
   ------------------------------------------------------------------------- */

func p2roundup(n uint32) uint32 {
	if n <= 1 {
		return n
	}
	return 1 << (32 - bits.LeadingZeros32(n-1))
}

// clampMinsize keeps the requested minimum far enough below the 31-bit
// position space that rounding and the final doubling cannot overflow.
func clampMinsize(n uint32) uint32 {
	const lim = maxSlots / 4
	if n > lim {
		return lim
	}
	return n
}

func (t *table[K, V]) startSize() uint32 {
	if m := p2roundup(t.minsize); m > minSlots {
		return m
	}
	return minSlots
}

// reserveRoom makes sure one more entry can be inserted without breaking the
// load invariant len+ghosts < size/2.  Growing doubles the table; a
// ghost-dominated table is rebuilt at the same size to flush tombstones.
func (t *table[K, V]) reserveRoom() {
	size := t.hdr.size
	if size == 0 {
		t.resize(t.startSize())
		return
	}
	if t.hdr.len+t.ghosts+1 < size/2 {
		return
	}
	if t.hdr.len >= size/4 {
		if size >= maxSlots {
			panic("qhash: table exceeds 2^31 slots")
		}
		t.resize(size * 2)
	} else {
		// Ghost-dominated: rebuild at the same size to flush tombstones
		// instead of growing.
		t.resize(size)
	}
}

// resize opens a new epoch: the current flag view becomes the old one, the
// parallel arrays are reallocated in place (old entries keep their
// positions) and a fresh flag view is published.  Any in-flight resize is
// completed first, so at most two views ever coexist.
func (t *table[K, V]) resize(newsize uint32) {
	if t.old != nil {
		t.finishResize()
	}
	prev := t.hdr

	t.keys, t.keysRaw = reallocSlice(t.alloc, t.keys, t.keysRaw, int(newsize))
	if t.hasVals {
		t.vals, t.valsRaw = reallocSlice(t.alloc, t.vals, t.valsRaw, int(newsize))
	}
	if t.cached {
		t.hashes, t.hashesRaw = reallocSlice(t.alloc, t.hashes, t.hashesRaw, int(newsize))
	}
	t.hdr.bits, t.hdr.bitsRaw = allocBits(t.alloc, newsize)
	t.hdr.size = newsize

	// Ghost flags now belong to the old view and are dropped with it.
	t.ghosts = 0

	if prev.size != 0 && t.hdr.len != 0 {
		old := prev
		old.len = prev.size // scan horizon, trimmed below
		t.old = &old
		t.oldShrink()
	} else if prev.size != 0 {
		freeRaw(t.alloc, prev.bitsRaw)
	}

	t.met.incResize()
	t.met.setLen(float64(t.hdr.len))
	t.met.setFootprint(float64(t.MemoryFootprint()))
	t.log.Debug("qhash resize",
		zap.String("table", t.name),
		zap.Uint32("from", prev.size),
		zap.Uint32("to", newsize),
		zap.Uint32("len", t.hdr.len))
}

// migrateChain moves every old-view entry on the collision chain of h into
// the new view.  Moved slots become old-view ghosts, so other chains passing
// through them keep probing correctly.
func (t *table[K, V]) migrateChain(h uint32) {
	o := t.old
	mask := o.size - 1
	inc := probeInc(h)
	pos := h & mask
	for i := uint32(0); i < o.size; i++ {
		fl := slotGetFlags(o.bits, pos)
		if fl == flagEmpty {
			break
		}
		if fl == flagOccupied {
			t.moveOldSlot(pos)
		}
		pos = (pos + inc) & mask
	}
	t.oldShrink()
}

// moveOldSlot migrates the live entry at an old-view position into the new
// view.
func (t *table[K, V]) moveOldSlot(pos uint32) {
	h := t.slotHash(pos)
	k := t.keys[pos]
	var v V
	if t.hasVals {
		v = t.vals[pos]
	}
	slotInvFlags(t.old.bits, pos)
	t.placeNew(k, v, h)
	t.met.incMigration()
}

// placeNew inserts an entry known to be absent from the new view.  If the
// chosen slot is still held by the old view, the offending entry is evicted
// and reinserted in turn; cascades stay short because the new view is at
// least as large as the old one and under half full.
func (t *table[K, V]) placeNew(k K, v V, h uint32) uint32 {
	mask := t.hdr.size - 1
	inc := probeInc(h)
	pos := h & mask
	for t.hdr.slotIsSet(pos) {
		pos = (pos + inc) & mask
	}

	var (
		evictK K
		evictV V
		evictH uint32
		evict  bool
	)
	if t.old != nil && t.old.slotIsSet(pos) {
		evictH = t.slotHash(pos)
		evictK = t.keys[pos]
		if t.hasVals {
			evictV = t.vals[pos]
		}
		slotInvFlags(t.old.bits, pos)
		evict = true
	}

	if slotGetFlags(t.hdr.bits, pos) == flagGhost {
		slotInvFlags(t.hdr.bits, pos)
		t.ghosts--
		t.met.incGhostReclaimed()
	} else {
		slotSetOccupied(t.hdr.bits, pos)
	}
	t.keys[pos] = k
	if t.hasVals {
		t.vals[pos] = v
	}
	if t.hashes != nil {
		t.hashes[pos] = h
	}

	if evict {
		t.placeNew(evictK, evictV, evictH)
		t.met.incMigration()
	}
	return pos
}

// forceDrain migrates up to n entries from the top of the old-view scan
// horizon, releasing the old view once it reaches zero.
func (t *table[K, V]) forceDrain(n int) {
	for ; n > 0 && t.old != nil; n-- {
		t.oldShrink()
		if t.old == nil {
			return
		}
		t.moveOldSlot(t.old.len - 1)
	}
	if t.old != nil {
		t.oldShrink()
	}
}

// oldShrink trims the scan horizon past trailing empties and ghosts and
// releases the old view when nothing is left below it.
func (t *table[K, V]) oldShrink() {
	o := t.old
	for o.len > 0 && !o.slotIsSet(o.len-1) {
		o.len--
	}
	if o.len == 0 {
		freeRaw(t.alloc, o.bitsRaw)
		t.old = nil
		t.log.Debug("qhash resize drained", zap.String("table", t.name))
	}
}

func (t *table[K, V]) finishResize() {
	for t.old != nil {
		t.forceDrain(64)
	}
}

/* -------------------------------------------------------------------------
   Operation layer
   ------------------------------------------------------------------------- */

// put reserves a slot for key under hash h.  The returned word carries the
// new-view position in its low 31 bits; the top bit is set when the key
// already existed.  On a fresh insertion the key (and cached hash) are
// written; the caller fills the value slot.
func (t *table[K, V]) put(h uint32, key *K) uint32 {
	t.guardMutable()
	t.reserveRoom()
	if t.old != nil {
		// Make the new view authoritative for this key before probing, and
		// push the drain forward while we are at it.
		t.migrateChain(h)
		t.forceDrain(drainPerOp)
	}

	mask := t.hdr.size - 1
	inc := probeInc(h)
	pos := h & mask
	ghost := int64(-1)
	for {
		fl := slotGetFlags(t.hdr.bits, pos)
		if fl == flagEmpty {
			break
		}
		if fl == flagGhost {
			if ghost < 0 {
				ghost = int64(pos)
			}
		} else if (t.hashes == nil || t.hashes[pos] == h) && t.eq(&t.keys[pos], key) {
			return pos | posCollision
		}
		pos = (pos + inc) & mask
	}
	if ghost >= 0 {
		pos = uint32(ghost)
	}

	// The slot may still be held by the old view; evict its entry first so
	// the cascade cannot land back on pos once we claim it.
	var (
		evictK K
		evictV V
		evictH uint32
		evict  bool
	)
	if t.old != nil && t.old.slotIsSet(pos) {
		evictH = t.slotHash(pos)
		evictK = t.keys[pos]
		if t.hasVals {
			evictV = t.vals[pos]
		}
		slotInvFlags(t.old.bits, pos)
		evict = true
	}

	if slotGetFlags(t.hdr.bits, pos) == flagGhost {
		slotInvFlags(t.hdr.bits, pos)
		t.ghosts--
		t.met.incGhostReclaimed()
	} else {
		slotSetOccupied(t.hdr.bits, pos)
	}
	t.hdr.len++
	t.keys[pos] = *key
	if t.hashes != nil {
		t.hashes[pos] = h
	}

	if evict {
		t.placeNew(evictK, evictV, evictH)
		t.met.incMigration()
		t.oldShrink()
	}
	return pos
}

// delAt toggles the slot at pos to ghost.  Positions come from Put, Find or
// enumeration; anything else is a no-op.  Deleting the position currently
// yielded by an iterator is the one mutation allowed during enumeration.
func (t *table[K, V]) delAt(pos uint32) {
	if t.sealed {
		if guardsEnabled {
			panic("qhash: delete operation on a sealed table")
		}
		return
	}
	if t.hdr.slotIsSet(pos) {
		slotInvFlags(t.hdr.bits, pos)
		t.hdr.len--
		t.ghosts++
	} else if t.old != nil && t.old.slotIsSet(pos) {
		slotInvFlags(t.old.bits, pos)
		t.hdr.len--
		t.oldShrink()
	}
}

// scan returns the first occupied position at or after from, in either view,
// or End.  It underlies enumeration and never mutates.
func (t *table[K, V]) scan(from uint32) uint32 {
	size := t.hdr.size
	if from >= size {
		return End
	}
	word := from >> 5
	shift := (from & 31) * 2
	words := uint32(len(t.hdr.bits))
	for ; word < words; word++ {
		w := t.hdr.bits[word]
		if t.old != nil && word < uint32(len(t.old.bits)) {
			w |= t.old.bits[word]
		}
		w &= occupiedMask << shift
		if w != 0 {
			pos := word<<5 + uint32(bits.TrailingZeros64(w))>>1
			if pos >= size {
				return End
			}
			return pos
		}
		shift = 0
	}
	return End
}

/* -------------------------------------------------------------------------
   Seal, clear, bookkeeping
   ------------------------------------------------------------------------- */

// rebuild reinserts every live entry into freshly allocated arrays of the
// given size.  Used by Seal to compact; never called with a resize in
// flight.
func (t *table[K, V]) rebuild(newsize uint32) {
	oldBits := t.hdr
	oldKeys, oldKeysRaw := t.keys, t.keysRaw
	oldVals, oldValsRaw := t.vals, t.valsRaw
	oldHashes, oldHashesRaw := t.hashes, t.hashesRaw

	t.keys, t.keysRaw = allocSlice[K](t.alloc, int(newsize))
	if t.hasVals {
		t.vals, t.valsRaw = allocSlice[V](t.alloc, int(newsize))
	}
	if t.cached {
		t.hashes, t.hashesRaw = allocSlice[uint32](t.alloc, int(newsize))
	}
	t.hdr.bits, t.hdr.bitsRaw = allocBits(t.alloc, newsize)
	t.hdr.size = newsize
	t.ghosts = 0

	for pos := uint32(0); pos < oldBits.size; pos++ {
		if !oldBits.slotIsSet(pos) {
			continue
		}
		var hv uint32
		if oldHashes != nil {
			hv = oldHashes[pos]
		} else {
			hv = t.hash(&oldKeys[pos])
		}
		var v V
		if t.hasVals {
			v = oldVals[pos]
		}
		t.placeNew(oldKeys[pos], v, hv)
	}

	freeRaw(t.alloc, oldBits.bitsRaw)
	freeRaw(t.alloc, oldKeysRaw)
	freeRaw(t.alloc, oldValsRaw)
	freeRaw(t.alloc, oldHashesRaw)
}

// Seal forces the compactness of the table, completes any unfinished resize
// and forbids further modifications.  It is designed for big tables that
// stay unmodified for a long time: the old view is released, tombstones are
// flushed and the table may shrink down to the load the entries require
// (never below the requested minimum size).  Sealing is idempotent.
func (t *table[K, V]) Seal() {
	if t.sealed {
		return
	}
	t.guardMutable()
	t.finishResize()

	if t.hdr.size != 0 {
		target := p2roundup(2 * (t.hdr.len + 1))
		if m := t.startSize(); target < m {
			target = m
		}
		if target < t.hdr.size || t.ghosts != 0 {
			if target > t.hdr.size {
				target = t.hdr.size
			}
			t.rebuild(target)
		}
	}
	t.sealed = true
	t.met.incSeal()
	t.met.setLen(float64(t.hdr.len))
	t.met.setFootprint(float64(t.MemoryFootprint()))
	t.log.Debug("qhash seal", zap.String("table", t.name), zap.Uint32("len", t.hdr.len))
}

// Unseal lifts the immutability again.  Ghost accounting survives: the seal
// compaction flushed the tombstones, so the counter is already exact.
func (t *table[K, V]) Unseal() { t.sealed = false }

// Sealed reports whether the table currently refuses mutation.
func (t *table[K, V]) Sealed() bool { return t.sealed }

// Clear releases both views and every parallel array, resetting the table to
// its zero-sized state.  The requested minimum size, the hash-cache setting
// and the callbacks survive.
func (t *table[K, V]) Clear() {
	t.guardMutable()
	if t.old != nil {
		freeRaw(t.alloc, t.old.bitsRaw)
		t.old = nil
	}
	freeRaw(t.alloc, t.hdr.bitsRaw)
	freeRaw(t.alloc, t.keysRaw)
	freeRaw(t.alloc, t.valsRaw)
	freeRaw(t.alloc, t.hashesRaw)
	t.hdr = header{}
	t.keys, t.keysRaw = nil, nil
	t.vals, t.valsRaw = nil, nil
	t.hashes, t.hashesRaw = nil, nil
	t.ghosts = 0
	t.met.setLen(0)
	t.met.setFootprint(float64(t.MemoryFootprint()))
	t.log.Debug("qhash clear", zap.String("table", t.name))
}

// Wipe clears the table and is the terminal operation: the table must not be
// used afterwards.
func (t *table[K, V]) Wipe() { t.Clear() }

// SetMinSize requests a lower bound on the slot count.  An already-allocated
// smaller table grows immediately so the bound holds at all times.
func (t *table[K, V]) SetMinSize(n uint32) {
	t.guardMutable()
	t.minsize = clampMinsize(n)
	if m := p2roundup(t.minsize); t.hdr.size != 0 && t.hdr.size < m {
		t.resize(m)
	}
}

// Len returns the number of live entries across both views.
func (t *table[K, V]) Len() int { return int(t.hdr.len) }

// Cap returns the slot count of the current view (zero or a power of two).
func (t *table[K, V]) Cap() uint32 { return t.hdr.size }

// Ghosts returns the number of tombstones reusable in the current view.
func (t *table[K, V]) Ghosts() uint32 { return t.ghosts }

// Resizing reports whether an incremental resize is in flight.
func (t *table[K, V]) Resizing() bool { return t.old != nil }

// Scan returns the first occupied position at or after from, or End.  This
// is the primitive under enumeration and is safe during it.
func (t *table[K, V]) Scan(from uint32) uint32 { return t.scan(from) }

// DelAt removes the entry at a position previously returned by the Put
// family, Find or enumeration.  Out-of-range or non-occupied positions are
// ignored.
func (t *table[K, V]) DelAt(pos uint32) { t.delAt(pos) }

// MemoryFootprint returns the bytes currently allocated by the table: flag
// arrays of both views, keys, values, cached hashes and the table header
// itself.
func (t *table[K, V]) MemoryFootprint() int {
	n := unsafeutil.SizeOf[table[K, V]]()
	n += len(t.hdr.bits) * 8
	if t.old != nil {
		n += len(t.old.bits) * 8
	}
	n += len(t.keys) * unsafeutil.SizeOf[K]()
	if t.hasVals {
		n += len(t.vals) * unsafeutil.SizeOf[V]()
	}
	n += len(t.hashes) * 4
	return n
}

/* -------------------------------------------------------------------------
   Typed primitives shared by the wrappers (hash supplied by the caller)
   ------------------------------------------------------------------------- */

// PutH reserves a slot for key under a precomputed hash.  On a fresh
// insertion the key is stored; on a collision the stored key is replaced
// only when fl carries Overwrite.  Map callers fill the value slot at the
// returned position themselves.
func (t *table[K, V]) PutH(h uint32, key K, fl uint32) Pos {
	pos := t.put(h, &key)
	if pos&posCollision != 0 && fl&Overwrite != 0 {
		t.keys[pos&^posCollision] = key
	}
	return Pos(pos)
}

// FindH is the migrating lookup under a precomputed hash.  It must not be
// used during enumeration.
func (t *table[K, V]) FindH(h uint32, key K) int32 { return t.get(h, &key) }

// FindSafeH is the non-mutating lookup under a precomputed hash.
func (t *table[K, V]) FindSafeH(h uint32, key K) int32 { return t.safeGet(h, &key) }

// Key returns the key stored at an occupied position.
func (t *table[K, V]) Key(pos uint32) K { return t.keys[pos] }
