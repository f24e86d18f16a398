// Package qhash implements real-time resizable hash containers: hash sets
// and hash maps over 32-bit integer, 64-bit integer, pointer and inline
// byte-vector keys.
//
// The trick is during resize.  When a table grows, the previous flag view is
// kept around and the two views coexist; every mutating operation migrates
// the collision chain of the key it touches plus at most two further old-view
// entries, so no single operation ever pays O(n).  Two lookups exist:
//
//	FindSafe — never modifies the table, but has to look the key up in both
//	           the old and the new view to be sure it does not exist.
//	Find     — preemptively moves the collision chain that corresponds to the
//	           searched key to the new view, plus makes the move progress if
//	           one is in progress.  It must not be used during enumeration.
//
// To reserve a slot one uses Put (or a wrapper).  Put returns the position
// where the key lives in the 31 least significant bits of the result; the
// most significant bit signals that a value already occupied that slot.
//
// When an element is inserted it always goes into the new view, but the slot
// it has to occupy may still be held by the old view.  Should that happen,
// the offending entry is reinserted into the new view first (it may not even
// move).  Such a move can trigger more moves, but collision chains stay short
// thanks to double hashing.
//
// Tables are not safe for concurrent mutation.  Read-only operations
// (FindSafe, Scan, accessors) may run concurrently with each other as long as
// no mutating operation — including Find — runs at the same time.
//
// © 2025 qhash authors. MIT License.
package qhash
