//go:build !qhash_unchecked

package qhash

// Debug guards are compiled in by default: mutating a sealed table or
// running a mutating operation while an iterator is open panics.  Build with
// -tags qhash_unchecked to compile the checks out.
const guardsEnabled = true
