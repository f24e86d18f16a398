//go:build qhash_unchecked

package qhash

const guardsEnabled = false
