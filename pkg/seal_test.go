package qhash_test

// seal_test.go covers the immutability discipline: sealing completes any
// in-flight resize, compacts, refuses mutation until unsealed, and is
// idempotent.
//
// © 2025 qhash authors. MIT License.

import (
	"testing"

	"github.com/stretchr/testify/require"

	qhash "github.com/Voskan/qhash/pkg"
)

func TestSealLifecycle(t *testing.T) {
	s := qhash.NewSet32()
	for i := uint32(0); i < 1000; i++ {
		s.Put(i, 0)
	}

	s.Seal()
	require.True(t, s.Sealed())
	require.False(t, s.Resizing(), "seal must complete any in-flight resize")

	for i := uint32(0); i < 1000; i++ {
		require.GreaterOrEqual(t, s.FindSafe(i), int32(0), "key %d after seal", i)
	}
	require.Equal(t, 1000, s.Len())

	s.Unseal()
	require.False(t, s.Sealed())
	require.False(t, s.Put(5000, 0).Collided())
	require.Equal(t, 1001, s.Len())
}

func TestSealIdempotent(t *testing.T) {
	s := qhash.NewSet32()
	s.Add(1)
	s.Seal()
	fp := s.MemoryFootprint()
	require.NotPanics(t, s.Seal)
	require.Equal(t, fp, s.MemoryFootprint())
}

func TestSealCompacts(t *testing.T) {
	s := qhash.NewSet32()
	for i := uint32(0); i < 10000; i++ {
		s.Add(i)
	}
	for i := uint32(0); i < 10000; i += 2 {
		s.DelKey(i)
	}
	capBefore := s.Cap()
	fpBefore := s.MemoryFootprint()

	s.Seal()
	require.Equal(t, 0, int(s.Ghosts()), "seal must flush tombstones")
	require.LessOrEqual(t, s.Cap(), capBefore)
	require.LessOrEqual(t, s.MemoryFootprint(), fpBefore)
	for i := uint32(1); i < 10000; i += 2 {
		require.GreaterOrEqual(t, s.FindSafe(i), int32(0), "key %d after compaction", i)
	}
}

func TestSealMidResize(t *testing.T) {
	s := qhash.NewSet32()
	n := uint32(0)
	for !s.Resizing() {
		s.Add(n)
		n++
	}

	s.Seal()
	require.False(t, s.Resizing())
	for i := uint32(0); i < n; i++ {
		require.GreaterOrEqual(t, s.FindSafe(i), int32(0))
	}
}

func TestSealEmpty(t *testing.T) {
	s := qhash.NewSet32()
	require.NotPanics(t, s.Seal)
	require.Negative(t, s.FindSafe(1))
	s.Unseal()
	require.True(t, s.Add(1))
}

func TestSealRespectsMinSize(t *testing.T) {
	s := qhash.NewSet32(qhash.WithMinSize(1024))
	for i := uint32(0); i < 8; i++ {
		s.Add(i)
	}
	s.Seal()
	require.GreaterOrEqual(t, s.Cap(), uint32(1024))
}
