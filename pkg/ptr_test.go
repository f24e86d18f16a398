package qhash_test

// ptr_test.go covers the two pointer kinds: identity (the pointer is the
// key) and indirection (the pointee is the key, through user callbacks).
//
// © 2025 qhash authors. MIT License.

import (
	"testing"

	"github.com/stretchr/testify/require"

	qhash "github.com/Voskan/qhash/pkg"
)

type node struct {
	id   uint32
	name string
}

func TestPtrIdentity(t *testing.T) {
	a := &node{id: 1, name: "same"}
	b := &node{id: 1, name: "same"} // equal contents, distinct identity

	s := qhash.NewPtrSet[node]()
	require.True(t, s.Add(a))
	require.True(t, s.Add(b), "distinct pointers are distinct keys")
	require.False(t, s.Add(a))

	require.True(t, s.Contains(a))
	require.True(t, s.Contains(b))
	require.Equal(t, 2, s.Len())

	pos := s.FindSafe(a)
	require.GreaterOrEqual(t, pos, int32(0))
	require.Same(t, a, s.Key(uint32(pos)))
}

func TestPtrMap(t *testing.T) {
	owners := qhash.NewPtrMap[node, string]()
	a := &node{id: 7}
	owners.Put(a, "alice", 0)

	v, ok := owners.GetSafe(a)
	require.True(t, ok)
	require.Equal(t, "alice", v)

	_, ok = owners.GetSafe(&node{id: 7})
	require.False(t, ok, "identity map must not match by contents")
}

func TestRefDereference(t *testing.T) {
	hash := func(n *node) uint32 { return n.id }
	eq := func(a, b *node) bool { return a.id == b.id }

	s := qhash.NewRefSet[node](hash, eq)
	a := &node{id: 1, name: "first"}
	b := &node{id: 1, name: "second"} // same id → same key

	require.True(t, s.Add(a))
	require.False(t, s.Add(b), "equal pointees are the same key")
	require.Equal(t, 1, s.Len())

	pos := s.FindSafe(&node{id: 1})
	require.GreaterOrEqual(t, pos, int32(0))
	require.Same(t, a, s.Key(uint32(pos)), "first insertion wins without Overwrite")

	// Overwrite swaps the stored pointer for the colliding key.
	s.Put(b, qhash.Overwrite)
	pos = s.FindSafe(&node{id: 1})
	require.Same(t, b, s.Key(uint32(pos)))
}

func TestRefMapSurvivesResize(t *testing.T) {
	hash := func(n *node) uint32 { return n.id * 2654435761 }
	eq := func(a, b *node) bool { return a.id == b.id }

	m := qhash.NewRefMap[node, int](hash, eq, qhash.WithHashCache())
	nodes := make([]*node, 2000)
	for i := range nodes {
		nodes[i] = &node{id: uint32(i)}
		m.Put(nodes[i], i, 0)
	}
	for i, n := range nodes {
		v, ok := m.GetSafe(n)
		require.True(t, ok, "node %d", i)
		require.Equal(t, i, v)
	}
}
