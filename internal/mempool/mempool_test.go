package mempool

// © 2025 qhash authors. MIT License.

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Voskan/qhash/internal/unsafeutil"
)

func TestAllocZeroed(t *testing.T) {
	p := New()
	b := p.Alloc(1000)
	require.Len(t, b, 1000)
	for i, v := range b {
		require.Zero(t, v, "byte %d", i)
	}
}

func TestAllocRawAligned(t *testing.T) {
	p := New()
	for _, n := range []int{1, 7, 16, 100, 4096} {
		b := p.AllocRaw(n)
		require.GreaterOrEqual(t, len(b), n)
		require.Zero(t, unsafeutil.Addr(&b[0])%blockAlign, "alloc of %d bytes", n)
	}
}

func TestReallocPreserves(t *testing.T) {
	p := New()
	b := p.AllocRaw(64)
	for i := range b {
		b[i] = byte(i)
	}
	b = p.Realloc(b, 4096)
	require.GreaterOrEqual(t, len(b), 4096)
	for i := 0; i < 64; i++ {
		require.Equal(t, byte(i), b[i])
	}
}

// The last allocation extends in place instead of copying.
func TestReallocExtendsLast(t *testing.T) {
	p := New()
	b := p.AllocRaw(32)
	b[0] = 0xAB
	nb := p.Realloc(b, 128)
	require.Equal(t, &b[0], &nb[0])
	require.Equal(t, byte(0xAB), nb[0])
}

// An intervening allocation defeats the fast path but still preserves data.
func TestReallocAfterOther(t *testing.T) {
	p := New()
	b := p.AllocRaw(32)
	b[0] = 0xCD
	_ = p.AllocRaw(16)
	nb := p.Realloc(b, 64)
	require.Equal(t, byte(0xCD), nb[0])
}

func TestFrames(t *testing.T) {
	p := New()
	base := p.AllocRaw(100)
	base[0] = 1

	p.Push()
	inner := p.AllocRaw(1000)
	inner[0] = 2
	p.Pop()

	// Memory from the popped frame is reused by the next allocation.
	again := p.AllocRaw(1000)
	require.Equal(t, &inner[0], &again[0])
	require.Equal(t, byte(1), base[0])
}

func TestResetAndRelease(t *testing.T) {
	p := New()
	_ = p.AllocRaw(1 << 20)
	size := p.Size()
	require.Positive(t, size)

	p.Reset()
	require.Equal(t, size, p.Size(), "reset keeps the blocks")

	p.Release()
	require.Zero(t, p.Size())
	b := p.Alloc(10)
	require.Len(t, b, 10)
}

func TestGrowth(t *testing.T) {
	p := New()
	var total int
	for i := 0; i < 100; i++ {
		total += 1 << 16
		_ = p.AllocRaw(1 << 16)
	}
	require.GreaterOrEqual(t, p.Size(), total)
}
