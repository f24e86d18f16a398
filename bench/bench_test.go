// Package bench provides reproducible micro-benchmarks for qhash.
// Run via:  go test ./bench -bench=. -benchmem
//
// The benchmarks intentionally use fixed key shapes so results are
// comparable across versions:
//   • integers — uint64 (cheap hashing, fits in register)
//   • strings  — 17-byte keys (realistic identifier length)
//
// We measure:
//   1. Put            — write-only workload (includes resize epochs)
//   2. FindSafe       — read-only workload (after warm-up)
//   3. Find           — migrating lookup under a permanent resize trickle
//   4. Churn          — insert+delete steady state (ghost reuse path)
//   5. StrPut/StrGet  — vector kind, with and without hash cache
//   6. PoolPut        — stack-allocator-backed writes
//
// Results are printed in ns/op + alloc/op so CI can diff via benchstat.
//
// NOTE: Unit tests live in the pkg package; this file is *only* for
// performance.
//
// © 2025 qhash authors. MIT License.

package bench

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/Voskan/qhash/internal/mempool"
	qhash "github.com/Voskan/qhash/pkg"
)

/* -------------------------------------------------------------------------
   Test harness helpers
   ------------------------------------------------------------------------- */

const keys = 1 << 20 // 1M keys for the dataset

// global dataset reused across benches to avoid reallocating large slices.
var ds = func() []uint64 {
	rnd := rand.New(rand.NewSource(42))
	arr := make([]uint64, keys)
	for i := range arr {
		arr[i] = rnd.Uint64()
	}
	return arr
}()

var strDS = func() []string {
	arr := make([]string, keys)
	for i := range arr {
		arr[i] = fmt.Sprintf("bench-key-%07d", i)
	}
	return arr
}()

/* -------------------------------------------------------------------------
   Benchmarks
   ------------------------------------------------------------------------- */

func BenchmarkPut(b *testing.B) {
	s := qhash.NewSet64()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Put(ds[i&(keys-1)], 0)
	}
}

func BenchmarkPutPresized(b *testing.B) {
	s := qhash.NewSet64(qhash.WithMinSize(4 * keys))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Put(ds[i&(keys-1)], 0)
	}
}

func BenchmarkFindSafe(b *testing.B) {
	s := qhash.NewSet64()
	for _, k := range ds {
		s.Put(k, 0)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if s.FindSafe(ds[i&(keys-1)]) < 0 {
			b.Fatal("warm key missing")
		}
	}
}

// Find under a resize trickle: an insert every 64 lookups keeps an old view
// alive part of the time, exercising the chain-migration path.
func BenchmarkFindMigrating(b *testing.B) {
	s := qhash.NewSet64()
	for _, k := range ds[:keys/2] {
		s.Put(k, 0)
	}
	b.ReportAllocs()
	b.ResetTimer()
	extra := uint64(0)
	for i := 0; i < b.N; i++ {
		if i%64 == 0 {
			extra++
			s.Put(^extra, 0)
		}
		s.Find(ds[i&(keys/2-1)])
	}
}

func BenchmarkChurn(b *testing.B) {
	s := qhash.NewSet64()
	for _, k := range ds[:1<<16] {
		s.Put(k, 0)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		k := ds[i&(1<<16-1)]
		s.DelKey(k)
		s.Put(k, 0)
	}
}

func BenchmarkStrPut(b *testing.B) {
	for _, cached := range []bool{false, true} {
		name := "plain"
		opts := []qhash.Option{}
		if cached {
			name = "cached"
			opts = append(opts, qhash.WithHashCache())
		}
		b.Run(name, func(b *testing.B) {
			s := qhash.NewStrSet(opts...)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				s.Put(strDS[i&(keys-1)], 0)
			}
		})
	}
}

func BenchmarkStrGet(b *testing.B) {
	m := qhash.NewStrMap[uint64](qhash.WithHashCache())
	for i, k := range strDS[:1<<18] {
		m.Put(k, uint64(i), 0)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.GetSafe(strDS[i&(1<<18-1)])
	}
}

func BenchmarkPoolPut(b *testing.B) {
	pool := mempool.New()
	s := qhash.NewSet64(qhash.WithAllocator(pool))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Put(ds[i&(keys-1)], 0)
	}
}
