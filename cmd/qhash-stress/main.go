package main

// main.go implements the qhash-stress driver: it runs alternating
// mutate/verify rounds against a qhash table and exposes live diagnostics
// over HTTP while doing so:
//   • GET /metrics                — Prometheus metrics (table + driver).
//   • GET /debug/qhash/snapshot  — JSON snapshot of the driver counters.
//
// Mutation is single-threaded, as the table requires; the verify rounds fan
// out read-only lookups across an errgroup, which is the one concurrency the
// table permits.  A typical session:
//
//	go run ./cmd/qhash-stress --kind str --keys 500000 --rounds 20
//	curl localhost:6060/debug/qhash/snapshot
//
// Build-time flag: `-ldflags "-X main.version=vX.Y.Z"` is set by the release
// pipeline.
// ---------------------------------------------------------------
// © 2025 qhash authors. MIT License.

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	qhash "github.com/Voskan/qhash/pkg"
)

var version = "dev"

// snapshot is what /debug/qhash/snapshot serves.  The driver stores fresh
// values between rounds; HTTP reads them through atomics so the handlers
// never touch the table itself.
type snapshot struct {
	Rounds    atomic.Int64
	Inserts   atomic.Int64
	Deletes   atomic.Int64
	Lookups   atomic.Int64
	Misses    atomic.Int64
	Len       atomic.Int64
	Footprint atomic.Int64
}

var snap snapshot

func main() {
	opts := parseFlags()

	if opts.version {
		fmt.Println(version)
		return
	}

	logger := buildLogger(opts.verbose)
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	reg := prometheus.NewRegistry()
	go serveHTTP(opts.addr, reg, logger)

	keys, err := loadKeys(opts)
	if err != nil {
		logger.Fatal("dataset", zap.Error(err))
	}

	w := newWorkload(opts, reg, logger, keys)
	start := time.Now()
	round := 0
	for ctx.Err() == nil && (opts.rounds == 0 || round < opts.rounds) {
		round++
		w.mutate(round)
		if err := w.verify(ctx, round, opts.readers); err != nil {
			logger.Fatal("verify round failed", zap.Int("round", round), zap.Error(err))
		}
		snap.Rounds.Store(int64(round))
		logger.Info("round done",
			zap.Int("round", round),
			zap.Int64("len", snap.Len.Load()),
			zap.Int64("footprint", snap.Footprint.Load()),
			zap.Duration("elapsed", time.Since(start)))
	}
}

func buildLogger(verbose bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintln(os.Stderr, "qhash-stress:", err)
		os.Exit(1)
	}
	return logger
}

func serveHTTP(addr string, reg *prometheus.Registry, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/debug/qhash/snapshot", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"version":         version,
			"rounds":          snap.Rounds.Load(),
			"inserts_total":   snap.Inserts.Load(),
			"deletes_total":   snap.Deletes.Load(),
			"lookups_total":   snap.Lookups.Load(),
			"misses_total":    snap.Misses.Load(),
			"len":             snap.Len.Load(),
			"footprint_bytes": snap.Footprint.Load(),
		})
	})
	logger.Info("listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Warn("http server stopped", zap.Error(err))
	}
}

// loadKeys builds the key stream from --dataset or the seeded PRNG.
func loadKeys(opts *options) ([]uint64, error) {
	if opts.dataset == "" {
		rnd := rand.New(rand.NewSource(opts.seed))
		keys := make([]uint64, opts.keys*2)
		for i := range keys {
			keys[i] = rnd.Uint64()
		}
		return keys, nil
	}
	f, err := os.Open(opts.dataset)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var keys []uint64
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		k, err := strconv.ParseUint(line, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("dataset line %d: %w", len(keys)+1, err)
		}
		keys = append(keys, k)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(keys) < 2 {
		return nil, errors.New("dataset holds fewer than two keys")
	}
	return keys, nil
}

/* -------------------------------------------------------------------------
   Workload
   ------------------------------------------------------------------------- */

// workload runs a sliding-window churn: each mutate round deletes the
// previous round's window of keys and inserts the next one, so the table sees
// growth, ghost creation and tombstone reuse in a steady state.
type workload struct {
	opts   *options
	logger *zap.Logger
	keys   []uint64

	u64 *qhash.Set[uint64]
	str *qhash.Map[string, uint64]
}

func newWorkload(opts *options, reg *prometheus.Registry, logger *zap.Logger, keys []uint64) *workload {
	tableOpts := []qhash.Option{
		qhash.WithMetrics(reg),
		qhash.WithLogger(logger),
		qhash.WithName("stress"),
	}
	if opts.hashCache {
		tableOpts = append(tableOpts, qhash.WithHashCache())
	}
	if opts.minSize > 0 {
		tableOpts = append(tableOpts, qhash.WithMinSize(opts.minSize))
	}

	w := &workload{opts: opts, logger: logger, keys: keys}
	switch opts.kind {
	case "u64":
		w.u64 = qhash.NewSet64(tableOpts...)
	case "str":
		w.str = qhash.NewStrMap[uint64](tableOpts...)
	}
	return w
}

func (w *workload) window(round int) []uint64 {
	n := w.opts.keys
	off := (round * n) % len(w.keys)
	if off+n <= len(w.keys) {
		return w.keys[off : off+n]
	}
	return w.keys[off:]
}

func strKey(k uint64) string { return "stress-" + strconv.FormatUint(k, 36) }

// mutate runs on the driver goroutine only.  The previous window is deleted
// before the new one is inserted, so keys shared by both windows end the
// round present.
func (w *workload) mutate(round int) {
	if round > 1 {
		del := w.window(round - 1)
		for _, k := range del {
			if w.u64 != nil {
				w.u64.DelKey(k)
			} else {
				w.str.DelKey(strKey(k))
			}
		}
		snap.Deletes.Add(int64(len(del)))
	}

	ins := w.window(round)
	for _, k := range ins {
		if w.u64 != nil {
			w.u64.Put(k, 0)
		} else {
			w.str.Put(strKey(k), k, qhash.Overwrite)
		}
	}
	snap.Inserts.Add(int64(len(ins)))

	if w.u64 != nil {
		snap.Len.Store(int64(w.u64.Len()))
		snap.Footprint.Store(int64(w.u64.MemoryFootprint()))
	} else {
		snap.Len.Store(int64(w.str.Len()))
		snap.Footprint.Store(int64(w.str.MemoryFootprint()))
	}
}

// verify fans read-only lookups of the current window across readers.  No
// mutation runs concurrently, which is exactly the concurrency contract the
// table documents.
func (w *workload) verify(ctx context.Context, round, readers int) error {
	win := w.window(round)
	var g errgroup.Group
	chunk := (len(win) + readers - 1) / readers
	for r := 0; r < readers; r++ {
		part := win[min(r*chunk, len(win)):min((r+1)*chunk, len(win))]
		g.Go(func() error {
			for _, k := range part {
				var hit bool
				if w.u64 != nil {
					hit = w.u64.FindSafe(k) >= 0
				} else {
					_, hit = w.str.GetSafe(strKey(k))
				}
				snap.Lookups.Add(1)
				if !hit {
					snap.Misses.Add(1)
					return fmt.Errorf("key %d missing from live window", k)
				}
			}
			return ctx.Err()
		})
	}
	return g.Wait()
}
