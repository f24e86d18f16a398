package qhash

// config.go defines the internal configuration object and the set of
// functional options accepted by every constructor.  Options never allocate
// unless strictly necessary — they just capture pointers to external objects
// (registry, logger, allocator).
//
// Design notes
// ------------
// • All fields are initialised with sensible defaults in defaultConfig().
// • The struct is hidden from the public API: users can only influence
//   behaviour via Option.  This guarantees forward compatibility.
// • Hash caching trades 4 bytes per slot for hash-free resizes and cheap
//   pre-equality filtering; see WithHashCache before enabling it.
//
// © 2025 qhash authors. MIT License.

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option is the functional option passed to the constructors.
type Option func(*config)

type config struct {
	alloc    Allocator
	cached   bool
	minsize  uint32
	name     string
	logger   *zap.Logger
	registry *prometheus.Registry
}

func defaultConfig() *config {
	return &config{
		name:   "qhash",
		logger: zap.NewNop(),
		// registry stays nil — user must opt in to metrics.
	}
}

// WithAllocator backs the table's arrays with a custom allocator instead of
// the Go heap.  Allocator-backed arrays are scanned as plain bytes: do not
// combine with key or value types that contain Go pointers.
func WithAllocator(a Allocator) Option {
	return func(c *config) { c.alloc = a }
}

// WithHashCache stores the 32-bit hash of every key next to it.  This costs
// 4 bytes per slot (the slot count runs ahead of the entry count) and buys a
// marginally faster lookup — hashes are compared before key equality — and a
// much faster resize, since hashes need not be recomputed to find each key's
// new position.  Reserve it for expensive hash/equality callbacks or tables
// that resize frequently; it buys nothing for the integer kinds, whose
// hashes are cheaper than the cache lookup.
func WithHashCache() Option {
	return func(c *config) { c.cached = true }
}

// WithMinSize requests a lower bound on the slot count, avoiding the early
// resize cascade when the rough table size is known up front.
func WithMinSize(n uint32) Option {
	return func(c *config) { c.minsize = n }
}

// WithName sets the label under which the table reports metrics and logs.
func WithName(name string) Option {
	return func(c *config) {
		if name != "" {
			c.name = name
		}
	}
}

// WithLogger plugs an external zap.Logger.  The table never logs on the hot
// path; only slow events (resize epochs, seal, clear) are emitted, at Debug.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics enables Prometheus metrics for the table.  Passing nil
// disables metrics (the default).
func WithMetrics(reg *prometheus.Registry) Option {
	return func(c *config) { c.registry = reg }
}
