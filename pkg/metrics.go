package qhash

// metrics.go contains a thin abstraction over Prometheus so that qhash can
// be used with or without metrics.  When the user passes a
// *prometheus.Registry via WithMetrics, labeled metrics are created and
// registered; otherwise a no-op sink is used and the hot path does not pay
// for metric updates.
//
// All metrics are labeled by table name (WithName) so several tables can
// share one registry; aggregation happens on the Prometheus side.
//
// ┌───────────────────────────────────────────────┐
// │ Metric                        │ Type │ Labels │
// ├───────────────────────────────┼──────┼────────┤
// │ qhash_resizes_total           │ Ctr  │ table  │
// │ qhash_migrations_total        │ Ctr  │ table  │
// │ qhash_ghosts_reclaimed_total  │ Ctr  │ table  │
// │ qhash_seals_total             │ Ctr  │ table  │
// │ qhash_len                     │ Gge  │ table  │
// │ qhash_footprint_bytes         │ Gge  │ table  │
// └───────────────────────────────────────────────┘
//
// © 2025 qhash authors. MIT License.

import "github.com/prometheus/client_golang/prometheus"

// metricsSink is the internal interface abstracting the concrete backend
// (Prometheus vs noop).  The table core only knows about these methods.
type metricsSink interface {
	incResize()
	incMigration()
	incGhostReclaimed()
	incSeal()
	setLen(v float64)
	setFootprint(v float64)
}

/*
   ---------------- No-op implementation ----------------
*/

type noopMetrics struct{}

func (noopMetrics) incResize()           {}
func (noopMetrics) incMigration()        {}
func (noopMetrics) incGhostReclaimed()   {}
func (noopMetrics) incSeal()             {}
func (noopMetrics) setLen(float64)       {}
func (noopMetrics) setFootprint(float64) {}

/*
   ---------------- Prometheus implementation ----------------
*/

type promMetrics struct {
	resizes    prometheus.Counter
	migrations prometheus.Counter
	reclaimed  prometheus.Counter
	seals      prometheus.Counter
	length     prometheus.Gauge
	footprint  prometheus.Gauge
}

// registerOrReuse registers c, or returns the collector already registered
// under the same descriptor so several tables can share one registry.
func registerOrReuse(reg *prometheus.Registry, c prometheus.Collector) prometheus.Collector {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector
		}
		panic(err)
	}
	return c
}

func counterVec(reg *prometheus.Registry, name, help string) *prometheus.CounterVec {
	cv := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "qhash",
		Name:      name,
		Help:      help,
	}, []string{"table"})
	return registerOrReuse(reg, cv).(*prometheus.CounterVec)
}

func gaugeVec(reg *prometheus.Registry, name, help string) *prometheus.GaugeVec {
	gv := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "qhash",
		Name:      name,
		Help:      help,
	}, []string{"table"})
	return registerOrReuse(reg, gv).(*prometheus.GaugeVec)
}

// newPromMetrics resolves every label lookup once so the sink methods are a
// plain counter increment.
func newPromMetrics(name string, reg *prometheus.Registry) *promMetrics {
	return &promMetrics{
		resizes: counterVec(reg, "resizes_total",
			"Number of resize epochs opened.").WithLabelValues(name),
		migrations: counterVec(reg, "migrations_total",
			"Number of entries migrated from the old view.").WithLabelValues(name),
		reclaimed: counterVec(reg, "ghosts_reclaimed_total",
			"Number of tombstones reused by insertions.").WithLabelValues(name),
		seals: counterVec(reg, "seals_total",
			"Number of seal operations.").WithLabelValues(name),
		length: gaugeVec(reg, "len",
			"Live entries in the table.").WithLabelValues(name),
		footprint: gaugeVec(reg, "footprint_bytes",
			"Bytes allocated by the table.").WithLabelValues(name),
	}
}

func (m *promMetrics) incResize()             { m.resizes.Inc() }
func (m *promMetrics) incMigration()          { m.migrations.Inc() }
func (m *promMetrics) incGhostReclaimed()     { m.reclaimed.Inc() }
func (m *promMetrics) incSeal()               { m.seals.Inc() }
func (m *promMetrics) setLen(v float64)       { m.length.Set(v) }
func (m *promMetrics) setFootprint(v float64) { m.footprint.Set(v) }

/*
   ---------------- Factory ----------------
*/

func newMetricsSink(name string, reg *prometheus.Registry) metricsSink {
	if reg == nil {
		return noopMetrics{}
	}
	return newPromMetrics(name, reg)
}
