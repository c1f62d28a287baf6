package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"

	"pipelinecheck/internal/pipeline/graph"
)

type Metrics struct {
	checksTotal    *prometheus.CounterVec
	failuresTotal  prometheus.Counter
	cacheHitsTotal prometheus.Counter
	checkDuration  prometheus.Histogram
	graphNodes     prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg when reg is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		checksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipelinecheck_checks_total",
				Help: "Number of pipeline checks by outcome.",
			},
			[]string{"outcome"},
		),
		failuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pipelinecheck_internal_failures_total",
				Help: "Number of checks that failed unexpectedly.",
			},
		),
		cacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pipelinecheck_report_cache_hits_total",
				Help: "Number of checks answered from the report cache.",
			},
		),
		checkDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pipelinecheck_check_duration_seconds",
				Help:    "Time taken to check a pipeline, cache hits included.",
				Buckets: prometheus.DefBuckets,
			},
		),
		graphNodes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pipelinecheck_graph_nodes",
				Help:    "Number of nodes per submitted pipeline.",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
	}
	if reg != nil {
		reg.MustRegister(
			m.checksTotal,
			m.failuresTotal,
			m.cacheHitsTotal,
			m.checkDuration,
			m.graphNodes,
		)
	}
	return m
}

func (m *Metrics) observe(r graph.Report, seconds float64, cached bool) {
	if m == nil {
		return
	}
	m.checksTotal.WithLabelValues(string(r.Outcome())).Inc()
	m.checkDuration.Observe(seconds)
	m.graphNodes.Observe(float64(r.NumNodes))
	if cached {
		m.cacheHitsTotal.Inc()
	}
}

func (m *Metrics) failure() {
	if m == nil {
		return
	}
	m.failuresTotal.Inc()
}
