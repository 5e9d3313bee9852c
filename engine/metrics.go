package engine

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/katalvlaran/otmatch/match"
)

// Cell outcome label values.
const (
	OutcomeMatched = "matched"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Metrics holds the run counters. They live in a private registry so that
// several engines (or tests) never collide; the CLI exports the registry as a
// node-exporter textfile.
type Metrics struct {
	Cells         *prometheus.CounterVec
	Entries       prometheus.Counter
	Iterations    *prometheus.CounterVec
	SolveDuration *prometheus.HistogramVec
	CostBytes     *prometheus.HistogramVec
	ActiveWorkers prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics registers every collector in a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.Cells = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "otmatch",
			Name:      "cells_total",
			Help:      "Cells processed, by outcome",
		},
		[]string{"outcome"},
	)
	m.Entries = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "otmatch",
		Name:      "entries_total",
		Help:      "Correspondence entries produced",
	})
	m.Iterations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "otmatch",
			Name:      "solver_iterations_total",
			Help:      "Transport solver iterations (pivots or augmentations), by stage",
		},
		[]string{"stage"},
	)
	m.SolveDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "otmatch",
			Name:      "solve_duration_seconds",
			Help:      "Transport solve time per cell, by stage",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		},
		[]string{"stage"},
	)
	m.CostBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "otmatch",
			Name:      "cost_matrix_bytes",
			Help:      "Cost matrix size per cell, by stage",
			Buckets:   prometheus.ExponentialBuckets(1024, 8, 10),
		},
		[]string{"stage"},
	)
	m.ActiveWorkers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "otmatch",
		Name:      "active_workers",
		Help:      "Cells currently being matched",
	})

	m.registry.MustRegister(m.Cells, m.Entries, m.Iterations, m.SolveDuration, m.CostBytes, m.ActiveWorkers)

	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// WriteTextfile writes the current values in the Prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Metrics) observeStage(st match.StageStats) {
	stage := st.Stage.String()
	m.Iterations.WithLabelValues(stage).Add(float64(st.Iterations))
	m.SolveDuration.WithLabelValues(stage).Observe(st.SolveTook.Seconds())
	m.CostBytes.WithLabelValues(stage).Observe(float64(st.CostBytes))
}
