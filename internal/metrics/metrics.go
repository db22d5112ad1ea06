// Package metrics exposes Prometheus instrumentation for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Simulations counts simulation runs by kind and outcome.
	Simulations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finsim_simulations_total",
			Help: "Total simulation runs by kind and status",
		},
		[]string{"kind", "status"},
	)

	// SimulationDuration observes end-to-end simulation latency.
	SimulationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "finsim_simulation_duration_seconds",
			Help:    "Simulation run duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// IndexFetches counts correction-index lookups by series and outcome.
	IndexFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finsim_index_fetches_total",
			Help: "Correction index fetches by series and status",
		},
		[]string{"series", "status"},
	)
)
