// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CyclesTotal counts completed collection cycles.
	CyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skyshield_cycles_total",
		Help: "Total number of completed collection cycles",
	})

	// CycleFailures counts cycles aborted by a configuration error.
	CycleFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skyshield_cycle_failures_total",
		Help: "Total number of aborted collection cycles",
	})

	// SourceFailures counts degraded source fetches by source and error kind.
	SourceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skyshield_source_failures_total",
		Help: "Total number of failed source fetches",
	}, []string{"source", "kind"})

	// MeasurementsCollected counts classified measurements by pollutant and rating.
	MeasurementsCollected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skyshield_measurements_total",
		Help: "Total number of collected measurements",
	}, []string{"pollutant", "rating"})

	// CycleDuration observes end-to-end cycle latency in seconds.
	CycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "skyshield_cycle_duration_seconds",
		Help:    "Collection cycle duration in seconds",
		Buckets: prometheus.DefBuckets,
	})
)

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
