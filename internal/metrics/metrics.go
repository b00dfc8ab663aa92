// Package metrics exposes Prometheus collectors for artifact lookups and parsing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Lookup results
const (
	ResultFound    = "found"
	ResultNotFound = "not_found"
	ResultError    = "error"
)

// Metrics holds the collectors registered on a private registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry       *prometheus.Registry
	locateTotal    *prometheus.CounterVec
	locateDuration *prometheus.HistogramVec
	parseTotal     *prometheus.CounterVec
}

// New creates a registry with the satscan collectors plus the Go runtime and
// process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		locateTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "satscan",
			Name:      "artifact_lookups_total",
			Help:      "Artifact lookups by artifact kind and result.",
		}, []string{"kind", "result"}),
		locateDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "satscan",
			Name:      "artifact_lookup_duration_seconds",
			Help:      "Time spent searching the output tree for an artifact.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"kind"}),
		parseTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "satscan",
			Name:      "spectrum_parses_total",
			Help:      "Spectrum files parsed by resulting parse mode.",
		}, []string{"mode"}),
	}

	registry.MustRegister(
		m.locateTotal,
		m.locateDuration,
		m.parseTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveLookup records one artifact search
func (m *Metrics) ObserveLookup(kind, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.locateTotal.WithLabelValues(kind, result).Inc()
	m.locateDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// ObserveParse records the mode a spectrum file was parsed with
func (m *Metrics) ObserveParse(mode string) {
	if m == nil {
		return
	}
	m.parseTotal.WithLabelValues(mode).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
