// Package metrics provides Prometheus metrics for kappagen generation runs.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default buckets for sampler durations, in seconds.
var defaultDurationBuckets = []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120}

// Manager manages all Prometheus metrics for kappagen.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	galaxiesGenerated prometheus.Counter
	mapsGenerated     *prometheus.CounterVec
	pixelsGenerated   prometheus.Counter
	filesWritten      *prometheus.CounterVec
	samplerDuration   *prometheus.HistogramVec
	errorsByComponent *prometheus.CounterVec
	lastRunSuccess    prometheus.Gauge
	lastRunTimestamp  prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewMetricsManager(WithPrometheusRegistry(customRegistry))
}

// NewMetricsManager creates a new metrics manager with default configuration.
func NewMetricsManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "kappagen",
		subsystem:        "generator",
		histogramBuckets: defaultDurationBuckets,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.galaxiesGenerated = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "galaxies_generated_total",
		Help:        "Total number of catalogue rows drawn",
		ConstLabels: m.constLabels,
	})

	m.mapsGenerated = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "maps_generated_total",
		Help:        "Total number of convergence maps drawn, by resolution",
		ConstLabels: m.constLabels,
	}, []string{"nside"})

	m.pixelsGenerated = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "pixels_generated_total",
		Help:        "Total number of map pixels drawn and smoothed",
		ConstLabels: m.constLabels,
	})

	m.filesWritten = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "files_written_total",
		Help:        "Total number of dataset files written, by kind",
		ConstLabels: m.constLabels,
	}, []string{"kind"})

	m.samplerDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "sampler_duration_seconds",
		Help:        "Wall time of one sampler call, by sampler",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"sampler"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_total",
		Help:        "Total number of errors, by component and kind",
		ConstLabels: m.constLabels,
	}, []string{"component", "kind"})

	m.lastRunSuccess = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_run_success",
		Help:        "1 if the last generation run completed, 0 otherwise",
		ConstLabels: m.constLabels,
	})

	m.lastRunTimestamp = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_run_timestamp_seconds",
		Help:        "Unix time at which the last generation run finished",
		ConstLabels: m.constLabels,
	})
}

// RecordGalaxies adds n drawn catalogue rows.
func (m *Manager) RecordGalaxies(n int) { m.galaxiesGenerated.Add(float64(n)) }

// RecordMap counts one drawn map of the given resolution.
func (m *Manager) RecordMap(nside, npix int) {
	m.mapsGenerated.WithLabelValues(fmt.Sprint(nside)).Inc()
	m.pixelsGenerated.Add(float64(npix))
}

// RecordFileWritten counts one written dataset file.
func (m *Manager) RecordFileWritten(kind string) { m.filesWritten.WithLabelValues(kind).Inc() }

// ObserveSamplerDuration records the wall time of a sampler call in seconds.
func (m *Manager) ObserveSamplerDuration(sampler string, seconds float64) {
	m.samplerDuration.WithLabelValues(sampler).Observe(seconds)
}

// RecordErrorByComponent records an error with component and kind labels.
func (m *Manager) RecordErrorByComponent(component, kind string) {
	m.errorsByComponent.WithLabelValues(component, kind).Inc()
}

// RecordRunResult records the outcome and finish time of a run.
func (m *Manager) RecordRunResult(ok bool, unixSeconds float64) {
	if ok {
		m.lastRunSuccess.Set(1)
	} else {
		m.lastRunSuccess.Set(0)
	}
	m.lastRunTimestamp.Set(unixSeconds)
}

// Global returns the process-wide manager.
func Global() *Manager { return globalManager }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
