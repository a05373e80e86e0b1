// Package metrics provides Prometheus metrics for the instapulse service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus collectors for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Upstream Graph API calls
	upstreamRequests    *prometheus.CounterVec
	upstreamLatency     prometheus.Histogram
	upstreamRetries     prometheus.Counter
	upstreamRateLimited prometheus.Counter

	// System health
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid the default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "instapulse",
		subsystem:        "insights",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	factory := promauto.With(m.registry)

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests served, by endpoint, method and status.",
	}, []string{"endpoint", "method", "status"})

	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency in seconds, by endpoint and method.",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method"})

	m.upstreamRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "upstream_requests_total",
		Help:      "Graph API calls, by edge and outcome.",
	}, []string{"edge", "outcome"})

	m.upstreamLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "upstream_request_duration_seconds",
		Help:      "Graph API call latency in seconds, retry sleeps included.",
		Buckets:   m.histogramBuckets,
	})

	m.upstreamRetries = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "upstream_retries_total",
		Help:      "Retries issued after upstream 429 responses.",
	})

	m.upstreamRateLimited = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "upstream_rate_limited_total",
		Help:      "Calls that exhausted the retry budget on 429s.",
	})

	m.systemMemoryUsage = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Allocated heap bytes.",
	})

	m.systemGoroutineCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current goroutine count.",
	})
}

// GetRegistry returns the registry collectors are registered with, for
// serving via promhttp.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// RecordHTTPRequest counts one served HTTP request.
func RecordHTTPRequest(endpoint, method, status string) {
	if globalManager == nil || !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration observes one HTTP request latency in seconds.
func RecordHTTPRequestDuration(endpoint, method string, seconds float64) {
	if globalManager == nil || !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method).Observe(seconds)
}

// RecordUpstreamRequest counts one Graph API call outcome.
func RecordUpstreamRequest(edge, outcome string) {
	if globalManager == nil || !globalManager.enabled {
		return
	}
	globalManager.upstreamRequests.WithLabelValues(edge, outcome).Inc()
}

// RecordUpstreamLatency observes one Graph API call latency in seconds.
func RecordUpstreamLatency(seconds float64) {
	if globalManager == nil || !globalManager.enabled {
		return
	}
	globalManager.upstreamLatency.Observe(seconds)
}

// RecordUpstreamRetry counts one retry after a 429.
func RecordUpstreamRetry() {
	if globalManager == nil || !globalManager.enabled {
		return
	}
	globalManager.upstreamRetries.Inc()
}

// RecordUpstreamRateLimited counts one call that exhausted its retries.
func RecordUpstreamRateLimited() {
	if globalManager == nil || !globalManager.enabled {
		return
	}
	globalManager.upstreamRateLimited.Inc()
}

// UpdateSystemMemoryUsage sets the allocated heap gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	if globalManager == nil || !globalManager.enabled {
		return
	}
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	if globalManager == nil || !globalManager.enabled {
		return
	}
	globalManager.systemGoroutineCount.Set(float64(count))
}
