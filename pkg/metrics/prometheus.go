// Package metrics provides Prometheus metrics for the Bilanzanalyse service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace      string
	subsystem      string
	metricPrefix   string
	latencyBuckets []float64
	// sizeBuckets covers a header-only CSV up to a multi-page PDF.
	sizeBuckets []float64
	constLabels map[string]string
	registry    prometheus.Registerer

	// Core Business Metrics - the ratio pipeline
	analysesTotal    prometheus.Counter
	validationErrors *prometheus.CounterVec
	divisionErrors   *prometheus.CounterVec
	overflowErrors   *prometheus.CounterVec
	exportsTotal     *prometheus.CounterVec
	exportBytes      *prometheus.HistogramVec
	renderLatency    *prometheus.HistogramVec
	renderErrors     *prometheus.CounterVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Live index metrics
	indexFetches     *prometheus.CounterVec
	indexFetchErrors *prometheus.CounterVec
	indexLastPrice   *prometheus.GaugeVec
	indexHistorySize prometheus.Gauge
	indexSamples     prometheus.Counter

	// Queue Metrics - sample hand-off between poller and recorder
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueErrors prometheus.Counter
	queueDequeues      prometheus.Counter

	// Enhanced Error Metrics - Detailed error tracking
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "bilanz",
		subsystem:      "analysis",
		latencyBuckets: prometheus.DefBuckets,
		sizeBuckets:    prometheus.ExponentialBuckets(128, 4, 8),
		constLabels:    make(map[string]string),
		registry:       prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	constLabels := prometheus.Labels(m.constLabels)

	m.analysesTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name: m.name("analyses_total"),
		Help: "Total number of comparison sets successfully computed",
	})
	m.validationErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name: m.name("validation_errors_total"),
		Help: "Rejected raw inputs by offending field",
	}, []string{"field"})
	m.divisionErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name: m.name("division_by_zero_total"),
		Help: "Ratio computations aborted by a zero denominator",
	}, []string{"denominator"})
	m.overflowErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name: m.name("overflow_total"),
		Help: "Ratio computations aborted by a non-finite result",
	}, []string{"ratio"})
	m.exportsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name: m.name("exports_total"),
		Help: "Successful exports by format",
	}, []string{"format"})
	m.exportBytes = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name:    m.name("export_bytes"),
		Help:    "Size of produced export artifacts in bytes",
		Buckets: m.sizeBuckets,
	}, []string{"format"})
	m.renderLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name:    m.name("render_latency_milliseconds"),
		Help:    "Latency of each pipeline stage in milliseconds",
		Buckets: m.latencyBuckets,
	}, []string{"stage"})
	m.renderErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name: m.name("render_errors_total"),
		Help: "Malformed artifacts rejected by the renderers",
	}, []string{"artifact"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name: m.name("http_requests_total"),
		Help: "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name:    m.name("http_request_duration_milliseconds"),
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.latencyBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.indexFetches = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "index", ConstLabels: constLabels,
		Name: m.name("fetches_total"),
		Help: "Index price fetches by symbol",
	}, []string{"symbol"})
	m.indexFetchErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "index", ConstLabels: constLabels,
		Name: m.name("fetch_errors_total"),
		Help: "Failed index price fetches by symbol",
	}, []string{"symbol"})
	m.indexLastPrice = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "index", ConstLabels: constLabels,
		Name: m.name("last_price"),
		Help: "Most recently recorded price by symbol",
	}, []string{"symbol"})
	m.indexHistorySize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "index", ConstLabels: constLabels,
		Name: m.name("history_size"),
		Help: "Samples currently held in the bounded index history",
	})
	m.indexSamples = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "index", ConstLabels: constLabels,
		Name: m.name("samples_total"),
		Help: "Samples appended to the index history",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "queue", ConstLabels: constLabels,
		Name: m.name("size"),
		Help: "Current number of samples waiting in the queue",
	})
	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "queue", ConstLabels: constLabels,
		Name: m.name("capacity"),
		Help: "Configured queue capacity",
	})
	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "queue", ConstLabels: constLabels,
		Name: m.name("enqueue_errors_total"),
		Help: "Samples dropped because the queue was full or closed",
	})
	m.queueDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "queue", ConstLabels: constLabels,
		Name: m.name("dequeues_total"),
		Help: "Samples handed to the recorder",
	})

	m.errorRateByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name: m.name("errors_by_component_total"),
		Help: "Errors by component and error type",
	}, []string{"component", "error_type"})
	m.errorRateByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name: m.name("errors_by_type_total"),
		Help: "Errors by type and severity",
	}, []string{"error_type", "severity"})
	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name: m.name("errors_by_endpoint_total"),
		Help: "Errors by HTTP endpoint",
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "system", ConstLabels: constLabels,
		Name: m.name("memory_bytes"),
		Help: "Allocated heap memory in bytes",
	})
	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "system", ConstLabels: constLabels,
		Name: m.name("goroutines"),
		Help: "Number of running goroutines",
	})
	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: "system", ConstLabels: constLabels,
		Name:    m.name("gc_pause_milliseconds"),
		Help:    "Average GC pause in milliseconds",
		Buckets: m.latencyBuckets,
	})
}

// Pipeline Metrics Functions.

// RecordAnalysis increments the computed comparison set counter.
func RecordAnalysis() {
	globalManager.analysesTotal.Inc()
}

// RecordValidationError counts a rejected input by field key.
func RecordValidationError(field string) {
	globalManager.validationErrors.WithLabelValues(field).Inc()
}

// RecordDivisionByZero counts a zero denominator by its field key.
func RecordDivisionByZero(denominator string) {
	globalManager.divisionErrors.WithLabelValues(denominator).Inc()
}

// RecordOverflow counts a non-finite ratio.
func RecordOverflow(ratio string) {
	globalManager.overflowErrors.WithLabelValues(ratio).Inc()
}

// RecordExport records a produced export and its size.
func RecordExport(format string, size int) {
	globalManager.exportsTotal.WithLabelValues(format).Inc()
	globalManager.exportBytes.WithLabelValues(format).Observe(float64(size))
}

// RecordRenderLatency records the latency of a pipeline stage.
func RecordRenderLatency(stage string, latencyMs float64) {
	globalManager.renderLatency.WithLabelValues(stage).Observe(latencyMs)
}

// RecordRenderError counts a malformed artifact.
func RecordRenderError(artifact string) {
	globalManager.renderErrors.WithLabelValues(artifact).Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Live Index Metrics Functions.

// RecordIndexFetch counts a successful price fetch and stores the price.
func RecordIndexFetch(symbol string, price float64) {
	globalManager.indexFetches.WithLabelValues(symbol).Inc()
	globalManager.indexLastPrice.WithLabelValues(symbol).Set(price)
}

// RecordIndexFetchError counts a failed price fetch.
func RecordIndexFetchError(symbol string) {
	globalManager.indexFetchErrors.WithLabelValues(symbol).Inc()
}

// RecordIndexSample counts an appended sample and updates the history size.
func RecordIndexSample(historySize int) {
	globalManager.indexSamples.Inc()
	globalManager.indexHistorySize.Set(float64(historySize))
}

// Queue Metrics Functions.

// UpdateQueueSize sets the number of samples waiting.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueueError increments the dropped sample counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeues.Inc()
}

// Error Metrics Functions.

// RecordErrorByComponent records an error for a specific component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error for a specific HTTP endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System Metrics Functions.

// UpdateSystemMemoryUsage sets the allocated memory.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records the average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
