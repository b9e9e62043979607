// Package metrics provides Prometheus metrics for the horary service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the horary service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer
	auto             promauto.Factory

	// Chart pipeline
	chartsCast       prometheus.Counter
	chartLatency     prometheus.Histogram
	chartCacheHits   prometheus.Counter
	chartCacheMisses prometheus.Counter
	chartErrors      *prometheus.CounterVec
	degenerateHouses prometheus.Counter
	verdicts         *prometheus.CounterVec
	readingLatency   prometheus.Histogram

	// Question intake
	questionsSubmitted prometheus.Counter
	questionsJudged    prometheus.Counter
	questionsFailed    prometheus.Counter
	questionsRecast    prometheus.Counter

	// Operational health
	queueSize       prometheus.Gauge
	workerCount     prometheus.Gauge
	storedQuestions prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Repository
	repositorySaveLatency  prometheus.Histogram
	repositoryQueryLatency prometheus.Histogram

	// Queue
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueueRate       prometheus.Counter
	queueDequeueRate       prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Workers
	workerActiveCount       prometheus.Gauge
	workerIdleCount         prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	errorRateByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "horary",
		subsystem:        "engine",
		histogramBuckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.auto = promauto.With(m.registry)
	m.initializeMetrics()
	return m
}

func (m *Manager) name(n string) string { return m.metricPrefix + n }

func (m *Manager) counter(name, help string) prometheus.Counter {
	return m.auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return m.auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return m.auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	if buckets == nil {
		buckets = m.histogramBuckets
	}
	return m.auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help,
		ConstLabels: m.customLabels, Buckets: buckets,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric
	m.chartsCast = m.counter("charts_cast_total", "Total number of charts computed (cache misses only)")
	m.chartLatency = m.histogram("chart_latency_milliseconds", "Chart computation latency in milliseconds", nil)
	m.chartCacheHits = m.counter("chart_cache_hits_total", "Chart cache hits")
	m.chartCacheMisses = m.counter("chart_cache_misses_total", "Chart cache misses")
	m.chartErrors = m.counterVec("chart_errors_total", "Chart computation errors by kind", "kind")
	m.degenerateHouses = m.counter("degenerate_houses_total", "Charts whose house system fell back to equal houses")
	m.verdicts = m.counterVec("verdicts_total", "Verdicts by answer", "answer", "radical")
	m.readingLatency = m.histogram("reading_latency_milliseconds", "Full reading latency in milliseconds", nil)

	m.questionsSubmitted = m.counter("questions_submitted_total", "Questions accepted for asynchronous judgment")
	m.questionsJudged = m.counter("questions_judged_total", "Questions judged and stored")
	m.questionsFailed = m.counter("questions_failed_total", "Questions whose judgment failed")
	m.questionsRecast = m.counter("questions_recast_total", "Stored questions regenerated by a recast")

	m.queueSize = m.gauge("queue_size", "Current size of the question queue")
	m.workerCount = m.gauge("worker_count", "Configured number of judgment workers")
	m.storedQuestions = m.gauge("stored_questions", "Number of questions in the store")

	m.httpRequests = m.auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name("http_requests_total"),
		Help: "Total number of HTTP requests by endpoint and method", ConstLabels: m.customLabels,
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = m.auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name("http_request_duration_milliseconds"),
		Help: "HTTP request duration in milliseconds", ConstLabels: m.customLabels, Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.repositorySaveLatency = m.histogram("repository_save_latency_milliseconds", "Question store save latency in milliseconds", nil)
	m.repositoryQueryLatency = m.histogram("repository_query_latency_milliseconds", "Question store query latency in milliseconds", nil)

	m.queueCapacity = m.gauge("queue_capacity", "Maximum queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue utilization ratio (size / capacity)")
	m.queueEnqueueRate = m.counter("queue_enqueue_total", "Total number of enqueued questions")
	m.queueDequeueRate = m.counter("queue_dequeue_total", "Total number of dequeued questions")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Enqueue failures (backpressure)")
	m.queueProcessingLatency = m.histogram("queue_processing_latency_milliseconds", "Time from enqueue to dequeue in milliseconds", nil)

	m.workerActiveCount = m.gauge("worker_active_count", "Number of workers currently judging")
	m.workerIdleCount = m.gauge("worker_idle_count", "Number of idle workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Worker processing latency in milliseconds", nil)
	m.workerErrorRate = m.counter("worker_errors_total", "Worker processing errors")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordChartCast records a computed chart and its latency in milliseconds.
func RecordChartCast(latencyMs float64) {
	globalManager.chartsCast.Inc()
	globalManager.chartLatency.Observe(latencyMs)
}

// RecordChartCacheHit increments the chart cache hit counter.
func RecordChartCacheHit() { globalManager.chartCacheHits.Inc() }

// RecordChartCacheMiss increments the chart cache miss counter.
func RecordChartCacheMiss() { globalManager.chartCacheMisses.Inc() }

// RecordChartError counts a chart failure by kind (out_of_range, ephemeris, houses).
func RecordChartError(kind string) { globalManager.chartErrors.WithLabelValues(kind).Inc() }

// IncrementDegenerateHouses counts a house-system fallback.
func IncrementDegenerateHouses() { globalManager.degenerateHouses.Inc() }

// RecordVerdict counts a verdict by answer and radicality.
func RecordVerdict(answer string, radical bool) {
	r := "false"
	if radical {
		r = "true"
	}
	globalManager.verdicts.WithLabelValues(answer, r).Inc()
}

// RecordReadingLatency records full pipeline latency in milliseconds.
func RecordReadingLatency(latencyMs float64) { globalManager.readingLatency.Observe(latencyMs) }

// RecordQuestionSubmitted counts an accepted asynchronous question.
func RecordQuestionSubmitted() { globalManager.questionsSubmitted.Inc() }

// RecordQuestionJudged counts a stored judgment.
func RecordQuestionJudged() { globalManager.questionsJudged.Inc() }

// RecordQuestionFailed counts a failed judgment.
func RecordQuestionFailed() { globalManager.questionsFailed.Inc() }

// RecordQuestionRecast counts a regenerated stored question.
func RecordQuestionRecast() { globalManager.questionsRecast.Inc() }

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// UpdateStoredQuestions sets the stored question count.
func UpdateStoredQuestions(count int) { globalManager.storedQuestions.Set(float64(count)) }

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordRepositorySaveLatency records store save latency.
func RecordRepositorySaveLatency(latencyMs float64) {
	globalManager.repositorySaveLatency.Observe(latencyMs)
}

// RecordRepositoryQueryLatency records store query latency.
func RecordRepositoryQueryLatency(latencyMs float64) {
	globalManager.repositoryQueryLatency.Observe(latencyMs)
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) { globalManager.queueUtilization.Set(utilization) }

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() { globalManager.queueEnqueueRate.Inc() }

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() { globalManager.queueDequeueRate.Inc() }

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrors.Inc() }

// RecordQueueProcessingLatency records queue wait time.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) { globalManager.workerActiveCount.Set(float64(count)) }

// UpdateWorkerIdleCount sets the number of idle workers.
func UpdateWorkerIdleCount(count int) { globalManager.workerIdleCount.Set(float64(count)) }

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() { globalManager.workerErrorRate.Inc() }

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.systemGCPauseTime.Observe(pauseMs) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
