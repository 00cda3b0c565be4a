// Package metrics provides Prometheus metrics for the Mergington signup service.
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

const (
	namespace     = "mergington"
	subsystem     = "signup"
	instanceLabel = "instance"
)

var latencyBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250} //nolint:gochecknoglobals // shared bucket layout

// Manager owns every Prometheus collector exported by the service.
type Manager struct {
	constLabels prometheus.Labels
	registry    prometheus.Registerer

	// Signup business metrics
	signups         *prometheus.CounterVec
	unregistrations *prometheus.CounterVec
	rosterSize      *prometheus.GaugeVec
	rosterCapacity  *prometheus.GaugeVec
	activityCount   prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Repository
	repositoryUpdateLatency prometheus.Histogram
	repositoryQueryLatency  prometheus.Histogram

	// Change feed: queue, workers, journal
	queueCapacity           prometheus.Gauge
	queueSize               prometheus.Gauge
	queueUtilization        prometheus.Gauge
	queueEnqueued           prometheus.Counter
	queueDequeued           prometheus.Counter
	queueEnqueueErrors      prometheus.Counter
	changesDropped          prometheus.Counter
	workerCount             prometheus.Gauge
	workerProcessed         prometheus.Counter
	workerErrors            prometheus.Counter
	workerProcessingLatency prometheus.Histogram
	journalSize             prometheus.Gauge

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByType      *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec
	errorLatency      *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// process pairs the manager behind the package-level recorders with the
// registry it writes to.
type process struct {
	manager  *Manager
	registry *prometheus.Registry
}

var current atomic.Pointer[process] //nolint:gochecknoglobals // singleton behind the package-level recorders

func init() { //nolint:gochecknoinits // metrics must exist before any package records into them
	Configure()
}

// Configure replaces the process-wide manager with one built from opts on a
// fresh private registry, keeping the default Go collectors out of
// /healthz. Values recorded before the call are discarded, so main calls it
// once before the service starts.
func Configure(opts ...Option) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	m := NewManager(append(opts, WithPrometheusRegistry(reg))...)
	current.Store(&process{manager: m, registry: reg})
	return reg
}

func manager() *Manager {
	return current.Load().manager
}

// NewManager creates a manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{registry: prometheus.DefaultRegisterer}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: namespace, Subsystem: subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gauge(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: namespace, Subsystem: subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: namespace, Subsystem: subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.signups = auto.NewCounterVec(m.counter("signups_total", "Signup attempts by activity and outcome"), []string{"activity", "outcome"})
	m.unregistrations = auto.NewCounterVec(m.counter("unregistrations_total", "Unregister attempts by activity and outcome"), []string{"activity", "outcome"})
	m.rosterSize = auto.NewGaugeVec(m.gauge("roster_size", "Current number of participants per activity"), []string{"activity"})
	m.rosterCapacity = auto.NewGaugeVec(m.gauge("roster_capacity", "Maximum participants per activity"), []string{"activity"})
	m.activityCount = auto.NewGauge(m.gauge("activities", "Number of activities in the catalog"))

	m.httpRequests = auto.NewCounterVec(m.counter("http_requests_total", "HTTP requests by endpoint, method and status"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogram("http_request_duration_milliseconds", "HTTP request duration in milliseconds", latencyBuckets), []string{"endpoint", "method", "status_code"})

	m.repositoryUpdateLatency = auto.NewHistogram(m.histogram("repository_update_latency_milliseconds", "Catalog update latency in milliseconds", latencyBuckets))
	m.repositoryQueryLatency = auto.NewHistogram(m.histogram("repository_query_latency_milliseconds", "Catalog read latency in milliseconds", latencyBuckets))

	m.queueCapacity = auto.NewGauge(m.gauge("feed_queue_capacity", "Capacity of the change feed queue"))
	m.queueSize = auto.NewGauge(m.gauge("feed_queue_size", "Changes waiting in the feed queue"))
	m.queueUtilization = auto.NewGauge(m.gauge("feed_queue_utilization_ratio", "Feed queue size divided by capacity"))
	m.queueEnqueued = auto.NewCounter(m.counter("feed_enqueued_total", "Changes enqueued on the feed"))
	m.queueDequeued = auto.NewCounter(m.counter("feed_dequeued_total", "Changes taken off the feed"))
	m.queueEnqueueErrors = auto.NewCounter(m.counter("feed_enqueue_errors_total", "Failed feed enqueues"))
	m.changesDropped = auto.NewCounter(m.counter("feed_changes_dropped_total", "Changes dropped because the feed was full or closed"))
	m.workerCount = auto.NewGauge(m.gauge("feed_workers", "Number of feed workers"))
	m.workerProcessed = auto.NewCounter(m.counter("feed_processed_total", "Changes written to the journal"))
	m.workerErrors = auto.NewCounter(m.counter("feed_worker_errors_total", "Feed worker failures"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogram("feed_processing_latency_milliseconds", "Time from change to journal write in milliseconds", latencyBuckets))
	m.journalSize = auto.NewGauge(m.gauge("journal_size", "Changes retained in the journal"))

	m.errorsByComponent = auto.NewCounterVec(m.counter("errors_by_component_total", "Errors by component"), []string{"component", "error_type"})
	m.errorsByType = auto.NewCounterVec(m.counter("errors_by_type_total", "Errors by type and severity"), []string{"error_type", "severity"})
	m.errorsByEndpoint = auto.NewCounterVec(m.counter("errors_by_endpoint_total", "Errors by endpoint"), []string{"endpoint", "method", "error_type"})
	m.errorLatency = auto.NewHistogramVec(m.histogram("error_latency_milliseconds", "Latency of operations that ended in an error", latencyBuckets), []string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gauge("system_memory_usage_bytes", "Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gauge("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogram("system_gc_pause_time_milliseconds", "Average GC pause in milliseconds", []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100}))
}

// RecordSignup counts a signup attempt.
func RecordSignup(activity, outcome string) {
	manager().signups.WithLabelValues(activity, outcome).Inc()
}

// RecordUnregister counts an unregister attempt.
func RecordUnregister(activity, outcome string) {
	manager().unregistrations.WithLabelValues(activity, outcome).Inc()
}

// UpdateRosterSize sets the participant count of an activity.
func UpdateRosterSize(activity string, size int) {
	manager().rosterSize.WithLabelValues(activity).Set(float64(size))
}

// UpdateRosterCapacity sets the capacity of an activity.
func UpdateRosterCapacity(activity string, capacity int) {
	manager().rosterCapacity.WithLabelValues(activity).Set(float64(capacity))
}

// UpdateActivityCount sets the catalog size.
func UpdateActivityCount(count int) {
	manager().activityCount.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	manager().httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	manager().httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordRepositoryUpdateLatency records catalog update latency.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	manager().repositoryUpdateLatency.Observe(latencyMs)
}

// RecordRepositoryQueryLatency records catalog read latency.
func RecordRepositoryQueryLatency(latencyMs float64) {
	manager().repositoryQueryLatency.Observe(latencyMs)
}

// UpdateQueueCapacity sets the feed queue capacity.
func UpdateQueueCapacity(capacity int) {
	manager().queueCapacity.Set(float64(capacity))
}

// UpdateQueueSize sets the feed queue length.
func UpdateQueueSize(size int) {
	manager().queueSize.Set(float64(size))
}

// UpdateQueueUtilization sets the feed queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	manager().queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	manager().queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	manager().queueDequeued.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	manager().queueEnqueueErrors.Inc()
}

// RecordChangeDropped counts a change that never reached the journal.
func RecordChangeDropped() {
	manager().changesDropped.Inc()
}

// UpdateWorkerCount sets the number of feed workers.
func UpdateWorkerCount(count int) {
	manager().workerCount.Set(float64(count))
}

// RecordWorkerProcessed counts a change written to the journal.
func RecordWorkerProcessed() {
	manager().workerProcessed.Inc()
}

// RecordWorkerError counts a worker failure.
func RecordWorkerError() {
	manager().workerErrors.Inc()
}

// RecordWorkerProcessingLatency records change-to-journal latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	manager().workerProcessingLatency.Observe(latencyMs)
}

// UpdateJournalSize sets the number of retained changes.
func UpdateJournalSize(size int) {
	manager().journalSize.Set(float64(size))
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	manager().errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	manager().errorsByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method and type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	manager().errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that failed.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	manager().errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// UpdateSystemMemoryUsage sets heap allocation in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	manager().systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	manager().systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records an average GC pause in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	manager().systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the registry the package-level recorders currently
// write to.
func GetRegistry() *prometheus.Registry {
	return current.Load().registry
}

// Gatherer follows Configure: every Gather reads the registry that is
// current at that moment.
func Gatherer() prometheus.Gatherer {
	return prometheus.GathererFunc(func() ([]*dto.MetricFamily, error) {
		return GetRegistry().Gather()
	})
}
