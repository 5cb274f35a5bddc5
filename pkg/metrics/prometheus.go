// Package metrics provides Prometheus metrics for the poseflow service.
package metrics

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	registry       prometheus.Registerer

	// Scoring
	attemptsScored    *prometheus.CounterVec
	accuracy          *prometheus.HistogramVec
	attemptsDuplicate prometheus.Counter
	scoringErrors     prometheus.Counter
	scoringLatency    prometheus.Histogram

	// Sessions
	sessionsStarted   prometheus.Counter
	sessionsCompleted prometheus.Counter
	caloriesBurned    prometheus.Counter

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors *prometheus.CounterVec
	queueWait          prometheus.Histogram

	// Workers
	workerCount   prometheus.Gauge
	workerBusy    prometheus.Gauge
	workerLatency prometheus.Histogram
	workerErrors  prometheus.Counter

	// Repository
	repositoryLatency  *prometheus.HistogramVec
	repositorySessions prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec

	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry so /healthz exposes only service metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "poseflow",
		subsystem:      "scorer",
		latencyBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 1000},
		registry:       prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help}
}

func (m *Manager) gauge(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help}
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.attemptsScored = auto.NewCounterVec(m.counter("attempts_scored_total", "Pose attempts scored, by pose family"), []string{"family"})
	m.accuracy = auto.NewHistogramVec(
		m.histogram("accuracy_score", "Distribution of accuracy scores, by pose family", prometheus.LinearBuckets(10, 10, 10)),
		[]string{"family"},
	)
	m.attemptsDuplicate = auto.NewCounter(m.counter("attempts_duplicate_total", "Attempts acknowledged as duplicates"))
	m.scoringErrors = auto.NewCounter(m.counter("scoring_errors_total", "Attempts that failed to score"))
	m.scoringLatency = auto.NewHistogram(m.histogram("scoring_latency_milliseconds", "Time spent scoring one frame", m.latencyBuckets))

	m.sessionsStarted = auto.NewCounter(m.counter("sessions_started_total", "Practice sessions started"))
	m.sessionsCompleted = auto.NewCounter(m.counter("sessions_completed_total", "Practice sessions completed"))
	m.caloriesBurned = auto.NewCounter(m.counter("calories_burned_total", "Estimated calories across completed sessions"))

	m.queueSize = auto.NewGauge(m.gauge("queue_size", "Attempts waiting to be scored"))
	m.queueCapacity = auto.NewGauge(m.gauge("queue_capacity", "Attempt queue capacity"))
	m.queueEnqueued = auto.NewCounter(m.counter("queue_enqueued_total", "Attempts accepted by the queue"))
	m.queueDequeued = auto.NewCounter(m.counter("queue_dequeued_total", "Attempts taken off the queue"))
	m.queueEnqueueErrors = auto.NewCounterVec(m.counter("queue_enqueue_errors_total", "Rejected enqueues, by reason"), []string{"reason"})
	m.queueWait = auto.NewHistogram(m.histogram("queue_wait_milliseconds", "Time an attempt spent queued", m.latencyBuckets))

	m.workerCount = auto.NewGauge(m.gauge("worker_count", "Configured scoring workers"))
	m.workerBusy = auto.NewGauge(m.gauge("worker_busy", "Workers currently scoring an attempt"))
	m.workerLatency = auto.NewHistogram(m.histogram("worker_processing_milliseconds", "End-to-end processing time of one attempt", m.latencyBuckets))
	m.workerErrors = auto.NewCounter(m.counter("worker_errors_total", "Attempts a worker failed to process"))

	m.repositoryLatency = auto.NewHistogramVec(
		m.histogram("repository_latency_milliseconds", "Session store latency, by operation", m.latencyBuckets),
		[]string{"op"},
	)
	m.repositorySessions = auto.NewGauge(m.gauge("repository_sessions", "Sessions held by the store"))

	m.httpRequests = auto.NewCounterVec(m.counter("http_requests_total", "HTTP requests, by endpoint"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogram("http_request_duration_milliseconds", "HTTP request duration", m.latencyBuckets),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpErrors = auto.NewCounterVec(m.counter("http_errors_total", "HTTP error responses, by endpoint"), []string{"endpoint", "method", "code"})

	m.errorsByComponent = auto.NewCounterVec(m.counter("errors_total", "Errors, by component and kind"), []string{"component", "kind"})

	m.systemMemoryUsage = auto.NewGauge(m.gauge("system_memory_bytes", "Heap bytes in use"))
	m.systemGoroutineCount = auto.NewGauge(m.gauge("system_goroutines", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogram("system_gc_pause_milliseconds", "Most recent GC pause", []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// RecordAttemptScored counts a scored attempt and observes its accuracy.
func RecordAttemptScored(family string, accuracy float64) {
	globalManager.attemptsScored.WithLabelValues(family).Inc()
	globalManager.accuracy.WithLabelValues(family).Observe(accuracy)
}

// RecordAttemptDuplicate counts a duplicate submission.
func RecordAttemptDuplicate() {
	globalManager.attemptsDuplicate.Inc()
}

// RecordScoringError counts an attempt that could not be scored.
func RecordScoringError() {
	globalManager.scoringErrors.Inc()
}

// RecordScoringLatency records scoring latency in milliseconds.
func RecordScoringLatency(latencyMs float64) {
	globalManager.scoringLatency.Observe(latencyMs)
}

func RecordSessionStarted() {
	globalManager.sessionsStarted.Inc()
}

// RecordSessionCompleted counts a completed session and its calories.
func RecordSessionCompleted(calories int) {
	globalManager.sessionsCompleted.Inc()
	if calories > 0 {
		globalManager.caloriesBurned.Add(float64(calories))
	}
}

func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError counts a rejected enqueue ("full", "closed", "cancelled").
func RecordQueueEnqueueError(reason string) {
	globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc()
}

func RecordQueueWait(latencyMs float64) {
	globalManager.queueWait.Observe(latencyMs)
}

func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// WorkerBusy moves the busy-worker gauge by delta.
func WorkerBusy(delta int) {
	globalManager.workerBusy.Add(float64(delta))
}

func RecordWorkerLatency(latencyMs float64) {
	globalManager.workerLatency.Observe(latencyMs)
}

func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordRepositoryLatency observes a store operation ("create", "get", ...).
func RecordRepositoryLatency(op string, latencyMs float64) {
	globalManager.repositoryLatency.WithLabelValues(op).Observe(latencyMs)
}

func UpdateRepositorySessions(count int) {
	globalManager.repositorySessions.Set(float64(count))
}

func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordHTTPError counts an error response by its error code.
func RecordHTTPError(endpoint, method, code string) {
	globalManager.httpErrors.WithLabelValues(endpoint, method, code).Inc()
}

// RecordErrorByComponent counts an error raised inside a component.
func RecordErrorByComponent(component, kind string) {
	globalManager.errorsByComponent.WithLabelValues(component, kind).Inc()
}

func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the registry holding the service metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Totals gathers the service registry and sums every counter and gauge
// family, keyed by metric name without the namespace and subsystem prefix.
func Totals() (map[string]float64, error) {
	return totals(customRegistry)
}

func totals(g prometheus.Gatherer) (map[string]float64, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGatherFailed, err)
	}
	prefix := globalManager.namespace + "_" + globalManager.subsystem + "_"
	out := make(map[string]float64, len(families))
	for _, mf := range families {
		var sum float64
		counted := false
		for _, metric := range mf.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				sum += metric.GetCounter().GetValue()
				counted = true
			case metric.GetGauge() != nil:
				sum += metric.GetGauge().GetValue()
				counted = true
			}
		}
		if counted {
			out[strings.TrimPrefix(mf.GetName(), prefix)] = sum
		}
	}
	return out, nil
}
