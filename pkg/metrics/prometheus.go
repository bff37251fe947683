// Package metrics provides Prometheus metrics for the arena settlement service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager manages all Prometheus metrics for the arena service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Business metrics - prediction and wagering activity.
	predictionsSubmitted prometheus.Counter
	predictionsResolved  *prometheus.CounterVec // outcome: correct|incorrect
	betsProposed         prometheus.Counter
	betsSettled          *prometheus.CounterVec // result: proposer|target|voided
	pointsAwarded        prometheus.Counter
	pointsTransferred    prometheus.Counter

	// Settlement engine metrics.
	settlementRuns     *prometheus.CounterVec // result: completed|incomplete|error
	settlementDuration prometheus.Histogram
	challengesByStatus *prometheus.GaugeVec

	// Assessor metrics - the external dependency worth watching.
	assessorCalls    *prometheus.CounterVec // kind: assess|generate
	assessorErrors   *prometheus.CounterVec
	assessorLatency  prometheus.Histogram
	testCasesCreated prometheus.Counter

	// Queue and worker health.
	queueSize   prometheus.Gauge
	workerCount prometheus.Gauge

	// HTTP metrics.
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "arena",
		subsystem:        "settlement",
		histogramBuckets: prometheus.DefBuckets,
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

	m.predictionsSubmitted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "predictions_submitted_total",
		Help:      "Total number of predictions accepted by the ledger",
	})

	m.predictionsResolved = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "predictions_resolved_total",
			Help:      "Total number of predictions resolved, by outcome",
		},
		[]string{"outcome"},
	)

	m.betsProposed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "bets_proposed_total",
		Help:      "Total number of bets accepted by the ledger",
	})

	m.betsSettled = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "bets_settled_total",
			Help:      "Total number of bets settled, by result",
		},
		[]string{"result"},
	)

	m.pointsAwarded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "points_awarded_total",
		Help:      "Total challenge points awarded to correct predictors",
	})

	m.pointsTransferred = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "points_transferred_total",
		Help:      "Total points moved between users by bet settlements",
	})

	m.settlementRuns = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "runs_total",
			Help:      "Total settlement runs, by result",
		},
		[]string{"result"},
	)

	m.settlementDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_duration_milliseconds",
		Help:      "Duration of settlement runs in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.challengesByStatus = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "challenges",
			Help:      "Number of challenges by lifecycle status",
		},
		[]string{"status"},
	)

	m.assessorCalls = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "assessor_calls_total",
			Help:      "Total outcome assessor invocations, by kind",
		},
		[]string{"kind"},
	)

	m.assessorErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "assessor_errors_total",
			Help:      "Total outcome assessor failures, by kind",
		},
		[]string{"kind"},
	)

	m.assessorLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "assessor_latency_milliseconds",
		Help:      "Latency of outcome assessor calls in milliseconds",
		Buckets:   []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
	})

	m.testCasesCreated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "test_cases_generated_total",
		Help:      "Total test cases generated for challenges without pre-authored ones",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current size of the settlement job queue",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Current number of settlement workers",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)
}

// Handler returns an HTTP handler serving the custom registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}

// RecordPredictionSubmitted increments the submitted predictions counter.
func RecordPredictionSubmitted() {
	globalManager.predictionsSubmitted.Inc()
}

// RecordPredictionResolved increments the resolved predictions counter.
func RecordPredictionResolved(correct bool) {
	outcome := "incorrect"
	if correct {
		outcome = "correct"
	}
	globalManager.predictionsResolved.WithLabelValues(outcome).Inc()
}

// RecordBetProposed increments the proposed bets counter.
func RecordBetProposed() {
	globalManager.betsProposed.Inc()
}

// RecordBetSettled increments the settled bets counter for a result:
// "proposer", "target" or "voided".
func RecordBetSettled(result string) {
	globalManager.betsSettled.WithLabelValues(result).Inc()
}

// RecordPointsAwarded adds challenge points paid out to a correct predictor.
func RecordPointsAwarded(points int) {
	globalManager.pointsAwarded.Add(float64(points))
}

// RecordPointsTransferred adds points moved by a bet settlement.
func RecordPointsTransferred(points int) {
	globalManager.pointsTransferred.Add(float64(points))
}

// RecordSettlementRun increments the settlement run counter for a result:
// "completed", "incomplete" or "error".
func RecordSettlementRun(result string) {
	globalManager.settlementRuns.WithLabelValues(result).Inc()
}

// RecordSettlementDuration records a settlement run duration in milliseconds.
func RecordSettlementDuration(latencyMs float64) {
	globalManager.settlementDuration.Observe(latencyMs)
}

// UpdateChallengesByStatus sets the challenge count for a lifecycle status.
func UpdateChallengesByStatus(status string, count int) {
	globalManager.challengesByStatus.WithLabelValues(status).Set(float64(count))
}

// RecordAssessorCall increments the assessor call counter for a kind:
// "assess" or "generate".
func RecordAssessorCall(kind string) {
	globalManager.assessorCalls.WithLabelValues(kind).Inc()
}

// RecordAssessorError increments the assessor error counter.
func RecordAssessorError(kind string) {
	globalManager.assessorErrors.WithLabelValues(kind).Inc()
}

// RecordAssessorLatency records assessor call latency in milliseconds.
func RecordAssessorLatency(latencyMs float64) {
	globalManager.assessorLatency.Observe(latencyMs)
}

// RecordTestCasesGenerated adds generated test cases to the counter.
func RecordTestCasesGenerated(count int) {
	globalManager.testCasesCreated.Add(float64(count))
}

// UpdateQueueSize sets the current settlement queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}
