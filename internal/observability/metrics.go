package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	apiRequestsTotal       *prometheus.CounterVec
	apiLatencySeconds      *prometheus.HistogramVec
	apiErrorsTotal         *prometheus.CounterVec
	surveySubmissionsTotal *prometheus.CounterVec
	notificationsPublished *prometheus.CounterVec
	streamClientsActive    *prometheus.GaugeVec
	auditRowsWrittenTotal  prometheus.Counter
	cacheRequestsTotal     *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "survey_api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "survey_api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "survey_api_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		surveySubmissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "survey_submissions_total",
			Help: "Survey submissions grouped by outcome.",
		}, []string{"result"})

		notificationsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "survey_notifications_published_total",
			Help: "Notifications delivered to subscribers grouped by type.",
		}, []string{"type"})

		streamClientsActive = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "survey_notification_stream_clients",
			Help: "Connected notification stream clients.",
		}, []string{"transport"})

		auditRowsWrittenTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "survey_audit_rows_written_total",
			Help: "Audit log rows written alongside data mutations.",
		})

		cacheRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "survey_cache_requests_total",
			Help: "Read-through cache lookups grouped by cache and result.",
		}, []string{"cache", "result"})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			surveySubmissionsTotal,
			notificationsPublished,
			streamClientsActive,
			auditRowsWrittenTotal,
			cacheRequestsTotal,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// SurveySubmissions counts survey submissions by result.
func SurveySubmissions() *prometheus.CounterVec {
	RegisterMetrics()
	return surveySubmissionsTotal
}

// NotificationsPublished counts notifications pushed to subscribers.
func NotificationsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsPublished
}

// StreamClients tracks connected SSE and websocket clients.
func StreamClients() *prometheus.GaugeVec {
	RegisterMetrics()
	return streamClientsActive
}

// AuditRowsWritten counts audit rows persisted.
func AuditRowsWritten() prometheus.Counter {
	RegisterMetrics()
	return auditRowsWrittenTotal
}

// CacheRequests counts cache hits and misses.
func CacheRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return cacheRequestsTotal
}
