package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds all Prometheus metrics for the API
type Metrics struct {
	// HTTP request metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight *prometheus.GaugeVec

	// Ring buffer operation metrics
	recordsAppendedTotal *prometheus.CounterVec
	recordsDroppedTotal  prometheus.Counter
	recordsDrainedTotal  prometheus.Counter
	recordsArchivedTotal prometheus.Counter
	flushesTotal         prometheus.Counter
	ringWritePos         prometheus.Gauge
	ringReadPos          prometheus.Gauge
	ringCapacityBytes    prometheus.Gauge

	// API key authentication metrics
	authRequestsTotal *prometheus.CounterVec

	// Health check metrics
	healthChecksTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	m := &Metrics{
		// HTTP request metrics
		httpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ringlog_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		httpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ringlog_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		httpRequestsInFlight: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ringlog_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"method", "endpoint"},
		),

		// Ring buffer operation metrics
		recordsAppendedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ringlog_records_appended_total",
				Help: "Total number of records appended to the buffer",
			},
			[]string{"level"},
		),

		recordsDroppedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "ringlog_records_dropped_total",
				Help: "Total number of records dropped for exceeding the buffer capacity",
			},
		),

		recordsDrainedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "ringlog_records_drained_total",
				Help: "Total number of records returned by drain sessions",
			},
		),

		recordsArchivedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "ringlog_records_archived_total",
				Help: "Total number of drained records persisted to the archive",
			},
		),

		flushesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "ringlog_flushes_total",
				Help: "Total number of buffer flushes",
			},
		),

		ringWritePos: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "ringlog_ring_write_position",
				Help: "Current write cursor offset in the arena",
			},
		),

		ringReadPos: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "ringlog_ring_read_position",
				Help: "Current read cursor offset in the arena",
			},
		),

		ringCapacityBytes: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "ringlog_ring_capacity_bytes",
				Help: "Arena capacity in bytes",
			},
		),

		// Authentication metrics
		authRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ringlog_auth_requests_total",
				Help: "Total number of authentication requests",
			},
			[]string{"status"},
		),

		// Health check metrics
		healthChecksTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ringlog_health_checks_total",
				Help: "Total number of health checks",
			},
			[]string{"status"},
		),
	}

	return m
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	statusCodeStr := strconv.Itoa(statusCode)

	m.httpRequestsTotal.WithLabelValues(method, endpoint, statusCodeStr).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordAppend records one appended record by level name
func (m *Metrics) RecordAppend(levelName string) {
	m.recordsAppendedTotal.WithLabelValues(levelName).Inc()
}

// RecordDrop records a dropped record
func (m *Metrics) RecordDrop() {
	m.recordsDroppedTotal.Inc()
}

// RecordDrain records the outcome of one drain session
func (m *Metrics) RecordDrain(drained, archived int) {
	m.recordsDrainedTotal.Add(float64(drained))
	if archived > 0 {
		m.recordsArchivedTotal.Add(float64(archived))
	}
}

// RecordFlush records a buffer flush
func (m *Metrics) RecordFlush() {
	m.flushesTotal.Inc()
}

// UpdateRingStats updates the cursor gauges
func (m *Metrics) UpdateRingStats(capacity, writePos, readPos int) {
	m.ringCapacityBytes.Set(float64(capacity))
	m.ringWritePos.Set(float64(writePos))
	m.ringReadPos.Set(float64(readPos))
}

// RecordAuthRequest records an authentication request
func (m *Metrics) RecordAuthRequest(success bool) {
	status := statusSuccess
	if !success {
		status = statusError
	}
	m.authRequestsTotal.WithLabelValues(status).Inc()
}

// RecordHealthCheck records a health check
func (m *Metrics) RecordHealthCheck(success bool) {
	status := statusSuccess
	if !success {
		status = statusError
	}
	m.healthChecksTotal.WithLabelValues(status).Inc()
}

// InstrumentHandler instruments an HTTP handler with metrics
func (m *Metrics) InstrumentHandler(method, endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		gauge := m.httpRequestsInFlight.WithLabelValues(method, endpoint)
		gauge.Inc()
		defer gauge.Dec()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		handler(rw, r)

		duration := time.Since(start)
		m.RecordHTTPRequest(method, endpoint, rw.statusCode, duration)
	}
}

// InstrumentAuthMiddleware instruments the authentication middleware
func (m *Metrics) InstrumentAuthMiddleware(next func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hasAPIKey := r.Header.Get("X-API-Key") != ""

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next(h).ServeHTTP(rw, r)

			if hasAPIKey {
				m.RecordAuthRequest(rw.statusCode != http.StatusUnauthorized)
			}
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
