package perantara

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Phase labels used by interceptor metrics.
const (
	PhaseRequest  = "request"
	PhaseResponse = "response"
)

// MetricsCollector provides Prometheus metrics for the request pipeline.
// It is safe for concurrent use.
type MetricsCollector struct {
	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	requestsInFlight  *prometheus.GaugeVec
	interceptorsTotal *prometheus.CounterVec
	recoveriesTotal   *prometheus.CounterVec
	errorsTotal       *prometheus.CounterVec
}

// NewMetricsCollector creates a metrics collector on the default registerer.
func NewMetricsCollector() *MetricsCollector {
	return NewMetricsCollectorWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsCollectorWithRegistry creates a collector using supplied registerer.
func NewMetricsCollectorWithRegistry(registry prometheus.Registerer) *MetricsCollector {
	return &MetricsCollector{
		requestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "perantara_requests_total",
				Help: "Total number of requests dispatched through the pipeline",
			},
			[]string{"method", "status_code", "endpoint"},
		),
		requestDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "perantara_request_duration_seconds",
				Help:    "Duration of pipeline requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "status_code", "endpoint"},
		),
		requestsInFlight: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "perantara_requests_in_flight",
				Help: "Number of pipeline requests currently in flight",
			},
			[]string{"method", "endpoint"},
		),
		interceptorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "perantara_interceptors_total",
				Help: "Total number of interceptor step executions",
			},
			[]string{"phase", "outcome"},
		),
		recoveriesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "perantara_interceptor_recoveries_total",
				Help: "Total number of errors recovered by rejection handlers",
			},
			[]string{"phase"},
		),
		errorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "perantara_errors_total",
				Help: "Total number of requests that settled with an error",
			},
			[]string{"type", "method", "endpoint"},
		),
	}
}

// RecordRequestStart increments the in-flight gauge.
func (mc *MetricsCollector) RecordRequestStart(method, endpoint string) {
	mc.requestsInFlight.WithLabelValues(method, endpoint).Inc()
}

// RecordRequestEnd decrements the in-flight gauge.
func (mc *MetricsCollector) RecordRequestEnd(method, endpoint string) {
	mc.requestsInFlight.WithLabelValues(method, endpoint).Dec()
}

// RecordRequest records a completed request with its final status code
// (0 when the pipeline settled with an error).
func (mc *MetricsCollector) RecordRequest(method, endpoint string, statusCode int, duration time.Duration) {
	code := strconv.Itoa(statusCode)
	mc.requestsTotal.WithLabelValues(method, code, endpoint).Inc()
	mc.requestDuration.WithLabelValues(method, code, endpoint).Observe(duration.Seconds())
}

// RecordInterceptor records one interceptor step execution.
func (mc *MetricsCollector) RecordInterceptor(phase string, failed bool) {
	outcome := "fulfilled"
	if failed {
		outcome = "rejected"
	}
	mc.interceptorsTotal.WithLabelValues(phase, outcome).Inc()
}

// RecordRecovery records an error recovered by a rejection handler.
func (mc *MetricsCollector) RecordRecovery(phase string) {
	mc.recoveriesTotal.WithLabelValues(phase).Inc()
}

// RecordError records a request that settled with an error.
func (mc *MetricsCollector) RecordError(errorType, method, endpoint string) {
	mc.errorsTotal.WithLabelValues(errorType, method, endpoint).Inc()
}

// endpointFromConfig reduces a config URL to a host+path metrics label.
func endpointFromConfig(cfg *Config) string {
	u, err := url.Parse(cfg.URL)
	if err != nil || u == nil {
		return "unknown"
	}

	var builder strings.Builder
	builder.WriteString(u.Host)

	if u.Path != "" && u.Path != "/" {
		builder.WriteString(u.Path)
	} else {
		builder.WriteByte('/')
	}

	return builder.String()
}
