// Package metricsx holds the Prometheus collectors shared by the CRM
// services.
package metricsx

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"service", "method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crm_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"service", "method", "route"})

	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_auth_login_attempts_total",
		Help: "Login attempts by outcome",
	}, []string{"result"})

	tokenVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_auth_token_verifications_total",
		Help: "Bearer token verifications by service and outcome",
	}, []string{"service", "result"})

	directoryLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_auth_directory_lookups_total",
		Help: "Department and role name lookups by source",
	}, []string{"source"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveLogin counts a login attempt. result is one of success,
// invalid_request, invalid_credentials, lookup_unavailable or error.
func ObserveLogin(result string) {
	loginAttempts.WithLabelValues(result).Inc()
}

// VerifyObserver returns a callback counting verification outcomes for
// service.
func VerifyObserver(service string) func(result string) {
	return func(result string) {
		tokenVerifications.WithLabelValues(service, result).Inc()
	}
}

// ObserveDirectory counts where a directory name came from: cache, store or
// miss.
func ObserveDirectory(source string) {
	directoryLookups.WithLabelValues(source).Inc()
}

// InstrumentRoute records request count and latency for one route. The route
// label is the registered pattern, not the raw path, to keep cardinality flat.
func InstrumentRoute(service, route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		httpRequestsTotal.WithLabelValues(service, r.Method, route, strconv.Itoa(sw.status)).Inc()
		httpRequestDuration.WithLabelValues(service, r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
