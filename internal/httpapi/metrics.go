package httpapi

import (
	"net/http"
	"strconv"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fintrack",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "status"},
	)
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fintrack",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)
	recurringProcessedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fintrack",
			Name:      "recurring_transactions_total",
			Help:      "Transactions materialized from recurring rules",
		},
	)
	recurringErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fintrack",
			Name:      "recurring_errors_total",
			Help:      "Recurring rules that failed during a processing pass",
		},
	)
)

func metricsHandler() http.Handler {
	return promhttp.Handler()
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		status := strconv.Itoa(ww.Status())
		httpRequestsTotal.WithLabelValues(r.Method, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, status).Observe(time.Since(start).Seconds())
	})
}

// ObserveSweep records the outcome of a recurring processing pass. The cron
// sweeper and the manual process endpoint both feed it.
func ObserveSweep(processed, failed int) {
	recurringProcessedTotal.Add(float64(processed))
	recurringErrorsTotal.Add(float64(failed))
}
