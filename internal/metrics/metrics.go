package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kaizen_sessions_created_total",
		Help: "Total number of sessions created, by remember-me class.",
	}, []string{"remember_me"})

	SessionsExtended = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kaizen_sessions_extended_total",
		Help: "Total number of successful session extensions.",
	})

	ExtensionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kaizen_session_extensions_rejected_total",
		Help: "Total number of rejected extension attempts, by reason.",
	}, []string{"reason"})

	SessionWarnings = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kaizen_session_warnings_total",
		Help: "Total number of expiry warnings emitted.",
	})

	SessionsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kaizen_sessions_expired_total",
		Help: "Total number of sessions detected as expired.",
	})

	SessionsDestroyed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kaizen_sessions_destroyed_total",
		Help: "Total number of explicit session destroys (logouts).",
	})

	StoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kaizen_session_store_errors_total",
		Help: "Total number of failed session store operations, by operation.",
	}, []string{"op"})

	JournalDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kaizen_journal_dropped_total",
		Help: "Total number of session events dropped because the journal queue was full.",
	})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kaizen_http_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kaizen_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// Middleware records request count and latency labelled by chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
