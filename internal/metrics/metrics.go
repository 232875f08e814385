// Package metrics exposes Prometheus collectors on a private registry.
// All recording methods are safe to call on a nil *Metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Submission results.
const (
	ResultOK              = "ok"
	ResultInvalidFields   = "invalid_fields"
	ResultInvalidFiles    = "invalid_attachments"
	ResultLinkNotFound    = "link_not_found"
	ResultDispatchFailure = "dispatch_failed"
	ResultError           = "error"
)

// Dispatch recipients and statuses.
const (
	RecipientOperator  = "operator"
	RecipientSubmitter = "submitter"
	StatusSent         = "sent"
	StatusFailed       = "failed"
)

type Metrics struct {
	registry *prometheus.Registry

	linksCreated    prometheus.Counter
	submissions     *prometheus.CounterVec
	dispatches      *prometheus.CounterVec
	partialDispatch prometheus.Counter
	rateLimited     prometheus.Counter
	httpDuration    *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		linksCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "paylink_links_created_total",
			Help: "Payment links issued.",
		}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "paylink_submissions_total",
			Help: "Payment submissions by result.",
		}, []string{"result"}),
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "paylink_dispatch_total",
			Help: "Notification emails by recipient and status.",
		}, []string{"recipient", "status"}),
		partialDispatch: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "paylink_partial_dispatch_total",
			Help: "Submissions where the operator was notified but the submitter was not.",
		}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "paylink_rate_limited_total",
			Help: "Requests rejected by the rate limiter.",
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "paylink_http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		m.linksCreated,
		m.submissions,
		m.dispatches,
		m.partialDispatch,
		m.rateLimited,
		m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) LinkCreated() {
	if m == nil {
		return
	}
	m.linksCreated.Inc()
}

func (m *Metrics) Submission(result string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(result).Inc()
}

func (m *Metrics) Dispatch(recipient, status string) {
	if m == nil {
		return
	}
	m.dispatches.WithLabelValues(recipient, status).Inc()
}

func (m *Metrics) PartialDispatch() {
	if m == nil {
		return
	}
	m.partialDispatch.Inc()
}

func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// Middleware records request durations labeled by chi route pattern so
// path parameters do not explode cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.ObserveHTTP(r.Method, route, status, time.Since(start))
	})
}
