// Package metrics exposes Prometheus instrumentation for the dashboard.
// A nil *Recorder is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelcm/cowork-dashboard/internal/models"
)

type Recorder struct {
	reg         *prometheus.Registry
	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	transitions *prometheus.CounterVec
	assignments prometheus.Counter
	reschedules prometheus.Counter
}

func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cowork_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cowork_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cowork_status_transitions_total",
			Help: "Content status changes applied.",
		}, []string{"from", "to", "forced"}),
		assignments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cowork_autodistribute_assignments_total",
			Help: "Calendar slots assigned by auto-distribute.",
		}),
		reschedules: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cowork_calendar_reschedules_total",
			Help: "Drag-and-drop reschedules.",
		}),
	}
	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.requests, r.latency, r.transitions, r.assignments, r.reschedules,
	)
	return r
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

func (r *Recorder) Transition(from, to models.ContentStatus, forced bool) {
	if r == nil {
		return
	}
	r.transitions.WithLabelValues(string(from), string(to), strconv.FormatBool(forced)).Inc()
}

func (r *Recorder) Assigned(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.assignments.Add(float64(n))
}

func (r *Recorder) Rescheduled() {
	if r == nil {
		return
	}
	r.reschedules.Inc()
}

// Middleware records request count and latency labelled by the chi route
// pattern, so /content/{id} stays one series.
func (r *Recorder) Middleware(next http.Handler) http.Handler {
	if r == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, req)

		route := "unmatched"
		if rc := chi.RouteContext(req.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		r.requests.WithLabelValues(req.Method, route, strconv.Itoa(sw.status)).Inc()
		r.latency.WithLabelValues(req.Method, route).Observe(time.Since(start).Seconds())
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
