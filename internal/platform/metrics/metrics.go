// Package metrics registers the Prometheus collectors for rosters,
// appointments and HTTP traffic. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hospital"

type Metrics struct {
	rosterChanges *prometheus.CounterVec
	rosterDelta   *prometheus.CounterVec
	appointments  *prometheus.CounterVec
	rejectedRefs  *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpLatency   *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		rosterChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "roster",
			Name:      "changes_total",
			Help:      "Shift roster operations by kind and outcome",
		}, []string{"op", "outcome"}),
		rosterDelta: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "roster",
			Name:      "assignments_total",
			Help:      "Doctor/shift assignments added or removed",
		}, []string{"direction"}),
		appointments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "appointment",
			Name:      "operations_total",
			Help:      "Appointment operations by kind and outcome",
		}, []string{"op", "outcome"}),
		rejectedRefs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unknown_reference_total",
			Help:      "Requests rejected because a referenced entity does not exist",
		}, []string{"kind"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.rosterChanges, m.rosterDelta, m.appointments, m.rejectedRefs, m.httpRequests, m.httpLatency)
	return m
}

// ObserveRoster records one roster operation and the assignments it moved.
func (m *Metrics) ObserveRoster(op, outcome string, added, removed int) {
	if m == nil {
		return
	}
	m.rosterChanges.WithLabelValues(op, outcome).Inc()
	if added > 0 {
		m.rosterDelta.WithLabelValues("added").Add(float64(added))
	}
	if removed > 0 {
		m.rosterDelta.WithLabelValues("removed").Add(float64(removed))
	}
}

func (m *Metrics) ObserveAppointment(op, outcome string) {
	if m == nil {
		return
	}
	m.appointments.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) ObserveUnknownReference(kind string) {
	if m == nil {
		return
	}
	m.rejectedRefs.WithLabelValues(kind).Inc()
}

// Middleware records request counts and latency per matched route.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m == nil {
				return next(c)
			}
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.httpRequests.WithLabelValues(c.Request().Method, route, strconv.Itoa(c.Response().Status)).Inc()
			m.httpLatency.WithLabelValues(c.Request().Method, route).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
