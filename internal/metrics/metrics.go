// Package metrics exposes booking and login counters in the Prometheus text
// format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gardenweeks"

const (
	ResultSuccess   = "success"
	ResultConflict  = "conflict"
	ResultInvalid   = "invalid"
	ResultFailure   = "failure"
	ResultThrottled = "throttled"
)

type Metrics struct {
	registry *prometheus.Registry

	BookingsCreated   *prometheus.CounterVec
	BookingsCancelled prometheus.Counter
	BookingsMoved     prometheus.Counter
	Logins            *prometheus.CounterVec
	Registrations     prometheus.Counter
}

// New registers every collector on a private registry so tests can build as
// many instances as they need.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		BookingsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_requests_total",
			Help:      "Booking attempts by outcome.",
		}, []string{"result"}),
		BookingsCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_cancelled_total",
			Help:      "Bookings removed by members or admins.",
		}),
		BookingsMoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_moved_total",
			Help:      "Bookings moved to another week or year.",
		}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"result"}),
		Registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Accounts created through the API.",
		}),
	}
	registry.MustRegister(m.BookingsCreated, m.BookingsCancelled, m.BookingsMoved, m.Logins, m.Registrations)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
