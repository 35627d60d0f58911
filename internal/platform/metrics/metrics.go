package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the bot's Prometheus metrics on a private registry.
type Collector struct {
	registry *prometheus.Registry

	events        *prometheus.CounterVec
	eventDuration *prometheus.HistogramVec

	catalogRequests *prometheus.CounterVec
	catalogDuration *prometheus.HistogramVec

	sessions prometheus.Gauge
	sends    *prometheus.CounterVec
}

func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Total number of handled chat events",
			},
			[]string{"kind", "from", "to"},
		),
		eventDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "event_duration_seconds",
				Help:      "Chat event handling duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		catalogRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_requests_total",
				Help:      "Total number of catalog requests",
			},
			[]string{"op", "kind", "outcome"},
		),
		catalogDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "catalog_request_duration_seconds",
				Help:      "Catalog request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		sessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sessions",
				Help:      "Number of known user sessions",
			},
		),
		sends: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transport_sends_total",
				Help:      "Total number of outbound chat API calls",
			},
			[]string{"method", "status"},
		),
	}

	c.registry.MustRegister(
		c.events,
		c.eventDuration,
		c.catalogRequests,
		c.catalogDuration,
		c.sessions,
		c.sends,
		collectors.NewGoCollector(),
	)
	return c
}

func (c *Collector) ObserveEvent(kind, from, to string, d time.Duration) {
	c.events.WithLabelValues(kind, from, to).Inc()
	c.eventDuration.WithLabelValues(kind).Observe(d.Seconds())
}

func (c *Collector) SetSessions(n int) {
	c.sessions.Set(float64(n))
}

func (c *Collector) ObserveCatalog(op, kind, outcome string, d time.Duration) {
	c.catalogRequests.WithLabelValues(op, kind, outcome).Inc()
	c.catalogDuration.WithLabelValues(op).Observe(d.Seconds())
}

// ObserveSend counts one outbound chat API call; status is "ok" or "error".
func (c *Collector) ObserveSend(method, status string) {
	c.sends.WithLabelValues(method, status).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
