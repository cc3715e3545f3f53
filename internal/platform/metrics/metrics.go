// Package metrics exposes the back office's Prometheus collectors.
// A nil *Registry is valid and records nothing, so components can run without metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "jar_backoffice"

// Registry holds all collectors on a private prometheus registry
type Registry struct {
	registry *prometheus.Registry

	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	LedgerEntries   *prometheus.CounterVec
	CacheHits       *prometheus.CounterVec
	CacheMisses     *prometheus.CounterVec
	OutboxPublished *prometheus.CounterVec
	OutboxFailed    *prometheus.CounterVec
	Projections     *prometheus.CounterVec
}

func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		),

		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"route", "method"},
		),

		LedgerEntries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_entries_total",
				Help:      "Ledger entries recorded by kind",
			},
			[]string{"kind"},
		),

		CacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Tenant list cache hits by list kind",
			},
			[]string{"kind"},
		),

		CacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Tenant list cache misses by list kind",
			},
			[]string{"kind"},
		),

		OutboxPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "outbox_published_total",
				Help:      "Outbox messages published by event type",
			},
			[]string{"event_type"},
		),

		OutboxFailed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "outbox_failed_total",
				Help:      "Outbox publish failures by reason",
			},
			[]string{"reason"},
		),

		Projections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "statement_projections_total",
				Help:      "Ledger events projected into customer statements by result",
			},
			[]string{"result"},
		),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.HTTPRequests,
		r.HTTPDuration,
		r.LedgerEntries,
		r.CacheHits,
		r.CacheMisses,
		r.OutboxPublished,
		r.OutboxFailed,
		r.Projections,
	)

	return r
}

// Handler serves the registry in the Prometheus text format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Registry) LedgerEntryRecorded(kind string) {
	if r == nil {
		return
	}
	r.LedgerEntries.WithLabelValues(kind).Inc()
}

func (r *Registry) CacheHit(kind string) {
	if r == nil {
		return
	}
	r.CacheHits.WithLabelValues(kind).Inc()
}

func (r *Registry) CacheMiss(kind string) {
	if r == nil {
		return
	}
	r.CacheMisses.WithLabelValues(kind).Inc()
}

func (r *Registry) OutboxPublishedEvent(eventType string) {
	if r == nil {
		return
	}
	r.OutboxPublished.WithLabelValues(eventType).Inc()
}

func (r *Registry) OutboxFailure(reason string) {
	if r == nil {
		return
	}
	r.OutboxFailed.WithLabelValues(reason).Inc()
}

func (r *Registry) ProjectionResult(result string) {
	if r == nil {
		return
	}
	r.Projections.WithLabelValues(result).Inc()
}

// Middleware records request count and latency per matched route.
// Unmatched routes are grouped under "unmatched" to keep label cardinality bounded.
func (r *Registry) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if r == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		r.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		r.HTTPDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}
