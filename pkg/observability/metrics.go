package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics implements DocumentHooks and CacheHooks with Prometheus
// collectors. Each Metrics has its own registry, so tests can create as
// many as they like.
type Metrics struct {
	registry *prometheus.Registry

	Loads        *prometheus.CounterVec
	LoadNodes    prometheus.Histogram
	Saves        *prometheus.CounterVec
	Exports      *prometheus.CounterVec
	ExportBytes  *prometheus.HistogramVec
	Duration     *prometheus.HistogramVec
	CacheHits    *prometheus.CounterVec
	CacheMisses  *prometheus.CounterVec
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors under namespace and registers them.
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "document_loads_total",
			Help:      "Total number of document loads",
		}, []string{"source", "status"}),
		LoadNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "document_nodes",
			Help:      "Node count of loaded documents",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		Saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "document_saves_total",
			Help:      "Total number of document saves",
		}, []string{"target", "status"}),
		Exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Total number of exports",
		}, []string{"format", "status"}),
		ExportBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "export_bytes",
			Help:      "Size of exported artifacts",
			Buckets:   prometheus.ExponentialBuckets(256, 4, 10),
		}, []string{"format"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of document operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of export cache hits",
		}, []string{"format"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of export cache misses",
		}, []string{"format"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		m.Loads, m.LoadNodes, m.Saves, m.Exports, m.ExportBytes, m.Duration,
		m.CacheHits, m.CacheMisses, m.HTTPRequests, m.HTTPDuration,
	)
	return m
}

// Registry returns the registry holding m's collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) OnLoad(_ context.Context, source string, nodes int, d time.Duration, err error) {
	m.Loads.WithLabelValues(source, status(err)).Inc()
	m.Duration.WithLabelValues("load").Observe(d.Seconds())
	if err == nil {
		m.LoadNodes.Observe(float64(nodes))
	}
}

func (m *Metrics) OnSave(_ context.Context, target string, _ int, d time.Duration, err error) {
	m.Saves.WithLabelValues(target, status(err)).Inc()
	m.Duration.WithLabelValues("save").Observe(d.Seconds())
}

func (m *Metrics) OnExport(_ context.Context, format string, size int, d time.Duration, err error) {
	m.Exports.WithLabelValues(format, status(err)).Inc()
	m.Duration.WithLabelValues("export").Observe(d.Seconds())
	if err == nil {
		m.ExportBytes.WithLabelValues(format).Observe(float64(size))
	}
}

func (m *Metrics) OnCacheHit(_ context.Context, format string) {
	m.CacheHits.WithLabelValues(format).Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, format string) {
	m.CacheMisses.WithLabelValues(format).Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, code int, d time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

var (
	_ DocumentHooks = (*Metrics)(nil)
	_ CacheHooks    = (*Metrics)(nil)
)
