// Package metrics exposes Prometheus instrumentation for builds, queries and
// the HTTP binding. Each Metrics value owns a private registry so tests and
// multiple servers never collide on the global default registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agentstation/rankmap/pkg/pipeline"
)

const namespace = "rankmap"

// Compile-time interface check to ensure proper implementation.
var _ pipeline.Observer = (*Metrics)(nil)

// Metrics holds every rankmap collector. The Observe methods are no-ops on a
// nil receiver so callers can run with metrics disabled.
type Metrics struct {
	registry *prometheus.Registry

	BuildsTotal      *prometheus.CounterVec
	BuildDuration    prometheus.Histogram
	RowsTotal        *prometheus.CounterVec
	SourceFailures   prometheus.Counter
	Colleges         prometheus.Gauge
	DerivedColleges  prometheus.Gauge
	LastBuild        prometheus.Gauge
	QueriesTotal     *prometheus.CounterVec
	QueryResults     prometheus.Histogram
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	CacheLookups     *prometheus.CounterVec
	RateLimitedTotal prometheus.Counter
}

// New creates the collectors and registers them, plus Go runtime and process
// collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		BuildsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "builds_total",
			Help:      "Completed builds by outcome.",
		}, []string{"outcome"}),
		BuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Wall-clock duration of builds.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14),
		}),
		RowsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_total",
			Help:      "Source rows processed by the merge engine, by result.",
		}, []string{"result"}),
		SourceFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_failures_total",
			Help:      "Sources skipped because they were missing or malformed.",
		}),
		Colleges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "colleges",
			Help:      "Records in the most recently published catalog.",
		}),
		DerivedColleges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "derived_colleges",
			Help:      "Coverage-synthesized records in the most recently published catalog.",
		}),
		LastBuild: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_build_timestamp_seconds",
			Help:      "Unix time of the last successful build.",
		}),
		QueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Eligibility queries by exam and outcome.",
		}, []string{"exam", "outcome"}),
		QueryResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_results",
			Help:      "Number of colleges returned per eligibility query.",
			Buckets:   []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000},
		}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "cache_lookups_total",
			Help:      "Query cache lookups by result.",
		}, []string{"result"}),
		RateLimitedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		}),
	}

	m.registry.MustRegister(
		m.BuildsTotal,
		m.BuildDuration,
		m.RowsTotal,
		m.SourceFailures,
		m.Colleges,
		m.DerivedColleges,
		m.LastBuild,
		m.QueriesTotal,
		m.QueryResults,
		m.RequestsTotal,
		m.RequestDuration,
		m.CacheLookups,
		m.RateLimitedTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveBuild records a finished build.
func (m *Metrics) ObserveBuild(result *pipeline.Result, err error) {
	if m == nil {
		return
	}
	if result != nil && !result.StartedAt.IsZero() && !result.FinishedAt.IsZero() {
		m.BuildDuration.Observe(result.Duration().Seconds())
	}
	if result != nil {
		m.SourceFailures.Add(float64(len(result.Failed)))
		m.RowsTotal.WithLabelValues("merged").Add(float64(result.Merge.Merged()))
		m.RowsTotal.WithLabelValues("skipped").Add(float64(result.Merge.Skipped()))
	}
	if err != nil || result == nil || result.Catalog == nil {
		m.BuildsTotal.WithLabelValues("failure").Inc()
		return
	}

	m.BuildsTotal.WithLabelValues("success").Inc()
	m.Colleges.Set(float64(result.Catalog.Len()))
	m.DerivedColleges.Set(float64(result.Catalog.Stats().Derived))
	m.LastBuild.Set(float64(result.FinishedAt.Unix()))
}

// ObserveQuery records one eligibility query.
func (m *Metrics) ObserveQuery(exam string, results int, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
		exam = "invalid"
	}
	m.QueriesTotal.WithLabelValues(exam, outcome).Inc()
	if err == nil {
		m.QueryResults.Observe(float64(results))
	}
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(d.Seconds())
}

// ObserveCache records a query cache hit or miss.
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	m.CacheLookups.WithLabelValues("miss").Inc()
}

// ObserveRateLimited records a rejected request.
func (m *Metrics) ObserveRateLimited() {
	if m == nil {
		return
	}
	m.RateLimitedTotal.Inc()
}
