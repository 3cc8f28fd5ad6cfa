package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService owns the Prometheus registry and the domain counters the
// ledger and allocator report into.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter

	completions      prometheus.Counter
	reassignments    prometheus.Counter
	allocatorRetries prometheus.Counter

	cacheHitCount  uint64
	cacheMissCount uint64
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	completions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "assignment_completions_total",
		Help: "Total first-time assignment completions",
	})

	reassignments := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "assignment_reassignments_total",
		Help: "Total writer reassignments",
	})

	allocatorRetries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "placeholder_allocation_retries_total",
		Help: "Total placeholder phone allocation retries after collisions",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheHitRatio, cacheHits, cacheMisses, completions, reassignments, allocatorRetries, goroutines)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		cacheHitRatio:    cacheHitRatio,
		cacheHits:        cacheHits,
		cacheMisses:      cacheMisses,
		completions:      completions,
		reassignments:    reassignments,
		allocatorRetries: allocatorRetries,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records per-route request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a cache lookup and refreshes the hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	if total := hits + misses; total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// RecordCompletion counts a first-time completion event.
func (m *MetricsService) RecordCompletion() {
	if m == nil {
		return
	}
	m.completions.Inc()
}

// RecordReassignment counts a writer reassignment.
func (m *MetricsService) RecordReassignment() {
	if m == nil {
		return
	}
	m.reassignments.Inc()
}

// RecordAllocatorRetry counts one placeholder collision retry.
func (m *MetricsService) RecordAllocatorRetry() {
	if m == nil {
		return
	}
	m.allocatorRetries.Inc()
}
