// Package metrics exposes Prometheus collectors for the analytics pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "analytics"

// Metrics holds the pipeline collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	quotaUsed          prometheus.Gauge
	quotaReservations  *prometheus.CounterVec
	remoteCalls        *prometheus.CounterVec
	cacheRequests      *prometheus.CounterVec
	collectionDuration prometheus.Histogram
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		quotaUsed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "quota_units_used",
			Help:      "YouTube API quota units consumed by this process.",
		}),
		quotaReservations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quota_reservations_total",
			Help:      "Quota reservation attempts by result.",
		}, []string{"result"}),
		remoteCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_calls_total",
			Help:      "YouTube API calls by operation and status.",
		}, []string{"operation", "status"}),
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Collection cache lookups by result.",
		}, []string{"result"}),
		collectionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "collection_duration_seconds",
			Help:      "Duration of uncached collect-and-score runs.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		}),
	}

	reg.MustRegister(
		m.quotaUsed,
		m.quotaReservations,
		m.remoteCalls,
		m.cacheRequests,
		m.collectionDuration,
	)

	return m
}

// QuotaReserved implements quota.Recorder.
func (m *Metrics) QuotaReserved(cost, used int) {
	if m == nil {
		return
	}
	m.quotaUsed.Set(float64(used))
	m.quotaReservations.WithLabelValues("accepted").Inc()
}

// QuotaRejected implements quota.Recorder.
func (m *Metrics) QuotaRejected(cost int) {
	if m == nil {
		return
	}
	m.quotaReservations.WithLabelValues("rejected").Inc()
}

// RemoteCall records one YouTube API call.
func (m *Metrics) RemoteCall(operation string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.remoteCalls.WithLabelValues(operation, status).Inc()
}

// CacheHit records a collection cache hit.
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheRequests.WithLabelValues("hit").Inc()
}

// CacheMiss records a collection cache miss.
func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.cacheRequests.WithLabelValues("miss").Inc()
}

// ObserveCollection records the duration of an uncached collection.
func (m *Metrics) ObserveCollection(d time.Duration) {
	if m == nil {
		return
	}
	m.collectionDuration.Observe(d.Seconds())
}
