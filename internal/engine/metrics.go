package engine

import (
	"time"

	"github.com/rcrowley/go-metrics"
)

// Names under which the engine registers its metrics.
const (
	MetricCacheHits        = "cache.hits"
	MetricFetchCount       = "fetch.count"
	MetricFetchBytes       = "fetch.bytes"
	MetricFetchDuration    = "fetch.duration"
	MetricReconcileRemoved = "reconcile.removed"
)

type engineMetrics struct {
	cacheHits        metrics.Counter
	fetchCount       metrics.Counter
	fetchBytes       metrics.Meter
	fetchDuration    metrics.Timer
	reconcileRemoved metrics.Counter
}

func newEngineMetrics(r metrics.Registry) *engineMetrics {
	return &engineMetrics{
		cacheHits:        metrics.GetOrRegisterCounter(MetricCacheHits, r),
		fetchCount:       metrics.GetOrRegisterCounter(MetricFetchCount, r),
		fetchBytes:       metrics.GetOrRegisterMeter(MetricFetchBytes, r),
		fetchDuration:    metrics.GetOrRegisterTimer(MetricFetchDuration, r),
		reconcileRemoved: metrics.GetOrRegisterCounter(MetricReconcileRemoved, r),
	}
}

func (m *engineMetrics) observeFetch(start time.Time, bytes int64) {
	m.fetchCount.Inc(1)
	m.fetchBytes.Mark(bytes)
	m.fetchDuration.UpdateSince(start)
}
