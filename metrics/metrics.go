package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogroll_fetch_errors_total",
		Help: "The total number of failed feed fetches, by source host",
	}, []string{"host"})

	FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "blogroll_fetch_duration_seconds",
		Help:    "Duration of a single feed fetch and parse",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
	})

	AggregationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "blogroll_aggregation_duration_seconds",
		Help:    "Duration of a full aggregation pass over a set of sources",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	})

	CachedItems = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "blogroll_cached_items",
		Help: "Number of items held by the latest cache entry, by key (all or a source host)",
	}, []string{"key"})

	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogroll_cache_requests_total",
		Help: "Cache lookups by result (hit, miss, shared)",
	}, []string{"result"})
)
