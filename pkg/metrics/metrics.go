package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits counts tiered cache hits per layer.
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "answerboard_cache_hits_total",
			Help: "Total number of tiered cache hits",
		},
		[]string{"layer"},
	)

	// CacheMisses counts tiered cache misses per layer, including degraded reads.
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "answerboard_cache_misses_total",
			Help: "Total number of tiered cache misses",
		},
		[]string{"layer"},
	)

	// CacheSetFailures counts swallowed cache write errors.
	CacheSetFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "answerboard_cache_set_failures_total",
			Help: "Total number of failed cache population attempts",
		},
		[]string{"layer"},
	)

	// CacheInvalidations counts physical delete calls issued by invalidation fan-out.
	CacheInvalidations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "answerboard_cache_invalidations_total",
			Help: "Total number of physical cache keys removed by invalidation",
		},
	)

	// SheetCalls counts remote tabular store calls by operation and outcome (ok|error).
	SheetCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "answerboard_sheet_calls_total",
			Help: "Total number of remote spreadsheet API calls",
		},
		[]string{"op", "outcome"},
	)

	// LookupLatency measures record lookup latency by search field and result.
	LookupLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "answerboard_lookup_latency_seconds",
			Help:    "Record lookup latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"field", "result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "answerboard_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
