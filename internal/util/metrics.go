package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReportsGeneratedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "analytics_reports_generated_total",
		Help: "Total number of analytics reports built",
	})

	ReportsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "analytics_reports_failed_total",
		Help: "Total number of report requests that failed",
	}, []string{"reason"})

	RowsSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "analytics_rows_skipped_total",
		Help: "Total number of input rows skipped during normalization",
	}, []string{"kind"})

	ReportDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "analytics_report_duration_seconds",
		Help:    "Latency of full report computation",
		Buckets: prometheus.DefBuckets,
	})

	RowFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "analytics_row_fetch_duration_seconds",
		Help:    "Latency of raw row fetches from storage",
		Buckets: prometheus.DefBuckets,
	})

	RowCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "analytics_row_cache_hits_total",
		Help: "Total number of raw-row cache hits",
	})

	RowCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "analytics_row_cache_misses_total",
		Help: "Total number of raw-row cache misses",
	})

	CacheInvalidationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "analytics_cache_invalidations_total",
		Help: "Total number of cache invalidations from order events",
	})

	ForecastsSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "analytics_forecasts_skipped_total",
		Help: "Total number of forecasts skipped for insufficient history",
	}, []string{"series"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
