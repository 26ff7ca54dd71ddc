package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reports_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "route", "status"})

	QueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reports_query_duration_seconds",
		Help:    "Report query duration by kind",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	QueryFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reports_query_failures_total",
		Help: "Report queries that failed at the fetch boundary",
	}, []string{"kind"})

	ChannelCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reports_channel_cache_total",
		Help: "Channel list cache lookups by result",
	}, []string{"result"})

	ExportJobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reports_export_jobs_total",
		Help: "Export job outcomes",
	}, []string{"outcome"})

	ExportRenderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "reports_export_render_duration_seconds",
		Help:    "Export worker render duration",
		Buckets: prometheus.DefBuckets,
	})
)
