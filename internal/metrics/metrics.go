// Package metrics exposes Prometheus instrumentation for the remote job
// pipeline and the circuit breaker.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ComposerJobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "composer_jobs_total",
			Help: "Remote composition jobs by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	ComposerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "composer_job_duration_seconds",
			Help: "Duration of remote composition jobs",
		},
		[]string{"kind"},
	)

	BreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "composer_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 open, 2 half-open)",
		},
	)

	ThumbnailCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thumbnail_cache_requests_total",
			Help: "Thumbnail cache lookups by result",
		},
		[]string{"result"},
	)
)
