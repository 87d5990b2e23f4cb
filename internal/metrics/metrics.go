package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	PathPrimary  = "primary"
	PathFallback = "fallback"

	FailureError     = "error"
	FailureTimeout   = "timeout"
	FailurePanic     = "panic"
	FailureMalformed = "malformed"
)

var (
	MatchRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutormatch_runs_total",
			Help: "Total number of matching runs by the path that produced the result",
		},
		[]string{"path"},
	)

	PrimaryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutormatch_primary_failures_total",
			Help: "Total number of primary scorer failures that triggered the fallback",
		},
		[]string{"reason"},
	)

	CandidatesEvaluated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tutormatch_candidates_evaluated_total",
			Help: "Total number of candidates scored by the rule-based pipeline",
		},
	)

	MatchRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tutormatch_run_duration_seconds",
			Help:    "Duration of matching runs in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		},
		[]string{"path"},
	)
)
