// Package metrics exposes the harness Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal counts runner invocations by mode and result.
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crossbow_runs_total",
			Help: "Total harness runner invocations by mode and result",
		},
		[]string{"mode", "result"},
	)

	// CompletionEventsTotal counts completion events delivered through the
	// listener protocol by event kind.
	CompletionEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crossbow_completion_events_total",
			Help: "Total completion events delivered to registrations",
		},
		[]string{"kind"},
	)

	// ProtocolAnomaliesTotal counts detected listener-protocol violations.
	ProtocolAnomaliesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crossbow_protocol_anomalies_total",
			Help: "Total detected completion-protocol anomalies by kind",
		},
		[]string{"kind"},
	)

	// LateEventsDiscardedTotal counts events discarded because their
	// invocation had already been finalized or abandoned.
	LateEventsDiscardedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crossbow_late_events_discarded_total",
			Help: "Total completion events discarded after finalization",
		},
	)

	// BuildDurationSeconds measures index build latency by engine.
	BuildDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crossbow_build_duration_seconds",
			Help:    "Duration of index builds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"engine"},
	)

	// QueryDurationSeconds measures query latency by engine and path.
	QueryDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crossbow_query_duration_seconds",
			Help:    "Duration of queries by engine and path",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"engine", "path"},
	)

	// EquivalenceFailuresTotal counts cross-path comparison failures by
	// cause.
	EquivalenceFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crossbow_equivalence_failures_total",
			Help: "Total sync/async result comparison failures by cause",
		},
		[]string{"cause"},
	)
)
