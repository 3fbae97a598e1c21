// Package metrics defines and registers all custom Prometheus metrics for the
// customs tracking service. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "customs"

// ── Delivery metrics ──────────────────────────────────────────────────────────

// DeliveriesProcessedTotal counts deliveries that completed ingestion.
// Labels:
//   - status: the resulting summary status (e.g. "CLEARED")
//   - source: "webhook", "poll" or "api"
var DeliveriesProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deliveries_processed_total",
		Help:      "Total number of provider deliveries successfully ingested.",
	},
	[]string{"status", "source"},
)

// DeliveriesErrorsTotal counts deliveries that failed.
// Label:
//   - reason: short description of the failure (e.g. "bad_signature", "ingest_failed", "queue_full")
var DeliveriesErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deliveries_errors_total",
		Help:      "Total number of provider deliveries that failed.",
	},
	[]string{"reason"},
)

// DeliveriesDedupTotal counts deduplication decisions.
// Label:
//   - result: "hit" (duplicate, skipped) or "miss" (new delivery, processed)
var DeliveriesDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deliveries_dedup_total",
		Help:      "Total number of deduplication checks, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// QueueDepth tracks the number of deliveries waiting in each worker channel.
var QueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_depth",
		Help:      "Current number of deliveries pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// IngestDuration measures how long one delivery takes from dequeue to persistence.
// Label:
//   - status: the resulting summary status, or "error" on failure
var IngestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ingest_duration_seconds",
		Help:      "Duration of delivery ingestion from dequeue to persistence.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"status"},
)

// ── Pipeline metrics ──────────────────────────────────────────────────────────

// MilestonesTotal counts milestones seen by the pipeline.
// Label:
//   - outcome: "classified" or "dropped"
var MilestonesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "milestones_total",
		Help:      "Total number of raw milestones, by classification outcome.",
	},
	[]string{"outcome"},
)

// RegressedTimelinesTotal counts ingestions whose timeline cleared before it
// entered customs.
var RegressedTimelinesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "regressed_timelines_total",
		Help:      "Total number of ingestions that produced a regressed timeline.",
	},
)

// StatusTransitionsTotal counts summary status moves.
var StatusTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "status_transitions_total",
		Help:      "Total number of summary status changes, by target status.",
	},
	[]string{"status"},
)

// ── Poller metrics ────────────────────────────────────────────────────────────

// PollRunsTotal counts poll cycles.
// Label:
//   - result: "ok" or "error"
var PollRunsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "poll_runs_total",
		Help:      "Total number of provider poll cycles, by result.",
	},
	[]string{"result"},
)
