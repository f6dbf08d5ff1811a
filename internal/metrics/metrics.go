// Package metrics defines and registers all custom Prometheus metrics for the
// portal gateway. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry at package
// init through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Access gate ───────────────────────────────────────────────────────────────

// GateOutcomesTotal counts access gate decisions.
// Labels:
//   - view: the protected view name (e.g. "admin")
//   - outcome: "loading", "redirect_to_login", "access_denied" or "render"
var GateOutcomesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_outcomes_total",
		Help:      "Total number of access gate decisions, by view and outcome.",
	},
	[]string{"view", "outcome"},
)

// ── Identity resolution ───────────────────────────────────────────────────────

// RevalidationsTotal counts background revalidations of the primary track.
// Label:
//   - result: "valid", "invalid" (session cleared) or "discarded" (caller gone)
var RevalidationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "revalidations_total",
		Help:      "Total number of primary session revalidations, by result.",
	},
	[]string{"result"},
)

// RevalidationDuration measures the auth backend round trip of a revalidation.
var RevalidationDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "revalidation_duration_seconds",
		Help:      "Duration of the current-user call made during revalidation.",
		Buckets:   prometheus.DefBuckets,
	},
)

// RevalidationQueueDepth tracks the number of revalidations waiting per worker.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var RevalidationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "revalidation_queue_depth",
		Help:      "Current number of revalidations pending in each worker channel.",
	},
	[]string{"worker_id"},
)

// ── Sessions ──────────────────────────────────────────────────────────────────

// LoginsTotal counts session-establishing calls made through the portal.
// Labels:
//   - track: "primary" or "company"
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of portal logins, by identity track and result.",
	},
	[]string{"track", "result"},
)
