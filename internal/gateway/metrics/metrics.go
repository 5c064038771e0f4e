// Package metrics defines and registers the custom Prometheus metrics for
// the NappyLocks client core. It is the single source of truth for metric
// names, labels, and help strings; registration happens at import via
// promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "nappylocks"

// AuthAttemptsTotal counts credential-affecting operations.
// Labels:
//   - operation: "login", "register", "logout", "update_profile", "reset_password"
//   - result: "success" or "failure"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of credential-affecting operations, by result.",
	},
	[]string{"operation", "result"},
)

// GuardDecisionsTotal counts route guard evaluations.
// Label:
//   - state: "awaiting_hydration", "unauthenticated", "wrong_role", "authorized"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions, by resulting state.",
	},
	[]string{"state"},
)

// HydrationDuration measures how long restoring persisted state takes.
var HydrationDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "hydration_duration_seconds",
		Help:      "Duration of persisted state restoration at startup.",
		Buckets:   prometheus.DefBuckets,
	},
)

// CartMutationsTotal counts cart operations.
// Label:
//   - operation: "add", "remove", "update_quantity", "clear"
var CartMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_mutations_total",
		Help:      "Total number of cart mutations, by operation.",
	},
	[]string{"operation"},
)
