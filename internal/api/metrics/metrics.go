// Package metrics defines the custom Prometheus metrics for the blog. It is
// the single source of truth for metric names, labels and help strings.
//
// All metrics are registered with the default Prometheus registry through
// promauto when the package is first imported.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "blog"

// Result label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultExists  = "exists"
)

// ── Post metrics ──────────────────────────────────────────────────────────────

// PostsCreatedTotal counts posts persisted from the compose form.
var PostsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "posts_created_total",
		Help:      "Total number of blog posts created.",
	},
)

// PostsDeletedTotal counts posts removed through the delete route.
var PostsDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "posts_deleted_total",
		Help:      "Total number of blog posts deleted.",
	},
)

// ── Account metrics ───────────────────────────────────────────────────────────

// SignupsTotal counts signup attempts.
// Label:
//   - result: "success", "exists" or "failure"
var SignupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of signup attempts, labelled by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, labelled by result.",
	},
	[]string{"result"},
)

// ── Store metrics ─────────────────────────────────────────────────────────────

// StoreErrorsTotal counts handler-visible persistence failures.
// Label:
//   - operation: "list_posts", "get_post", "compose_post", "delete_post", "signup", "login"
var StoreErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_errors_total",
		Help:      "Total number of persistence failures surfaced to handlers, by operation.",
	},
	[]string{"operation"},
)
