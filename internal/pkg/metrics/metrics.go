// Package metrics provides Prometheus metrics definitions.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fieldops"

var (
	// HTTPRequestDuration tracks HTTP request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "route", "status_code"},
	)

	// DBPoolConnections tracks database connection pool state.
	DBPoolConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "pool_connections",
			Help:      "Number of database connections by state",
		},
		[]string{"state"},
	)

	// AccessDecisions counts authorization decisions taken at the HTTP boundary.
	AccessDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "access",
			Name:      "decisions_total",
			Help:      "Number of access decisions by permission and result",
		},
		[]string{"permission", "result"},
	)
)

// RecordAccessDecision increments the access decision counter.
func RecordAccessDecision(permission string, allowed bool) {
	result := "denied"
	if allowed {
		result = "allowed"
	}
	AccessDecisions.WithLabelValues(permission, result).Inc()
}

// DirectoryUsers tracks team members by role and activity.
var DirectoryUsers = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "team",
		Name:      "users",
		Help:      "Number of users in the directory by role and active flag",
	},
	[]string{"role", "active"},
)

// RecordDirectoryUsers replaces the directory gauge with the given counts.
// Keys are role tags; values are active and inactive counts.
func RecordDirectoryUsers(counts map[string][2]int) {
	DirectoryUsers.Reset()
	for role, c := range counts {
		DirectoryUsers.WithLabelValues(role, "true").Set(float64(c[0]))
		DirectoryUsers.WithLabelValues(role, "false").Set(float64(c[1]))
	}
}
