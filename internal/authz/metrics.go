// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

package authz

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tomtom215/cookbook/internal/models"
)

var (
	// AuthzDecisionsTotal counts authorization decisions.
	// Labels:
	//   - role: caller role, "anonymous" when unauthenticated
	//   - decision: "allow" or "deny"
	//   - rule: index of the deciding table rule, "default" or "none"
	AuthzDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_decisions_total",
			Help: "Total number of authorization decisions",
		},
		[]string{"role", "decision", "rule"},
	)

	// AuthzDecisionDuration tracks the latency of authorization decisions.
	AuthzDecisionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "authz_decision_duration_seconds",
			Help: "Duration of authorization decisions in seconds",
			// Buckets optimized for authz checks (microseconds to milliseconds)
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		},
	)
)

// RecordDecision records one authorization decision.
func RecordDecision(role models.Role, allowed bool, rule string, d time.Duration) {
	roleLabel := role.String()
	if roleLabel == "" {
		roleLabel = "anonymous"
	}
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	AuthzDecisionsTotal.WithLabelValues(roleLabel, decision, rule).Inc()
	AuthzDecisionDuration.Observe(d.Seconds())
}
