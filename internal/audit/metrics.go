// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsRecorded counts stored audit events.
	// Labels:
	//   - type: event type, e.g. "user.deleted"
	//   - outcome: "success" or "failure"
	EventsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_events_recorded_total",
			Help: "Total number of audit events stored",
		},
		[]string{"type", "outcome"},
	)

	// EventsDropped counts events lost to a full buffer or a closed recorder.
	EventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_events_dropped_total",
			Help: "Total number of audit events dropped before storage",
		},
	)
)
