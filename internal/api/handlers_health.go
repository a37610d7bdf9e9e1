// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/cookbook/internal/logging"
	"github.com/tomtom215/cookbook/internal/metrics"
)

// HealthStatus is the body of GET /api/health.
type HealthStatus struct {
	Status         string  `json:"status"`
	Version        string  `json:"version"`
	StoreConnected bool    `json:"store_connected"`
	Uptime         float64 `json:"uptime_seconds"`
}

// Health reports liveness and store reachability. A failing store answers
// 503 with status "degraded".
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) error {
	_, err := h.store.Count(r.Context())
	connected := err == nil

	status, code := "healthy", http.StatusOK
	if !connected {
		status, code = "degraded", http.StatusServiceUnavailable
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Health check: store unreachable")
	}

	metrics.UpdateUptime(h.startTime)
	NewResponseWriter(w, r).writeJSON(code, HealthStatus{
		Status:         status,
		Version:        h.version,
		StoreConnected: connected,
		Uptime:         time.Since(h.startTime).Seconds(),
	})
	return nil
}

// PublicStatsResponse is the body of GET /api/stats/public.
type PublicStatsResponse struct {
	Users int `json:"users"`
}

// PublicStats reports site-wide counters for the landing page. It is public.
func (h *Handler) PublicStats(w http.ResponseWriter, r *http.Request) error {
	n, err := h.store.Count(r.Context())
	if err != nil {
		return err
	}
	WriteSuccess(w, r, PublicStatsResponse{Users: n})
	return nil
}
