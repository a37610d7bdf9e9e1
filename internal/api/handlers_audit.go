// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/cookbook/internal/audit"
	"github.com/tomtom215/cookbook/internal/auth"
	"github.com/tomtom215/cookbook/internal/logging"
)

// maxAuditLimit caps the limit query parameter of GET /api/admin/audit.
const maxAuditLimit = 1000

// AuditEventsResponse is the body of GET /api/admin/audit.
type AuditEventsResponse struct {
	Events []audit.Event `json:"events"`
	Total  int64         `json:"total"`
}

// AuditEvents lists recorded security events, most recent first.
//
// Query parameters: type and outcome (comma separated), actor and target
// (user ids), since (RFC 3339) and limit (default 100, at most 1000).
func (h *Handler) AuditEvents(w http.ResponseWriter, r *http.Request) error {
	if h.trail == nil {
		WriteSuccess(w, r, AuditEventsResponse{Events: []audit.Event{}})
		return nil
	}

	filter, err := parseAuditFilter(r)
	if err != nil {
		return err
	}

	events, err := h.trail.Query(r.Context(), filter)
	if err != nil {
		return err
	}
	total, err := h.trail.Count(r.Context(), filter)
	if err != nil {
		return err
	}

	WriteSuccess(w, r, AuditEventsResponse{Events: events, Total: total})
	return nil
}

func parseAuditFilter(r *http.Request) (audit.QueryFilter, error) {
	q := r.URL.Query()
	filter := audit.QueryFilter{Limit: audit.DefaultQueryLimit}

	for _, t := range splitList(q.Get("type")) {
		filter.Types = append(filter.Types, audit.EventType(t))
	}
	for _, o := range splitList(q.Get("outcome")) {
		filter.Outcomes = append(filter.Outcomes, audit.Outcome(strings.ToLower(o)))
	}

	var err error
	if filter.ActorID, err = optionalID(q.Get("actor"), "actor"); err != nil {
		return filter, err
	}
	if filter.TargetID, err = optionalID(q.Get("target"), "target"); err != nil {
		return filter, err
	}

	if raw := q.Get("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, badRequest("Invalid since: " + raw)
		}
		filter.Since = &since
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return filter, badRequest("Invalid limit: " + raw)
		}
		filter.Limit = min(limit, maxAuditLimit)
	}

	return filter, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func optionalID(raw, name string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("Invalid " + name + ": " + raw)
	}
	return id, nil
}

// recordEvent attributes event to the caller and request, then hands it to
// the audit trail. Events are dropped when no trail is configured.
func (h *Handler) recordEvent(r *http.Request, event *audit.Event) {
	if h.trail == nil {
		return
	}
	if event.Actor.ID == 0 && event.Actor.Name == "" {
		event.Actor = audit.ActorFromPrincipal(auth.PrincipalFromContext(r.Context()))
	}
	event.Source = audit.SourceFromRequest(r)
	event.RequestID = logging.RequestIDFromContext(r.Context())
	h.trail.Record(event)
}

// recordUserChange records a successful administrative change to target.
func (h *Handler) recordUserChange(r *http.Request, typ audit.EventType, target *audit.Target, description string, changes map[string]string) {
	h.recordEvent(r, &audit.Event{
		Type:        typ,
		Outcome:     audit.OutcomeSuccess,
		Target:      target,
		Description: description,
		Changes:     changes,
	})
}
