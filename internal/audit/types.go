// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

package audit

import (
	"context"
	"time"

	"github.com/tomtom215/cookbook/internal/models"
)

// EventType categorizes audit events.
type EventType string

const (
	// Authentication events
	EventAuthSuccess EventType = "auth.success"
	EventAuthFailure EventType = "auth.failure"

	// Account events
	EventUserRegistered    EventType = "user.registered"
	EventUserCreated       EventType = "user.created"
	EventUserModified      EventType = "user.modified"
	EventUserDeleted       EventType = "user.deleted"
	EventUserRoleChanged   EventType = "user.role_changed"
	EventUserStatusChanged EventType = "user.status_changed"
)

// Severity indicates the severity level of an audit event.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Outcome indicates whether an action succeeded or failed.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Event is one audit trail entry.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Severity  Severity  `json:"severity"`
	Outcome   Outcome   `json:"outcome"`

	// Actor performed the action. Anonymous callers (failed logins) have ID 0.
	Actor Actor `json:"actor"`

	// Target is the affected account, if any.
	Target *Target `json:"target,omitempty"`

	Source Source `json:"source"`

	// Description is a short human-readable summary.
	Description string `json:"description,omitempty"`

	// Changes lists field-level changes as field -> new value. Password
	// changes are recorded as "changed", never with the value.
	Changes map[string]string `json:"changes,omitempty"`

	RequestID string `json:"request_id,omitempty"`
}

// Actor represents who performed an action.
type Actor struct {
	ID   int64  `json:"id"`
	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
}

// ActorFromPrincipal builds an Actor for an authenticated caller. A nil
// principal gives the zero Actor.
func ActorFromPrincipal(p *models.Principal) Actor {
	if p == nil {
		return Actor{}
	}
	return Actor{ID: p.ID, Name: p.Username, Role: p.Role.String()}
}

// Target is the account an action was applied to.
type Target struct {
	ID   int64  `json:"id"`
	Name string `json:"name,omitempty"`
}

// Source describes where a request came from.
type Source struct {
	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// Store persists audit events.
type Store interface {
	Save(ctx context.Context, event *Event) error

	// Query returns matching events, most recent first.
	Query(ctx context.Context, filter QueryFilter) ([]Event, error)

	Count(ctx context.Context, filter QueryFilter) (int64, error)

	// Delete removes events older than olderThan and returns how many.
	Delete(ctx context.Context, olderThan time.Time) (int64, error)
}

// QueryFilter selects audit events. Zero fields match everything.
type QueryFilter struct {
	Types    []EventType
	Outcomes []Outcome
	ActorID  int64
	TargetID int64
	Since    *time.Time

	// Limit caps the number of results; 0 means no limit.
	Limit int
}

// DefaultQueryLimit is used by the API when no limit is given.
const DefaultQueryLimit = 100
