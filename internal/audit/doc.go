// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

// Package audit keeps a queryable trail of security-relevant account events.
//
// Recorded events:
//   - auth.success, auth.failure: login attempts
//   - user.registered: self-service registration
//   - user.created, user.modified, user.deleted: account administration
//   - user.role_changed, user.status_changed: privilege and suspension changes
//
// # Architecture
//
// Recording never blocks the request:
//
//	Recorder.Record() -> buffer (chan) -> writer goroutine -> Store
//
// When the buffer is full the event is dropped, logged and counted in
// audit_events_dropped_total. Close drains the buffer.
//
// MemoryStore holds a bounded window of recent events; Prune applies the
// retention period and is run periodically by the supervisor tree.
//
// # Usage Example
//
//	trail := audit.NewRecorder(audit.NewMemoryStore(10000), audit.DefaultConfig())
//	defer trail.Close()
//
//	trail.Record(&audit.Event{
//	    Type:    audit.EventUserDeleted,
//	    Outcome: audit.OutcomeSuccess,
//	    Actor:   audit.ActorFromPrincipal(caller),
//	    Target:  &audit.Target{ID: 7, Name: "newbie"},
//	})
//
//	events, _ := trail.Query(ctx, audit.QueryFilter{TargetID: 7, Limit: 50})
package audit
