// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

package api

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/cookbook/internal/audit"
)

// waitForEvents blocks until the audit store holds n events.
func (f *apiFixture) waitForEvents(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for f.events.Len() < n {
		if time.Now().After(deadline) {
			t.Fatalf("audit store has %d events, want %d", f.events.Len(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func (f *apiFixture) auditEvents(t *testing.T, query string) AuditEventsResponse {
	t.Helper()
	rec := f.do(t, http.MethodGet, "/api/admin/audit"+query, f.tokenFor(t, 1), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET audit%s status = %d (%s)", query, rec.Code, rec.Body.String())
	}
	var resp AuditEventsResponse
	decodeBody(t, rec, &resp)
	return resp
}

func TestAudit_RecordsLoginsAndAdminChanges(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.tokenFor(t, 1)

	f.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Username: "chef", Password: "chef"})
	f.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Username: "chef", Password: "wrong"})
	if rec := f.do(t, http.MethodPatch, "/api/users/7/role", admin, UpdateRoleRequest{Role: "chef"}); rec.Code != http.StatusOK {
		t.Fatalf("role change status = %d (%s)", rec.Code, rec.Body.String())
	}
	if rec := f.do(t, http.MethodDelete, "/api/users/6", admin, nil); rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d (%s)", rec.Code, rec.Body.String())
	}
	f.waitForEvents(t, 4)

	resp := f.auditEvents(t, "")
	if resp.Total != 4 || len(resp.Events) != 4 {
		t.Fatalf("total = %d, events = %d; want 4", resp.Total, len(resp.Events))
	}

	wantTypes := []audit.EventType{audit.EventUserDeleted, audit.EventUserRoleChanged, audit.EventAuthFailure, audit.EventAuthSuccess}
	for i, e := range resp.Events {
		if e.Type != wantTypes[i] {
			t.Errorf("event %d type = %s, want %s", i, e.Type, wantTypes[i])
		}
		if e.ID == "" || e.RequestID == "" {
			t.Errorf("event %d missing id or request id: %+v", i, e)
		}
	}

	roleChange := resp.Events[1]
	if roleChange.Actor.ID != 1 || roleChange.Target == nil || roleChange.Target.ID != 7 {
		t.Errorf("role change actor/target = %+v / %+v", roleChange.Actor, roleChange.Target)
	}
	if roleChange.Changes["role"] != "CHEF" {
		t.Errorf("role change changes = %v", roleChange.Changes)
	}

	failure := resp.Events[2]
	if failure.Outcome != audit.OutcomeFailure || failure.Severity != audit.SeverityWarning {
		t.Errorf("failure outcome/severity = %s/%s", failure.Outcome, failure.Severity)
	}
	if failure.Actor.Name != "ch***" {
		t.Errorf("failed login name = %q, want masked", failure.Actor.Name)
	}

	success := resp.Events[3]
	if success.Actor.ID != 2 || success.Actor.Role != "CHEF" {
		t.Errorf("login actor = %+v", success.Actor)
	}
}

func TestAudit_QueryFilters(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.tokenFor(t, 1)

	f.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Username: "nobody", Password: "x"})
	f.do(t, http.MethodPatch, "/api/users/7/status", admin, UpdateStatusRequest{Status: "suspended"})
	f.do(t, http.MethodPatch, "/api/users/3/role", admin, UpdateRoleRequest{Role: "chef"})
	f.waitForEvents(t, 3)

	tests := []struct {
		query string
		want  int
	}{
		{"?type=auth.failure", 1},
		{"?type=user.role_changed,user.status_changed", 2},
		{"?outcome=FAILURE", 1},
		{"?actor=1", 2},
		{"?target=7", 1},
		{"?limit=1", 1},
		{"?since=2000-01-01T00:00:00Z", 3},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.query, func(t *testing.T) {
			resp := f.auditEvents(t, tt.query)
			if len(resp.Events) != tt.want {
				t.Errorf("events = %d, want %d", len(resp.Events), tt.want)
			}
		})
	}

	// total ignores the limit.
	if resp := f.auditEvents(t, "?limit=1"); resp.Total != 3 {
		t.Errorf("total = %d, want 3", resp.Total)
	}
}

func TestAudit_BadQuery(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.tokenFor(t, 1)

	for _, query := range []string{"?limit=0", "?limit=abc", "?actor=-1", "?target=x", "?since=yesterday"} {
		rec := f.do(t, http.MethodGet, "/api/admin/audit"+query, admin, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s status = %d, want 400", query, rec.Code)
			continue
		}
		if code := errorCode(t, rec); code != ErrCodeBadRequest {
			t.Errorf("%s code = %s", query, code)
		}
	}
}

func TestAudit_AdminOnly(t *testing.T) {
	f := newAPIFixture(t)

	if rec := f.do(t, http.MethodGet, "/api/admin/audit", "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want 401", rec.Code)
	}
	for _, id := range []int64{2, 3, 4} {
		rec := f.do(t, http.MethodGet, "/api/admin/audit", f.tokenFor(t, id), nil)
		if rec.Code != http.StatusForbidden {
			t.Errorf("user %d status = %d, want 403", id, rec.Code)
		}
	}
}

func TestAudit_PasswordNeverRecorded(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.tokenFor(t, 1)

	rec := f.do(t, http.MethodPut, "/api/users/7", admin, UpdateUserRequest{Password: "a-new-secret-pass"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d (%s)", rec.Code, rec.Body.String())
	}
	f.waitForEvents(t, 1)

	body := f.do(t, http.MethodGet, "/api/admin/audit", admin, nil).Body.String()
	if strings.Contains(body, "a-new-secret-pass") {
		t.Fatalf("password leaked into audit trail: %s", body)
	}
	if !strings.Contains(body, `"password":"changed"`) {
		t.Errorf("password change not noted: %s", body)
	}
}
