// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

package audit

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/cookbook/internal/models"
)

// waitForLen polls until s holds n events.
func waitForLen(t *testing.T, s *MemoryStore, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for s.Len() < n {
		if time.Now().After(deadline) {
			t.Fatalf("store has %d events, want %d", s.Len(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRecorder_FillsDefaults(t *testing.T) {
	s := NewMemoryStore(100)
	r := NewRecorder(s, Config{})
	defer r.Close()

	r.Record(&Event{Type: EventAuthFailure, Outcome: OutcomeFailure})
	r.Record(&Event{Type: EventUserCreated, Outcome: OutcomeSuccess})
	waitForLen(t, s, 2)

	events, _ := r.Query(context.Background(), QueryFilter{})
	for _, e := range events {
		if e.ID == "" || e.Timestamp.IsZero() {
			t.Errorf("event %+v missing id or timestamp", e)
		}
	}
	if events[0].Severity != SeverityInfo {
		t.Errorf("success severity = %q, want info", events[0].Severity)
	}
	if events[1].Severity != SeverityWarning {
		t.Errorf("failure severity = %q, want warning", events[1].Severity)
	}
}

func TestRecorder_CloseDrainsBuffer(t *testing.T) {
	s := NewMemoryStore(1000)
	r := NewRecorder(s, Config{BufferSize: 500})

	for i := 0; i < 200; i++ {
		r.Record(&Event{Type: EventUserModified, Outcome: OutcomeSuccess})
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if s.Len() != 200 {
		t.Errorf("stored %d events after Close, want 200", s.Len())
	}

	// Recording after Close is a counted no-op.
	before := testutil.ToFloat64(EventsDropped)
	r.Record(&Event{Type: EventUserModified})
	if got := testutil.ToFloat64(EventsDropped); got != before+1 {
		t.Errorf("dropped counter = %v, want %v", got, before+1)
	}
	if err := r.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if err := r.Prune(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Prune after Close = %v, want ErrClosed", err)
	}
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	r.Record(&Event{Type: EventAuthSuccess})
}

func TestRecorder_Prune(t *testing.T) {
	s := NewMemoryStore(100)
	r := NewRecorder(s, Config{Retention: time.Hour})
	defer r.Close()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	ctx := context.Background()
	_ = s.Save(ctx, &Event{ID: "old", Timestamp: now.Add(-2 * time.Hour)})
	_ = s.Save(ctx, &Event{ID: "fresh", Timestamp: now.Add(-time.Minute)})

	if err := r.Prune(ctx); err != nil {
		t.Fatalf("Prune: %v", err)
	}
	events, _ := r.Query(ctx, QueryFilter{})
	if len(events) != 1 || events[0].ID != "fresh" {
		t.Errorf("after Prune events = %+v, want only fresh", events)
	}
}

func TestActorFromPrincipal(t *testing.T) {
	if got := ActorFromPrincipal(nil); got != (Actor{}) {
		t.Errorf("ActorFromPrincipal(nil) = %+v", got)
	}
	got := ActorFromPrincipal(&models.Principal{ID: 3, Username: "chef", Role: models.RoleChef})
	if got.ID != 3 || got.Name != "chef" || got.Role != "CHEF" {
		t.Errorf("ActorFromPrincipal = %+v", got)
	}
}

func TestSourceFromRequest(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/auth/login", nil)
	req.RemoteAddr = "203.0.113.9:4242"
	req.Header.Set("User-Agent", "curl/8.0")

	got := SourceFromRequest(req)
	if got.IPAddress != "203.0.113.9" || got.UserAgent != "curl/8.0" {
		t.Errorf("SourceFromRequest = %+v", got)
	}
}
