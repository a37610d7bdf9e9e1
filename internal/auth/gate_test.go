// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

package auth

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tomtom215/cookbook/internal/authz"
	"github.com/tomtom215/cookbook/internal/logging"
	"github.com/tomtom215/cookbook/internal/models"
	"github.com/tomtom215/cookbook/internal/store"
)

type gateFixture struct {
	gate  *Gate
	codec *TokenCodec
	clock *testClock
	store *store.MemoryStore

	// rejected holds the error passed to the error writer, if any.
	rejected error
	// reached and principal describe what the downstream handler saw.
	reached   bool
	principal *models.Principal
}

// newGateFixture seeds accounts 1 (ADMIN), 2 (ADMIN), 3 (CHEF) and 4 (USER, disabled).
func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()

	f := &gateFixture{store: store.NewMemoryStore()}
	f.codec, f.clock = newTestCodec(t, testSecret, hour)

	for _, u := range []*models.User{
		{Username: "admin", Email: "admin@cooking.com", Role: models.RoleAdmin, Enabled: true},
		{Username: "root", Email: "root@cooking.com", Role: models.RoleAdmin, Enabled: true},
		{Username: "chef", Email: "chef@cooking.com", Role: models.RoleChef, Enabled: true},
		{Username: "gone", Email: "gone@cooking.com", Role: models.RoleUser, Enabled: false},
	} {
		u.PasswordHash = "$2a$04$unused"
		if err := f.store.Create(context.Background(), u); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	table, err := authz.NewTable(authz.DefaultRules())
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}

	f.gate, err = NewGate(GateConfig{
		Codec:      f.codec,
		Authorizer: table,
		Targets:    f.store,
		WriteError: func(w http.ResponseWriter, _ *http.Request, err error) {
			f.rejected = err
			w.WriteHeader(http.StatusTeapot)
		},
		Logger: logging.NewSecurityLoggerWithLogger(logging.NewTestLogger(&bytes.Buffer{})),
	})
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}
	return f
}

func (f *gateFixture) token(t *testing.T, id int64, username string, role models.Role) string {
	t.Helper()
	token, err := f.codec.Issue(&models.Principal{ID: id, Username: username, Role: role})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return token
}

func (f *gateFixture) do(method, path, authorization string) {
	f.rejected, f.reached, f.principal = nil, false, nil

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.reached = true
		f.principal = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(method, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	f.gate.Middleware(next).ServeHTTP(httptest.NewRecorder(), req)
}

func TestGatePublicRouteWithoutToken(t *testing.T) {
	f := newGateFixture(t)

	f.do(http.MethodGet, "/api/recipes", "")
	if !f.reached || f.rejected != nil {
		t.Fatalf("GET /api/recipes rejected: %v", f.rejected)
	}
	if f.principal != nil {
		t.Errorf("principal = %+v, want none", f.principal)
	}
}

func TestGateAuthentication(t *testing.T) {
	f := newGateFixture(t)
	valid := f.token(t, 3, "chef", models.RoleChef)

	other, _ := newTestCodec(t, "another-secret-another-secret-another-secret", hour)
	foreign, err := other.Issue(&models.Principal{ID: 1, Username: "admin", Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	tests := []struct {
		name          string
		authorization string
		wantPrincipal bool
	}{
		{"valid bearer", "Bearer " + valid, true},
		{"lowercase scheme", "bearer " + valid, true},
		{"no header", "", false},
		{"basic scheme", "Basic YWRtaW46YWRtaW4=", false},
		{"empty bearer", "Bearer ", false},
		{"garbage", "Bearer not-a-token", false},
		{"foreign secret", "Bearer " + foreign, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/recipes", nil)
			if tt.authorization != "" {
				req.Header.Set("Authorization", tt.authorization)
			}
			p := f.gate.Authenticate(req)
			if (p != nil) != tt.wantPrincipal {
				t.Fatalf("Authenticate() = %+v, wantPrincipal %v", p, tt.wantPrincipal)
			}
			if p != nil && (p.ID != 3 || p.Username != "chef" || p.Role != models.RoleChef) {
				t.Errorf("principal = %+v", p)
			}
		})
	}
}

func TestGateInvalidTokenIsAnonymous(t *testing.T) {
	f := newGateFixture(t)
	token := f.token(t, 3, "chef", models.RoleChef)
	f.clock.now = t0.Add(hour)

	// Public routes still work with an expired token.
	f.do(http.MethodGet, "/api/recipes", "Bearer "+token)
	if !f.reached || f.principal != nil {
		t.Errorf("expired token on public route: reached=%v principal=%+v", f.reached, f.principal)
	}

	// Protected routes treat it as no token at all.
	f.do(http.MethodPost, "/api/recipes", "Bearer "+token)
	if !errors.Is(f.rejected, authz.ErrUnauthenticated) {
		t.Errorf("expired token on protected route: %v, want ErrUnauthenticated", f.rejected)
	}
}

func TestGateRoleDecisions(t *testing.T) {
	f := newGateFixture(t)
	admin := "Bearer " + f.token(t, 1, "admin", models.RoleAdmin)
	chef := "Bearer " + f.token(t, 3, "chef", models.RoleChef)
	user := "Bearer " + f.token(t, 9, "user", models.RoleUser)

	tests := []struct {
		name          string
		method, path  string
		authorization string
		want          error
	}{
		{"anonymous user list", http.MethodGet, "/api/users", "", authz.ErrUnauthenticated},
		{"user lists users", http.MethodGet, "/api/users", user, authz.ErrForbidden},
		{"chef lists users", http.MethodGet, "/api/users", chef, authz.ErrForbidden},
		{"admin lists users", http.MethodGet, "/api/users", admin, nil},
		{"chef posts recipe", http.MethodPost, "/api/recipes", chef, nil},
		{"anonymous me", http.MethodGet, "/api/auth/me", "", authz.ErrUnauthenticated},
		{"user me", http.MethodGet, "/api/auth/me", user, nil},
		{"anonymous unmatched", http.MethodGet, "/api/unknown", "", authz.ErrUnauthenticated},
		{"user unmatched", http.MethodGet, "/api/unknown", user, nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			f.do(tt.method, tt.path, tt.authorization)
			if !errors.Is(f.rejected, tt.want) || (tt.want == nil && !f.reached) {
				t.Errorf("%s %s: rejected = %v, want %v", tt.method, tt.path, f.rejected, tt.want)
			}
			if tt.want != nil && f.reached {
				t.Error("rejected request reached the handler")
			}
		})
	}
}

func TestGateSelfProtection(t *testing.T) {
	f := newGateFixture(t)
	admin := "Bearer " + f.token(t, 1, "admin", models.RoleAdmin)

	// Account 5 does not exist; the self check still applies before any lookup.
	admin5 := "Bearer " + f.token(t, 5, "five", models.RoleAdmin)

	tests := []struct {
		name          string
		method, path  string
		authorization string
	}{
		{"change own role", http.MethodPatch, "/api/users/1/role", admin},
		{"change own status", http.MethodPatch, "/api/users/1/status", admin},
		{"delete self", http.MethodDelete, "/api/users/1", admin},
		{"delete self regardless of target role", http.MethodDelete, "/api/users/5", admin5},
		{"leading zero id", http.MethodDelete, "/api/users/0005", admin5},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			f.do(tt.method, tt.path, tt.authorization)
			if !errors.Is(f.rejected, ErrSelfActionDenied) {
				t.Errorf("rejected = %v, want ErrSelfActionDenied", f.rejected)
			}
			if f.reached {
				t.Error("request reached the handler")
			}
		})
	}
}

func TestGateAdminProtection(t *testing.T) {
	f := newGateFixture(t)
	admin := "Bearer " + f.token(t, 1, "admin", models.RoleAdmin)

	tests := []struct {
		name         string
		method, path string
		want         error
	}{
		{"disable another admin", http.MethodPatch, "/api/users/2/status", ErrAdminProtected},
		{"delete another admin", http.MethodDelete, "/api/users/2", ErrAdminProtected},
		{"change another admin's role", http.MethodPatch, "/api/users/2/role", nil},
		{"disable a chef", http.MethodPatch, "/api/users/3/status", nil},
		{"delete a user", http.MethodDelete, "/api/users/4", nil},
		{"change a user's role", http.MethodPatch, "/api/users/4/role", nil},
		{"unknown target", http.MethodDelete, "/api/users/99", nil},
		{"non-numeric target", http.MethodDelete, "/api/users/abc", nil},
		{"edit another admin", http.MethodPut, "/api/users/2", nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			f.do(tt.method, tt.path, admin)
			if !errors.Is(f.rejected, tt.want) {
				t.Fatalf("rejected = %v, want %v", f.rejected, tt.want)
			}
			if (tt.want == nil) != f.reached {
				t.Errorf("reached = %v, want %v", f.reached, tt.want == nil)
			}
		})
	}
}

type brokenTargets struct{}

func (brokenTargets) FindByID(context.Context, int64) (*models.User, error) {
	return nil, errors.New("disk on fire")
}

func TestGateTargetLookupFailure(t *testing.T) {
	f := newGateFixture(t)
	f.gate.targets = brokenTargets{}

	caller := &models.Principal{ID: 1, Username: "admin", Role: models.RoleAdmin}
	err := f.gate.CheckProtectedAction(context.Background(), caller, http.MethodDelete, "/api/users/2")
	if err == nil || errors.Is(err, ErrAdminProtected) {
		t.Errorf("CheckProtectedAction() = %v, want lookup error", err)
	}

	// Role changes never consult the store.
	if err := f.gate.CheckProtectedAction(context.Background(), caller, http.MethodPatch, "/api/users/2/role"); err != nil {
		t.Errorf("role change consulted the store: %v", err)
	}
}

// Tokens are self-contained: an account disabled after login keeps its
// token until it expires.
func TestGateTokenOutlivesAccountChanges(t *testing.T) {
	f := newGateFixture(t)
	token := "Bearer " + f.token(t, 4, "gone", models.RoleUser)

	if err := f.store.Delete(context.Background(), 4); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	f.do(http.MethodPost, "/api/recipes", token)
	if !f.reached || f.principal == nil || f.principal.ID != 4 {
		t.Errorf("token rejected after account removal: rejected=%v", f.rejected)
	}

	f.clock.now = t0.Add(hour)
	f.do(http.MethodPost, "/api/recipes", token)
	if !errors.Is(f.rejected, authz.ErrUnauthenticated) {
		t.Errorf("after expiry: rejected = %v, want ErrUnauthenticated", f.rejected)
	}
}

func TestNewGateRequiresCollaborators(t *testing.T) {
	if _, err := NewGate(GateConfig{}); err == nil {
		t.Error("NewGate(empty) succeeded, want error")
	}
}
