// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/tomtom215/cookbook/internal/authz"
	"github.com/tomtom215/cookbook/internal/logging"
	"github.com/tomtom215/cookbook/internal/models"
	"github.com/tomtom215/cookbook/internal/store"
)

// Authorizer decides whether a caller with role may call method on path.
// The zero role means anonymous.
type Authorizer interface {
	Authorize(method, path string, role models.Role) error
}

// TargetStore loads the account targeted by an administrative mutation.
type TargetStore interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// ErrorWriter writes a rejection response for err.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Routes guarded by account protection. Role changes are only guarded
// against self-targeting.
var (
	userRolePattern   = authz.MustCompilePattern("/api/users/{id}/role")
	userStatusPattern = authz.MustCompilePattern("/api/users/{id}/status")
	userPattern       = authz.MustCompilePattern("/api/users/{id}")
)

const (
	protectSelf  = "self_action"
	protectAdmin = "admin_protected"
)

// Gate authenticates and authorizes every request before routing.
type Gate struct {
	codec      *TokenCodec
	authorizer Authorizer
	targets    TargetStore
	writeError ErrorWriter
	logger     *logging.SecurityLogger
}

// GateConfig holds the Gate's collaborators. Logger may be nil.
type GateConfig struct {
	Codec      *TokenCodec
	Authorizer Authorizer
	Targets    TargetStore
	WriteError ErrorWriter
	Logger     *logging.SecurityLogger
}

// NewGate creates a Gate.
func NewGate(cfg GateConfig) (*Gate, error) {
	if cfg.Codec == nil || cfg.Authorizer == nil || cfg.Targets == nil || cfg.WriteError == nil {
		return nil, fmt.Errorf("gate requires a codec, an authorizer, a target store and an error writer")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewSecurityLogger()
	}
	return &Gate{
		codec:      cfg.Codec,
		authorizer: cfg.Authorizer,
		targets:    cfg.Targets,
		writeError: cfg.WriteError,
		logger:     logger,
	}, nil
}

// Middleware runs the gate in front of next. Allowed requests reach next with
// the caller's Principal in the context (nil for anonymous callers); rejected
// requests never do.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		principal := g.Authenticate(r)

		var role models.Role
		var userID int64
		if principal != nil {
			role, userID = principal.Role, principal.ID
		}

		if err := g.authorizer.Authorize(r.Method, r.URL.Path, role); err != nil {
			switch {
			case errors.Is(err, authz.ErrUnauthenticated):
				g.logger.LogAccessDenied(userID, role.String(), r.Method, r.URL.Path, ip, "unauthenticated")
			case errors.Is(err, authz.ErrForbidden):
				g.logger.LogAccessDenied(userID, role.String(), r.Method, r.URL.Path, ip, "forbidden")
			default:
				logging.Ctx(r.Context()).Error().Err(err).Msg("Authorization failed")
			}
			g.writeError(w, r, err)
			return
		}

		if principal != nil {
			if err := g.CheckProtectedAction(r.Context(), principal, r.Method, r.URL.Path); err != nil {
				g.writeError(w, r, err)
				return
			}
		}

		if principal != nil {
			r = r.WithContext(WithPrincipal(r.Context(), principal))
		}
		next.ServeHTTP(w, r)
	})
}

// Authenticate returns the principal carried by the request's bearer token,
// or nil when the token is absent or invalid. Invalid tokens are logged with
// their failure kind.
func (g *Gate) Authenticate(r *http.Request) *models.Principal {
	token, ok := bearerToken(r)
	if !ok {
		return nil
	}

	claims, err := g.codec.Validate(token)
	RecordTokenValidation(err)
	if err != nil {
		kind := TokenErrorKindOf(err)
		if kind == 0 {
			logging.Ctx(r.Context()).Error().Err(err).Msg("Token validation failed")
			return nil
		}
		g.logger.LogTokenRejected(kind.String(), r.Method, r.URL.Path, clientIP(r))
		return nil
	}
	return claims.Principal()
}

// CheckProtectedAction enforces account protection on user mutation routes:
//
//   - PATCH /api/users/{id}/role, PATCH /api/users/{id}/status and
//     DELETE /api/users/{id} fail with ErrSelfActionDenied when {id} is the
//     caller's own id
//   - the status and delete routes fail with ErrAdminProtected when the
//     target account is an administrator
//
// Other routes, non-numeric ids and unknown targets pass through to the
// handler, which reports them as 400 and 404.
func (g *Gate) CheckProtectedAction(ctx context.Context, caller *models.Principal, method, path string) error {
	id, checkTarget, ok := protectedTarget(method, path)
	if !ok {
		return nil
	}

	if id == caller.ID {
		g.denyProtected(caller, id, method, path, protectSelf)
		return ErrSelfActionDenied
	}
	if !checkTarget {
		return nil
	}

	target, err := g.targets.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load target user %d: %w", id, err)
	}
	if target.Role == models.RoleAdmin {
		g.denyProtected(caller, id, method, path, protectAdmin)
		return ErrAdminProtected
	}
	return nil
}

func (g *Gate) denyProtected(caller *models.Principal, targetID int64, method, path, reason string) {
	RecordProtectedActionDenied(reason)
	g.logger.LogProtectedAction(caller.ID, targetID, method, path, reason)
}

// protectedTarget extracts the target id of a protected route. checkTarget
// reports whether the target's stored role must also be inspected.
func protectedTarget(method, path string) (id int64, checkTarget, ok bool) {
	var raw string
	switch method {
	case http.MethodPatch:
		if params, match := userRolePattern.Params(path); match {
			raw = params["id"]
		} else if params, match := userStatusPattern.Params(path); match {
			raw, checkTarget = params["id"], true
		}
	case http.MethodDelete:
		if params, match := userPattern.Params(path); match {
			raw, checkTarget = params["id"], true
		}
	}
	if raw == "" {
		return 0, false, false
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, false
	}
	return id, checkTarget, true
}

// bearerToken returns the token from an "Authorization: Bearer" header.
// A header with another scheme counts as no token.
func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "bearer "
	if len(h) < len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
