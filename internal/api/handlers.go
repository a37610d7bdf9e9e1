// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/tomtom215/cookbook/internal/audit"
	"github.com/tomtom215/cookbook/internal/auth"
	"github.com/tomtom215/cookbook/internal/models"
	"github.com/tomtom215/cookbook/internal/store"
)

// Verifier checks login credentials.
type Verifier interface {
	Verify(ctx context.Context, login, password, ip string) (*models.Principal, error)
}

// TokenIssuer mints bearer tokens.
type TokenIssuer interface {
	Issue(p *models.Principal) (string, error)
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers_auth.go: login, registration, current account
//   - handlers_users.go: user administration
//   - handlers_audit.go: audit trail queries and recording
//   - handlers_health.go: health endpoint
type Handler struct {
	store     store.UserStore
	verifier  Verifier
	issuer    TokenIssuer
	hasher    auth.PasswordHasher
	trail     *audit.Recorder
	version   string
	startTime time.Time
}

// HandlerConfig holds the Handler's dependencies.
type HandlerConfig struct {
	Store    store.UserStore
	Verifier Verifier
	Issuer   TokenIssuer
	Hasher   auth.PasswordHasher
	Version  string

	// Audit is optional; without it no security events are kept.
	Audit *audit.Recorder
}

// NewHandler creates a Handler.
func NewHandler(cfg HandlerConfig) (*Handler, error) {
	if cfg.Store == nil || cfg.Verifier == nil || cfg.Issuer == nil || cfg.Hasher == nil {
		return nil, errors.New("handler requires a store, a verifier, a token issuer and a password hasher")
	}
	return &Handler{
		store:     cfg.Store,
		verifier:  cfg.Verifier,
		issuer:    cfg.Issuer,
		hasher:    cfg.Hasher,
		trail:     cfg.Audit,
		version:   cfg.Version,
		startTime: time.Now(),
	}, nil
}

// handlerFunc is a handler that reports failures as errors.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// wrap adapts fn to http.HandlerFunc, writing returned errors with WriteError.
func wrap(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			WriteError(w, r, err)
		}
	}
}

// MessageResponse is a bare confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserMessageResponse pairs a confirmation with the affected user.
type UserMessageResponse struct {
	Message string              `json:"message"`
	User    models.UserResponse `json:"user"`
}

// remoteIP strips the port from r.RemoteAddr.
func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
