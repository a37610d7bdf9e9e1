// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/cookbook/internal/audit"
	"github.com/tomtom215/cookbook/internal/auth"
	"github.com/tomtom215/cookbook/internal/authz"
	"github.com/tomtom215/cookbook/internal/logging"
	"github.com/tomtom215/cookbook/internal/models"
)

// LoginUser is the account summary returned with a token.
type LoginUser struct {
	ID       int64       `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role"`
}

// LoginResponse is the body of a successful login.
type LoginResponse struct {
	Token   string    `json:"token"`
	User    LoginUser `json:"user"`
	Message string    `json:"message"`
}

// Login exchanges a username (or email) and password for a bearer token.
//
// Every credential failure, including a malformed body, answers 400 with the
// same message so responses never reveal whether an account exists.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) error {
	var req LoginRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		h.recordLoginFailure(r, req.Username)
		return auth.ErrInvalidCredentials
	}

	p, err := h.verifier.Verify(r.Context(), req.Username, req.Password, remoteIP(r))
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.recordLoginFailure(r, req.Username)
		}
		return err
	}

	token, err := h.issuer.Issue(p)
	if err != nil {
		return err
	}

	h.recordEvent(r, &audit.Event{
		Type:    audit.EventAuthSuccess,
		Outcome: audit.OutcomeSuccess,
		Actor:   audit.ActorFromPrincipal(p),
	})

	WriteSuccess(w, r, LoginResponse{
		Token: token,
		User: LoginUser{
			ID:       p.ID,
			Username: p.Username,
			Email:    p.Email,
			Role:     p.Role,
		},
		Message: "Login successful",
	})
	return nil
}

// Register creates an enabled USER account.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) error {
	var req RegisterRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		return err
	}

	u, err := h.createUser(r, req.Username, req.Email, req.Password, models.RoleUser)
	if err != nil {
		return err
	}

	logging.Ctx(r.Context()).Info().Int64("user_id", u.ID).Msg("User registered")
	h.recordEvent(r, &audit.Event{
		Type:    audit.EventUserRegistered,
		Outcome: audit.OutcomeSuccess,
		Actor:   audit.Actor{ID: u.ID, Name: u.Username, Role: u.Role.String()},
		Target:  &audit.Target{ID: u.ID, Name: u.Username},
	})
	NewResponseWriter(w, r).Created(UserMessageResponse{
		Message: "Registration successful",
		User:    u.ToResponse(),
	})
	return nil
}

// Me returns the caller's stored account. A token that outlived its account
// answers 404.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) error {
	p := auth.PrincipalFromContext(r.Context())
	if p == nil {
		return authz.ErrUnauthenticated
	}

	u, err := h.store.FindByID(r.Context(), p.ID)
	if err != nil {
		return err
	}
	WriteSuccess(w, r, u.ToResponse())
	return nil
}

// createUser hashes password and stores a new enabled account.
func (h *Handler) createUser(r *http.Request, username, email, password string, role models.Role) (*models.User, error) {
	hash, err := h.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Enabled:      true,
	}
	if err := h.store.Create(r.Context(), u); err != nil {
		return nil, err
	}
	return u, nil
}

// recordLoginFailure records a refused login under the masked login name.
func (h *Handler) recordLoginFailure(r *http.Request, login string) {
	h.recordEvent(r, &audit.Event{
		Type:        audit.EventAuthFailure,
		Outcome:     audit.OutcomeFailure,
		Actor:       audit.Actor{Name: logging.SanitizeUsername(login)},
		Description: "invalid credentials",
	})
}
