// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

package api

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cookbook/internal/audit"
	"github.com/tomtom215/cookbook/internal/auth"
	"github.com/tomtom215/cookbook/internal/logging"
	"github.com/tomtom215/cookbook/internal/models"
)

// ListUsers returns every account ordered by id.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) error {
	users, err := h.store.List(r.Context())
	if err != nil {
		return err
	}

	out := make([]models.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, u.ToResponse())
	}
	WriteSuccess(w, r, out)
	return nil
}

// CreateUser creates an account with an explicit role.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) error {
	var req CreateUserRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		return err
	}

	role := models.RoleUser
	if req.Role != "" {
		parsed, err := models.ParseRoleInput(req.Role)
		if err != nil {
			return err
		}
		role = parsed
	}

	u, err := h.createUser(r, req.Username, req.Email, req.Password, role)
	if err != nil {
		return err
	}

	h.adminLog(r).Int64("target_id", u.ID).Str("role", role.String()).Msg("User created")
	h.recordUserChange(r, audit.EventUserCreated, targetOf(u), "user created",
		map[string]string{"role": role.String()})
	NewResponseWriter(w, r).Created(UserMessageResponse{Message: "User created", User: u.ToResponse()})
	return nil
}

// GetUser returns one account.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) error {
	id, err := userIDParam(r)
	if err != nil {
		return err
	}
	u, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		return err
	}
	WriteSuccess(w, r, u.ToResponse())
	return nil
}

// UpdateUser edits username, email, password and role. A role change on the
// caller's own account is refused like PATCH /role; status is only changed
// through PATCH /status.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) error {
	id, err := userIDParam(r)
	if err != nil {
		return err
	}
	var req UpdateUserRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		return err
	}

	u, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		return err
	}

	changes := make(map[string]string)
	if req.Role != "" {
		role, err := models.ParseRoleInput(req.Role)
		if err != nil {
			return err
		}
		if role != u.Role {
			if caller := auth.PrincipalFromContext(r.Context()); caller != nil && caller.ID == id {
				return auth.ErrSelfActionDenied
			}
			u.Role = role
			changes["role"] = role.String()
		}
	}
	if req.Username != "" && req.Username != u.Username {
		u.Username = req.Username
		changes["username"] = req.Username
	}
	if req.Email != "" && req.Email != u.Email {
		u.Email = req.Email
		changes["email"] = logging.SanitizeEmail(req.Email)
	}
	if req.Password != "" {
		hash, err := h.hasher.Hash(req.Password)
		if err != nil {
			return err
		}
		u.PasswordHash = hash
		changes["password"] = "changed"
	}

	if err := h.store.Update(r.Context(), u); err != nil {
		return err
	}

	h.adminLog(r).Int64("target_id", id).Msg("User updated")
	h.recordUserChange(r, audit.EventUserModified, targetOf(u), "user updated", changes)
	WriteSuccess(w, r, UserMessageResponse{Message: "User updated", User: u.ToResponse()})
	return nil
}

// UpdateUserRole sets the role of another account. The value is trimmed and
// case-insensitive; unknown roles answer 400.
func (h *Handler) UpdateUserRole(w http.ResponseWriter, r *http.Request) error {
	id, err := userIDParam(r)
	if err != nil {
		return err
	}
	var req UpdateRoleRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		return err
	}
	role, err := models.ParseRoleInput(req.Role)
	if err != nil {
		return err
	}

	u, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		return err
	}
	previous := u.Role
	u.Role = role
	if err := h.store.Update(r.Context(), u); err != nil {
		return err
	}

	h.adminLog(r).Int64("target_id", id).Str("role", role.String()).Msg("User role changed")
	h.recordUserChange(r, audit.EventUserRoleChanged, targetOf(u), "role changed from "+previous.String(),
		map[string]string{"role": role.String()})
	WriteSuccess(w, r, UserMessageResponse{Message: "Role updated", User: u.ToResponse()})
	return nil
}

// UpdateUserStatus enables ("active") or suspends (anything else) an account.
func (h *Handler) UpdateUserStatus(w http.ResponseWriter, r *http.Request) error {
	id, err := userIDParam(r)
	if err != nil {
		return err
	}
	var req UpdateStatusRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		return err
	}

	u, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		return err
	}
	u.Enabled = strings.EqualFold(strings.TrimSpace(req.Status), models.StatusActive)
	if err := h.store.Update(r.Context(), u); err != nil {
		return err
	}

	status := models.StatusLabel(u.Enabled)
	h.adminLog(r).Int64("target_id", id).Str("status", status).Msg("User status changed")
	h.recordUserChange(r, audit.EventUserStatusChanged, targetOf(u), "status changed",
		map[string]string{"status": status})
	WriteSuccess(w, r, UserMessageResponse{Message: "Status updated", User: u.ToResponse()})
	return nil
}

// DeleteUser removes an account.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) error {
	id, err := userIDParam(r)
	if err != nil {
		return err
	}
	if err := h.store.Delete(r.Context(), id); err != nil {
		return err
	}

	h.adminLog(r).Int64("target_id", id).Msg("User deleted")
	h.recordUserChange(r, audit.EventUserDeleted, &audit.Target{ID: id}, "user deleted", nil)
	WriteSuccess(w, r, MessageResponse{Message: "User deleted"})
	return nil
}

// UserStats summarizes accounts by status and role.
func (h *Handler) UserStats(w http.ResponseWriter, r *http.Request) error {
	users, err := h.store.List(r.Context())
	if err != nil {
		return err
	}

	stats := models.UserStats{ByRole: make(map[string]int, len(models.AllRoles))}
	for _, role := range models.AllRoles {
		stats.ByRole[role.String()] = 0
	}
	for _, u := range users {
		stats.Total++
		if u.Enabled {
			stats.Enabled++
		} else {
			stats.Disabled++
		}
		stats.ByRole[u.Role.String()]++
	}
	WriteSuccess(w, r, stats)
	return nil
}

// CountResponse is the body of GET /api/users/count.
type CountResponse struct {
	Count int `json:"count"`
}

// UserCount returns the number of accounts. It is public.
func (h *Handler) UserCount(w http.ResponseWriter, r *http.Request) error {
	n, err := h.store.Count(r.Context())
	if err != nil {
		return err
	}
	WriteSuccess(w, r, CountResponse{Count: n})
	return nil
}

// adminLog starts an info log line attributed to the calling administrator.
func (h *Handler) adminLog(r *http.Request) *zerolog.Event {
	e := logging.Ctx(r.Context()).Info().Str("component", "admin")
	if p := auth.PrincipalFromContext(r.Context()); p != nil {
		e = e.Int64("actor_id", p.ID)
	}
	return e
}

func targetOf(u *models.User) *audit.Target {
	return &audit.Target{ID: u.ID, Name: u.Username}
}
