// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/cookbook/internal/validation"
)

// maxBodyBytes limits JSON request bodies.
const maxBodyBytes = 64 << 10

// LoginRequest is the body of POST /api/auth/login. Username accepts an
// email address too.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,maxbytes=72"`
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=4,maxbytes=72"`
}

// CreateUserRequest is the body of POST /api/users. Role defaults to USER.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=4,maxbytes=72"`
	Role     string `json:"role" validate:"omitempty,role"`
}

// UpdateUserRequest is the body of PUT /api/users/{id}. Empty fields are
// left unchanged.
type UpdateUserRequest struct {
	Username string `json:"username" validate:"omitempty,username"`
	Email    string `json:"email" validate:"omitempty,email,max=100"`
	Password string `json:"password" validate:"omitempty,min=4,maxbytes=72"`
	Role     string `json:"role" validate:"omitempty,role"`
}

// UpdateRoleRequest is the body of PATCH /api/users/{id}/role.
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// UpdateStatusRequest is the body of PATCH /api/users/{id}/status.
// "active" (any case) enables the account, any other value suspends it.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// decodeAndValidate reads a JSON body into dst and validates it.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return badRequest("Request body is required")
		case errors.As(err, &maxErr):
			return badRequest("Request body is too large")
		default:
			return badRequest("Invalid JSON body")
		}
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		return verr
	}
	return nil
}

// userIDParam parses the {id} route parameter.
func userIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("Invalid user id: " + raw)
	}
	return id, nil
}
