// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/cookbook/internal/auth"
	"github.com/tomtom215/cookbook/internal/authz"
	"github.com/tomtom215/cookbook/internal/logging"
	"github.com/tomtom215/cookbook/internal/models"
	"github.com/tomtom215/cookbook/internal/store"
	"github.com/tomtom215/cookbook/internal/validation"
)

// Client-facing messages.
const (
	msgInvalidCredentials = "Invalid username or password"
	msgUnauthenticated    = "Authentication required"
	msgForbidden          = "You do not have permission to perform this action"
	msgUserNotFound       = "User not found"
	msgDuplicateUser      = "Username or email already exists"
	msgInternal           = "An internal error occurred"
)

// requestError is a client mistake reported as 400 with its message.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(msg string) error {
	return &requestError{msg: msg}
}

// WriteError maps err to a status code and writes the error envelope.
//
// Mapping:
//   - authz.ErrUnauthenticated                    -> 401 UNAUTHORIZED
//   - authz.ErrForbidden                          -> 403 FORBIDDEN
//   - auth.ErrSelfActionDenied                    -> 403 SELF_ACTION_DENIED
//   - auth.ErrAdminProtected                      -> 403 ADMIN_PROTECTED
//   - auth.ErrInvalidCredentials                  -> 400 BAD_REQUEST
//   - validation errors, bad ids, unknown roles   -> 400
//   - store.ErrNotFound                           -> 404 NOT_FOUND
//   - store.ErrDuplicate                          -> 409 CONFLICT
//   - anything else                               -> 500 INTERNAL_ERROR (logged, not echoed)
//
// It is also the auth.Gate error writer, so gate rejections and handler
// failures share one format.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	rw := NewResponseWriter(w, r)

	var (
		reqErr    *requestError
		valErr    *validation.RequestValidationError
		unknownRl *models.ErrUnknownRole
	)

	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		w.Header().Set("WWW-Authenticate", `Bearer realm="cookbook"`)
		rw.Error(http.StatusUnauthorized, ErrCodeUnauthorized, msgUnauthenticated)
	case errors.Is(err, authz.ErrForbidden):
		rw.Error(http.StatusForbidden, ErrCodeForbidden, msgForbidden)
	case errors.Is(err, auth.ErrSelfActionDenied):
		rw.Error(http.StatusForbidden, ErrCodeSelfAction, err.Error())
	case errors.Is(err, auth.ErrAdminProtected):
		rw.Error(http.StatusForbidden, ErrCodeAdminProtected, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		rw.BadRequest(msgInvalidCredentials)
	case errors.As(err, &valErr):
		apiErr := valErr.ToAPIError()
		rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeValidation, apiErr.Message, apiErr.Details)
	case errors.As(err, &unknownRl):
		rw.BadRequest("Invalid role: " + unknownRl.Value)
	case errors.As(err, &reqErr):
		rw.BadRequest(reqErr.msg)
	case errors.Is(err, store.ErrNotFound):
		rw.NotFound(msgUserNotFound)
	case errors.Is(err, store.ErrDuplicate):
		rw.Error(http.StatusConflict, ErrCodeConflict, msgDuplicateUser)
	default:
		logging.Ctx(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Request failed")
		rw.InternalError(msgInternal)
	}
}
