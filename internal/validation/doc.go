// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared process-wide; it caches struct
// metadata and is safe for concurrent use. Errors name fields by their JSON
// tag so messages match what the client sent.
//
// Custom tags:
//   - username: 3 to 50 characters of letters, digits, '.', '_' or '-'
//   - role: one of USER, CHEF, ADMIN, MODERATOR in any letter case,
//     surrounding whitespace ignored
//
// Example usage:
//
//	type RegisterRequest struct {
//	    Username string `json:"username" validate:"required,username"`
//	    Email    string `json:"email" validate:"required,email,max=100"`
//	    Password string `json:"password" validate:"required,min=4,max=72"`
//	}
//
//	if err := validation.ValidateStruct(&req); err != nil {
//	    apiErr := err.ToAPIError()
//	    // 400 with apiErr.Code and apiErr.Message
//	}
package validation
