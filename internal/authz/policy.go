// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

package authz

import (
	"net/http"

	"github.com/tomtom215/cookbook/internal/models"
)

// contributors are the roles that may write recipes and comments.
var contributors = []models.Role{models.RoleUser, models.RoleChef, models.RoleAdmin}

// DefaultRules returns the Cookbook API route policy in evaluation order.
// More specific patterns precede the {id} patterns that would shadow them.
func DefaultRules() []Rule {
	admin := RoleSet(models.RoleAdmin)
	members := RoleSet(contributors...)

	return []Rule{
		// CORS preflight
		{http.MethodOptions, "/**", Public()},

		// Service endpoints
		{MethodAny, "/api/health", Public()},
		{http.MethodGet, "/metrics", Public()},
		{http.MethodGet, "/api/users/count", Public()},
		{http.MethodGet, "/api/stats/public", Public()},

		// Authentication
		{http.MethodGet, "/api/auth/me", Authenticated()},
		{MethodAny, "/api/auth/**", Public()},

		// Recipes
		{http.MethodGet, "/api/recipes/my-recipes", members},
		{http.MethodGet, "/api/recipes/stats", admin},
		{http.MethodGet, "/api/recipes", Public()},
		{http.MethodGet, "/api/recipes/search", Public()},
		{http.MethodGet, "/api/recipes/recent", Public()},
		{http.MethodGet, "/api/recipes/user/{userId}", Public()},
		{http.MethodGet, "/api/recipes/public/**", Public()},
		{http.MethodGet, "/api/recipes/{id}", Public()},
		{http.MethodPost, "/api/recipes", members},
		{http.MethodPut, "/api/recipes/**", members},
		{http.MethodDelete, "/api/recipes/**", members},

		// Comments
		{http.MethodGet, "/api/comments/**", Public()},
		{http.MethodPost, "/api/comments/**", members},
		{http.MethodDelete, "/api/comments/**", members},

		// User administration
		{http.MethodGet, "/api/users/stats", admin},
		{http.MethodGet, "/api/users", admin},
		{http.MethodPost, "/api/users", admin},
		{http.MethodPut, "/api/users/**", admin},
		{http.MethodPatch, "/api/users/{id}/role", admin},
		{http.MethodPatch, "/api/users/{id}/status", admin},
		{http.MethodDelete, "/api/users/**", admin},
		{http.MethodGet, "/api/users/{id}", members},

		{MethodAny, "/api/admin/**", admin},
	}
}
