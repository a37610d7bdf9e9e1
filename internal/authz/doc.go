// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

// Package authz decides whether a request may reach its handler, based on the
// HTTP method, the request path and the caller's role.
//
// The policy is an ordered rule table. Each Rule names a method (or ANY), a
// path pattern and a Requirement:
//
//   - Public: always allowed, with or without a token
//   - Authenticated: any valid role
//   - RoleSet: one of the listed roles
//
// The first rule whose method and pattern match the request decides the
// outcome; later rules are never consulted. A request that matches no rule is
// allowed only when the caller is authenticated.
//
// Patterns are matched segment by segment. A literal segment must match
// exactly, {name} and * match any single segment, and a trailing ** matches
// the rest of the path (including nothing):
//
//	/api/recipes/{id}      matches /api/recipes/12
//	/api/users/*/role      matches /api/users/7/role
//	/api/auth/**           matches /api/auth and /api/auth/login
//
// The table is built once at startup (NewTable) and never changes. Enforcer
// compiles it into a Casbin model that uses the priority effect, so policy
// order carries the first-match semantics, and a custom routeMatch function
// applies the pattern rules above.
package authz
