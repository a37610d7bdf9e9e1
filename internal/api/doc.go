// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

/*
Package api provides the HTTP layer of the Cookbook API using the Chi router.

# Middleware Stack

Applied to every request, in order:

 1. RequestID: X-Request-ID propagation and logging context
 2. RealIP: client address from X-Forwarded-For / X-Real-IP
 3. AccessLog: one structured line per request
 4. Recoverer: converts panics into 500 responses
 5. CORS: go-chi/cors, answers preflight requests
 6. PrometheusMetrics: request metrics labeled by route pattern
 7. auth.Gate: bearer token validation, route policy and account protection

The gate runs before routing, so unknown paths are still subject to the
"authenticated by default" policy and answer 401 to anonymous callers.

# Endpoints

Authentication:
  - POST /api/auth/login      {username, password} -> {token, user, message}
  - POST /api/auth/register   {username, email, password} -> 201 {message, user}
  - GET  /api/auth/me         current account

User administration (ADMIN unless noted):
  - GET    /api/users
  - POST   /api/users
  - GET    /api/users/stats
  - GET    /api/users/count          (public)
  - GET    /api/users/{id}           (USER, CHEF, ADMIN)
  - PUT    /api/users/{id}
  - PATCH  /api/users/{id}/role      {role}
  - PATCH  /api/users/{id}/status    {status}
  - DELETE /api/users/{id}

Audit trail (ADMIN):
  - GET    /api/admin/audit          ?type=&outcome=&actor=&target=&since=&limit=

Service:
  - GET /api/health
  - GET /api/stats/public    {users}
  - GET /metrics

# Responses

Successful responses are bare JSON resources. Failures use the APIResponse
envelope:

	{"success": false, "error": {"code": "FORBIDDEN", "message": "...", "request_id": "..."}}
*/
package api
