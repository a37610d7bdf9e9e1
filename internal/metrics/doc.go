// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

/*
Package metrics provides Prometheus metrics for the HTTP layer, the user store
and process information.

Authentication and authorization metrics live next to the code that records
them (internal/auth and internal/authz); every collector registers with the
default registry through promauto, so GET /metrics exposes all of them.

# Available Metrics

HTTP Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint (chi route pattern), status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: In-flight requests (gauge)

Store Metrics:
  - user_store_operation_duration_seconds: Store call latency (histogram)
    Labels: backend, operation
  - user_store_operation_errors_total: Failed store calls (counter)
    Labels: backend, operation, error_type (not_found, duplicate, other)

System Metrics:
  - app_info: Build information (gauge, always 1)
    Labels: version, go_version
  - app_uptime_seconds: Process uptime (gauge)

Auth Metrics (recorded by internal/auth and internal/authz):
  - auth_login_attempts_total{outcome}
  - auth_token_validations_total{result}
  - auth_tokens_issued_total{role}
  - auth_protected_action_denied_total{reason}
  - authz_decisions_total{role, decision, rule}
  - authz_decision_duration_seconds
*/
package metrics
