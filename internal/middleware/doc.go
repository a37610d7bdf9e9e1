// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

// Package middleware provides chi-compatible HTTP middleware shared by the
// API router:
//
//   - RequestID: assigns or propagates X-Request-ID and seeds the logging context
//   - PrometheusMetrics: request count, latency and in-flight gauge per route pattern
//   - AccessLog: one structured log line per request, warning on slow requests
//
// Authentication and authorization run in internal/auth.Gate, which the
// router installs after these.
package middleware
