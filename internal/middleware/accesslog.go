// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

package middleware

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cookbook/internal/logging"
)

// DefaultSlowRequestThreshold is the latency above which requests are logged at warn.
const DefaultSlowRequestThreshold = time.Second

// AccessLog logs one line per request with method, path, status, size and
// duration. Server errors and requests slower than slowThreshold log at warn,
// everything else at debug. Authorization headers and bodies are never logged.
func AccessLog(slowThreshold time.Duration) func(http.Handler) http.Handler {
	if slowThreshold <= 0 {
		slowThreshold = DefaultSlowRequestThreshold
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			duration := time.Since(start)
			status := statusOf(ww)

			logger := logging.Ctx(r.Context())
			var e *zerolog.Event
			switch {
			case status >= http.StatusInternalServerError:
				e = logger.Warn()
			case duration > slowThreshold:
				e = logger.Warn().Dur("threshold", slowThreshold)
			default:
				e = logger.Debug()
			}

			e.Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("route", routePattern(r)).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", duration).
				Str("remote_ip", r.RemoteAddr).
				Msg("HTTP request")
		})
	}
}
