// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/cookbook/internal/middleware"
)

// defaultSlowRequest is the AccessLog warning threshold when none is configured.
const defaultSlowRequest = time.Second

// RouterConfig holds what NewRouter wires together.
type RouterConfig struct {
	Handler *Handler

	// Gate authenticates and authorizes every request before routing.
	Gate interface {
		Middleware(next http.Handler) http.Handler
	}

	CORS          CORSConfig
	SlowThreshold time.Duration
}

// NewRouter builds the HTTP handler for the API.
func NewRouter(cfg RouterConfig) (http.Handler, error) {
	if cfg.Handler == nil || cfg.Gate == nil {
		return nil, errors.New("router requires a handler and a gate")
	}
	slow := cfg.SlowThreshold
	if slow <= 0 {
		slow = defaultSlowRequest
	}
	h := cfg.Handler

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog(slow))
	r.Use(chimiddleware.Recoverer)
	r.Use(CORS(cfg.CORS)) // global so preflight requests are answered
	r.Use(middleware.PrometheusMetrics)
	r.Use(cfg.Gate.Middleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("Resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
	})

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", wrap(h.Health))
		r.Get("/stats/public", wrap(h.PublicStats))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", wrap(h.Login))
			r.Post("/register", wrap(h.Register))
			r.Get("/me", wrap(h.Me))
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", wrap(h.ListUsers))
			r.Post("/", wrap(h.CreateUser))
			r.Get("/stats", wrap(h.UserStats))
			r.Get("/count", wrap(h.UserCount))
			r.Get("/{id}", wrap(h.GetUser))
			r.Put("/{id}", wrap(h.UpdateUser))
			r.Patch("/{id}/role", wrap(h.UpdateUserRole))
			r.Patch("/{id}/status", wrap(h.UpdateUserStatus))
			r.Delete("/{id}", wrap(h.DeleteUser))
		})

		r.Get("/admin/audit", wrap(h.AuditEvents))
	})

	return r, nil
}
