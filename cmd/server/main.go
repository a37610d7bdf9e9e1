// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

// Package main is the entry point for the Cookbook API server.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: environment variables, config file and defaults (Koanf v2)
//  2. Logging: zerolog, JSON or console output
//  3. User store: memory, BadgerDB or MongoDB, wrapped with Prometheus metrics
//  4. Security: password hasher, HS512 token codec, Casbin route policy
//  5. Audit trail: buffered in-memory record of logins and account changes
//  6. Authentication gate and HTTP handlers
//  7. Supervisor tree: HTTP server, store maintenance and audit retention (suture v4)
//
// # Configuration
//
// Required:
//   - JWT_SECRET: signing secret, at least 32 bytes
//
// Common options:
//   - HTTP_PORT (default 8080)
//   - JWT_EXPIRATION_MS (default 86400000, 24h)
//   - STORE_BACKEND: memory (default), badger or mongo
//   - BADGER_PATH, MONGO_URI, MONGO_DATABASE
//   - SEED_DEMO_USERS=true creates admin/admin, chef/chef and user/user
//   - PASSWORD_HASHER: bcrypt (default) or argon2id
//   - CORS_ORIGINS: comma-separated list
//   - AUDIT_ENABLED (default true), AUDIT_RETENTION (default 720h)
//   - LOG_LEVEL, LOG_FORMAT
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the supervisor tree. The HTTP server stops
// accepting connections and waits up to SHUTDOWN_TIMEOUT for in-flight
// requests, then the store is closed.
//
// # Example Usage
//
//	export JWT_SECRET=$(openssl rand -base64 64)
//	export SEED_DEMO_USERS=true
//	./cookbook
//
//	curl -s -XPOST localhost:8080/api/auth/login -d '{"username":"admin","password":"admin"}'
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/cookbook/internal/api"
	"github.com/tomtom215/cookbook/internal/audit"
	"github.com/tomtom215/cookbook/internal/auth"
	"github.com/tomtom215/cookbook/internal/authz"
	"github.com/tomtom215/cookbook/internal/config"
	"github.com/tomtom215/cookbook/internal/logging"
	"github.com/tomtom215/cookbook/internal/metrics"
	"github.com/tomtom215/cookbook/internal/store"
	"github.com/tomtom215/cookbook/internal/supervisor"
	"github.com/tomtom215/cookbook/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("version", version).
		Str("store", cfg.Store.Backend).
		Str("password_hasher", cfg.Security.PasswordHasher).
		Dur("token_lifetime", cfg.Security.TokenLifetime()).
		Msg("Starting Cookbook API")
	metrics.SetAppInfo(version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hasher, err := auth.NewPasswordHasher(cfg.Security.PasswordHasher, cfg.Security.BcryptCost)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create password hasher")
	}

	backend, err := openStore(ctx, &cfg.Store)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open user store")
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing user store")
		}
	}()
	users := store.Instrument(backend, cfg.Store.Backend)

	if cfg.Store.SeedDemoUsers {
		logging.Warn().Msg("Demo users enabled (SEED_DEMO_USERS=true): do not use in production")
		if err := store.SeedDemoUsers(ctx, users, hasher); err != nil {
			logging.Error().Err(err).Msg("Failed to seed demo users")
			return
		}
	}

	var trail *audit.Recorder
	if cfg.Audit.Enabled {
		trail = audit.NewRecorder(audit.NewMemoryStore(cfg.Audit.MaxEvents), audit.Config{
			Retention:  cfg.Audit.Retention,
			BufferSize: cfg.Audit.BufferSize,
			LogEvents:  cfg.Audit.LogEvents,
		})
		defer func() {
			if err := trail.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing audit trail")
			}
		}()
	}

	router, err := buildRouter(cfg, users, hasher, trail)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to build HTTP router")
		return
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Error().Err(err).Msg("Failed to create supervisor tree")
		return
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	if gc, ok := backend.(*store.BadgerStore); ok {
		tree.AddStorageService(services.NewPeriodicService("badger-value-log-gc", cfg.Store.BadgerGCInterval, gc.RunValueLogGC))
	}
	if trail != nil {
		tree.AddStorageService(services.NewPeriodicService("audit-retention", time.Hour, trail.Prune))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	logging.Info().Msg("Application stopped gracefully")
}

// buildRouter wires the security components and the API handlers.
func buildRouter(cfg *config.Config, users store.UserStore, hasher auth.PasswordHasher, trail *audit.Recorder) (http.Handler, error) {
	codec, err := auth.NewTokenCodec([]byte(cfg.Security.JWTSecret), cfg.Security.TokenLifetime())
	if err != nil {
		return nil, err
	}

	table, err := authz.NewTable(authz.DefaultRules())
	if err != nil {
		return nil, err
	}
	enforcer, err := authz.NewEnforcer(table)
	if err != nil {
		return nil, err
	}
	logging.Info().Int("rules", len(table.Rules())).Int("policies", enforcer.PolicyCount()).Msg("Route policy loaded")

	securityLog := logging.NewSecurityLogger()

	gate, err := auth.NewGate(auth.GateConfig{
		Codec:      codec,
		Authorizer: enforcer,
		Targets:    users,
		WriteError: api.WriteError,
		Logger:     securityLog,
	})
	if err != nil {
		return nil, err
	}

	handler, err := api.NewHandler(api.HandlerConfig{
		Store:    users,
		Verifier: auth.NewCredentialVerifier(users, hasher, securityLog),
		Issuer:   codec,
		Hasher:   hasher,
		Version:  version,
		Audit:    trail,
	})
	if err != nil {
		return nil, err
	}

	corsCfg := api.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.Security.CORSOrigins

	return api.NewRouter(api.RouterConfig{
		Handler:       handler,
		Gate:          gate,
		CORS:          corsCfg,
		SlowThreshold: cfg.Server.SlowRequestThreshold,
	})
}
