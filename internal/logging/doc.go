// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

// Package logging provides centralized zerolog-based logging for the Cookbook API.
//
// A single global logger is configured once at startup with Init and then used
// through the level helpers:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("addr", addr).Msg("Server starting")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Request rejected")
//
// Ctx attaches the request_id and correlation_id carried in the request context,
// so handlers and the authentication gate log with the same identifiers as the
// request log line.
//
// # Security events
//
// SecurityLogger records authentication and authorization outcomes (login
// success and failure, token rejections, access denials). It keeps the detailed
// reason for a failure in the log only; callers of the HTTP API always receive
// the generic message. Usernames, emails and tokens are masked before they are
// written.
//
// The SlogHandler type bridges zerolog into log/slog so that libraries which
// expect an *slog.Logger, such as sutureslog, write through the same sink.
package logging
