// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

package logging

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// SecurityEvent represents a security-relevant event for audit logging.
type SecurityEvent struct {
	// Event is the type of event (e.g., "login_success", "token_rejected").
	Event string
	// UserID is the principal's numeric id, zero when unknown.
	UserID int64
	// Username is the principal's username or the submitted login name.
	Username string
	// Role is the caller's role, if authenticated.
	Role string
	// Method and Path describe the request being decided.
	Method string
	Path   string
	// IPAddress is the client's IP address.
	IPAddress string
	// Success indicates if the operation was successful.
	Success bool
	// Reason is the internal failure reason. It is never sent to clients.
	Reason string
	// Details contains additional details, sanitized by key.
	Details map[string]string
}

// SecurityLogger provides secure logging for authentication events.
// It sanitizes sensitive data before logging.
type SecurityLogger struct {
	logger zerolog.Logger
}

// NewSecurityLogger creates a new security logger on the global logger.
func NewSecurityLogger() *SecurityLogger {
	return &SecurityLogger{
		logger: With().Str("component", "auth").Logger(),
	}
}

// NewSecurityLoggerWithLogger creates a security logger with a custom zerolog logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSecurityLoggerWithLogger(logger zerolog.Logger) *SecurityLogger {
	return &SecurityLogger{
		logger: logger.With().Str("component", "auth").Logger(),
	}
}

// LogEvent logs a security event. Failures are logged at warn level.
func (l *SecurityLogger) LogEvent(event *SecurityEvent) {
	var e *zerolog.Event
	if event.Success {
		e = l.logger.Info().Str("status", "success")
	} else {
		e = l.logger.Warn().Str("status", "failed")
	}
	e = e.Str("event", event.Event)

	if event.UserID != 0 {
		e = e.Int64("user_id", event.UserID)
	}
	if event.Username != "" {
		e = e.Str("username", SanitizeUsername(event.Username))
	}
	if event.Role != "" {
		e = e.Str("role", event.Role)
	}
	if event.Method != "" {
		e = e.Str("method", event.Method)
	}
	if event.Path != "" {
		e = e.Str("path", truncateString(event.Path, 200))
	}
	if event.IPAddress != "" {
		e = e.Str("ip", event.IPAddress)
	}
	if event.Reason != "" && !event.Success {
		e = e.Str("reason", event.Reason)
	}
	for k, v := range event.Details {
		e = e.Str(k, SanitizeValue(k, v))
	}

	e.Msg("")
}

// LogLoginSuccess logs a successful login.
func (l *SecurityLogger) LogLoginSuccess(userID int64, username, role, ip string) {
	l.LogEvent(&SecurityEvent{
		Event:     "login_success",
		UserID:    userID,
		Username:  username,
		Role:      role,
		IPAddress: ip,
		Success:   true,
	})
}

// LogLoginFailure logs a failed login with its internal reason
// (unknown_user, account_disabled, bad_password).
func (l *SecurityLogger) LogLoginFailure(login, ip, reason string) {
	username := login
	if strings.Contains(login, "@") {
		username = SanitizeEmail(login)
	}
	l.LogEvent(&SecurityEvent{
		Event:     "login_failed",
		Username:  username,
		IPAddress: ip,
		Reason:    reason,
	})
}

// LogTokenRejected logs a token that failed validation. kind distinguishes
// malformed, signature_invalid and expired tokens.
func (l *SecurityLogger) LogTokenRejected(kind, method, path, ip string) {
	l.LogEvent(&SecurityEvent{
		Event:     "token_rejected",
		Method:    method,
		Path:      path,
		IPAddress: ip,
		Reason:    kind,
	})
}

// LogAccessDenied logs a route authorization denial.
func (l *SecurityLogger) LogAccessDenied(userID int64, role, method, path, ip, reason string) {
	l.LogEvent(&SecurityEvent{
		Event:     "access_denied",
		UserID:    userID,
		Role:      role,
		Method:    method,
		Path:      path,
		IPAddress: ip,
		Reason:    reason,
	})
}

// LogProtectedAction logs a refused administrative mutation on a protected
// account (the caller's own account or another administrator's).
func (l *SecurityLogger) LogProtectedAction(actorID, targetID int64, method, path, reason string) {
	l.LogEvent(&SecurityEvent{
		Event:   "protected_action_denied",
		UserID:  actorID,
		Method:  method,
		Path:    path,
		Reason:  reason,
		Details: map[string]string{"target_id": strconv.FormatInt(targetID, 10)},
	})
}

// SanitizeToken masks a token, showing only first and last 4 characters.
// Example: "eyJhbGciOiJIUzUxMiJ9..." -> "eyJh...UxMi"
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// SanitizeUsername masks a username, keeping first 2 characters.
// Example: "johndoe" -> "jo***"
func SanitizeUsername(username string) string {
	if username == "" {
		return ""
	}
	if strings.HasSuffix(username, "***") || strings.Contains(username, "***@") {
		return username
	}
	if len(username) <= 2 {
		return "***"
	}
	return username[:2] + "***"
}

// SanitizeEmail masks an email address.
// Example: "john.doe@example.com" -> "jo***@example.com"
func SanitizeEmail(email string) string {
	if email == "" {
		return ""
	}

	atIndex := strings.Index(email, "@")
	if atIndex <= 0 {
		return "***"
	}

	localPart := email[:atIndex]
	domain := email[atIndex:]

	if len(localPart) <= 2 {
		return "***" + domain
	}
	return localPart[:2] + "***" + domain
}

// SanitizeValue sanitizes a value based on its key name.
func SanitizeValue(key, value string) string {
	switch strings.ToLower(key) {
	case "token", "authorization", "bearer", "password", "secret", "jwt":
		return SanitizeToken(value)
	}
	if strings.Contains(value, "@") && strings.Contains(value, ".") {
		return SanitizeEmail(value)
	}
	return value
}

// truncateString truncates a string to a maximum length.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
