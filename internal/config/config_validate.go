// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/cookbook/internal/logging"
)

// MinJWTSecretLength is the minimum signing secret size in bytes (256 bits).
const MinJWTSecretLength = 32

// Validate checks that all required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateAudit(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %v", c.Server.ShutdownTimeout)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if err := c.validateJWTSecret(); err != nil {
		return err
	}
	if c.Security.JWTExpirationMs <= 0 {
		return fmt.Errorf("JWT_EXPIRATION_MS must be positive, got %d", c.Security.JWTExpirationMs)
	}

	switch c.Security.PasswordHasher {
	case HasherBcrypt:
		if c.Security.BcryptCost < 4 || c.Security.BcryptCost > 31 {
			return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.Security.BcryptCost)
		}
	case HasherArgon2id:
	default:
		return fmt.Errorf("PASSWORD_HASHER must be %q or %q, got %q", HasherBcrypt, HasherArgon2id, c.Security.PasswordHasher)
	}
	return nil
}

// validateJWTSecret validates the token signing secret
func (c *Config) validateJWTSecret() error {
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.Security.JWTSecret) < MinJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes (256 bits), got %d", MinJWTSecretLength, len(c.Security.JWTSecret))
	}
	if containsPlaceholder(c.Security.JWTSecret) {
		return fmt.Errorf("JWT_SECRET contains a placeholder value - generate a secure secret with: openssl rand -base64 64")
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case StoreMemory:
	case StoreBadger:
		if c.Store.BadgerPath == "" {
			return fmt.Errorf("BADGER_PATH is required when STORE_BACKEND=badger")
		}
		if c.Store.BadgerGCInterval <= 0 {
			return fmt.Errorf("BADGER_GC must be positive, got %v", c.Store.BadgerGCInterval)
		}
	case StoreMongo:
		if c.Store.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required when STORE_BACKEND=mongo")
		}
		if c.Store.MongoDatabase == "" {
			return fmt.Errorf("MONGO_DATABASE is required when STORE_BACKEND=mongo")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be one of memory, badger, mongo; got %q", c.Store.Backend)
	}
	return nil
}

func (c *Config) validateAudit() error {
	if !c.Audit.Enabled {
		return nil
	}
	if c.Audit.MaxEvents <= 0 {
		return fmt.Errorf("AUDIT_MAX_EVENTS must be positive, got %d", c.Audit.MaxEvents)
	}
	if c.Audit.BufferSize <= 0 {
		return fmt.Errorf("AUDIT_BUFFER_SIZE must be positive, got %d", c.Audit.BufferSize)
	}
	if c.Audit.Retention < time.Hour {
		return fmt.Errorf("AUDIT_RETENTION must be at least 1h, got %v", c.Audit.Retention)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// placeholderPatterns defines common placeholder patterns that indicate
// the operator forgot to set a real value.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_SECRET",
	"PLACEHOLDER",
	"EXAMPLE",
}

// containsPlaceholder reports whether value contains a known placeholder.
func containsPlaceholder(value string) bool {
	upperValue := strings.ToUpper(value)
	for _, pattern := range placeholderPatterns {
		if strings.Contains(upperValue, pattern) {
			return true
		}
	}
	return false
}
