// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Store    StoreConfig    `koanf:"store"`
	Audit    AuditConfig    `koanf:"audit"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// SlowRequestThreshold raises access log lines for slower requests to warn.
	SlowRequestThreshold time.Duration `koanf:"slow_request_threshold"`
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig holds authentication and authorization settings
type SecurityConfig struct {
	// JWTSecret is the HMAC signing key used as raw bytes. At least 32 bytes
	// (256 bits); 64 bytes matches the HS512 block size.
	JWTSecret string `koanf:"jwt_secret"`

	// JWTExpirationMs is the token lifetime in milliseconds.
	JWTExpirationMs int64 `koanf:"jwt_expiration_ms"`

	// PasswordHasher selects the hashing scheme for new passwords: bcrypt or argon2id.
	PasswordHasher string `koanf:"password_hasher"`
	BcryptCost     int    `koanf:"bcrypt_cost"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// TokenLifetime returns the configured token lifetime as a duration.
func (s SecurityConfig) TokenLifetime() time.Duration {
	return time.Duration(s.JWTExpirationMs) * time.Millisecond
}

// StoreConfig selects and configures the user store backend.
type StoreConfig struct {
	// Backend is one of memory, badger, mongo.
	Backend string `koanf:"backend"`

	BadgerPath string `koanf:"badger_path"`

	// BadgerGCInterval is how often the badger value log is compacted.
	BadgerGCInterval time.Duration `koanf:"badger_gc_interval"`

	MongoURI      string `koanf:"mongo_uri"`
	MongoDatabase string `koanf:"mongo_database"`

	// SeedDemoUsers creates admin, chef and user accounts on an empty store.
	SeedDemoUsers bool `koanf:"seed_demo_users"`
}

// AuditConfig controls the in-memory security audit trail.
type AuditConfig struct {
	Enabled    bool          `koanf:"enabled"`
	MaxEvents  int           `koanf:"max_events"`
	Retention  time.Duration `koanf:"retention"`
	BufferSize int           `koanf:"buffer_size"`

	// LogEvents also writes every audit event to the application log.
	LogEvents bool `koanf:"log_events"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Store backend names.
const (
	StoreMemory = "memory"
	StoreBadger = "badger"
	StoreMongo  = "mongo"
)

// Password hasher names.
const (
	HasherBcrypt   = "bcrypt"
	HasherArgon2id = "argon2id"
)

// Load is the entry point used by cmd/server.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
