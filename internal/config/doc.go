// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

// Package config loads and validates the Cookbook API configuration.
//
// Configuration is layered with koanf, lowest priority first:
//
//  1. Struct defaults (defaultConfig)
//  2. YAML file from CONFIG_PATH or one of DefaultConfigPaths (optional)
//  3. Environment variables, mapped explicitly by envTransformFunc
//
// The loaded Config is validated once and treated as read-only for the life of
// the process. In particular the token signing secret and token lifetime are
// never changed after startup.
//
// Example environment:
//
//	JWT_SECRET=$(openssl rand -base64 64)
//	JWT_EXPIRATION_MS=86400000
//	STORE_BACKEND=badger
//	BADGER_PATH=/data/users
package config
