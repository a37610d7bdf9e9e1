// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

package main

import (
	"context"
	"fmt"

	"github.com/tomtom215/cookbook/internal/config"
	"github.com/tomtom215/cookbook/internal/logging"
	"github.com/tomtom215/cookbook/internal/store"
)

// openStore opens the configured user store backend.
func openStore(ctx context.Context, cfg *config.StoreConfig) (store.UserStore, error) {
	switch cfg.Backend {
	case config.StoreMemory:
		logging.Warn().Msg("Using in-memory user store: accounts are lost on restart")
		return store.NewMemoryStore(), nil

	case config.StoreBadger:
		s, err := store.OpenBadgerStore(cfg.BadgerPath)
		if err != nil {
			return nil, err
		}
		logging.Info().Str("path", cfg.BadgerPath).Msg("BadgerDB user store opened")
		return s, nil

	case config.StoreMongo:
		s, err := store.OpenMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		logging.Info().Str("database", cfg.MongoDatabase).Msg("MongoDB user store connected")
		return s, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
