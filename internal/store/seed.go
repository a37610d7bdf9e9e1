// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/cookbook/internal/logging"
	"github.com/tomtom215/cookbook/internal/models"
)

// Hasher hashes plaintext passwords for storage.
type Hasher interface {
	Hash(password string) (string, error)
}

// DemoUser describes an account created by SeedDemoUsers.
type DemoUser struct {
	Username string
	Email    string
	Password string
	Role     models.Role
}

// DemoUsers are the accounts created on an empty store when seeding is enabled.
var DemoUsers = []DemoUser{
	{Username: "admin", Email: "admin@cooking.com", Password: "admin", Role: models.RoleAdmin},
	{Username: "chef", Email: "chef@cooking.com", Password: "chef", Role: models.RoleChef},
	{Username: "user", Email: "user@cooking.com", Password: "user", Role: models.RoleUser},
}

// SeedDemoUsers creates DemoUsers when the store is empty. A store that
// already holds accounts is left untouched, so the call is idempotent.
func SeedDemoUsers(ctx context.Context, s UserStore, h Hasher) error {
	n, err := s.Count(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		logging.Debug().Int("users", n).Msg("Store not empty, skipping demo users")
		return nil
	}

	for _, d := range DemoUsers {
		hash, err := h.Hash(d.Password)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", d.Username, err)
		}
		u := &models.User{
			Username:     d.Username,
			Email:        d.Email,
			PasswordHash: hash,
			Role:         d.Role,
			Enabled:      true,
		}
		if err := s.Create(ctx, u); err != nil && !errors.Is(err, ErrDuplicate) {
			return fmt.Errorf("create %s: %w", d.Username, err)
		}
		logging.Info().Int64("user_id", u.ID).Str("role", d.Role.String()).Msg("Created demo user")
	}
	return nil
}
