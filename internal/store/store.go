// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

// Package store persists user accounts.
//
// Three backends implement UserStore: an in-memory map (tests and local
// development), BadgerDB (single-node persistence) and MongoDB. All of them
// treat username and email as case-insensitive unique keys and hand out
// copies, so callers may mutate returned users freely before calling Update.
package store

import (
	"context"
	"errors"
	"strings"

	"github.com/tomtom215/cookbook/internal/models"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")

	// ErrDuplicate is returned when a username or email is already taken.
	ErrDuplicate = errors.New("username or email already exists")
)

// UserStore is the account persistence interface.
type UserStore interface {
	// FindByID returns the user with the given id or ErrNotFound.
	FindByID(ctx context.Context, id int64) (*models.User, error)

	// FindByUsernameOrEmail matches login against usernames first, then emails,
	// case-insensitively. Returns ErrNotFound when neither matches.
	FindByUsernameOrEmail(ctx context.Context, login string) (*models.User, error)

	List(ctx context.Context) ([]*models.User, error)
	Count(ctx context.Context) (int, error)

	// Create assigns u.ID and stores the user.
	Create(ctx context.Context, u *models.User) error

	// Update replaces the stored record with the same id.
	Update(ctx context.Context, u *models.User) error

	Delete(ctx context.Context, id int64) error

	Close() error
}

// normalizeKey lowercases and trims a username or email for index lookups.
func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func cloneUser(u *models.User) *models.User {
	c := *u
	return &c
}
