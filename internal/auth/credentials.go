// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/tomtom215/cookbook/internal/logging"
	"github.com/tomtom215/cookbook/internal/models"
	"github.com/tomtom215/cookbook/internal/store"
)

// Internal login failure reasons. They reach logs and metrics, never clients.
const (
	reasonUnknownUser     = "unknown_user"
	reasonAccountDisabled = "account_disabled"
	reasonBadPassword     = "bad_password"
	reasonMissingInput    = "missing_input"
	reasonHashError       = "hash_error"
)

// CredentialStore looks up accounts by login name.
type CredentialStore interface {
	FindByUsernameOrEmail(ctx context.Context, login string) (*models.User, error)
}

// CredentialVerifier checks a login name and password against stored accounts.
type CredentialVerifier struct {
	store  CredentialStore
	hasher PasswordHasher
	logger *logging.SecurityLogger

	dummyOnce sync.Once
	dummyHash string
}

// NewCredentialVerifier creates a verifier. logger may be nil.
func NewCredentialVerifier(s CredentialStore, h PasswordHasher, logger *logging.SecurityLogger) *CredentialVerifier {
	if logger == nil {
		logger = logging.NewSecurityLogger()
	}
	return &CredentialVerifier{store: s, hasher: h, logger: logger}
}

// Verify returns the principal for login and password.
//
// An unknown login, a disabled account and a wrong password all return
// ErrInvalidCredentials. The password is checked even when the account is
// unknown or disabled so all three paths cost one hash comparison. A stored
// hash that cannot be verified is logged and also reported as
// ErrInvalidCredentials. Store failures other than store.ErrNotFound are
// returned wrapped.
func (v *CredentialVerifier) Verify(ctx context.Context, login, password, ip string) (*models.Principal, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		v.fail(login, ip, reasonMissingInput)
		return nil, ErrInvalidCredentials
	}

	user, err := v.store.FindByUsernameOrEmail(ctx, login)
	if errors.Is(err, store.ErrNotFound) {
		// Burn a comparison against a throwaway hash.
		_, _ = v.hasher.Verify(v.dummy(), password) //nolint:errcheck // result is discarded
		v.fail(login, ip, reasonUnknownUser)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("credential lookup: %w", err)
	}

	ok, err := v.hasher.Verify(user.PasswordHash, password)
	if err != nil {
		logging.Error().Err(err).Int64("user_id", user.ID).Msg("Stored password hash cannot be verified")
		v.fail(login, ip, reasonHashError)
		return nil, ErrInvalidCredentials
	}
	if !user.Enabled {
		v.fail(login, ip, reasonAccountDisabled)
		return nil, ErrInvalidCredentials
	}
	if !ok {
		v.fail(login, ip, reasonBadPassword)
		return nil, ErrInvalidCredentials
	}

	RecordLoginAttempt("success")
	v.logger.LogLoginSuccess(user.ID, user.Username, user.Role.String(), ip)

	p := user.Principal()
	return &p, nil
}

func (v *CredentialVerifier) fail(login, ip, reason string) {
	RecordLoginAttempt(reason)
	v.logger.LogLoginFailure(login, ip, reason)
}

// dummy lazily hashes a fixed string with the configured scheme.
func (v *CredentialVerifier) dummy() string {
	v.dummyOnce.Do(func() {
		h, err := v.hasher.Hash("cookbook-timing-equalizer")
		if err != nil {
			logging.Warn().Err(err).Msg("Failed to create dummy password hash")
			return
		}
		v.dummyHash = h
	})
	return v.dummyHash
}
