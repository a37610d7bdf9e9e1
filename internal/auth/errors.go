// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

package auth

import "errors"

var (
	// ErrInvalidCredentials is the single login failure seen by clients: an
	// unknown account, a disabled account and a wrong password all map to it.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrSelfActionDenied is returned when an administrator targets their own
	// account with a role change, status change or delete.
	ErrSelfActionDenied = errors.New("you cannot change the role or status of, or delete, your own account")

	// ErrAdminProtected is returned when a status change or delete targets
	// another administrator.
	ErrAdminProtected = errors.New("administrator accounts cannot be disabled or deleted")

	// Token failure sentinels. Every *TokenError matches exactly one of them.
	ErrTokenMalformed   = errors.New("token is malformed")
	ErrSignatureInvalid = errors.New("token signature is invalid")
	ErrTokenExpired     = errors.New("token has expired")
)

// TokenErrorKind distinguishes why a token was rejected.
type TokenErrorKind uint8

const (
	TokenMalformed TokenErrorKind = iota + 1
	TokenSignatureInvalid
	TokenExpired
)

// String returns the label used in logs and metrics.
func (k TokenErrorKind) String() string {
	switch k {
	case TokenMalformed:
		return "malformed"
	case TokenSignatureInvalid:
		return "signature_invalid"
	case TokenExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// TokenError reports a rejected token.
type TokenError struct {
	Kind   TokenErrorKind
	Detail string
}

func (e *TokenError) Error() string {
	msg := e.sentinel().Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Is matches the sentinel for the error's kind.
func (e *TokenError) Is(target error) bool {
	return target == e.sentinel()
}

func (e *TokenError) sentinel() error {
	switch e.Kind {
	case TokenSignatureInvalid:
		return ErrSignatureInvalid
	case TokenExpired:
		return ErrTokenExpired
	default:
		return ErrTokenMalformed
	}
}

func malformed(detail string) error {
	return &TokenError{Kind: TokenMalformed, Detail: detail}
}

// TokenErrorKindOf returns the kind of a token error, or 0 if err is not one.
func TokenErrorKindOf(err error) TokenErrorKind {
	var te *TokenError
	if errors.As(err, &te) {
		return te.Kind
	}
	return 0
}
