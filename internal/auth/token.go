// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

package auth

import (
	"crypto/hmac"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/cookbook/internal/models"
)

// MinSecretBytes is the minimum signing secret length (256 bits).
const MinSecretBytes = 32

// signingMethod is the only accepted algorithm. Tokens declaring anything
// else in their header are rejected as malformed.
var signingMethod = jwt.SigningMethodHS512

// Claims are the validated contents of a token.
type Claims struct {
	Subject   string
	UserID    int64
	Role      models.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Principal returns the request identity carried by the claims.
func (c *Claims) Principal() *models.Principal {
	return &models.Principal{
		ID:       c.UserID,
		Username: c.Subject,
		Role:     c.Role,
		Enabled:  true,
	}
}

// wireClaims is the signed payload. Timestamps are epoch milliseconds.
type wireClaims struct {
	Subject   string      `json:"sub"`
	UserID    int64       `json:"userId"`
	Role      models.Role `json:"role"`
	IssuedAt  int64       `json:"iat"`
	ExpiresAt int64       `json:"exp"`
}

func (c wireClaims) GetExpirationTime() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.UnixMilli(c.ExpiresAt)), nil
}

func (c wireClaims) GetIssuedAt() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.UnixMilli(c.IssuedAt)), nil
}

func (c wireClaims) GetNotBefore() (*jwt.NumericDate, error) { return nil, nil }
func (c wireClaims) GetIssuer() (string, error)              { return "", nil }
func (c wireClaims) GetSubject() (string, error)             { return c.Subject, nil }
func (c wireClaims) GetAudience() (jwt.ClaimStrings, error)  { return nil, nil }

// parsedClaims mirrors wireClaims with pointer fields so that absent fields
// are distinguishable from zero values.
type parsedClaims struct {
	Subject   *string `json:"sub"`
	UserID    *int64  `json:"userId"`
	Role      *string `json:"role"`
	IssuedAt  *int64  `json:"iat"`
	ExpiresAt *int64  `json:"exp"`
}

type tokenHeader struct {
	Alg string `json:"alg"`
}

// TokenCodec issues and validates bearer tokens under a single secret.
// It holds no mutable state and is safe for concurrent use.
type TokenCodec struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
	parser   *jwt.Parser
}

// TokenOption configures a TokenCodec.
type TokenOption func(*TokenCodec)

// WithClock replaces the wall clock used for issuance and expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(c *TokenCodec) {
		c.now = now
	}
}

// NewTokenCodec creates a codec signing with HMAC-SHA512.
//
// Parameters:
//   - secret: signing key, at least MinSecretBytes long
//   - lifetime: validity of issued tokens, truncated to whole milliseconds
//
// Returns an error if the secret is too short or the lifetime is not positive.
func NewTokenCodec(secret []byte, lifetime time.Duration, opts ...TokenOption) (*TokenCodec, error) {
	if len(secret) < MinSecretBytes {
		return nil, fmt.Errorf("token secret must be at least %d bytes, got %d", MinSecretBytes, len(secret))
	}
	lifetime = lifetime.Truncate(time.Millisecond)
	if lifetime <= 0 {
		return nil, fmt.Errorf("token lifetime must be at least 1ms, got %s", lifetime)
	}

	c := &TokenCodec{
		secret:   append([]byte(nil), secret...),
		lifetime: lifetime,
		now:      time.Now,
		parser:   jwt.NewParser(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Lifetime returns the validity period of issued tokens.
func (c *TokenCodec) Lifetime() time.Duration {
	return c.lifetime
}

// Issue mints a token for p. The claims carry only username, id, role and
// the issue and expiry times.
func (c *TokenCodec) Issue(p *models.Principal) (string, error) {
	if p == nil || p.Username == "" {
		return "", fmt.Errorf("issue token: principal has no username")
	}
	if !p.Role.IsValid() {
		return "", fmt.Errorf("issue token: invalid role %d", p.Role)
	}

	iat := c.now().UnixMilli()
	claims := wireClaims{
		Subject:   p.Username,
		UserID:    p.ID,
		Role:      p.Role,
		IssuedAt:  iat,
		ExpiresAt: iat + c.lifetime.Milliseconds(),
	}

	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	RecordTokenIssued(p.Role.String())
	return signed, nil
}

// Validate checks a token and returns its claims.
//
// Validation Steps:
//  1. Split into header, payload and signature; anything else is malformed
//  2. Recompute HMAC-SHA512 over header.payload and compare byte for byte
//  3. Decode header and claims; a missing or mistyped field is malformed
//  4. Reject when now >= exp, with no leeway
//
// Every failure is a *TokenError matching ErrTokenMalformed,
// ErrSignatureInvalid or ErrTokenExpired.
func (c *TokenCodec) Validate(token string) (*Claims, error) {
	parts := strings.SplitN(token, ".", 3)
	if len(parts) != 3 {
		return nil, malformed(fmt.Sprintf("expected 3 segments, got %d", len(parts)))
	}
	for _, p := range parts {
		if p == "" {
			return nil, malformed("empty segment")
		}
	}

	want, err := signingMethod.Sign(parts[0]+"."+parts[1], c.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to compute signature: %w", err)
	}
	if !hmac.Equal([]byte(base64.RawURLEncoding.EncodeToString(want)), []byte(parts[2])) {
		return nil, &TokenError{Kind: TokenSignatureInvalid}
	}

	var header tokenHeader
	if err := c.decodeSegment(parts[0], &header); err != nil {
		return nil, malformed("header: " + err.Error())
	}
	if header.Alg != signingMethod.Alg() {
		return nil, malformed(fmt.Sprintf("unexpected signing method %q", header.Alg))
	}

	var raw parsedClaims
	if err := c.decodeSegment(parts[1], &raw); err != nil {
		return nil, malformed("payload: " + err.Error())
	}
	claims, err := raw.validate()
	if err != nil {
		return nil, err
	}

	if !c.now().Before(claims.ExpiresAt) {
		return nil, &TokenError{Kind: TokenExpired, Detail: "expired at " + claims.ExpiresAt.UTC().Format(time.RFC3339Nano)}
	}
	return claims, nil
}

func (c *TokenCodec) decodeSegment(seg string, v interface{}) error {
	b, err := c.parser.DecodeSegment(seg)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

func (p *parsedClaims) validate() (*Claims, error) {
	switch {
	case p.Subject == nil || *p.Subject == "":
		return nil, malformed("missing sub")
	case p.UserID == nil:
		return nil, malformed("missing userId")
	case p.Role == nil:
		return nil, malformed("missing role")
	case p.IssuedAt == nil:
		return nil, malformed("missing iat")
	case p.ExpiresAt == nil:
		return nil, malformed("missing exp")
	}

	role, err := models.ParseRole(*p.Role)
	if err != nil {
		return nil, malformed(err.Error())
	}

	return &Claims{
		Subject:   *p.Subject,
		UserID:    *p.UserID,
		Role:      role,
		IssuedAt:  time.UnixMilli(*p.IssuedAt),
		ExpiresAt: time.UnixMilli(*p.ExpiresAt),
	}, nil
}
