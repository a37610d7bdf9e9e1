// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Password hashing schemes.
const (
	SchemeBcrypt   = "bcrypt"
	SchemeArgon2id = "argon2id"
)

// ErrUnsupportedHash is returned by Verify for stored hashes in an unknown format.
var ErrUnsupportedHash = errors.New("unsupported password hash format")

// PasswordHasher hashes passwords for storage and verifies plaintext
// candidates against stored hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)

	// Verify reports whether password matches hash. A mismatch is (false, nil);
	// an error means the hash itself could not be processed.
	Verify(hash, password string) (bool, error)
}

// BcryptHasher hashes with bcrypt at a fixed cost.
type BcryptHasher struct {
	Cost int
}

// Hash returns the bcrypt hash of password.
func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(b), nil
}

// Verify compares password with a bcrypt hash.
func (h BcryptHasher) Verify(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("bcrypt verify: %w", err)
}

// Argon2idHasher hashes with argon2id. Hashes are encoded as
//
//	argon2id$m=65536,t=3,p=2$<salt>$<key>
//
// with salt and key in unpadded standard base64. Parameters are read back from
// the hash on Verify, so tuning them does not invalidate stored hashes.
type Argon2idHasher struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2idHasher returns the parameters used for new argon2id hashes.
func DefaultArgon2idHasher() Argon2idHasher {
	return Argon2idHasher{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

const argon2idPrefix = "argon2id$"

// Hash returns the encoded argon2id hash of password.
func (h Argon2idHasher) Hash(password string) (string, error) {
	salt := make([]byte, h.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, h.Iterations, h.Memory, h.Parallelism, h.KeyLength)

	return fmt.Sprintf("%sm=%d,t=%d,p=%d$%s$%s",
		argon2idPrefix, h.Memory, h.Iterations, h.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

// Verify recomputes the key with the parameters stored in hash.
func (h Argon2idHasher) Verify(hash, password string) (bool, error) {
	parts := strings.Split(hash, "$")
	if len(parts) != 4 || parts[0] != SchemeArgon2id {
		return false, ErrUnsupportedHash
	}

	var memory, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[1], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return false, fmt.Errorf("argon2id parameters: %w", err)
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[2])
	if err != nil {
		return false, fmt.Errorf("argon2id salt: %w", err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil {
		return false, fmt.Errorf("argon2id key: %w", err)
	}

	got := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(want))) //nolint:gosec // key length comes from a decoded hash
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

// adaptiveHasher hashes with one scheme and verifies any supported scheme,
// so switching the configured scheme keeps existing accounts working.
type adaptiveHasher struct {
	primary PasswordHasher
	bcrypt  BcryptHasher
	argon2  Argon2idHasher
}

// NewPasswordHasher returns a hasher that creates hashes with scheme and
// verifies both bcrypt and argon2id hashes.
func NewPasswordHasher(scheme string, bcryptCost int) (PasswordHasher, error) {
	if bcryptCost != 0 && (bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost) {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", bcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	h := &adaptiveHasher{
		bcrypt: BcryptHasher{Cost: bcryptCost},
		argon2: DefaultArgon2idHasher(),
	}
	switch scheme {
	case SchemeBcrypt, "":
		h.primary = h.bcrypt
	case SchemeArgon2id:
		h.primary = h.argon2
	default:
		return nil, fmt.Errorf("unknown password hasher %q", scheme)
	}
	return h, nil
}

func (h *adaptiveHasher) Hash(password string) (string, error) {
	return h.primary.Hash(password)
}

func (h *adaptiveHasher) Verify(hash, password string) (bool, error) {
	switch {
	case strings.HasPrefix(hash, argon2idPrefix):
		return h.argon2.Verify(hash, password)
	case strings.HasPrefix(hash, "$2"):
		return h.bcrypt.Verify(hash, password)
	default:
		return false, ErrUnsupportedHash
	}
}
