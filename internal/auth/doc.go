// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

// Package auth implements stateless authentication for the Cookbook API.
//
// # Components
//
//   - PasswordHasher: one-way password hashing (bcrypt by default, argon2id optional)
//   - CredentialVerifier: username-or-email plus password to Principal
//   - TokenCodec: issues and validates HS512-signed bearer tokens
//   - Gate: per-request middleware tying token validation, route
//     authorization and the administrator self-protection rules together
//
// # Tokens
//
// Tokens are three base64url segments, header.payload.signature, signed with
// HMAC-SHA512 under the configured secret. The payload carries
//
//	{"sub":"admin","userId":1,"role":"ADMIN","iat":1767225600000,"exp":1767312000000}
//
// with iat and exp in epoch milliseconds. A token is valid while now < exp;
// there is no leeway. Tokens are never stored server side, so disabling an
// account or changing its role does not revoke tokens already issued; they
// remain usable until they expire.
//
// # Failure reporting
//
// Login failures always surface as ErrInvalidCredentials regardless of the
// cause. Token failures carry a TokenErrorKind for logs and metrics, but the
// Gate treats every invalid token as an anonymous caller.
package auth
