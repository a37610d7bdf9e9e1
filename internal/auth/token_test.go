// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

package auth

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/cookbook/internal/models"
)

// 64 bytes, matching the recommended 512-bit key.
const testSecret = "cookbook-test-secret-0123456789abcdef0123456789abcdef0123456789a"

const hour = 3_600_000 * time.Millisecond

var t0 = time.UnixMilli(1_767_225_600_000)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func newTestCodec(t *testing.T, secret string, lifetime time.Duration) (*TokenCodec, *testClock) {
	t.Helper()
	clock := &testClock{now: t0}
	codec, err := NewTokenCodec([]byte(secret), lifetime, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	return codec, clock
}

// signRaw builds a correctly signed token around arbitrary header and payload JSON.
func signRaw(t *testing.T, header, payload string) string {
	t.Helper()
	signing := base64.RawURLEncoding.EncodeToString([]byte(header)) + "." +
		base64.RawURLEncoding.EncodeToString([]byte(payload))
	sig, err := jwt.SigningMethodHS512.Sign(signing, []byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signing + "." + base64.RawURLEncoding.EncodeToString(sig)
}

func TestNewTokenCodec(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		secret   string
		lifetime time.Duration
		wantErr  bool
	}{
		{"valid 512-bit secret", testSecret, hour, false},
		{"exactly 256 bits", strings.Repeat("k", 32), hour, false},
		{"short secret", strings.Repeat("k", 31), hour, true},
		{"empty secret", "", hour, true},
		{"zero lifetime", testSecret, 0, true},
		{"sub-millisecond lifetime", testSecret, time.Microsecond, true},
		{"negative lifetime", testSecret, -time.Second, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTokenCodec([]byte(tt.secret), tt.lifetime)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewTokenCodec() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()
	codec, _ := newTestCodec(t, testSecret, hour)

	for i, role := range models.AllRoles {
		p := &models.Principal{ID: int64(i + 1), Username: "cook" + role.String(), Role: role, Enabled: true}
		t.Run(role.String(), func(t *testing.T) {
			token, err := codec.Issue(p)
			if err != nil {
				t.Fatalf("Issue: %v", err)
			}
			if n := strings.Count(token, "."); n != 2 {
				t.Fatalf("token has %d dots, want 2", n)
			}

			claims, err := codec.Validate(token)
			if err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if claims.UserID != p.ID || claims.Role != p.Role || claims.Subject != p.Username {
				t.Errorf("claims = %+v, want id=%d role=%s sub=%s", claims, p.ID, p.Role, p.Username)
			}
			if !claims.IssuedAt.Equal(t0) {
				t.Errorf("IssuedAt = %v, want %v", claims.IssuedAt, t0)
			}
			if got := claims.ExpiresAt.Sub(claims.IssuedAt); got != hour {
				t.Errorf("ExpiresAt - IssuedAt = %v, want %v", got, hour)
			}
		})
	}
}

func TestTokenIssueRejectsIncompletePrincipal(t *testing.T) {
	t.Parallel()
	codec, _ := newTestCodec(t, testSecret, hour)

	for _, p := range []*models.Principal{
		nil,
		{ID: 1, Role: models.RoleUser},
		{ID: 1, Username: "ghost"},
	} {
		if _, err := codec.Issue(p); err == nil {
			t.Errorf("Issue(%+v) succeeded, want error", p)
		}
	}
}

func TestTokenPayloadCarriesOnlyIdentity(t *testing.T) {
	t.Parallel()
	codec, _ := newTestCodec(t, testSecret, hour)

	token, err := codec.Issue(&models.Principal{ID: 1, Username: "admin", Email: "admin@cooking.com", Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	parts := strings.Split(token, ".")
	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}

	want := map[string]interface{}{
		"sub":    "admin",
		"userId": float64(1),
		"role":   "ADMIN",
		"iat":    float64(t0.UnixMilli()),
		"exp":    float64(t0.UnixMilli() + 3_600_000),
	}
	if len(payload) != len(want) {
		t.Errorf("payload has keys %v, want exactly %v", payload, want)
	}
	for k, v := range want {
		if payload[k] != v {
			t.Errorf("payload[%q] = %v, want %v", k, payload[k], v)
		}
	}

	header, _ := base64.RawURLEncoding.DecodeString(parts[0])
	if !strings.Contains(string(header), `"alg":"HS512"`) {
		t.Errorf("header = %s, want HS512", header)
	}
}

func TestTokenExpiryBoundary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		elapsed time.Duration
		expired bool
	}{
		{"at issue", 0, false},
		{"halfway", hour / 2, false},
		{"one millisecond before expiry", hour - time.Millisecond, false},
		{"exactly at expiry", hour, true},
		{"one millisecond after expiry", hour + time.Millisecond, true},
		{"a day later", 24 * time.Hour, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			codec, clock := newTestCodec(t, testSecret, hour)
			token, err := codec.Issue(&models.Principal{ID: 3, Username: "user", Role: models.RoleUser})
			if err != nil {
				t.Fatalf("Issue: %v", err)
			}

			clock.now = t0.Add(tt.elapsed)
			_, err = codec.Validate(token)

			if tt.expired {
				if !errors.Is(err, ErrTokenExpired) {
					t.Fatalf("Validate() error = %v, want ErrTokenExpired", err)
				}
				if kind := TokenErrorKindOf(err); kind != TokenExpired {
					t.Errorf("kind = %v, want expired", kind)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() error = %v, want nil", err)
			}
		})
	}
}

// A token issued at t0 with a 3 600 000 ms lifetime is expired at t0 + 3 600 001 ms.
func TestTokenExpiredOneMillisecondPastLifetime(t *testing.T) {
	t.Parallel()

	codec, clock := newTestCodec(t, testSecret, 3_600_000*time.Millisecond)
	token, err := codec.Issue(&models.Principal{ID: 2, Username: "chef", Role: models.RoleChef})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	clock.now = t0.Add(3_600_001 * time.Millisecond)
	if _, err := codec.Validate(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Validate() error = %v, want ErrTokenExpired", err)
	}
}

func TestTokenSignatureTamper(t *testing.T) {
	t.Parallel()
	codec, _ := newTestCodec(t, testSecret, hour)

	for _, role := range models.AllRoles {
		token, err := codec.Issue(&models.Principal{ID: 42, Username: "tamper", Role: role})
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		sigStart := strings.LastIndex(token, ".") + 1

		for i := sigStart; i < len(token); i++ {
			for _, flip := range []byte{0x01, 0x20, 0x80} {
				b := []byte(token)
				b[i] ^= flip
				_, err := codec.Validate(string(b))
				if !errors.Is(err, ErrSignatureInvalid) {
					t.Fatalf("role %s: flipping byte %d with %#x: error = %v, want ErrSignatureInvalid", role, i, flip, err)
				}
			}
		}
	}
}

func TestTokenPayloadTamper(t *testing.T) {
	t.Parallel()
	codec, _ := newTestCodec(t, testSecret, hour)

	token, err := codec.Issue(&models.Principal{ID: 3, Username: "user", Role: models.RoleUser})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	parts := strings.Split(token, ".")

	// Promote the role while keeping the original signature.
	forged := strings.Replace(mustDecode(t, parts[1]), `"role":"USER"`, `"role":"ADMIN"`, 1)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(forged))

	if _, err := codec.Validate(strings.Join(parts, ".")); !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("Validate(forged) error = %v, want ErrSignatureInvalid", err)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	t.Parallel()

	other, _ := newTestCodec(t, strings.Repeat("x", 64), hour)
	codec, _ := newTestCodec(t, testSecret, hour)

	token, err := other.Issue(&models.Principal{ID: 1, Username: "admin", Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	_, err = codec.Validate(token)
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("Validate() error = %v, want ErrSignatureInvalid", err)
	}
	if kind := TokenErrorKindOf(err); kind != TokenSignatureInvalid {
		t.Errorf("kind = %v, want signature_invalid", kind)
	}
}

func TestTokenMalformed(t *testing.T) {
	t.Parallel()
	codec, _ := newTestCodec(t, testSecret, hour)

	const hs512 = `{"alg":"HS512","typ":"JWT"}`
	const exp = `"iat":1767225600000,"exp":1767229200000`

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"one segment", "abc"},
		{"two segments", "abc.def"},
		{"empty payload segment", "abc..def"},
		{"empty signature", "abc.def."},
		{"payload not json", signRaw(t, hs512, `not json`)},
		{"header not json", signRaw(t, `{`, `{"sub":"a","userId":1,"role":"USER",`+exp+`}`)},
		{"missing sub", signRaw(t, hs512, `{"userId":1,"role":"USER",`+exp+`}`)},
		{"empty sub", signRaw(t, hs512, `{"sub":"","userId":1,"role":"USER",`+exp+`}`)},
		{"missing userId", signRaw(t, hs512, `{"sub":"a","role":"USER",`+exp+`}`)},
		{"missing role", signRaw(t, hs512, `{"sub":"a","userId":1,`+exp+`}`)},
		{"missing exp", signRaw(t, hs512, `{"sub":"a","userId":1,"role":"USER","iat":1767225600000}`)},
		{"missing iat", signRaw(t, hs512, `{"sub":"a","userId":1,"role":"USER","exp":1767229200000}`)},
		{"unknown role", signRaw(t, hs512, `{"sub":"a","userId":1,"role":"ROOT",`+exp+`}`)},
		{"lowercase role", signRaw(t, hs512, `{"sub":"a","userId":1,"role":"admin",`+exp+`}`)},
		{"userId wrong type", signRaw(t, hs512, `{"sub":"a","userId":"1","role":"USER",`+exp+`}`)},
		{"exp wrong type", signRaw(t, hs512, `{"sub":"a","userId":1,"role":"USER","iat":1767225600000,"exp":"soon"}`)},
		{"alg mismatch", signRaw(t, `{"alg":"HS256","typ":"JWT"}`, `{"sub":"a","userId":1,"role":"USER",`+exp+`}`)},
		{"alg none", signRaw(t, `{"alg":"none"}`, `{"sub":"a","userId":1,"role":"USER",`+exp+`}`)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Validate(tt.token)
			if !errors.Is(err, ErrTokenMalformed) {
				t.Errorf("Validate() error = %v, want ErrTokenMalformed", err)
			}
		})
	}

	// A well-formed hand-built token is accepted, so the cases above fail on
	// their defect alone.
	ok := signRaw(t, hs512, `{"sub":"a","userId":1,"role":"USER",`+exp+`}`)
	if _, err := codec.Validate(ok); err != nil {
		t.Errorf("Validate(control) error = %v", err)
	}
}

func TestTokenErrorKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  *TokenError
		is   error
		name string
	}{
		{&TokenError{Kind: TokenMalformed}, ErrTokenMalformed, "malformed"},
		{&TokenError{Kind: TokenSignatureInvalid}, ErrSignatureInvalid, "signature_invalid"},
		{&TokenError{Kind: TokenExpired}, ErrTokenExpired, "expired"},
	}
	for _, tt := range tests {
		if !errors.Is(tt.err, tt.is) {
			t.Errorf("%v does not match %v", tt.err, tt.is)
		}
		if tt.err.Kind.String() != tt.name {
			t.Errorf("Kind.String() = %q, want %q", tt.err.Kind.String(), tt.name)
		}
		for _, other := range []error{ErrTokenMalformed, ErrSignatureInvalid, ErrTokenExpired} {
			if other != tt.is && errors.Is(tt.err, other) {
				t.Errorf("%v unexpectedly matches %v", tt.err, other)
			}
		}
	}

	if TokenErrorKindOf(errors.New("plain")) != 0 {
		t.Error("TokenErrorKindOf(plain error) != 0")
	}
}

func mustDecode(t *testing.T, seg string) string {
	t.Helper()
	b, err := base64.RawURLEncoding.DecodeString(seg)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return string(b)
}
