// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

package models

import (
	"fmt"
	"strings"
)

// Role is the closed set of account roles. Roles are flat: permissions are
// granted per route, not by rank. The zero value is not a valid role and is
// used to mean "no role" (an unauthenticated caller).
type Role uint8

const (
	RoleUser Role = iota + 1
	RoleChef
	RoleAdmin
	RoleModerator
)

// AllRoles lists every valid role in declaration order.
var AllRoles = []Role{RoleUser, RoleChef, RoleAdmin, RoleModerator}

var roleNames = map[Role]string{
	RoleUser:      "USER",
	RoleChef:      "CHEF",
	RoleAdmin:     "ADMIN",
	RoleModerator: "MODERATOR",
}

// ErrUnknownRole is returned when a string does not name a role.
type ErrUnknownRole struct {
	Value string
}

func (e *ErrUnknownRole) Error() string {
	return fmt.Sprintf("unknown role %q", e.Value)
}

// ParseRole maps the wire form of a role to the enumeration. It is exact:
// only the uppercase names are accepted.
func ParseRole(s string) (Role, error) {
	for r, name := range roleNames {
		if name == s {
			return r, nil
		}
	}
	return 0, &ErrUnknownRole{Value: s}
}

// ParseRoleInput is the lenient form used for request bodies: the value is
// trimmed and matched case-insensitively ("chef" -> CHEF). An unknown role
// reports the value as sent.
func ParseRoleInput(s string) (Role, error) {
	r, err := ParseRole(strings.ToUpper(strings.TrimSpace(s)))
	if err != nil {
		return 0, &ErrUnknownRole{Value: s}
	}
	return r, nil
}

// IsValid reports whether r is one of the declared roles.
func (r Role) IsValid() bool {
	_, ok := roleNames[r]
	return ok
}

// String returns the wire form of the role, or "" for the zero value.
func (r Role) String() string {
	return roleNames[r]
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("cannot marshal invalid role %d", uint8(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown names are rejected.
func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
