// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

package authz

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tomtom215/cookbook/internal/models"
)

var (
	// ErrUnauthenticated is returned when a route needs a caller identity and
	// the request has none.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden is returned when the caller's role is not permitted on the route.
	ErrForbidden = errors.New("access denied")
)

// MethodAny matches every HTTP method.
const MethodAny = "ANY"

// RequirementKind classifies what a rule demands of the caller.
type RequirementKind uint8

const (
	RequirePublic RequirementKind = iota + 1
	RequireAuthenticated
	RequireRoleSet
)

func (k RequirementKind) String() string {
	switch k {
	case RequirePublic:
		return "public"
	case RequireAuthenticated:
		return "authenticated"
	case RequireRoleSet:
		return "role_set"
	default:
		return "unknown"
	}
}

// Requirement is the access requirement of a rule.
type Requirement struct {
	Kind  RequirementKind
	Roles []models.Role
}

// Public allows every caller.
func Public() Requirement { return Requirement{Kind: RequirePublic} }

// Authenticated allows any caller with a valid token.
func Authenticated() Requirement { return Requirement{Kind: RequireAuthenticated} }

// RoleSet allows callers holding one of roles.
func RoleSet(roles ...models.Role) Requirement {
	return Requirement{Kind: RequireRoleSet, Roles: roles}
}

// Allows evaluates the requirement for role. The zero role means the caller
// is not authenticated.
func (r Requirement) Allows(role models.Role) bool {
	switch r.Kind {
	case RequirePublic:
		return true
	case RequireAuthenticated:
		return role.IsValid()
	case RequireRoleSet:
		if !role.IsValid() {
			return false
		}
		for _, allowed := range r.Roles {
			if allowed == role {
				return true
			}
		}
	}
	return false
}

// Rule maps a method and path pattern to a requirement.
type Rule struct {
	Method      string
	Pattern     string
	Requirement Requirement
}

func (r Rule) String() string {
	return fmt.Sprintf("%s %s -> %s", r.Method, r.Pattern, r.Requirement.Kind)
}

type compiledRule struct {
	Rule
	pattern *Pattern
}

func (c *compiledRule) matches(method, path string) bool {
	return (c.Method == MethodAny || c.Method == method) && c.pattern.Match(path)
}

// Table is an immutable, ordered rule table. It is safe for concurrent use.
type Table struct {
	rules []compiledRule
}

var knownMethods = map[string]bool{
	MethodAny:          true,
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodOptions: true,
}

// NewTable validates and compiles rules, preserving their order.
func NewTable(rules []Rule) (*Table, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for i, r := range rules {
		r.Method = strings.ToUpper(r.Method)
		if !knownMethods[r.Method] {
			return nil, fmt.Errorf("rule %d: unsupported method %q", i, r.Method)
		}

		p, err := CompilePattern(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}

		switch r.Requirement.Kind {
		case RequirePublic, RequireAuthenticated:
		case RequireRoleSet:
			if len(r.Requirement.Roles) == 0 {
				return nil, fmt.Errorf("rule %d (%s): empty role set", i, r.Pattern)
			}
			for _, role := range r.Requirement.Roles {
				if !role.IsValid() {
					return nil, fmt.Errorf("rule %d (%s): invalid role %d", i, r.Pattern, role)
				}
			}
			r.Requirement.Roles = append([]models.Role(nil), r.Requirement.Roles...)
		default:
			return nil, fmt.Errorf("rule %d (%s): missing requirement", i, r.Pattern)
		}

		compiled = append(compiled, compiledRule{Rule: r, pattern: p})
	}
	return &Table{rules: compiled}, nil
}

// Rules returns a copy of the rules in evaluation order.
func (t *Table) Rules() []Rule {
	out := make([]Rule, len(t.rules))
	for i := range t.rules {
		out[i] = t.rules[i].Rule
	}
	return out
}

// Match returns the first rule matching method and path.
func (t *Table) Match(method, path string) (Rule, bool) {
	for i := range t.rules {
		if t.rules[i].matches(method, path) {
			return t.rules[i].Rule, true
		}
	}
	return Rule{}, false
}

// Authorize evaluates the table directly. It returns nil when the request
// may proceed, ErrUnauthenticated when a role is required and role is zero,
// and ErrForbidden otherwise.
func (t *Table) Authorize(method, path string, role models.Role) error {
	rule, ok := t.Match(method, path)
	if !ok {
		return denial(role.IsValid(), role)
	}
	return denial(rule.Requirement.Allows(role), role)
}

func denial(allowed bool, role models.Role) error {
	switch {
	case allowed:
		return nil
	case !role.IsValid():
		return ErrUnauthenticated
	default:
		return ErrForbidden
	}
}
