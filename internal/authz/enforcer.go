// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

package authz

import (
	"fmt"
	"strconv"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/tomtom215/cookbook/internal/models"
)

// Subjects used in compiled policies besides role names.
const (
	subjectAnyone        = "*"
	subjectAuthenticated = "@authenticated"
)

const (
	effectAllow = "allow"
	effectDeny  = "deny"
)

// casbinModel evaluates policies in insertion order and stops at the first
// match (priority effect). The rule column carries the index of the table rule
// that produced the policy line.
const casbinModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act, eft, rule

[policy_effect]
e = priority(p.eft) || deny

[matchers]
m = (p.sub == "*" || p.sub == r.sub || (p.sub == "@authenticated" && r.sub != "")) && (p.act == "ANY" || p.act == r.act) && routeMatch(r.obj, p.obj)
`

// Enforcer decides requests with a Casbin enforcer compiled from a Table.
type Enforcer struct {
	table    *Table
	enforcer *casbin.SyncedEnforcer
	patterns map[string]*Pattern
}

// NewEnforcer compiles table into Casbin policies.
//
// Each rule becomes one or more policy lines, in table order:
//
//	Public         -> (*, pattern, method, allow)
//	Authenticated  -> (@authenticated, pattern, method, allow), (*, pattern, method, deny)
//	RoleSet{A,B}   -> (A, ..., allow), (B, ..., allow), (*, ..., deny)
//
// followed by a final (@authenticated, /**, ANY, allow) for unmatched requests.
// The trailing deny lines stop evaluation at the first matching rule.
func NewEnforcer(table *Table) (*Enforcer, error) {
	m, err := model.NewModelFromString(casbinModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	e := &Enforcer{
		table:    table,
		enforcer: enforcer,
		patterns: make(map[string]*Pattern, len(table.rules)+1),
	}
	for i := range table.rules {
		e.patterns[table.rules[i].Pattern] = table.rules[i].pattern
	}
	e.patterns["/**"] = MustCompilePattern("/**")

	// patterns is complete before the function is registered and is only
	// read afterwards.
	enforcer.AddFunction("routeMatch", e.routeMatch)

	if _, err := enforcer.AddPolicies(compilePolicies(table)); err != nil {
		return nil, fmt.Errorf("failed to add policies: %w", err)
	}

	return e, nil
}

// compilePolicies expands the table into ordered Casbin policy lines.
func compilePolicies(table *Table) [][]string {
	var policies [][]string
	for i := range table.rules {
		r := &table.rules[i]
		idx := strconv.Itoa(i)
		line := func(sub, eft string) []string {
			return []string{sub, r.Pattern, r.Method, eft, idx}
		}

		switch r.Requirement.Kind {
		case RequirePublic:
			policies = append(policies, line(subjectAnyone, effectAllow))
		case RequireAuthenticated:
			policies = append(policies,
				line(subjectAuthenticated, effectAllow),
				line(subjectAnyone, effectDeny))
		case RequireRoleSet:
			for _, role := range r.Requirement.Roles {
				policies = append(policies, line(role.String(), effectAllow))
			}
			policies = append(policies, line(subjectAnyone, effectDeny))
		}
	}

	return append(policies, []string{subjectAuthenticated, "/**", MethodAny, effectAllow, "default"})
}

// routeMatch is registered with Casbin as routeMatch(path, pattern).
func (e *Enforcer) routeMatch(args ...interface{}) (interface{}, error) {
	if len(args) != 2 {
		return false, fmt.Errorf("routeMatch: expected 2 arguments, got %d", len(args))
	}
	path, ok1 := args[0].(string)
	raw, ok2 := args[1].(string)
	if !ok1 || !ok2 {
		return false, fmt.Errorf("routeMatch: arguments must be strings")
	}

	p, ok := e.patterns[raw]
	if !ok {
		return false, fmt.Errorf("routeMatch: unknown pattern %q", raw)
	}
	return p.Match(path), nil
}

// Authorize returns nil when the request may proceed, ErrUnauthenticated when
// an anonymous caller is refused, and ErrForbidden when the caller's role is
// refused.
func (e *Enforcer) Authorize(method, path string, role models.Role) error {
	start := time.Now()

	allowed, explain, err := e.enforcer.EnforceEx(role.String(), path, method)
	if err != nil {
		return fmt.Errorf("enforcement failed: %w", err)
	}

	matched := "none"
	if len(explain) == 5 {
		matched = explain[4]
	}
	RecordDecision(role, allowed, matched, time.Since(start))

	return denial(allowed, role)
}

// Table returns the rule table the enforcer was compiled from.
func (e *Enforcer) Table() *Table {
	return e.table
}

// PolicyCount returns the number of compiled policy lines.
func (e *Enforcer) PolicyCount() int {
	policies, _ := e.enforcer.GetPolicy()
	return len(policies)
}
