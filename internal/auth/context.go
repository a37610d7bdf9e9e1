// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

package auth

import (
	"context"

	"github.com/tomtom215/cookbook/internal/models"
)

type contextKey string

const principalContextKey contextKey = "principal"

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *models.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// PrincipalFromContext returns the authenticated caller, or nil for an
// anonymous request.
func PrincipalFromContext(ctx context.Context) *models.Principal {
	p, _ := ctx.Value(principalContextKey).(*models.Principal)
	return p
}
