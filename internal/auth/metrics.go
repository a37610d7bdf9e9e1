// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LoginAttemptsTotal counts login attempts by outcome.
	// Labels:
	//   - outcome: "success", "unknown_user", "account_disabled", "bad_password", "missing_input"
	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_login_attempts_total",
			Help: "Total number of login attempts by outcome",
		},
		[]string{"outcome"},
	)

	// TokenValidationsTotal counts bearer token validations.
	// Labels:
	//   - result: "valid", "malformed", "signature_invalid", "expired"
	TokenValidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_token_validations_total",
			Help: "Total number of bearer token validations by result",
		},
		[]string{"result"},
	)

	// TokensIssuedTotal counts issued tokens by role.
	TokensIssuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_tokens_issued_total",
			Help: "Total number of tokens issued",
		},
		[]string{"role"},
	)

	// ProtectedActionDeniedTotal counts refused self and administrator mutations.
	// Labels:
	//   - reason: "self_action", "admin_protected"
	ProtectedActionDeniedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_protected_action_denied_total",
			Help: "Total number of administrative mutations refused by account protection",
		},
		[]string{"reason"},
	)
)

// RecordLoginAttempt records a login outcome.
func RecordLoginAttempt(outcome string) {
	LoginAttemptsTotal.WithLabelValues(outcome).Inc()
}

// RecordTokenValidation records a validation result. err is the error
// returned by TokenCodec.Validate.
func RecordTokenValidation(err error) {
	result := "valid"
	if err != nil {
		result = TokenErrorKindOf(err).String()
	}
	TokenValidationsTotal.WithLabelValues(result).Inc()
}

// RecordTokenIssued records an issued token.
func RecordTokenIssued(role string) {
	TokensIssuedTotal.WithLabelValues(role).Inc()
}

// RecordProtectedActionDenied records a refused protected mutation.
func RecordProtectedActionDenied(reason string) {
	ProtectedActionDeniedTotal.WithLabelValues(reason).Inc()
}
