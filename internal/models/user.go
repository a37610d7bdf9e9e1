// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

package models

import "time"

// User is a stored account record.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Role         Role      `json:"role"`
	Enabled      bool      `json:"enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Principal returns the identity view of the user, without the password hash.
func (u *User) Principal() Principal {
	return Principal{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
		Enabled:  u.Enabled,
	}
}

// Principal is an authenticated identity. It lives for one request and is
// never cached across requests.
type Principal struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     Role   `json:"role"`
	Enabled  bool   `json:"enabled"`
}

// Account status labels exposed by the API.
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

// UserResponse is the public JSON shape of a user.
type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Enabled   bool      `json:"enabled"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToResponse converts a stored user to its public shape.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		Enabled:   u.Enabled,
		Status:    StatusLabel(u.Enabled),
		CreatedAt: u.CreatedAt,
	}
}

// StatusLabel returns StatusActive for enabled accounts, StatusSuspended otherwise.
func StatusLabel(enabled bool) string {
	if enabled {
		return StatusActive
	}
	return StatusSuspended
}

// UserStats summarizes accounts for the admin dashboard.
type UserStats struct {
	Total    int            `json:"total"`
	Enabled  int            `json:"enabled"`
	Disabled int            `json:"disabled"`
	ByRole   map[string]int `json:"byRole"`
}
