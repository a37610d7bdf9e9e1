// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/cookbook/internal/models"
)

// MemoryStore implements UserStore with in-memory maps.
// Data does not survive restarts.
type MemoryStore struct {
	mu      sync.RWMutex
	users   map[int64]*models.User
	byName  map[string]int64
	byEmail map[string]int64
	nextID  int64
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory user store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[int64]*models.User),
		byName:  make(map[string]int64),
		byEmail: make(map[string]int64),
		now:     time.Now,
	}
}

// FindByID returns the user with the given id.
func (s *MemoryStore) FindByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(u), nil
}

// FindByUsernameOrEmail looks the login up by username, then by email.
func (s *MemoryStore) FindByUsernameOrEmail(_ context.Context, login string) (*models.User, error) {
	key := normalizeKey(login)
	if key == "" {
		return nil, ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if id, ok := s.byName[key]; ok {
		return cloneUser(s.users[id]), nil
	}
	if id, ok := s.byEmail[key]; ok {
		return cloneUser(s.users[id]), nil
	}
	return nil, ErrNotFound
}

// List returns all users ordered by id.
func (s *MemoryStore) List(_ context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Count returns the number of stored users.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}

// Create stores a new user and assigns its id.
func (s *MemoryStore) Create(_ context.Context, u *models.User) error {
	name, email := normalizeKey(u.Username), normalizeKey(u.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byName[name]; taken {
		return ErrDuplicate
	}
	if _, taken := s.byEmail[email]; taken && email != "" {
		return ErrDuplicate
	}

	s.nextID++
	now := s.now().UTC()
	u.ID = s.nextID
	u.CreatedAt = now
	u.UpdatedAt = now

	s.users[u.ID] = cloneUser(u)
	s.byName[name] = u.ID
	if email != "" {
		s.byEmail[email] = u.ID
	}
	return nil
}

// Update replaces an existing user, re-indexing a changed username or email.
func (s *MemoryStore) Update(_ context.Context, u *models.User) error {
	name, email := normalizeKey(u.Username), normalizeKey(u.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.users[u.ID]
	if !ok {
		return ErrNotFound
	}
	if id, taken := s.byName[name]; taken && id != u.ID {
		return ErrDuplicate
	}
	if id, taken := s.byEmail[email]; taken && id != u.ID && email != "" {
		return ErrDuplicate
	}

	delete(s.byName, normalizeKey(old.Username))
	delete(s.byEmail, normalizeKey(old.Email))

	u.CreatedAt = old.CreatedAt
	u.UpdatedAt = s.now().UTC()
	s.users[u.ID] = cloneUser(u)
	s.byName[name] = u.ID
	if email != "" {
		s.byEmail[email] = u.ID
	}
	return nil
}

// Delete removes a user.
func (s *MemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.byName, normalizeKey(u.Username))
	delete(s.byEmail, normalizeKey(u.Email))
	delete(s.users, id)
	return nil
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}
