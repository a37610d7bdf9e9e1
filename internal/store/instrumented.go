// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

package store

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/cookbook/internal/metrics"
	"github.com/tomtom215/cookbook/internal/models"
)

// instrumented records latency and errors of every call on the wrapped store.
type instrumented struct {
	next    UserStore
	backend string
}

// Instrument wraps s so each call is recorded in the user store metrics,
// labeled with backend.
func Instrument(s UserStore, backend string) UserStore {
	return &instrumented{next: s, backend: backend}
}

func (s *instrumented) record(op string, start time.Time, err error) {
	metrics.RecordStoreOperation(s.backend, op, time.Since(start), errorType(err))
}

// errorType is the error_type metric label for err, "" on success.
func errorType(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrDuplicate):
		return "duplicate"
	default:
		return "other"
	}
}

func (s *instrumented) FindByID(ctx context.Context, id int64) (*models.User, error) {
	start := time.Now()
	u, err := s.next.FindByID(ctx, id)
	s.record("find_by_id", start, err)
	return u, err
}

func (s *instrumented) FindByUsernameOrEmail(ctx context.Context, login string) (*models.User, error) {
	start := time.Now()
	u, err := s.next.FindByUsernameOrEmail(ctx, login)
	s.record("find_by_login", start, err)
	return u, err
}

func (s *instrumented) List(ctx context.Context) ([]*models.User, error) {
	start := time.Now()
	users, err := s.next.List(ctx)
	s.record("list", start, err)
	return users, err
}

func (s *instrumented) Count(ctx context.Context) (int, error) {
	start := time.Now()
	n, err := s.next.Count(ctx)
	s.record("count", start, err)
	return n, err
}

func (s *instrumented) Create(ctx context.Context, u *models.User) error {
	start := time.Now()
	err := s.next.Create(ctx, u)
	s.record("create", start, err)
	return err
}

func (s *instrumented) Update(ctx context.Context, u *models.User) error {
	start := time.Now()
	err := s.next.Update(ctx, u)
	s.record("update", start, err)
	return err
}

func (s *instrumented) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	err := s.next.Delete(ctx, id)
	s.record("delete", start, err)
	return err
}

func (s *instrumented) Close() error {
	return s.next.Close()
}
