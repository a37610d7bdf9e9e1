// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

package services

import (
	"context"
	"time"

	"github.com/tomtom215/cookbook/internal/logging"
)

// Task is one run of a periodic maintenance job.
type Task func(ctx context.Context) error

// PeriodicService runs a task every interval until its context is canceled.
//
// A failed run is logged and retried on the next tick. Serve only returns
// once ctx is canceled.
type PeriodicService struct {
	name     string
	interval time.Duration
	task     Task
}

// NewPeriodicService creates a service named name that calls task every
// interval. A non-positive interval means one minute.
func NewPeriodicService(name string, interval time.Duration, task Task) *PeriodicService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &PeriodicService{name: name, interval: interval, task: task}
}

// Serve implements suture.Service.
func (p *PeriodicService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	logger := logging.With().Str("service", p.name).Logger()
	logger.Debug().Dur("interval", p.interval).Msg("Periodic task started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			if err := p.task(ctx); err != nil {
				logger.Warn().Err(err).Msg("Periodic task failed")
				continue
			}
			logger.Debug().Dur("duration", time.Since(start)).Msg("Periodic task completed")
		}
	}
}

// String names the service in supervisor logs.
func (p *PeriodicService) String() string {
	return p.name
}
