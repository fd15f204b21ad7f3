// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic maintenance jobs of the front end:
// warming the public content cache, pruning the activity log, reloading the
// GeoIP database and trimming the in-memory rate limiter state.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// jobTimeout bounds a single job run.
const jobTimeout = 2 * time.Minute

// Scheduler owns the cron instance and the job registry.
type Scheduler struct {
	cron     *cron.Cron
	registry *Registry
	logger   *slog.Logger
}

// New creates a new scheduler instance.
func New(logger *slog.Logger) *Scheduler {
	c := cron.New()
	return &Scheduler{
		cron:     c,
		registry: newRegistry(c, logger),
		logger:   logger,
	}
}

// Add registers a job. It is scheduled once Start is called.
func (s *Scheduler) Add(job Job) error {
	return s.registry.add(job, s.run(job))
}

// Registry exposes the registered jobs for display and manual runs.
func (s *Scheduler) Registry() *Registry {
	return s.registry
}

// Start begins running the registered jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop gracefully stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// run wraps a job with a timeout and logging.
func (s *Scheduler) run(job Job) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		start := time.Now()
		if err := job.Run(ctx); err != nil {
			s.logger.Error("scheduled job failed",
				"job", job.Name,
				"error", err,
				"category", "scheduler",
			)
			return
		}
		s.logger.Debug("scheduled job finished", "job", job.Name, "duration", time.Since(start))
	}
}
