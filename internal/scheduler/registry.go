// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a named periodic task.
type Job struct {
	Name        string
	Description string
	Schedule    string // standard 5-field cron expression or descriptor
	Run         func(ctx context.Context) error
}

// JobInfo is the public view of a registered job.
type JobInfo struct {
	Name        string
	Description string
	Schedule    string
	LastRun     time.Time
	NextRun     time.Time
}

// ErrJobNotFound is returned by TriggerNow for an unknown job name.
var ErrJobNotFound = errors.New("job not found")

// registeredJob holds metadata about a registered cron job.
type registeredJob struct {
	job     Job
	entryID cron.EntryID
}

// Registry tracks the jobs added to a cron instance.
type Registry struct {
	cron   *cron.Cron
	logger *slog.Logger
	mu     sync.RWMutex
	jobs   map[string]*registeredJob
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

func newRegistry(c *cron.Cron, logger *slog.Logger) *Registry {
	return &Registry{
		cron:   c,
		logger: logger,
		jobs:   make(map[string]*registeredJob),
	}
}

// add validates the schedule and adds fn to the cron instance.
func (r *Registry) add(job Job, fn func()) error {
	if job.Name == "" || job.Run == nil {
		return errors.New("job needs a name and a run function")
	}
	if _, err := cronParser.Parse(job.Schedule); err != nil {
		return fmt.Errorf("invalid cron expression %q for %s: %w", job.Schedule, job.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[job.Name]; exists {
		return fmt.Errorf("job %s already registered", job.Name)
	}

	entryID, err := r.cron.AddFunc(job.Schedule, fn)
	if err != nil {
		return fmt.Errorf("scheduling %s: %w", job.Name, err)
	}
	r.jobs[job.Name] = &registeredJob{job: job, entryID: entryID}

	r.logger.Debug("registered scheduled job", "name", job.Name, "schedule", job.Schedule)
	return nil
}

// List returns all registered jobs sorted by name.
func (r *Registry) List() []JobInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]JobInfo, 0, len(r.jobs))
	for _, rj := range r.jobs {
		entry := r.cron.Entry(rj.entryID)
		result = append(result, JobInfo{
			Name:        rj.job.Name,
			Description: rj.job.Description,
			Schedule:    rj.job.Schedule,
			LastRun:     entry.Prev,
			NextRun:     entry.Next,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// TriggerNow runs a job immediately on the caller's goroutine.
func (r *Registry) TriggerNow(ctx context.Context, name string) error {
	r.mu.RLock()
	rj, ok := r.jobs[name]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}

	r.logger.Info("manually triggering job", "name", name)
	return rj.job.Run(ctx)
}
