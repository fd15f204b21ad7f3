// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Job names.
const (
	JobRefreshContent   = "refresh-public-content"
	JobPruneActivity    = "prune-activity"
	JobReloadGeoIP      = "reload-geoip"
	JobLoginCleanup     = "login-protection-cleanup"
	JobPruneRateLimiter = "prune-rate-limiter"
)

// ContentRefresher reloads the cached public lists.
type ContentRefresher interface {
	Refresh(ctx context.Context) error
}

// ActivityPruner deletes old activity rows.
type ActivityPruner interface {
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
}

// GeoIPReloader reopens the GeoIP database when it changed on disk.
type GeoIPReloader interface {
	Reload() error
}

// LoginCleaner drops expired login-protection state.
type LoginCleaner interface {
	Cleanup()
}

// RateLimitPruner drops per-IP limiters once too many are tracked.
type RateLimitPruner interface {
	Prune(maxKeys int) bool
}

// Maintenance lists the collaborators of the built-in jobs. Nil fields
// skip the matching job.
type Maintenance struct {
	Content           ContentRefresher
	Activity          ActivityPruner
	ActivityRetention time.Duration
	GeoIP             GeoIPReloader
	LoginProtection   LoginCleaner
	RateLimiter       RateLimitPruner
	MaxRateLimitKeys  int
	Logger            *slog.Logger
}

// Jobs returns the maintenance jobs for the configured collaborators.
func (m Maintenance) Jobs() []Job {
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var jobs []Job

	if m.Content != nil {
		jobs = append(jobs, Job{
			Name:        JobRefreshContent,
			Description: "Reload public events and updates into the cache",
			Schedule:    "*/5 * * * *",
			Run:         m.Content.Refresh,
		})
	}

	if m.Activity != nil && m.ActivityRetention > 0 {
		jobs = append(jobs, Job{
			Name:        JobPruneActivity,
			Description: "Delete activity log entries past the retention period",
			Schedule:    "@daily",
			Run: func(ctx context.Context) error {
				n, err := m.Activity.Prune(ctx, m.ActivityRetention)
				if err != nil {
					return err
				}
				if n > 0 {
					logger.Info("pruned activity log", "deleted", n)
				}
				return nil
			},
		})
	}

	if m.GeoIP != nil {
		jobs = append(jobs, Job{
			Name:        JobReloadGeoIP,
			Description: "Reopen the GeoIP database after an update",
			Schedule:    "@weekly",
			Run: func(context.Context) error {
				return m.GeoIP.Reload()
			},
		})
	}

	if m.LoginProtection != nil {
		jobs = append(jobs, Job{
			Name:        JobLoginCleanup,
			Description: "Forget expired login attempts and lockouts",
			Schedule:    "*/10 * * * *",
			Run: func(context.Context) error {
				m.LoginProtection.Cleanup()
				return nil
			},
		})
	}

	if m.RateLimiter != nil {
		maxKeys := m.MaxRateLimitKeys
		if maxKeys <= 0 {
			maxKeys = 10000
		}
		jobs = append(jobs, Job{
			Name:        JobPruneRateLimiter,
			Description: "Reset per-IP rate limiters when too many are tracked",
			Schedule:    "*/10 * * * *",
			Run: func(context.Context) error {
				if m.RateLimiter.Prune(maxKeys) {
					logger.Info("rate limiter state reset", "max_keys", maxKeys)
				}
				return nil
			},
		})
	}

	return jobs
}

// AddMaintenance registers every job m provides.
func (s *Scheduler) AddMaintenance(m Maintenance) error {
	for _, job := range m.Jobs() {
		if err := s.Add(job); err != nil {
			return err
		}
	}
	return nil
}
