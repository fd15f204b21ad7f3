// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/mileusna/useragent"

	"github.com/byiringiroaimefils/estg-tss/internal/geoip"
	"github.com/byiringiroaimefils/estg-tss/internal/model"
	"github.com/byiringiroaimefils/estg-tss/internal/store"
)

// ActivityEntry is one audit record.
type ActivityEntry struct {
	Level     string
	Category  string
	Message   string
	Actor     string
	IP        string
	UserAgent string
	Metadata  map[string]any
}

// ActivityService writes and reads the local activity log.
type ActivityService struct {
	queries *store.Queries
	geo     *geoip.Lookup
	logger  *slog.Logger
}

// NewActivityService creates an ActivityService. geo may be nil.
func NewActivityService(db *sql.DB, geo *geoip.Lookup, logger *slog.Logger) *ActivityService {
	return &ActivityService{
		queries: store.New(db),
		geo:     geo,
		logger:  logger,
	}
}

// Log stores e. The write is detached from ctx cancellation so an entry is
// kept even when the browser has already gone away.
func (s *ActivityService) Log(ctx context.Context, e ActivityEntry) error {
	if e.Level == "" {
		e.Level = model.ActivityLevelInfo
	}
	if e.Category == "" {
		e.Category = model.ActivityCategorySystem
	}

	metadata := "{}"
	if len(e.Metadata) > 0 {
		if data, err := json.Marshal(e.Metadata); err == nil {
			metadata = string(data)
		}
	}

	var country string
	if s.geo != nil && e.IP != "" {
		country = s.geo.Country(e.IP)
	}

	_, err := s.queries.CreateActivity(context.WithoutCancel(ctx), store.CreateActivityParams{
		Level:     e.Level,
		Category:  e.Category,
		Message:   e.Message,
		Actor:     e.Actor,
		IpAddress: e.IP,
		Client:    describeClient(e.UserAgent),
		Country:   country,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error("failed to write activity", "error", err, "message", e.Message)
		return fmt.Errorf("writing activity: %w", err)
	}
	return nil
}

// List returns one page of entries, newest first, and the total count.
func (s *ActivityService) List(ctx context.Context, page, perPage int) ([]store.Activity, int64, error) {
	if page < 1 {
		page = 1
	}
	total, err := s.queries.CountActivity(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("counting activity: %w", err)
	}
	items, err := s.queries.ListActivity(ctx, store.ListActivityParams{
		Limit:  int64(perPage),
		Offset: int64((page - 1) * perPage),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("listing activity: %w", err)
	}
	return items, total, nil
}

// Prune removes entries older than the retention period.
func (s *ActivityService) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	return s.queries.DeleteActivityBefore(ctx, time.Now().UTC().Add(-olderThan))
}

// describeClient condenses a User-Agent into "Browser / OS (device)".
func describeClient(ua string) string {
	if ua == "" {
		return ""
	}
	parsed := useragent.Parse(ua)

	browser, os := parsed.Name, parsed.OS
	if browser == "" {
		browser = "Unknown"
	}
	if os == "" {
		os = "Unknown"
	}

	device := "desktop"
	switch {
	case parsed.Bot:
		device = "bot"
	case parsed.Tablet:
		device = "tablet"
	case parsed.Mobile:
		device = "mobile"
	}
	return browser + " / " + os + " (" + device + ")"
}
