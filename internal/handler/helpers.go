// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/byiringiroaimefils/estg-tss/internal/middleware"
	"github.com/byiringiroaimefils/estg-tss/internal/model"
	"github.com/byiringiroaimefils/estg-tss/internal/service"
	"github.com/byiringiroaimefils/estg-tss/internal/util"
)

// =============================================================================
// ACTIVITY HELPERS
// =============================================================================

// recordActivity writes an audit entry for the current request. actor
// defaults to the signed-in profile's email.
func recordActivity(r *http.Request, svc *service.ActivityService, level, category, message, actor string, metadata map[string]any) {
	if svc == nil {
		return
	}
	if actor == "" {
		if p := middleware.GetProfile(r); p != nil {
			actor = p.Email
		}
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadata["url"] = r.URL.Path

	err := svc.Log(r.Context(), service.ActivityEntry{
		Level:     level,
		Category:  category,
		Message:   message,
		Actor:     actor,
		IP:        util.ClientIP(r),
		UserAgent: r.UserAgent(),
		Metadata:  metadata,
	})
	if err != nil {
		slog.Warn("activity not recorded", "error", err, "message", message)
	}
}

// recordInfo records a successful admin action.
func recordInfo(r *http.Request, svc *service.ActivityService, category, message string, metadata map[string]any) {
	recordActivity(r, svc, model.ActivityLevelInfo, category, message, "", metadata)
}

// =============================================================================
// REQUEST HELPERS
// =============================================================================

// safeNext returns next when it is a local absolute path, else fallback.
func safeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return fallback
	}
	return next
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", mins)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
