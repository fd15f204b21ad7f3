// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/byiringiroaimefils/estg-tss/internal/i18n"
	"github.com/byiringiroaimefils/estg-tss/internal/middleware"
	"github.com/byiringiroaimefils/estg-tss/internal/model"
	"github.com/byiringiroaimefils/estg-tss/internal/render"
	"github.com/byiringiroaimefils/estg-tss/internal/scheduler"
	"github.com/byiringiroaimefils/estg-tss/internal/service"
	"github.com/byiringiroaimefils/estg-tss/internal/store"
	"github.com/byiringiroaimefils/estg-tss/internal/uikit"
)

// ActivityHandler shows the local activity log and the maintenance jobs.
type ActivityHandler struct {
	activity *service.ActivityService
	jobs     *scheduler.Registry
	renderer *render.Renderer
}

// NewActivityHandler creates a new ActivityHandler. jobs may be nil.
func NewActivityHandler(activity *service.ActivityService, jobs *scheduler.Registry, renderer *render.Renderer) *ActivityHandler {
	return &ActivityHandler{
		activity: activity,
		jobs:     jobs,
		renderer: renderer,
	}
}

// ActivityRow is one formatted activity entry.
type ActivityRow struct {
	store.Activity
	Details     string // Formatted metadata as readable text
	DetailsLong bool   // True if details exceed display threshold
}

// detailsLengthThreshold is the max chars before details are collapsible
const detailsLengthThreshold = 80

// formatMetadata converts JSON metadata to readable text format.
// Example: {"url":"/admin/events","id":"42"} -> "id: 42, url: /admin/events"
func formatMetadata(metadata string) string {
	if metadata == "" || metadata == "{}" {
		return ""
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(metadata), &data); err != nil {
		return metadata // Return as-is if not valid JSON
	}

	if len(data) == 0 {
		return ""
	}

	// Sort keys for consistent output order
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var parts []string
	for _, key := range keys {
		value := data[key]
		var strValue string
		switch v := value.(type) {
		case string:
			strValue = v
		case float64:
			strValue = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			strValue = strconv.FormatBool(v)
		default:
			// For nested objects, marshal back to JSON
			if b, err := json.Marshal(v); err == nil {
				strValue = string(b)
			}
		}
		parts = append(parts, key+": "+strValue)
	}

	return strings.Join(parts, ", ")
}

// activityPage is the data of the admin/activity template.
type activityPage struct {
	Rows       []ActivityRow
	Total      int64
	Pagination uikit.Pager
	Jobs       []scheduler.JobInfo
}

// List handles GET /admin/activity - displays a paginated list of entries.
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	page := uikit.ParsePage(r)

	entries, total, err := h.activity.List(r.Context(), page, ActivityPerPage)
	if err != nil {
		if isCanceled(err) {
			return
		}
		logAndInternalError(w, "failed to list activity", "error", err)
		return
	}

	rows := make([]ActivityRow, len(entries))
	for i, e := range entries {
		details := formatMetadata(e.Metadata)
		rows[i] = ActivityRow{
			Activity:    e,
			Details:     details,
			DetailsLong: len(details) > detailsLengthThreshold,
		}
	}

	data := activityPage{
		Rows:       rows,
		Total:      total,
		Pagination: uikit.NewPager(page, int(total), ActivityPerPage, redirectAdminActivity, r.URL.Query()),
	}
	if h.jobs != nil {
		data.Jobs = h.jobs.List()
	}

	renderPage(w, r, h.renderer, "admin/activity", adminData(r, TabActivity, "activity.title", data))
}

// RunJob handles POST /admin/activity/jobs/{name} - runs a maintenance job now.
func (h *ActivityHandler) RunJob(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)
	name := chi.URLParam(r, "name")

	if h.jobs == nil {
		http.NotFound(w, r)
		return
	}

	err := h.jobs.TriggerNow(r.Context(), name)
	switch {
	case errors.Is(err, scheduler.ErrJobNotFound):
		http.NotFound(w, r)
	case err != nil:
		if isCanceled(err) {
			return
		}
		recordActivity(r, h.activity, model.ActivityLevelError, model.ActivityCategorySystem,
			"Scheduled job failed on manual run", "", map[string]any{"job": name, "error": err.Error()})
		flashError(w, r, h.renderer, redirectAdminActivity, i18n.T(lang, "activity.job_failed", name))
	default:
		recordInfo(r, h.activity, model.ActivityCategorySystem, "Scheduled job run manually", map[string]any{"job": name})
		flashSuccess(w, r, h.renderer, redirectAdminActivity, i18n.T(lang, "activity.job_ran", name))
	}
}
