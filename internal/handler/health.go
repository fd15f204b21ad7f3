// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/goccy/go-json"

	"github.com/byiringiroaimefils/estg-tss/internal/cache"
	"github.com/byiringiroaimefils/estg-tss/internal/model"
	"github.com/byiringiroaimefils/estg-tss/internal/service"
	"github.com/byiringiroaimefils/estg-tss/internal/session"
	"github.com/byiringiroaimefils/estg-tss/internal/version"
)

// Pinger checks that the school API answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// healthCheckTimeout bounds each dependency check.
const healthCheckTimeout = 3 * time.Second

// HealthHandler handles health check requests.
type HealthHandler struct {
	db        *sql.DB
	api       Pinger
	sm        *scs.SessionManager
	content   *service.PublicContent
	version   version.Info
	startTime time.Time
}

// NewHealthHandler creates a new health handler. content may be nil.
func NewHealthHandler(db *sql.DB, api Pinger, sm *scs.SessionManager, content *service.PublicContent, info version.Info) *HealthHandler {
	return &HealthHandler{
		db:        db,
		api:       api,
		sm:        sm,
		content:   content,
		version:   info,
		startTime: time.Now(),
	}
}

// StartTime returns when the handler (and application) was started.
func (h *HealthHandler) StartTime() time.Time {
	return h.startTime
}

// HealthStatusPublic is the minimal health response for anonymous callers.
type HealthStatusPublic struct {
	Status string `json:"status"`
}

// HealthStatus represents the overall health status (admin sessions only).
type HealthStatus struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks"`
	Cache     *cache.Stats     `json:"cache,omitempty"`
	System    *SystemInfo      `json:"system,omitempty"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// SystemInfo contains system-level information.
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutines"`
	NumCPU       int    `json:"num_cpus"`
	MemAlloc     string `json:"mem_alloc"`
	MemSys       string `json:"mem_sys"`
}

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
	statusDegraded  = "degraded"
)

// Health handles GET /health.
// The local database decides healthy/unhealthy; an unreachable API only degrades.
// Anonymous callers get the status alone; Admin sessions get the details.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	dbCheck := h.checkDatabase(r.Context())
	apiCheck := h.checkAPI(r.Context())

	overallStatus := statusHealthy
	code := http.StatusOK
	switch {
	case dbCheck.Status != statusHealthy:
		overallStatus = statusUnhealthy
		code = http.StatusServiceUnavailable
	case apiCheck.Status != statusHealthy:
		overallStatus = statusDegraded
	}

	if !h.isAdmin(r) {
		writeJSON(w, code, HealthStatusPublic{Status: overallStatus})
		return
	}

	status := HealthStatus{
		Status:    overallStatus,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.version.String(),
		Checks: map[string]Check{
			"database": dbCheck,
			"api":      apiCheck,
		},
	}
	if h.content != nil {
		if stats, ok := h.content.Stats(); ok {
			status.Cache = &stats
		}
	}
	if r.URL.Query().Get("verbose") == "true" {
		status.System = getSystemInfo()
	}

	writeJSON(w, code, status)
}

// Liveness handles GET /health/live - simple liveness check.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// Readiness handles GET /health/ready - ready once the database and the API answer.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	dbCheck := h.checkDatabase(r.Context())
	apiCheck := h.checkAPI(r.Context())

	if dbCheck.Status == statusHealthy && apiCheck.Status == statusHealthy {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}

	resp := map[string]string{"status": "not_ready"}
	// Only include error details for admin sessions
	if h.isAdmin(r) {
		if dbCheck.Status != statusHealthy {
			resp["database"] = dbCheck.Message
		}
		if apiCheck.Status != statusHealthy {
			resp["api"] = apiCheck.Message
		}
	}
	writeJSON(w, http.StatusServiceUnavailable, resp)
}

// isAdmin reports whether the request carries an Admin session.
// Returns false (without panicking) if session data is not loaded into context.
func (h *HealthHandler) isAdmin(r *http.Request) (admin bool) {
	if h.sm == nil {
		return false
	}
	defer func() {
		if rec := recover(); rec != nil {
			admin = false
		}
	}()

	ctx := r.Context()
	return session.APICookie(ctx, h.sm) != "" && session.Role(ctx, h.sm) == model.RoleAdmin
}

// checkDatabase verifies the session database.
func (h *HealthHandler) checkDatabase(ctx context.Context) Check {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	start := time.Now()
	err := h.db.PingContext(ctx)
	return timedCheck(err, time.Since(start), "Connected")
}

// checkAPI verifies the school API answers.
func (h *HealthHandler) checkAPI(ctx context.Context) Check {
	if h.api == nil {
		return Check{Status: statusHealthy, Message: "Not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	start := time.Now()
	err := h.api.Ping(ctx)
	return timedCheck(err, time.Since(start), "Reachable")
}

func timedCheck(err error, latency time.Duration, okMessage string) Check {
	if err != nil {
		return Check{
			Status:  statusUnhealthy,
			Message: err.Error(),
			Latency: latency.String(),
		}
	}
	return Check{
		Status:  statusHealthy,
		Message: okMessage,
		Latency: latency.String(),
	}
}

// getSystemInfo returns system-level metrics.
func getSystemInfo() *SystemInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return &SystemInfo{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     formatBytes(m.Alloc),
		MemSys:       formatBytes(m.Sys),
	}
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(HeaderContentType, "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// formatBytes converts bytes to a human-readable string.
func formatBytes(bytes uint64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
