// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, and request context handling.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/byiringiroaimefils/estg-tss/internal/apiclient"
	"github.com/byiringiroaimefils/estg-tss/internal/i18n"
	"github.com/byiringiroaimefils/estg-tss/internal/model"
	"github.com/byiringiroaimefils/estg-tss/internal/session"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for request data.
const (
	ContextKeyProfile     ContextKey = "profile"
	ContextKeyRequestPath ContextKey = "request_path"
)

// Login routes.
const (
	RouteAdminLogin   = "/admin/login"
	RouteCreatorLogin = "/login"
	RouteDashboard    = "/admin"
)

// LoginPath returns the login page matching the role recorded at login.
func LoginPath(role string) string {
	if role == model.RoleAdmin {
		return RouteAdminLogin
	}
	return RouteCreatorLogin
}

// ProfileSource fetches the profile behind an upstream session.
type ProfileSource interface {
	Dashboard(ctx context.Context, cookie string) (model.Profile, error)
}

// GateConfig configures the session gate.
type GateConfig struct {
	Sessions *scs.SessionManager
	API      ProfileSource
	// Unavailable renders the page shown when the API cannot be reached.
	Unavailable http.Handler
	Logger      *slog.Logger
}

// Gate creates middleware that asks the API for the current session on
// every request and stores the profile in the request context.
//
// No local session, or a 401 from the API, redirects to the login page.
// A role other than Admin or ContentCreator is turned away the same way.
func Gate(cfg GateConfig) func(http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	unavailable := cfg.Unavailable
	if unavailable == nil {
		unavailable = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, i18n.T(GetLanguage(r), "error.unavailable"), http.StatusServiceUnavailable)
		})
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			role := session.Role(ctx, cfg.Sessions)

			cookie := session.APICookie(ctx, cfg.Sessions)
			if cookie == "" {
				http.Redirect(w, r, LoginPath(role), http.StatusSeeOther)
				return
			}

			profile, err := cfg.API.Dashboard(ctx, cookie)
			switch {
			case err == nil:
			case errors.Is(err, apiclient.ErrUnauthorized):
				dropSession(w, r, cfg.Sessions, LoginPath(role), "auth.session_expired")
				return
			case errors.Is(err, context.Canceled):
				return
			default:
				logger.Error("failed to fetch dashboard data", "error", err, "path", r.URL.Path)
				unavailable.ServeHTTP(w, r)
				return
			}

			if !profile.CanManage() {
				logger.Warn("dashboard access with unexpected role",
					"category", model.ActivityCategoryAuth,
					"role", profile.Role,
					"actor", profile.Email)
				dropSession(w, r, cfg.Sessions, LoginPath(role), "auth.role_denied")
				return
			}

			ctx = context.WithValue(ctx, ContextKeyProfile, profile)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// dropSession ends the local session and redirects with a warning.
func dropSession(w http.ResponseWriter, r *http.Request, sm *scs.SessionManager, target, msgKey string) {
	ctx := r.Context()
	if err := session.End(ctx, sm); err != nil {
		slog.Error("failed to end session", "error", err)
	}
	session.PutFlash(ctx, sm, i18n.T(GetLanguage(r), msgKey), "warning")
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// RequireAdmin creates middleware for the Admin-only pages. A content
// creator is sent back to the dashboard with a warning.
// Must be used after Gate.
func RequireAdmin(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			profile := GetProfile(r)
			if profile == nil {
				http.Redirect(w, r, RouteAdminLogin, http.StatusSeeOther)
				return
			}

			if !profile.IsAdmin() {
				slog.Warn("access denied",
					"status", http.StatusForbidden,
					"method", r.Method,
					"path", r.URL.Path,
					"actor", profile.Email,
					"role", profile.Role,
					"category", model.ActivityCategoryAuth,
				)
				session.PutFlash(r.Context(), sm, i18n.T(GetLanguage(r), "auth.admin_only"), "warning")
				http.Redirect(w, r, RouteDashboard, http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetProfile retrieves the gated profile from the request context.
// Returns nil outside the admin area.
func GetProfile(r *http.Request) *model.Profile {
	profile, ok := r.Context().Value(ContextKeyProfile).(model.Profile)
	if !ok {
		return nil
	}
	return &profile
}

// WithProfile returns a copy of ctx carrying profile.
func WithProfile(ctx context.Context, profile model.Profile) context.Context {
	return context.WithValue(ctx, ContextKeyProfile, profile)
}

// RequestPath creates middleware that stores the request path in the context.
// The activity log handler includes it in WARN+ records.
func RequestPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ContextKeyRequestPath, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestPath retrieves the request path from the context.
func GetRequestPath(ctx context.Context) string {
	path, ok := ctx.Value(ContextKeyRequestPath).(string)
	if !ok {
		return ""
	}
	return path
}
