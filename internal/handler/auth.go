// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/byiringiroaimefils/estg-tss/internal/apiclient"
	"github.com/byiringiroaimefils/estg-tss/internal/i18n"
	"github.com/byiringiroaimefils/estg-tss/internal/middleware"
	"github.com/byiringiroaimefils/estg-tss/internal/model"
	"github.com/byiringiroaimefils/estg-tss/internal/render"
	"github.com/byiringiroaimefils/estg-tss/internal/service"
	"github.com/byiringiroaimefils/estg-tss/internal/session"
)

// AuthHandler handles the two login pages, logout and the language switch.
type AuthHandler struct {
	api             *apiclient.Client
	renderer        *render.Renderer
	sessionManager  *scs.SessionManager
	activity        *service.ActivityService
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler. activity and lp may be nil.
func NewAuthHandler(api *apiclient.Client, renderer *render.Renderer, sm *scs.SessionManager, activity *service.ActivityService, lp *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{
		api:             api,
		renderer:        renderer,
		sessionManager:  sm,
		activity:        activity,
		loginProtection: lp,
	}
}

// loginKind describes one of the two login flows.
type loginKind struct {
	role     string
	action   string
	titleKey string
	altURL   string
	altKey   string
	call     func(ctx context.Context, api *apiclient.Client, creds apiclient.Credentials) (string, error)
	// failure maps an API error to the message shown on the form.
	failure func(lang string, err error) string
}

var adminLogin = loginKind{
	role:     model.RoleAdmin,
	action:   RouteAdminLogin,
	titleKey: "auth.admin_title",
	altURL:   RouteLogin,
	altKey:   "auth.creator_link",
	call: func(ctx context.Context, api *apiclient.Client, creds apiclient.Credentials) (string, error) {
		return api.AdminLogin(ctx, creds)
	},
	failure: func(lang string, err error) string {
		return apiclient.Message(err, i18n.T(lang, "auth.login_failed"))
	},
}

var creatorLogin = loginKind{
	role:     model.RoleContentCreator,
	action:   RouteLogin,
	titleKey: "auth.creator_title",
	altURL:   RouteAdminLogin,
	altKey:   "auth.admin_link",
	call: func(ctx context.Context, api *apiclient.Client, creds apiclient.Credentials) (string, error) {
		return api.CreatorLogin(ctx, creds)
	},
	failure: func(lang string, err error) string {
		if errors.Is(err, apiclient.ErrUnauthorized) {
			return i18n.T(lang, "auth.invalid_credentials")
		}
		return i18n.T(lang, "auth.error_prefix", apiclient.Message(err, i18n.T(lang, "auth.server_error")))
	},
}

// loginPage is the data of the auth/login template.
type loginPage struct {
	Action string
	Email  string
	AltURL string
	AltKey string
}

// AdminLoginForm renders the admin login page. An existing Admin session
// goes straight to the dashboard.
func (h *AuthHandler) AdminLoginForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if session.APICookie(ctx, h.sessionManager) != "" && session.Role(ctx, h.sessionManager) == model.RoleAdmin {
		http.Redirect(w, r, redirectAdmin, http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, adminLogin, "", "", "")
}

// CreatorLoginForm renders the content creator login page. Any existing
// session goes straight to the dashboard.
func (h *AuthHandler) CreatorLoginForm(w http.ResponseWriter, r *http.Request) {
	if session.APICookie(r.Context(), h.sessionManager) != "" {
		http.Redirect(w, r, redirectAdmin, http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, creatorLogin, "", "", "")
}

// AdminLogin handles the admin login form submission.
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, adminLogin)
}

// CreatorLogin handles the content creator login form submission.
func (h *AuthHandler) CreatorLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, creatorLogin)
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, kind loginKind, email, flash, flashType string) {
	lang := middleware.GetLanguage(r)
	renderPage(w, r, h.renderer, "auth/login", render.TemplateData{
		Title:     i18n.T(lang, kind.titleKey),
		Flash:     flash,
		FlashType: flashType,
		Data: loginPage{
			Action: kind.action,
			Email:  email,
			AltURL: kind.altURL,
			AltKey: kind.altKey,
		},
	})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request, kind loginKind) {
	lang := middleware.GetLanguage(r)

	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, r, kind, "", i18n.T(lang, "form.invalid"), flashTypeError)
		return
	}

	email := formValue(r, fieldEmail)
	password := r.FormValue(fieldPassword)
	if requireFields(email, password) != nil {
		h.renderLogin(w, r, kind, email, i18n.T(lang, "auth.missing_fields"), flashTypeWarning)
		return
	}

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(email); locked {
			recordActivity(r, h.activity, model.ActivityLevelWarning, model.ActivityCategoryAuth,
				"Login attempt on locked account", email, map[string]any{"role": kind.role})
			h.renderLogin(w, r, kind, email, i18n.T(lang, "auth.account_locked", formatDuration(remaining)), flashTypeError)
			return
		}
	}

	cookie, err := kind.call(r.Context(), h.api, apiclient.Credentials{Email: email, Password: password})
	if err == nil && cookie == "" {
		slog.Error("login succeeded without a session cookie", "role", kind.role)
		err = &apiclient.Error{Status: http.StatusBadGateway}
	}
	if err != nil {
		if isCanceled(err) {
			return
		}
		h.loginFailed(w, r, kind, email, err)
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(email)
	}

	if err := session.Start(r.Context(), h.sessionManager, cookie, kind.role, email); err != nil {
		logAndInternalError(w, "session renewal error", "error", err)
		return
	}

	slog.Info("user logged in", "email", email, "role", kind.role)
	recordActivity(r, h.activity, model.ActivityLevelInfo, model.ActivityCategoryAuth,
		"User logged in", email, map[string]any{"role": kind.role})

	flashSuccess(w, r, h.renderer, redirectAdmin, i18n.T(lang, "auth.login_success"))
}

// loginFailed shows the login form again with the message for err.
func (h *AuthHandler) loginFailed(w http.ResponseWriter, r *http.Request, kind loginKind, email string, err error) {
	lang := middleware.GetLanguage(r)

	if errors.Is(err, apiclient.ErrUnreachable) {
		slog.Error("login request failed", "error", err, "role", kind.role)
		h.renderLogin(w, r, kind, email, i18n.T(lang, "auth.no_response"), flashTypeError)
		return
	}

	slog.Debug("login rejected", "email", email, "role", kind.role, "error", err)
	recordActivity(r, h.activity, model.ActivityLevelWarning, model.ActivityCategoryAuth,
		"Login failed", email, map[string]any{"role": kind.role})

	var apiErr *apiclient.Error
	if h.loginProtection != nil && errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
		if locked, lockDuration := h.loginProtection.RecordFailedAttempt(email); locked {
			recordActivity(r, h.activity, model.ActivityLevelWarning, model.ActivityCategoryAuth,
				"Account locked due to failed attempts", email, map[string]any{"duration": lockDuration.String()})
			h.renderLogin(w, r, kind, email, i18n.T(lang, "auth.account_locked", formatDuration(lockDuration)), flashTypeError)
			return
		}
	}

	h.renderLogin(w, r, kind, email, kind.failure(lang, err), flashTypeError)
}

// Logout ends the API session and the local one.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := middleware.GetLanguage(r)

	email := h.sessionManager.GetString(ctx, session.KeyEmail)
	if cookie := session.APICookie(ctx, h.sessionManager); cookie != "" {
		if err := h.api.Logout(ctx, cookie); err != nil && !isCanceled(err) {
			// The local session is dropped either way
			slog.Warn("API logout failed", "error", err)
		}
		recordActivity(r, h.activity, model.ActivityLevelInfo, model.ActivityCategoryAuth, "User logged out", email, nil)
	}

	if err := session.End(ctx, h.sessionManager); err != nil {
		slog.Error("session destroy error", "error", err)
	}

	slog.Info("user logged out", "email", email)
	flashAndRedirect(w, r, h.renderer, RouteRoot, i18n.T(lang, "auth.logged_out"), flashTypeInfo)
}

// SetLanguage stores the chosen UI language in the session.
// POST /language
func (h *AuthHandler) SetLanguage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, RouteRoot, http.StatusSeeOther)
		return
	}

	if lang := strings.ToLower(r.FormValue(fieldLang)); i18n.IsSupported(lang) {
		h.sessionManager.Put(r.Context(), session.KeyLanguage, lang)
	}
	http.Redirect(w, r, safeNext(r.FormValue(fieldNext), RouteRoot), http.StatusSeeOther)
}
