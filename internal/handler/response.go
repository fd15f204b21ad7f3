// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/byiringiroaimefils/estg-tss/internal/apiclient"
	"github.com/byiringiroaimefils/estg-tss/internal/i18n"
	"github.com/byiringiroaimefils/estg-tss/internal/middleware"
	"github.com/byiringiroaimefils/estg-tss/internal/render"
	"github.com/byiringiroaimefils/estg-tss/internal/session"
)

// flashAndRedirect sets a flash message and redirects to the given URL.
// Uses http.StatusSeeOther (303) for POST redirects.
func flashAndRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message, messageType string) {
	renderer.SetFlash(r, message, messageType)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// flashError sets an error flash message and redirects to the given URL.
func flashError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, flashTypeError)
}

// flashSuccess sets a success flash message and redirects to the given URL.
func flashSuccess(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, flashTypeSuccess)
}

// logAndHTTPError logs an error and writes an HTTP error response.
func logAndHTTPError(w http.ResponseWriter, message string, statusCode int, logMsg string, args ...any) {
	slog.Error(logMsg, args...)
	http.Error(w, message, statusCode)
}

// logAndInternalError logs an error and writes a 500 Internal Server Error response.
func logAndInternalError(w http.ResponseWriter, logMsg string, args ...any) {
	logAndHTTPError(w, "Internal Server Error", http.StatusInternalServerError, logMsg, args...)
}

// renderPage renders a page and falls back to a plain 500 when the template fails.
func renderPage(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, name string, data render.TemplateData) {
	renderPageStatus(w, r, renderer, http.StatusOK, name, data)
}

// renderPageStatus is renderPage with an explicit status code.
func renderPageStatus(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, status int, name string, data render.TemplateData) {
	if err := renderer.RenderStatus(w, r, status, name, data); err != nil {
		logAndInternalError(w, "failed to render template", "template", name, "error", err)
	}
}

// errorPage is the data of the errors/* templates.
type errorPage struct {
	Message string
	BackURL string
}

// renderError renders the error page for status with a translated message.
func renderError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, status int, msgKey string) {
	lang := middleware.GetLanguage(r)
	renderPageStatus(w, r, renderer, status, "errors/error", render.TemplateData{
		Title: i18n.T(lang, "error.title"),
		Data: errorPage{
			Message: i18n.T(lang, msgKey),
			BackURL: redirectPublicEvents,
		},
	})
}

// NotFound renders the 404 page. Used as the router's NotFound handler.
func NotFound(renderer *render.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderError(w, r, renderer, http.StatusNotFound, "error.not_found")
	}
}

// Unavailable renders the 503 page shown when the API cannot be reached.
func Unavailable(renderer *render.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderError(w, r, renderer, http.StatusServiceUnavailable, "error.unavailable")
	}
}

// Forbidden renders the 403 page. Used by the CSRF middleware.
func Forbidden(renderer *render.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Warn("request blocked by origin check",
			"method", r.Method,
			"path", r.URL.Path,
			"origin", r.Header.Get("Origin"))
		renderError(w, r, renderer, http.StatusForbidden, "error.forbidden")
	}
}

// isCanceled reports whether err comes from the browser going away.
// Nothing should be written in that case.
func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// sessionLost ends the local session after the API rejected the stored
// cookie and redirects to the matching login page.
func sessionLost(w http.ResponseWriter, r *http.Request, sm *scs.SessionManager) {
	ctx := r.Context()
	loginPath := middleware.LoginPath(session.Role(ctx, sm))
	if err := session.End(ctx, sm); err != nil {
		slog.Error("failed to end session", "error", err)
	}
	session.PutFlash(ctx, sm, i18n.T(middleware.GetLanguage(r), "auth.session_expired"), flashTypeWarning)
	http.Redirect(w, r, loginPath, http.StatusSeeOther)
}

// handleMutationError deals with the failure of an admin write. It returns
// true when the response has been written (session lost or request gone);
// otherwise the caller shows its own failure message.
func handleMutationError(w http.ResponseWriter, r *http.Request, sm *scs.SessionManager, err error) bool {
	switch {
	case isCanceled(err):
		return true
	case errors.Is(err, apiclient.ErrUnauthorized):
		sessionLost(w, r, sm)
		return true
	}
	return false
}
