// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures the browser session and the keys stored in it.
// The session carries the upstream API cookie so the browser never sees it.
package session

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// Session keys.
const (
	KeyAPICookie = "api_cookie"
	KeyRole      = "role"
	KeyEmail     = "email"
	KeyLanguage  = "lang"
	KeyFlash     = "flash"
	KeyFlashType = "flash_type"
)

// New creates a new session manager configured with SQLite store.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()

	sm.Store = sqlite3store.New(db)

	sm.Lifetime = 24 * time.Hour
	sm.IdleTimeout = 2 * time.Hour
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"
	sm.Cookie.Secure = !isDev
	if !isDev {
		sm.Cookie.Name = "__Host-session"
	}

	return sm
}

// Start records a successful upstream login. The token is renewed to
// prevent session fixation.
func Start(ctx context.Context, sm *scs.SessionManager, apiCookie, role, email string) error {
	if err := sm.RenewToken(ctx); err != nil {
		return err
	}
	sm.Put(ctx, KeyAPICookie, apiCookie)
	sm.Put(ctx, KeyRole, role)
	sm.Put(ctx, KeyEmail, email)
	return nil
}

// APICookie returns the stored upstream Cookie header, or "" when not logged in.
func APICookie(ctx context.Context, sm *scs.SessionManager) string {
	return sm.GetString(ctx, KeyAPICookie)
}

// Role returns the role recorded at login.
func Role(ctx context.Context, sm *scs.SessionManager) string {
	return sm.GetString(ctx, KeyRole)
}

// End drops everything tied to the upstream login but keeps the UI language.
func End(ctx context.Context, sm *scs.SessionManager) error {
	lang := sm.GetString(ctx, KeyLanguage)
	if err := sm.Destroy(ctx); err != nil {
		return err
	}
	if lang != "" {
		sm.Put(ctx, KeyLanguage, lang)
	}
	return nil
}

// PutFlash queues a one-shot message shown on the next rendered page.
func PutFlash(ctx context.Context, sm *scs.SessionManager, message, flashType string) {
	sm.Put(ctx, KeyFlash, message)
	sm.Put(ctx, KeyFlashType, flashType)
}

// PopFlash returns and clears the queued message. flashType defaults to "info".
func PopFlash(ctx context.Context, sm *scs.SessionManager) (message, flashType string) {
	message = sm.PopString(ctx, KeyFlash)
	flashType = sm.PopString(ctx, KeyFlashType)
	if message != "" && flashType == "" {
		flashType = "info"
	}
	return message, flashType
}
