// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byiringiroaimefils/estg-tss/internal/apiclient"
	"github.com/byiringiroaimefils/estg-tss/internal/model"
	"github.com/byiringiroaimefils/estg-tss/internal/session"
	"github.com/byiringiroaimefils/estg-tss/internal/testutil"
)

type fakeProfiles struct {
	profile model.Profile
	err     error
	calls   int
	cookie  string
}

func (f *fakeProfiles) Dashboard(_ context.Context, cookie string) (model.Profile, error) {
	f.calls++
	f.cookie = cookie
	return f.profile, f.err
}

// gateRequest runs one request through Gate with a session that optionally
// holds an upstream cookie.
func gateRequest(t *testing.T, src *fakeProfiles, sm *scs.SessionManager, cookie, role string) (*httptest.ResponseRecorder, *model.Profile, context.Context) {
	t.Helper()

	ctx := testutil.SessionContext(t, sm)
	if cookie != "" {
		require.NoError(t, session.Start(ctx, sm, cookie, role, "user@school.test"))
	}

	var seen *model.Profile
	handler := Gate(GateConfig{
		Sessions: sm,
		API:      src,
		Logger:   testutil.DiscardLogger(),
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetProfile(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, seen, ctx
}

func TestGateNoSessionRedirectsToLogin(t *testing.T) {
	src := &fakeProfiles{}
	rec, seen, _ := gateRequest(t, src, testutil.SessionManager(), "", "")

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteCreatorLogin, rec.Header().Get("Location"))
	assert.Nil(t, seen)
	assert.Zero(t, src.calls, "API should not be called without a session")
}

func TestGateValidSession(t *testing.T) {
	src := &fakeProfiles{profile: model.Profile{Email: "admin@school.test", Role: model.RoleAdmin}}
	rec, seen, _ := gateRequest(t, src, testutil.SessionManager(), "sid=abc", model.RoleAdmin)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "admin@school.test", seen.Email)
	assert.Equal(t, "sid=abc", src.cookie)
	assert.Equal(t, 1, src.calls)
}

func TestGateUnauthorizedEndsSession(t *testing.T) {
	sm := testutil.SessionManager()
	src := &fakeProfiles{err: apiclient.ErrUnauthorized}
	rec, seen, ctx := gateRequest(t, src, sm, "sid=old", model.RoleAdmin)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteAdminLogin, rec.Header().Get("Location"))
	assert.Nil(t, seen)
	assert.Empty(t, session.APICookie(ctx, sm))

	msg, kind := session.PopFlash(ctx, sm)
	assert.Equal(t, "Your session has expired. Please log in again.", msg)
	assert.Equal(t, "warning", kind)
}

func TestGateUnauthorizedKeepsLanguage(t *testing.T) {
	sm := testutil.SessionManager()
	ctx := testutil.SessionContext(t, sm)
	sm.Put(ctx, session.KeyLanguage, "fr")
	require.NoError(t, session.Start(ctx, sm, "sid=old", model.RoleContentCreator, "c@school.test"))

	handler := Gate(GateConfig{
		Sessions: sm,
		API:      &fakeProfiles{err: apiclient.ErrUnauthorized},
		Logger:   testutil.DiscardLogger(),
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, RouteCreatorLogin, rec.Header().Get("Location"))
	assert.Equal(t, "fr", sm.GetString(ctx, session.KeyLanguage))
}

func TestGateUnreachableRendersUnavailable(t *testing.T) {
	sm := testutil.SessionManager()
	src := &fakeProfiles{err: apiclient.ErrUnreachable}
	rec, seen, ctx := gateRequest(t, src, sm, "sid=abc", model.RoleAdmin)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to fetch dashboard data")
	assert.Nil(t, seen)
	assert.Equal(t, "sid=abc", session.APICookie(ctx, sm), "a transient failure must not log the user out")
}

func TestGateCustomUnavailableHandler(t *testing.T) {
	sm := testutil.SessionManager()
	ctx := testutil.SessionContext(t, sm)
	require.NoError(t, session.Start(ctx, sm, "sid=abc", model.RoleAdmin, "a@school.test"))

	handler := Gate(GateConfig{
		Sessions: sm,
		API:      &fakeProfiles{err: errors.New("boom")},
		Unavailable: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}),
		Logger: testutil.DiscardLogger(),
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestGateCanceledRequestWritesNothing(t *testing.T) {
	src := &fakeProfiles{err: context.Canceled}
	rec, seen, _ := gateRequest(t, src, testutil.SessionManager(), "sid=abc", model.RoleAdmin)

	assert.Nil(t, seen)
	assert.Equal(t, http.StatusOK, rec.Code, "recorder default means no status was written")
	assert.Empty(t, rec.Body.String())
}

func TestGateRejectsUnknownRole(t *testing.T) {
	sm := testutil.SessionManager()
	src := &fakeProfiles{profile: model.Profile{Email: "s@school.test", Role: "Student"}}
	rec, seen, ctx := gateRequest(t, src, sm, "sid=abc", "")

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteCreatorLogin, rec.Header().Get("Location"))
	assert.Nil(t, seen)
	assert.Empty(t, session.APICookie(ctx, sm))

	msg, _ := session.PopFlash(ctx, sm)
	assert.Equal(t, "Your account cannot access the dashboard.", msg)
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name     string
		profile  *model.Profile
		wantCode int
		wantLoc  string
	}{
		{"admin passes", &model.Profile{Role: model.RoleAdmin}, http.StatusOK, ""},
		{"creator redirected", &model.Profile{Role: model.RoleContentCreator}, http.StatusSeeOther, RouteDashboard},
		{"no profile", nil, http.StatusSeeOther, RouteAdminLogin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := testutil.SessionManager()
			ctx := testutil.SessionContext(t, sm)
			if tt.profile != nil {
				ctx = WithProfile(ctx, *tt.profile)
			}

			handler := RequireAdmin(sm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/admin/creators", nil).WithContext(ctx)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantLoc, rec.Header().Get("Location"))
			if tt.profile != nil && !tt.profile.IsAdmin() {
				msg, _ := session.PopFlash(ctx, sm)
				assert.Equal(t, "Only administrators can access that page.", msg)
			}
		})
	}
}

func TestLoginPath(t *testing.T) {
	assert.Equal(t, RouteAdminLogin, LoginPath(model.RoleAdmin))
	assert.Equal(t, RouteCreatorLogin, LoginPath(model.RoleContentCreator))
	assert.Equal(t, RouteCreatorLogin, LoginPath(""))
}

func TestRequestPath(t *testing.T) {
	var got string
	handler := RequestPath(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetRequestPath(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/admin/updates?x=1", nil))

	assert.Equal(t, "/admin/updates", got)
	assert.Empty(t, GetRequestPath(context.Background()))
}
