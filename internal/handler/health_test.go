// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byiringiroaimefils/estg-tss/internal/model"
	"github.com/byiringiroaimefils/estg-tss/internal/session"
	"github.com/byiringiroaimefils/estg-tss/internal/testutil"
	"github.com/byiringiroaimefils/estg-tss/internal/version"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestLiveness(t *testing.T) {
	h := NewHealthHandler(testutil.TestDB(t), nil, nil, nil, version.Info{})
	rec := httptest.NewRecorder()
	h.Liveness(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alive", decodeBody(t, rec)["status"])
}

func TestHealth_Public(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantStatus string
	}{
		{"api reachable", nil, "healthy"},
		{"api down degrades", errors.New("connection refused"), "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(testutil.TestDB(t), stubPinger{tt.pingErr}, nil, nil, version.Info{})
			rec := httptest.NewRecorder()
			h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, tt.wantStatus, body["status"])
			assert.NotContains(t, body, "checks", "details are for admins only")
		})
	}
}

func TestHealth_DatabaseDown(t *testing.T) {
	db := testutil.TestDB(t)
	require.NoError(t, db.Close())

	h := NewHealthHandler(db, stubPinger{}, nil, nil, version.Info{})
	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unhealthy", decodeBody(t, rec)["status"])
}

func TestHealth_AdminDetails(t *testing.T) {
	env := newTestEnv(t)
	h := NewHealthHandler(testutil.TestDB(t), env.client, env.sm, env.content, version.Info{Version: "1.2.0"})

	ctx := testutil.SessionContext(t, env.sm)
	require.NoError(t, session.Start(ctx, env.sm, testCookie, model.RoleAdmin, "admin@school.rw"))
	req := httptest.NewRequest(http.MethodGet, "/health?verbose=true", nil).WithContext(ctx)

	rec := httptest.NewRecorder()
	h.Health(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Contains(t, body["version"], "1.2.0")

	checks, ok := body["checks"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, checks, "database")
	assert.Contains(t, checks, "api")
	assert.Contains(t, body, "system")
	assert.Contains(t, body, "cache")
}

func TestHealth_CreatorGetsPublicView(t *testing.T) {
	env := newTestEnv(t)
	h := NewHealthHandler(testutil.TestDB(t), stubPinger{}, env.sm, nil, version.Info{})

	ctx := testutil.SessionContext(t, env.sm)
	require.NoError(t, session.Start(ctx, env.sm, testCookie, model.RoleContentCreator, "c@school.rw"))
	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil).WithContext(ctx))

	assert.NotContains(t, decodeBody(t, rec), "checks")
}

func TestReadiness(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		h := NewHealthHandler(testutil.TestDB(t), stubPinger{}, nil, nil, version.Info{})
		rec := httptest.NewRecorder()
		h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ready", decodeBody(t, rec)["status"])
	})

	t.Run("api down", func(t *testing.T) {
		h := NewHealthHandler(testutil.TestDB(t), stubPinger{errors.New("timeout")}, nil, nil, version.Info{})
		rec := httptest.NewRecorder()
		h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "not_ready", body["status"])
		assert.NotContains(t, body, "api", "error details are for admins only")
	})
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		input    uint64
		expected string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1048576, "1.00 MB"},
		{1073741824, "1.00 GB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, formatBytes(tt.input))
	}
}
