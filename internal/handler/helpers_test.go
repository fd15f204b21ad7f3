// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/byiringiroaimefils/estg-tss/internal/imaging"
	"github.com/byiringiroaimefils/estg-tss/internal/middleware"
	"github.com/byiringiroaimefils/estg-tss/internal/model"
)

func TestSafeNext(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{"/updates?q=exam", "/updates?q=exam"},
		{"", "/"},
		{"https://evil.example", "/"},
		{"//evil.example", "/"},
		{`/\evil.example`, "/"},
		{"events", "/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, safeNext(tt.next, "/"), "next=%q", tt.next)
	}
}

func TestValidateEmail(t *testing.T) {
	valid := []string{"user@school.rw", "first.last@estg.ac.rw"}
	invalid := []string{"", "user", "user@", "Bob <bob@school.rw>", " user@school.rw"}

	for _, s := range valid {
		assert.NoError(t, validateEmail(s), s)
	}
	for _, s := range invalid {
		assert.ErrorIs(t, validateEmail(s), errInvalidEmail, s)
	}
}

func TestRequireFields(t *testing.T) {
	assert.NoError(t, requireFields("a", "b"))
	assert.ErrorIs(t, requireFields("a", "  "), errMissingFields)
	assert.ErrorIs(t, requireFields(""), errMissingFields)
}

func TestValidationMessageKey(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{errMissingFields, "form.required"},
		{errInvalidEmail, "form.invalid_email"},
		{errTooLarge, "form.too_large"},
		{imaging.ErrNotImage, "form.invalid_image"},
		{fmt.Errorf("%w: bad boundary", errInvalidForm), "form.invalid"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, validationMessageKey(tt.err))
	}
}

func TestParseMultipart_TooLarge(t *testing.T) {
	body := "title=" + strings.Repeat("x", 2048)
	req := httptest.NewRequest(http.MethodPost, "/admin/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	err := parseMultipart(httptest.NewRecorder(), req, 512)
	assert.ErrorIs(t, err, errTooLarge)
	assert.Equal(t, "form.too_large", validationMessageKey(err))
}

func TestParseMultipart_MultipartTooLarge(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	assert.NoError(t, mw.WriteField(fieldTitle, strings.Repeat("x", 4096)))
	assert.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/events", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	assert.ErrorIs(t, parseMultipart(httptest.NewRecorder(), req, 512), errTooLarge)
}

func TestParseMultipart_MalformedBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/admin/events", strings.NewReader("no boundary here"))
	req.Header.Set("Content-Type", "multipart/form-data")

	err := parseMultipart(httptest.NewRecorder(), req, 1024)
	assert.ErrorIs(t, err, errInvalidForm)
}

func TestParseMultipart_URLEncoded(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/admin/events", strings.NewReader("title=Fair"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	assert.NoError(t, parseMultipart(httptest.NewRecorder(), req, 1024))
	assert.Equal(t, "Fair", formValue(req, fieldTitle))
}

func TestErrorPages(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		handler http.HandlerFunc
		status  int
		message string
	}{
		{"not found", NotFound(env.renderer), http.StatusNotFound, "Page not found"},
		{"unavailable", Unavailable(env.renderer), http.StatusServiceUnavailable, "Failed to fetch dashboard data"},
		{"forbidden", Forbidden(env.renderer), http.StatusForbidden, "Request blocked"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler(rec, env.publicRequest(t, http.MethodGet, "/nowhere", nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.message)
			assert.Contains(t, rec.Body.String(), `href="/events"`)
		})
	}
}

func TestLogAndInternalError(t *testing.T) {
	rec := httptest.NewRecorder()
	logAndInternalError(rec, "boom", "error", "x")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal Server Error")
}

func TestAdminTabs(t *testing.T) {
	keys := func(role string) []string {
		var out []string
		for _, tab := range adminTabs(role, "en") {
			out = append(out, tab.Key)
		}
		return out
	}

	assert.Equal(t, []string{TabUpdates, TabEvents, TabCreators, TabProfile, TabActivity}, keys(model.RoleAdmin))
	assert.Equal(t, []string{TabUpdates, TabEvents, TabProfile}, keys(model.RoleContentCreator))
}

func TestDashboard_RedirectsToFirstTab(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req = req.WithContext(middleware.WithProfile(req.Context(), model.Profile{Role: model.RoleContentCreator}))

	rec := httptest.NewRecorder()
	NewAdminHandler().Dashboard(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/updates", rec.Header().Get("Location"))
}
