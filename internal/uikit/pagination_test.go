// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package uikit

import (
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPager(t *testing.T) {
	p := NewPager(2, 95, 20, "/admin/activity", url.Values{"level": {"warning"}, "page": {"2"}})

	assert.Equal(t, 5, p.TotalPages)
	assert.True(t, p.HasPrev())
	assert.True(t, p.HasNext())
	assert.Equal(t, "/admin/activity?level=warning&page=3", p.NextURL())
	assert.Equal(t, "/admin/activity?level=warning&page=1", p.PrevURL())
	assert.Equal(t, "21-40", p.PageRange())
	assert.True(t, p.ShouldShow())
	assert.Len(t, p.Pages, 5)
	assert.True(t, p.Pages[1].IsCurrent)
}

func TestNewPager_SinglePage(t *testing.T) {
	p := NewPager(1, 0, 20, "/admin/activity", nil)

	assert.Equal(t, 1, p.TotalPages)
	assert.False(t, p.ShouldShow())
	assert.False(t, p.HasNext())
	assert.Equal(t, "/admin/activity?page=1", p.PageURL(1))
}

func TestNewPager_ClampsPage(t *testing.T) {
	p := NewPager(40, 30, 25, "/admin/activity", nil)

	assert.Equal(t, 2, p.Page)
	assert.Equal(t, "26-30", p.PageRange())
}

func TestPageWindow(t *testing.T) {
	tests := []struct {
		current, total int
		want           []int
	}{
		{1, 1, []int{1}},
		{1, 3, []int{1, 2, 3}},
		{1, 20, []int{1, 2, 3, 4, 5, 0, 20}},
		{10, 20, []int{1, 0, 8, 9, 10, 11, 12, 0, 20}},
		{20, 20, []int{1, 0, 16, 17, 18, 19, 20}},
		{4, 7, []int{1, 2, 3, 4, 5, 6, 7}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, pageWindow(tt.current, tt.total, pagerWidth), "page %d of %d", tt.current, tt.total)
	}
}

func TestNormalizePagination(t *testing.T) {
	tests := []struct {
		page, total, perPage int
		wantPage, wantPages  int
	}{
		{1, 0, 20, 1, 1},
		{3, 45, 20, 3, 3},
		{9, 45, 20, 3, 3},
		{0, 45, 20, 1, 3},
		{1, 10, 0, 1, 1},
	}
	for _, tt := range tests {
		page, pages := NormalizePagination(tt.page, tt.total, tt.perPage)
		assert.Equal(t, tt.wantPage, page)
		assert.Equal(t, tt.wantPages, pages)
	}
}

func TestParsePage(t *testing.T) {
	tests := map[string]int{
		"/x":          1,
		"/x?page=4":   4,
		"/x?page=-2":  1,
		"/x?page=abc": 1,
	}
	for target, want := range tests {
		assert.Equal(t, want, ParsePage(httptest.NewRequest("GET", target, nil)), target)
	}
}
