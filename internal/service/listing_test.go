// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/byiringiroaimefils/estg-tss/internal/model"
)

func sampleEvents() []model.Event {
	return []model.Event{
		{ID: "1", Title: "Science Fair", Description: "Projects from every class"},
		{ID: "2", Title: "Sports Day", Description: "Athletics and football"},
		{ID: "3", Title: "Graduation", Description: "Ceremony for the science stream"},
	}
}

func TestFilter_TitleOnly(t *testing.T) {
	got := Filter(sampleEvents(), "SCIENCE", EventTitle)
	assert.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
}

func TestFilter_TitleOrDescription(t *testing.T) {
	got := Filter(sampleEvents(), "science", EventText)
	assert.Len(t, got, 2)
	assert.Equal(t, []string{"1", "3"}, []string{got[0].ID, got[1].ID})
}

func TestFilter_EmptyQueryRestoresList(t *testing.T) {
	events := sampleEvents()
	assert.Len(t, Filter(events, "", EventText), len(events))
	assert.Len(t, Filter(events, "   ", EventText), len(events))
}

func TestFilter_NoMatch(t *testing.T) {
	events := sampleEvents()
	got := Filter(events, "zzz-not-there", EventText)
	assert.Empty(t, got)
	assert.Equal(t, StateNoMatch, StateOf(len(events), len(got)))
}

func TestStateOf(t *testing.T) {
	assert.Equal(t, StateEmpty, StateOf(0, 0))
	assert.Equal(t, StateNoMatch, StateOf(3, 0))
	assert.Equal(t, StateItems, StateOf(3, 1))
}

func TestRemoveByID(t *testing.T) {
	creators := []model.Creator{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	got := RemoveByID(creators, "b", func(c model.Creator) string { return c.ID })
	assert.Equal(t, []model.Creator{{ID: "a"}, {ID: "c"}}, got)

	same := RemoveByID(creators, "missing", func(c model.Creator) string { return c.ID })
	assert.Len(t, same, 3)
}

func TestParseShow(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 6},
		{"abc", 6},
		{"-3", 6},
		{"4", 6},
		{"9", 9},
		{"10", 12},
		{"12", 12},
		{"10000", 10002},
		{"9223372036854775807", 10002},
		{"99999999999999999999", 6},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseShow(tt.raw, PublicInitial, PublicStep), "raw=%q", tt.raw)
	}
}

func TestPaginate(t *testing.T) {
	items := make([]int, 10)
	for i := range items {
		items[i] = i
	}

	w := Paginate(items, 6, 3)
	assert.Len(t, w.Items, 6)
	assert.True(t, w.HasMore)
	assert.Equal(t, 9, w.Next)
	assert.Equal(t, 10, w.Total)

	w = Paginate(items, 12, 3)
	assert.Len(t, w.Items, 10)
	assert.False(t, w.HasMore)

	w = Paginate(items, math.MaxInt-1, 3)
	assert.Len(t, w.Items, 10)
	assert.False(t, w.HasMore)
	assert.Equal(t, math.MaxInt, w.Next)

	w = Paginate([]int{}, 6, 3)
	assert.Empty(t, w.Items)
	assert.False(t, w.HasMore)
}

func TestTruncate(t *testing.T) {
	short := "A short announcement"
	got, cut := Truncate(short, DescriptionLimit)
	assert.Equal(t, short, got)
	assert.False(t, cut)

	long := strings.Repeat("é", 200)
	got, cut = Truncate(long, DescriptionLimit)
	assert.True(t, cut)
	assert.Equal(t, strings.Repeat("é", 150)+"...", got)

	exact := strings.Repeat("x", 150)
	got, cut = Truncate(exact, DescriptionLimit)
	assert.Equal(t, exact, got)
	assert.False(t, cut)
}
