// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service holds the list logic shared by the admin and public views,
// the cached public content reader and the activity log.
package service

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/byiringiroaimefils/estg-tss/internal/model"
)

// Paging defaults for "show more" lists.
const (
	// MaxShow caps the show parameter; no list comes close to it.
	MaxShow           = 10000
	PublicInitial     = 6
	PublicStep        = 3
	RelatedInitial    = 3
	RelatedStep       = 3
	DescriptionLimit  = 150
	descriptionSuffix = "..."
)

// ListState tells a view which of its three bodies to render.
type ListState int

const (
	// StateItems means at least one record matched.
	StateItems ListState = iota
	// StateEmpty means the fetched list itself was empty.
	StateEmpty
	// StateNoMatch means records exist but the search excluded all of them.
	StateNoMatch
)

// StateOf derives the view state from the fetched and matched counts.
func StateOf(total, matched int) ListState {
	switch {
	case total == 0:
		return StateEmpty
	case matched == 0:
		return StateNoMatch
	default:
		return StateItems
	}
}

// Filter returns the items for which any of fields contains query,
// case-insensitively. An empty or blank query returns items unchanged.
func Filter[T any](items []T, query string, fields func(T) []string) []T {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return items
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		for _, f := range fields(item) {
			if strings.Contains(strings.ToLower(f), q) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

// Field selectors for Filter.
func EventTitle(e model.Event) []string { return []string{e.Title} }
func EventText(e model.Event) []string { return []string{e.Title, e.Description} }
func UpdateText(u model.Update) []string { return []string{u.Title, u.Description} }
func CreatorText(c model.Creator) []string { return []string{c.Username, c.Email} }

// RemoveByID returns items without the element whose key equals id.
func RemoveByID[T any](items []T, id string, key func(T) string) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if key(item) != id {
			out = append(out, item)
		}
	}
	return out
}

// Window is the visible slice of a "show more" list.
type Window[T any] struct {
	Items   []T
	Total   int
	Shown   int
	HasMore bool
	// Next is the value of the show parameter for the "See More" link.
	Next int
}

// ParseShow reads the show query parameter. Missing or invalid values give
// initial; larger values are capped at MaxShow and rounded up to the next step.
func ParseShow(raw string, initial, step int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= initial {
		return initial
	}
	n = min(n, max(MaxShow, initial))
	if step <= 0 {
		return n
	}
	extra := n - initial
	if rem := extra % step; rem != 0 {
		extra += step - rem
	}
	return initial + extra
}

// Paginate returns the first show items and the link to show step more.
func Paginate[T any](items []T, show, step int) Window[T] {
	if show < 0 {
		show = 0
	}
	shown := min(show, len(items))
	return Window[T]{
		Items:   items[:shown],
		Total:   len(items),
		Shown:   shown,
		HasMore: shown < len(items),
		Next:    saturatingAdd(show, step),
	}
}

func saturatingAdd(a, b int) int {
	if b > 0 && a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

// Truncate shortens s to limit runes and appends "...".
// The boolean reports whether anything was cut.
func Truncate(s string, limit int) (string, bool) {
	if utf8.RuneCountInString(s) <= limit {
		return s, false
	}
	runes := []rune(s)
	return string(runes[:limit]) + descriptionSuffix, true
}
