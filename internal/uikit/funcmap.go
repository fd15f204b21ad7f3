// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package uikit provides reusable template helpers and pagination logic
// for the site and admin templates.
package uikit

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// MonthsFr contains French month names.
var MonthsFr = []string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

var (
	markdown = goldmark.New(
		goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// TemplateFuncs returns a template.FuncMap with pure helper functions.
//
// Callers can merge project-specific functions on top:
//
//	funcs := uikit.TemplateFuncs()
//	funcs["T"] = translate
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"upper":     strings.ToUpper,
		"hasPrefix": strings.HasPrefix,
		"truncate":  Truncate,
		"markdown":  Markdown,

		"formatDateLocale": func(t any, lang string) string {
			return ApplyTimeFormatter(t, lang, FormatDateForLocale)
		},
		"formatDateTimeLocale": func(t any, lang string) string {
			return ApplyTimeFormatter(t, lang, FormatDateTimeForLocale)
		},

		// dict builds the argument map for partials taking several values.
		"dict": func(values ...any) map[string]any {
			if len(values)%2 != 0 {
				return nil
			}
			dict := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					continue
				}
				dict[key] = values[i+1]
			}
			return dict
		},
	}
}

// Truncate cuts s to length runes and appends "..." when it was longer.
func Truncate(s string, length int) string {
	runes := []rune(s)
	if len(runes) <= length {
		return s
	}
	return string(runes[:length]) + "..."
}

// Markdown renders user-authored text to sanitised HTML.
func Markdown(s string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(s), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(s))
	}
	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes()))
}

// FormatDateForLocale formats a date according to the specified language.
func FormatDateForLocale(t time.Time, lang string) string {
	if t.IsZero() {
		return ""
	}
	if lang == "fr" {
		return fmt.Sprintf("%d %s %d", t.Day(), MonthsFr[t.Month()-1], t.Year())
	}
	return t.Format("January 2, 2006")
}

// FormatDateTimeForLocale formats a time.Time as a localized datetime string.
func FormatDateTimeForLocale(t time.Time, lang string) string {
	if t.IsZero() {
		return ""
	}
	if lang == "fr" {
		return fmt.Sprintf("%d %s %d, %02d:%02d", t.Day(), MonthsFr[t.Month()-1], t.Year(), t.Hour(), t.Minute())
	}
	return t.Format("Jan 2, 2006 3:04 PM")
}

// ApplyTimeFormatter applies a time formatting function to a value that may be time.Time or *time.Time.
// Returns an empty string for nil pointers or unsupported types.
func ApplyTimeFormatter(t any, lang string, formatter func(time.Time, string) string) string {
	switch v := t.(type) {
	case time.Time:
		return formatter(v, lang)
	case *time.Time:
		if v == nil {
			return ""
		}
		return formatter(*v, lang)
	default:
		return ""
	}
}
