// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package uikit

import (
	"html/template"
	"strings"
	"testing"
	"time"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		length   int
		expected string
	}{
		{"hello world", 5, "hello..."},
		{"hello", 5, "hello"},
		{"hello", 10, "hello"},
		{"", 5, ""},
		{"héllo wörld", 7, "héllo w..."},
	}
	for _, tt := range tests {
		if got := Truncate(tt.input, tt.length); got != tt.expected {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.length, got, tt.expected)
		}
	}
}

func TestMarkdown(t *testing.T) {
	got := string(Markdown("**Sports day** on Friday"))
	if !strings.Contains(got, "<strong>Sports day</strong>") {
		t.Errorf("Markdown() = %q, want bold text", got)
	}
}

func TestMarkdown_StripsScripts(t *testing.T) {
	got := string(Markdown(`Hello <script>alert(1)</script><a href="javascript:alert(1)">x</a>`))
	if strings.Contains(got, "<script") || strings.Contains(got, "javascript:") {
		t.Errorf("Markdown() did not sanitise: %q", got)
	}
}

func TestMarkdown_ReturnsHTML(t *testing.T) {
	var _ template.HTML = Markdown("plain")
}

func TestTemplateFuncs_Dict(t *testing.T) {
	dict := TemplateFuncs()["dict"].(func(...any) map[string]any)

	d := dict("name", "Fair", "count", 3)
	if d["name"] != "Fair" || d["count"] != 3 {
		t.Errorf("dict() = %v", d)
	}
	if dict("odd") != nil {
		t.Error("dict() with odd arguments should return nil")
	}
}

func TestTemplateFuncs_LocaleFormatters(t *testing.T) {
	funcs := TemplateFuncs()
	at := time.Date(2025, time.March, 15, 14, 30, 0, 0, time.UTC)

	formatDate := funcs["formatDateLocale"].(func(any, string) string)
	if got := formatDate(at, "fr"); got != "15 mars 2025" {
		t.Errorf("formatDateLocale(fr) = %q", got)
	}
	formatDateTime := funcs["formatDateTimeLocale"].(func(any, string) string)
	if got := formatDateTime(&at, "en"); got != "Mar 15, 2025 2:30 PM" {
		t.Errorf("formatDateTimeLocale(en) = %q", got)
	}
}

func TestFormatDateForLocale(t *testing.T) {
	testTime := time.Date(2024, time.August, 5, 9, 7, 0, 0, time.UTC)

	tests := []struct {
		lang     string
		expected string
	}{
		{"en", "August 5, 2024"},
		{"fr", "5 août 2024"},
		{"", "August 5, 2024"},
	}
	for _, tt := range tests {
		if got := FormatDateForLocale(testTime, tt.lang); got != tt.expected {
			t.Errorf("FormatDateForLocale(%q) = %q, want %q", tt.lang, got, tt.expected)
		}
	}

	if got := FormatDateForLocale(time.Time{}, "en"); got != "" {
		t.Errorf("FormatDateForLocale(zero) = %q, want empty", got)
	}
}

func TestFormatDateTimeForLocale(t *testing.T) {
	testTime := time.Date(2024, time.August, 5, 9, 7, 0, 0, time.UTC)

	if got := FormatDateTimeForLocale(testTime, "fr"); got != "5 août 2024, 09:07" {
		t.Errorf("FormatDateTimeForLocale(fr) = %q", got)
	}
	if got := FormatDateTimeForLocale(testTime, "en"); got != "Aug 5, 2024 9:07 AM" {
		t.Errorf("FormatDateTimeForLocale(en) = %q", got)
	}
}

func TestApplyTimeFormatter(t *testing.T) {
	testTime := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	if got := ApplyTimeFormatter(testTime, "en", FormatDateForLocale); got != "January 1, 2024" {
		t.Errorf("time.Time: got %q", got)
	}
	if got := ApplyTimeFormatter(&testTime, "en", FormatDateForLocale); got != "January 1, 2024" {
		t.Errorf("*time.Time: got %q", got)
	}
	var nilTime *time.Time
	if got := ApplyTimeFormatter(nilTime, "en", FormatDateForLocale); got != "" {
		t.Errorf("nil pointer: got %q", got)
	}
	if got := ApplyTimeFormatter("2024-01-01", "en", FormatDateForLocale); got != "" {
		t.Errorf("string: got %q", got)
	}
}

func TestFrenchMonths(t *testing.T) {
	if len(MonthsFr) != 12 {
		t.Fatalf("MonthsFr has %d entries, want 12", len(MonthsFr))
	}
	for i, m := range MonthsFr {
		if m == "" {
			t.Errorf("MonthsFr[%d] is empty", i)
		}
	}
}
