// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"net/http/httptest"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"Résumé d'été", "resume-d-ete"},
		{"  Exam -- Timetable  ", "exam-timetable"},
		{"Привет", "privet"},
		{"!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Slugify(tt.in); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestAttachmentFilename(t *testing.T) {
	tests := []struct {
		title, url, want string
	}{
		{"Exam Timetable", "https://cdn.example/files/abc.PDF", "exam-timetable.pdf"},
		{"Exam Timetable", "https://cdn.example/files/abc.docx?x=1", "exam-timetable.docx"},
		{"Notice", "https://cdn.example/files/abc", "notice.pdf"},
		{"", "https://cdn.example/a.png", "attachment.png"},
	}

	for _, tt := range tests {
		if got := AttachmentFilename(tt.title, tt.url); got != tt.want {
			t.Errorf("AttachmentFilename(%q, %q) = %q, want %q", tt.title, tt.url, got, tt.want)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"poster.jpg", "poster.jpg", false},
		{"../../etc/passwd", "passwd", false},
		{`C:\Users\me\poster.png`, "poster.png", false},
		{"", "", true},
		{"..", "", true},
		{"/", "", true},
		{"exam\x00\ttimetable.pdf", "examtimetable.pdf", false},
		{"  notes.pdf ", "notes.pdf", false},
	}

	for _, tt := range tests {
		got, err := SanitizeFilename(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("SanitizeFilename(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.5:1234"
	if got := ClientIP(r); got != "10.0.0.5" {
		t.Errorf("ClientIP = %q, want 10.0.0.5", got)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if got := ClientIP(r); got != "203.0.113.9" {
		t.Errorf("ClientIP = %q, want 203.0.113.9", got)
	}

	r.Header.Set("X-Real-IP", "198.51.100.7")
	if got := ClientIP(r); got != "198.51.100.7" {
		t.Errorf("ClientIP = %q, want 198.51.100.7", got)
	}
}
