// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides small helpers shared by handlers: slugs,
// download filenames and client addresses.
package util

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

var (
	// slugRegex matches non-alphanumeric characters (except hyphens)
	slugRegex = regexp.MustCompile(`[^a-z0-9-]+`)
	// multipleHyphens matches multiple consecutive hyphens
	multipleHyphens = regexp.MustCompile(`-{2,}`)
	extRegex        = regexp.MustCompile(`^\.[a-z0-9]{1,8}$`)
)

// Slugify converts a string to a URL-friendly ASCII slug.
// Non-Latin text is transliterated first, so "Résumé d'été" becomes "resume-d-ete".
func Slugify(s string) string {
	result := strings.ToLower(unidecode.Unidecode(s))
	result = strings.ReplaceAll(result, " ", "-")
	result = strings.ReplaceAll(result, "'", "-")
	result = slugRegex.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// AttachmentFilename names a downloaded attachment after the update title,
// keeping the extension of the stored file. PDF is assumed when the URL has none.
func AttachmentFilename(title, fileURL string) string {
	name := Slugify(title)
	if name == "" {
		name = "attachment"
	}

	ext := ".pdf"
	if u, err := url.Parse(fileURL); err == nil {
		if e := strings.ToLower(path.Ext(u.Path)); extRegex.MatchString(e) {
			ext = e
		}
	}
	return name + ext
}
