// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package web embeds the page templates and the static assets.
package web

import (
	"embed"
	"io/fs"
)

//go:embed all:templates
var Templates embed.FS

//go:embed all:static/dist
var Static embed.FS

// StaticFS returns the assets rooted at static/dist, as served under /static/.
func StaticFS() fs.FS {
	sub, err := fs.Sub(Static, "static/dist")
	if err != nil {
		panic(err)
	}
	return sub
}

// TemplatesFS returns the templates rooted at templates/.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(Templates, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}
