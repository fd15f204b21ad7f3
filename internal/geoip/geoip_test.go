// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package geoip

import (
	"path/filepath"
	"testing"
)

func TestCountry_WithoutDatabase(t *testing.T) {
	g, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = g.Close() }()

	tests := map[string]string{
		"127.0.0.1":   Local,
		"192.168.1.4": Local,
		"10.1.2.3":    Local,
		"::1":         Local,
		"8.8.8.8":     "",
		"not-an-ip":   "",
	}
	for ip, want := range tests {
		if got := g.Country(ip); got != want {
			t.Errorf("Country(%q) = %q, want %q", ip, got, want)
		}
	}
	if g.Enabled() {
		t.Error("Enabled() = true without database")
	}
	if err := g.Reload(); err != nil {
		t.Errorf("Reload without path: %v", err)
	}
}

func TestNew_MissingFile(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing.mmdb")); err == nil {
		t.Error("expected error for missing database")
	}
}
