// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"os"
	"testing"
	"time"
)

const testSecret = "test-secret-key-32-bytes-long!!!"

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set %s: %v", key, err)
	}
}

func setRequired(t *testing.T) {
	t.Helper()
	os.Clearenv()
	setEnv(t, "ESTG_SESSION_SECRET", testSecret)
	setEnv(t, "ESTG_API_URL", "http://localhost:8000/")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.APIURL != "http://localhost:8000" {
		t.Errorf("APIURL = %q, want trailing slash trimmed", cfg.APIURL)
	}
	if cfg.APITimeout != 15*time.Second {
		t.Errorf("APITimeout = %v, want 15s", cfg.APITimeout)
	}
	if cfg.DBPath != "./data/estg.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "./data/estg.db")
	}
	if cfg.ServerHost != "localhost" {
		t.Errorf("ServerHost = %q, want %q", cfg.ServerHost, "localhost")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8080)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q, want %q", cfg.Env, "development")
	}
	if cfg.CacheTTL != 60 {
		t.Errorf("CacheTTL = %d, want 60", cfg.CacheTTL)
	}
	if cfg.MaxUploadBytes() != 10<<20 {
		t.Errorf("MaxUploadBytes() = %d, want %d", cfg.MaxUploadBytes(), 10<<20)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	setRequired(t)
	setEnv(t, "ESTG_API_URL", "https://api.example.org")
	setEnv(t, "ESTG_API_TIMEOUT", "3s")
	setEnv(t, "ESTG_DB_PATH", "/custom/path.db")
	setEnv(t, "ESTG_SERVER_HOST", "0.0.0.0")
	setEnv(t, "ESTG_SERVER_PORT", "3000")
	setEnv(t, "ESTG_ENV", "production")
	setEnv(t, "ESTG_LOG_LEVEL", "debug")
	setEnv(t, "ESTG_REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.APIURL != "https://api.example.org" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.APITimeout != 3*time.Second {
		t.Errorf("APITimeout = %v, want 3s", cfg.APITimeout)
	}
	if cfg.DBPath != "/custom/path.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "/custom/path.db")
	}
	if cfg.ServerAddr() != "0.0.0.0:3000" {
		t.Errorf("ServerAddr() = %q", cfg.ServerAddr())
	}
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() = true, want false")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if !cfg.UseRedisCache() {
		t.Error("UseRedisCache() = false, want true")
	}
}

func TestLoad_RequiredAPIURL(t *testing.T) {
	os.Clearenv()
	setEnv(t, "ESTG_SESSION_SECRET", testSecret)

	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail when ESTG_API_URL is not set")
	}
}

func TestLoad_InvalidAPIURL(t *testing.T) {
	for _, raw := range []string{"localhost:8000", "ftp://host", "/relative"} {
		t.Run(raw, func(t *testing.T) {
			setRequired(t)
			setEnv(t, "ESTG_API_URL", raw)

			if _, err := Load(); err == nil {
				t.Fatalf("Load() should reject API URL %q", raw)
			}
		})
	}
}

func TestLoad_RequiredSessionSecret(t *testing.T) {
	os.Clearenv()
	setEnv(t, "ESTG_API_URL", "http://localhost:8000")

	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail when ESTG_SESSION_SECRET is not set")
	}
}

func TestLoad_SessionSecretTooShort(t *testing.T) {
	tests := []struct {
		name   string
		secret string
	}{
		{"empty", ""},
		{"short", "short"},
		{"31_bytes", "1234567890123456789012345678901"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			setEnv(t, "ESTG_SESSION_SECRET", tt.secret)

			if _, err := Load(); err == nil {
				t.Fatalf("Load() should fail with %d-byte secret", len(tt.secret))
			}
		})
	}
}

func TestLoad_WeakSecretRejected(t *testing.T) {
	setRequired(t)
	setEnv(t, "ESTG_SESSION_SECRET", knownWeakSecrets[0])

	if _, err := Load(); err == nil {
		t.Fatal("Load() should reject a known default secret")
	}
}

func TestLoad_InvalidUploadLimit(t *testing.T) {
	setRequired(t)
	setEnv(t, "ESTG_MAX_UPLOAD_MB", "0")

	if _, err := Load(); err == nil {
		t.Fatal("Load() should reject a zero upload limit")
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"development", true},
		{"production", false},
		{"staging", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := Config{Env: tt.env}
			if got := cfg.IsDevelopment(); got != tt.want {
				t.Errorf("IsDevelopment() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfig_GeoIPEnabled(t *testing.T) {
	if (Config{}).GeoIPEnabled() {
		t.Error("GeoIPEnabled() = true for empty path")
	}
	if !(Config{GeoIPDBPath: "/path/GeoLite2-Country.mmdb"}).GeoIPEnabled() {
		t.Error("GeoIPEnabled() = false with path set")
	}
}

func TestHasMinimumEntropy(t *testing.T) {
	if hasMinimumEntropy("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa") {
		t.Error("single class should not pass")
	}
	if !hasMinimumEntropy(testSecret) {
		t.Error("lower+digits+special should pass")
	}
}
