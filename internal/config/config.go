// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	APIURL        string        `env:"ESTG_API_URL,required"`
	APITimeout    time.Duration `env:"ESTG_API_TIMEOUT" envDefault:"15s"`
	DBPath        string        `env:"ESTG_DB_PATH" envDefault:"./data/estg.db"`
	SessionSecret string        `env:"ESTG_SESSION_SECRET,required"`
	ServerHost    string        `env:"ESTG_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int           `env:"ESTG_SERVER_PORT" envDefault:"8080"`
	Env           string        `env:"ESTG_ENV" envDefault:"development"`
	LogLevel      string        `env:"ESTG_LOG_LEVEL" envDefault:"info"`

	// Cache configuration for the public event and update lists
	RedisURL     string `env:"ESTG_REDIS_URL"`                        // Optional Redis URL for shared caching
	CachePrefix  string `env:"ESTG_CACHE_PREFIX" envDefault:"estg:"`  // Redis key prefix
	CacheTTL     int    `env:"ESTG_CACHE_TTL" envDefault:"60"`        // Public list TTL in seconds
	CacheMaxSize int    `env:"ESTG_CACHE_MAX_SIZE" envDefault:"1000"` // Max memory cache entries

	// Uploads
	MaxUploadMB   int `env:"ESTG_MAX_UPLOAD_MB" envDefault:"10"`
	ImageMaxWidth int `env:"ESTG_IMAGE_MAX_WIDTH" envDefault:"1600"`

	// GeoIP configuration
	GeoIPDBPath string `env:"ESTG_GEOIP_DB_PATH"` // Path to GeoLite2-Country.mmdb file

	ActivityRetentionDays int `env:"ESTG_ACTIVITY_RETENTION_DAYS" envDefault:"90"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// GeoIPEnabled returns true if GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// MaxUploadBytes returns the multipart body limit for create forms.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// MinSessionSecretLength is the minimum required length for the session secret.
// AES-256 requires 32 bytes minimum for secure encryption.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	u, err := url.Parse(cfg.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("ESTG_API_URL must be an absolute http(s) URL, got %q", cfg.APIURL)
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("ESTG_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("ESTG_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("ESTG_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	if cfg.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("ESTG_MAX_UPLOAD_MB must be positive, got %d", cfg.MaxUploadMB)
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
