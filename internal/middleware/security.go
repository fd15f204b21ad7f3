// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// permissionsPolicy turns off every browser feature the site never uses.
const permissionsPolicy = "accelerometer=(), browsing-topics=(), camera=(), geolocation=(), " +
	"gyroscope=(), interest-cohort=(), magnetometer=(), microphone=(), payment=(), usb=()"

// SecurityHeadersConfig holds configuration for security headers.
type SecurityHeadersConfig struct {
	// IsDevelopment drops HSTS and lets images load over plain http.
	IsDevelopment bool
	// ImageSources are extra img-src origins, typically the API host that
	// serves event posters.
	ImageSources []string
	// HSTSMaxAge of zero disables Strict-Transport-Security.
	HSTSMaxAge            time.Duration
	HSTSIncludeSubDomains bool
	HSTSPreload           bool
	FrameOptions          string
	ReferrerPolicy        string
	// ExcludePaths are path prefixes served without these headers.
	ExcludePaths []string
}

// DefaultSecurityHeadersConfig returns the production settings.
func DefaultSecurityHeadersConfig(isDev bool, imageSources ...string) SecurityHeadersConfig {
	return SecurityHeadersConfig{
		IsDevelopment:         isDev,
		ImageSources:          imageSources,
		HSTSMaxAge:            365 * 24 * time.Hour,
		HSTSIncludeSubDomains: !isDev,
		FrameOptions:          "SAMEORIGIN",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}
}

// contentSecurityPolicy renders the CSP. Pages use only local scripts; inline
// styles are allowed for the rendered markdown.
func (c SecurityHeadersConfig) contentSecurityPolicy() string {
	img := []string{"'self'", "data:", "https:"}
	for _, src := range c.ImageSources {
		if src != "" {
			img = append(img, src)
		}
	}
	if c.IsDevelopment {
		img = append(img, "http:")
	}

	directives := [][2]string{
		{"default-src", "'self'"},
		{"script-src", "'self'"},
		{"style-src", "'self' 'unsafe-inline'"},
		{"img-src", strings.Join(img, " ")},
		{"font-src", "'self' data:"},
		{"connect-src", "'self'"},
		{"object-src", "'none'"},
		{"base-uri", "'self'"},
		{"form-action", "'self'"},
		{"frame-ancestors", "'self'"},
	}
	parts := make([]string, len(directives))
	for i, d := range directives {
		parts[i] = d[0] + " " + d[1]
	}
	return strings.Join(parts, "; ")
}

func (c SecurityHeadersConfig) strictTransportSecurity() string {
	if c.IsDevelopment || c.HSTSMaxAge <= 0 {
		return ""
	}
	v := "max-age=" + strconv.Itoa(int(c.HSTSMaxAge.Seconds()))
	if c.HSTSIncludeSubDomains {
		v += "; includeSubDomains"
	}
	if c.HSTSPreload {
		v += "; preload"
	}
	return v
}

// headers builds the fixed header set once.
func (c SecurityHeadersConfig) headers() http.Header {
	h := http.Header{}
	set := func(k, v string) {
		if v != "" {
			h.Set(k, v)
		}
	}
	set("Content-Security-Policy", c.contentSecurityPolicy())
	set("Strict-Transport-Security", c.strictTransportSecurity())
	set("X-Frame-Options", c.FrameOptions)
	set("X-Content-Type-Options", "nosniff")
	set("Referrer-Policy", c.ReferrerPolicy)
	set("Permissions-Policy", permissionsPolicy)
	return h
}

// SecurityHeaders returns a middleware that adds security headers to responses.
func SecurityHeaders(cfg SecurityHeadersConfig) func(http.Handler) http.Handler {
	fixed := cfg.headers()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range cfg.ExcludePaths {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}
			dst := w.Header()
			for k, v := range fixed {
				dst[k] = v
			}
			next.ServeHTTP(w, r)
		})
	}
}
