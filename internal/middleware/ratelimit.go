// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/byiringiroaimefils/estg-tss/internal/i18n"
	"github.com/byiringiroaimefils/estg-tss/internal/util"
)

// limiterCache hands out one token bucket per key.
type limiterCache[K comparable] struct {
	mu       sync.Mutex
	limiters map[K]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newLimiterCache[K comparable](rps float64, burst int) *limiterCache[K] {
	return &limiterCache[K]{
		limiters: make(map[K]*rate.Limiter),
		limit:    rate.Limit(rps),
		burst:    burst,
	}
}

func (lc *limiterCache[K]) get(key K) *rate.Limiter {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	l, ok := lc.limiters[key]
	if !ok {
		l = rate.NewLimiter(lc.limit, lc.burst)
		lc.limiters[key] = l
	}
	return l
}

// prune shrinks the cache once it holds more than maxSize keys. Buckets that
// have refilled are dropped first since a fresh limiter behaves the same;
// if that is not enough everything goes. Reports whether it pruned.
func (lc *limiterCache[K]) prune(maxSize int) bool {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	if len(lc.limiters) <= maxSize {
		return false
	}
	for k, l := range lc.limiters {
		if l.Tokens() >= float64(lc.burst) {
			delete(lc.limiters, k)
		}
	}
	if len(lc.limiters) > maxSize {
		clear(lc.limiters)
	}
	return true
}

func (lc *limiterCache[K]) size() int {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return len(lc.limiters)
}

// GlobalRateLimiter limits requests per client IP on the public pages.
// Each public page costs at least one upstream API call.
type GlobalRateLimiter struct {
	cache *limiterCache[string]
}

// NewGlobalRateLimiter allows rps requests per second per IP with the given burst.
func NewGlobalRateLimiter(rps float64, burst int) *GlobalRateLimiter {
	return &GlobalRateLimiter{cache: newLimiterCache[string](rps, burst)}
}

// Middleware rejects requests over the limit with a translated 429.
func (rl *GlobalRateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := util.ClientIP(r)
			if rl.cache.get(ip).Allow() {
				next.ServeHTTP(w, r)
				return
			}
			slog.Warn("public rate limit exceeded", "ip", ip, "path", r.URL.Path)
			http.Error(w, i18n.T(GetLanguage(r), "error.rate_limited"), http.StatusTooManyRequests)
		})
	}
}

// Prune shrinks the per-IP table once more than maxKeys are tracked.
func (rl *GlobalRateLimiter) Prune(maxKeys int) bool {
	return rl.cache.prune(maxKeys)
}
