package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/byiringiroaimefils/estg-tss/internal/i18n"
	"github.com/byiringiroaimefils/estg-tss/internal/model"
	"github.com/byiringiroaimefils/estg-tss/internal/util"
)

// maxLockout caps the doubling lockout.
const maxLockout = 24 * time.Hour

// maxTrackedIPs is the number of per-IP limiters kept before Cleanup prunes them.
const maxTrackedIPs = 10000

// LoginProtectionConfig holds configuration for login protection.
type LoginProtectionConfig struct {
	// IPRateLimit is login POSTs per second allowed from one IP.
	IPRateLimit float64
	IPBurst     int
	// MaxFailedAttempts within AttemptWindow locks the email.
	MaxFailedAttempts int
	// LockoutDuration is the first lockout; each further lockout doubles it.
	LockoutDuration time.Duration
	AttemptWindow   time.Duration
}

// DefaultLoginProtectionConfig returns the production settings.
func DefaultLoginProtectionConfig() LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       0.5,
		IPBurst:           5,
		MaxFailedAttempts: 5,
		LockoutDuration:   15 * time.Minute,
		AttemptWindow:     15 * time.Minute,
	}
}

// withDefaults fills every unset field from DefaultLoginProtectionConfig.
func (c LoginProtectionConfig) withDefaults() LoginProtectionConfig {
	d := DefaultLoginProtectionConfig()
	if c.IPRateLimit <= 0 {
		c.IPRateLimit = d.IPRateLimit
	}
	if c.IPBurst <= 0 {
		c.IPBurst = d.IPBurst
	}
	if c.MaxFailedAttempts <= 0 {
		c.MaxFailedAttempts = d.MaxFailedAttempts
	}
	if c.LockoutDuration <= 0 {
		c.LockoutDuration = d.LockoutDuration
	}
	if c.AttemptWindow <= 0 {
		c.AttemptWindow = d.AttemptWindow
	}
	return c
}

// accountState is the failure history of one email address.
type accountState struct {
	failures    int
	windowStart time.Time
	lockedUntil time.Time
	lockouts    int
}

// LoginProtection slows down password guessing through the login forms.
// The API still checks credentials; this adds a per-IP limit on login POSTs
// and a local lockout per email. Emails are compared case-insensitively.
type LoginProtection struct {
	cfg LoginProtectionConfig
	ips *limiterCache[string]

	mu       sync.Mutex
	accounts map[string]*accountState

	now func() time.Time
}

// NewLoginProtection creates login protection; zero config fields take defaults.
func NewLoginProtection(cfg LoginProtectionConfig) *LoginProtection {
	cfg = cfg.withDefaults()
	return &LoginProtection{
		cfg:      cfg,
		ips:      newLimiterCache[string](cfg.IPRateLimit, cfg.IPBurst),
		accounts: make(map[string]*accountState),
		now:      time.Now,
	}
}

func accountKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// lockoutFor returns the lockout applied the nth time (from zero) an
// account is locked.
func (lp *LoginProtection) lockoutFor(n int) time.Duration {
	d := lp.cfg.LockoutDuration
	for range n {
		d *= 2
		if d >= maxLockout {
			return maxLockout
		}
	}
	return d
}

// CheckIPRateLimit reports whether a login POST from ip may proceed.
func (lp *LoginProtection) CheckIPRateLimit(ip string) bool {
	return lp.ips.get(ip).Allow()
}

// IsAccountLocked reports whether email is locked and for how much longer.
func (lp *LoginProtection) IsAccountLocked(email string) (bool, time.Duration) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	st, ok := lp.accounts[accountKey(email)]
	if !ok {
		return false, 0
	}
	if left := st.lockedUntil.Sub(lp.now()); left > 0 {
		return true, left
	}
	return false, 0
}

// RecordFailedAttempt counts a rejected login for email. When the count
// reaches the limit the account is locked and the lockout is returned.
func (lp *LoginProtection) RecordFailedAttempt(email string) (bool, time.Duration) {
	key := accountKey(email)
	now := lp.now()

	lp.mu.Lock()
	defer lp.mu.Unlock()

	st, ok := lp.accounts[key]
	if !ok {
		st = &accountState{}
		lp.accounts[key] = st
	}
	if st.failures == 0 || now.Sub(st.windowStart) > lp.cfg.AttemptWindow {
		st.failures = 0
		st.windowStart = now
	}
	st.failures++

	if st.failures < lp.cfg.MaxFailedAttempts {
		slog.Debug("failed login counted", "email", key, "failures", st.failures)
		return false, 0
	}

	lock := lp.lockoutFor(st.lockouts)
	st.lockedUntil = now.Add(lock)
	st.lockouts++
	st.failures = 0

	slog.Warn("account locked after failed logins",
		"email", key,
		"lockouts", st.lockouts,
		"duration", lock,
		"category", model.ActivityCategoryAuth,
	)
	return true, lock
}

// RecordSuccessfulLogin forgets the failure history of email.
func (lp *LoginProtection) RecordSuccessfulLogin(email string) {
	lp.mu.Lock()
	delete(lp.accounts, accountKey(email))
	lp.mu.Unlock()
}

// RemainingAttempts returns how many more failures email may have before
// it is locked.
func (lp *LoginProtection) RemainingAttempts(email string) int {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	st, ok := lp.accounts[accountKey(email)]
	if !ok || lp.now().Sub(st.windowStart) > lp.cfg.AttemptWindow {
		return lp.cfg.MaxFailedAttempts
	}
	return max(lp.cfg.MaxFailedAttempts-st.failures, 0)
}

// Cleanup drops expired account entries and prunes the IP limiters once
// too many are tracked. The scheduler calls it periodically.
func (lp *LoginProtection) Cleanup() {
	if lp.ips.prune(maxTrackedIPs) {
		slog.Info("login IP limiters pruned", "limit", maxTrackedIPs)
	}

	now := lp.now()
	lp.mu.Lock()
	defer lp.mu.Unlock()
	for key, st := range lp.accounts {
		if !now.Before(st.lockedUntil) && now.Sub(st.windowStart) > lp.cfg.AttemptWindow {
			delete(lp.accounts, key)
		}
	}
}

// trackedAccounts returns the number of emails with a failure history.
func (lp *LoginProtection) trackedAccounts() int {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	return len(lp.accounts)
}

// Middleware limits login POSTs per client IP. Other methods pass through.
func (lp *LoginProtection) Middleware() func(http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int(math.Round(max(1, 1/lp.cfg.IPRateLimit))))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			ip := util.ClientIP(r)
			if !lp.CheckIPRateLimit(ip) {
				slog.Warn("login rate limit exceeded",
					"ip", ip,
					"path", r.URL.Path,
					"category", model.ActivityCategoryAuth,
				)
				w.Header().Set("Retry-After", retryAfter)
				http.Error(w, i18n.T(GetLanguage(r), "auth.rate_limit"), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
