package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"filippo.io/csrf/gorilla"

	"github.com/byiringiroaimefils/estg-tss/internal/i18n"
	"github.com/byiringiroaimefils/estg-tss/internal/model"
)

// CSRFConfig configures cross-site request protection. The check relies on
// Fetch metadata (Sec-Fetch-Site, Origin), so no token cookie is involved.
type CSRFConfig struct {
	// AuthKey is kept for the gorilla-compatible signature; 32 bytes.
	AuthKey []byte
	// ErrorHandler renders the 403; nil uses a plain-text response.
	ErrorHandler http.Handler
	// TrustedOrigins are host[:port] values allowed to post cross-origin.
	TrustedOrigins []string
}

// DefaultCSRFConfig returns the config for the given environment. In
// development the local listen address is trusted so the forms work when
// opened through either loopback name.
func DefaultCSRFConfig(authKey []byte, isDev bool, port int) CSRFConfig {
	cfg := CSRFConfig{AuthKey: authKey}
	if isDev {
		p := strconv.Itoa(port)
		for _, host := range []string{"localhost", "127.0.0.1"} {
			cfg.TrustedOrigins = append(cfg.TrustedOrigins, net.JoinHostPort(host, p))
		}
	}
	return cfg
}

// CSRF rejects state-changing requests that come from another site.
func CSRF(cfg CSRFConfig) func(http.Handler) http.Handler {
	onFail := cfg.ErrorHandler
	if onFail == nil {
		onFail = http.HandlerFunc(rejectCSRF)
	}
	opts := []csrf.Option{csrf.ErrorHandler(logCSRFFailure(onFail))}
	if len(cfg.TrustedOrigins) > 0 {
		opts = append(opts, csrf.TrustedOrigins(cfg.TrustedOrigins))
	}
	return csrf.Protect(cfg.AuthKey, opts...)
}

// logCSRFFailure records why a request was refused before rendering the 403.
func logCSRFFailure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reason := "unknown"
		if err := csrf.FailureReason(r); err != nil {
			reason = err.Error()
		}
		slog.Warn("cross-site request rejected",
			"reason", reason,
			"method", r.Method,
			"path", r.URL.Path,
			"origin", r.Header.Get("Origin"),
			"sec_fetch_site", r.Header.Get("Sec-Fetch-Site"),
			"category", model.ActivityCategoryAuth,
		)
		next.ServeHTTP(w, r)
	})
}

func rejectCSRF(w http.ResponseWriter, r *http.Request) {
	http.Error(w, i18n.T(GetLanguage(r), "error.forbidden"), http.StatusForbidden)
}
