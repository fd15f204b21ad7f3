package middleware

import (
	"net/http"
	"time"

	"github.com/byiringiroaimefils/estg-tss/internal/i18n"
)

// Timeout bounds the time a handler may take. Each request gets its own
// http.TimeoutHandler so the 503 body is in the request's language.
// Output written after the deadline is discarded.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			msg := i18n.T(GetLanguage(r), "error.timeout")
			http.TimeoutHandler(next, d, msg).ServeHTTP(w, r)
		})
	}
}
