package middleware

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/byiringiroaimefils/estg-tss/internal/i18n"
	"github.com/byiringiroaimefils/estg-tss/internal/session"
)

// ContextKeyLanguage holds the UI language code for the request.
const ContextKeyLanguage ContextKey = "language"

// Language creates middleware that picks the UI language for the request.
// Priority order:
// 1. The language saved in the session by POST /language
// 2. The Accept-Language header
// 3. i18n.DefaultLanguage
func Language(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := ""
			if sm != nil {
				if saved := sm.GetString(r.Context(), session.KeyLanguage); i18n.IsSupported(saved) {
					lang = saved
				}
			}
			if lang == "" {
				lang = i18n.MatchLanguage(r.Header.Get("Accept-Language"))
			}

			next.ServeHTTP(w, r.WithContext(WithLanguage(r.Context(), lang)))
		})
	}
}

// WithLanguage returns a copy of ctx carrying lang.
func WithLanguage(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ContextKeyLanguage, lang)
}

// GetLanguage returns the UI language for the request, or the default.
func GetLanguage(r *http.Request) string {
	if lang, ok := r.Context().Value(ContextKeyLanguage).(string); ok && lang != "" {
		return lang
	}
	return i18n.DefaultLanguage
}
