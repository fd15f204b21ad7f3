package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/byiringiroaimefils/estg-tss/internal/apiclient"
	"github.com/byiringiroaimefils/estg-tss/internal/i18n"
	"github.com/byiringiroaimefils/estg-tss/internal/middleware"
	"github.com/byiringiroaimefils/estg-tss/internal/service"
	"github.com/byiringiroaimefils/estg-tss/internal/session"
)

// listPage is the data of the admin list templates.
type listPage[T any] struct {
	Query   string
	Items   []T
	State   service.ListState
	Removed string
}

// IsEmpty reports whether the fetched list had no records at all.
func (p listPage[T]) IsEmpty() bool { return p.State == service.StateEmpty }

// IsNoMatch reports whether the search excluded every record.
func (p listPage[T]) IsNoMatch() bool { return p.State == service.StateNoMatch }

// newListPage filters items by the q parameter.
func newListPage[T any](r *http.Request, items []T, fields func(T) []string) listPage[T] {
	q := r.URL.Query().Get(paramQuery)
	matched := service.Filter(items, q, fields)
	return listPage[T]{
		Query: q,
		Items: matched,
		State: service.StateOf(len(items), len(matched)),
	}
}

// fetchOutcome says what a list handler should do after a failed fetch.
type fetchOutcome int

const (
	fetchOK fetchOutcome = iota
	// fetchHandled means the response was already written or the client left.
	fetchHandled
	// fetchFailed means the list is rendered empty with an error flash.
	fetchFailed
)

// classifyFetch handles the session and cancellation cases of a list fetch.
func classifyFetch(w http.ResponseWriter, r *http.Request, sm *scs.SessionManager, err error, what string) fetchOutcome {
	switch {
	case err == nil:
		return fetchOK
	case isCanceled(err):
		return fetchHandled
	case errors.Is(err, apiclient.ErrUnauthorized):
		sessionLost(w, r, sm)
		return fetchHandled
	default:
		slog.Error("failed to fetch "+what, "error", err, "path", r.URL.Path)
		return fetchFailed
	}
}

// apiCookie returns the upstream session cookie of the request.
func apiCookie(r *http.Request, sm *scs.SessionManager) string {
	return session.APICookie(r.Context(), sm)
}

// failureMessage prefers the API's own message over the translated fallback.
func failureMessage(r *http.Request, err error, fallbackKey string) string {
	return apiclient.Message(err, i18n.T(middleware.GetLanguage(r), fallbackKey))
}
