package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/byiringiroaimefils/estg-tss/internal/apiclient"
	"github.com/byiringiroaimefils/estg-tss/internal/i18n"
	"github.com/byiringiroaimefils/estg-tss/internal/middleware"
	"github.com/byiringiroaimefils/estg-tss/internal/model"
	"github.com/byiringiroaimefils/estg-tss/internal/render"
	"github.com/byiringiroaimefils/estg-tss/internal/service"
	"github.com/byiringiroaimefils/estg-tss/internal/util"
)

// FrontendHandler serves the public Events and Updates pages.
type FrontendHandler struct {
	content  *service.PublicContent
	renderer *render.Renderer
}

// NewFrontendHandler creates a new FrontendHandler.
func NewFrontendHandler(content *service.PublicContent, renderer *render.Renderer) *FrontendHandler {
	return &FrontendHandler{
		content:  content,
		renderer: renderer,
	}
}

// publicList is the data of the public list templates.
type publicList[T any] struct {
	Query  string
	Window service.Window[T]
	State  service.ListState
	// MoreURL is the "See More" link, empty when everything is shown.
	MoreURL string
}

// IsEmpty reports whether nothing is published.
func (p publicList[T]) IsEmpty() bool { return p.State == service.StateEmpty }

// IsNoMatch reports whether the search excluded every record.
func (p publicList[T]) IsNoMatch() bool { return p.State == service.StateNoMatch }

// newPublicList filters items by ?q= and cuts the ?show= window.
func newPublicList[T any](r *http.Request, items []T, fields func(T) []string, initial, step int) publicList[T] {
	query := r.URL.Query()
	q := query.Get(paramQuery)
	matched := service.Filter(items, q, fields)
	window := service.Paginate(matched, service.ParseShow(query.Get(paramShow), initial, step), step)

	list := publicList[T]{
		Query:  q,
		Window: window,
		State:  service.StateOf(len(items), len(matched)),
	}
	if window.HasMore {
		list.MoreURL = withParam(r, paramShow, strconv.Itoa(window.Next))
	}
	return list
}

// withParam returns the request path with one query parameter replaced.
// An empty value removes the parameter.
func withParam(r *http.Request, key, value string) string {
	q := url.Values{}
	for k, v := range r.URL.Query() {
		q[k] = v
	}
	if value == "" {
		q.Del(key)
	} else {
		q.Set(key, value)
	}
	if len(q) == 0 {
		return r.URL.Path
	}
	return r.URL.Path + "?" + q.Encode()
}

// fetchFailedFlash logs a failed public fetch and returns the flash shown
// above the empty list. It returns ok=false when the client went away.
func fetchFailedFlash(r *http.Request, err error, what, msgKey string) (string, bool) {
	if isCanceled(err) {
		return "", false
	}
	slog.Error("failed to fetch "+what, "error", err, "path", r.URL.Path)
	return i18n.T(middleware.GetLanguage(r), msgKey), true
}

// Home handles GET / and sends visitors to the events page.
func (h *FrontendHandler) Home(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, redirectPublicEvents, http.StatusFound)
}

// Events handles GET /events. Only titles are searched.
func (h *FrontendHandler) Events(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)
	data := render.TemplateData{Title: i18n.T(lang, "public.events.title")}

	events, err := h.content.Events(r.Context())
	if err != nil {
		flash, ok := fetchFailedFlash(r, err, "public events", "events.fetch_failed")
		if !ok {
			return
		}
		events = nil
		data.Flash = flash
		data.FlashType = flashTypeError
	}

	data.Data = newPublicList(r, events, service.EventTitle, service.PublicInitial, service.PublicStep)
	renderPage(w, r, h.renderer, "public/events", data)
}

// eventDetail is the data of the public/event template.
type eventDetail struct {
	Event   model.Event
	Related publicList[model.Event]
}

// EventDetail handles GET /events/{id}: the event plus the others below it.
func (h *FrontendHandler) EventDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	event, err := h.content.Event(r.Context(), id)
	if err != nil {
		switch {
		case isCanceled(err):
		case errors.Is(err, apiclient.ErrNotFound):
			renderError(w, r, h.renderer, http.StatusNotFound, "error.event_not_found")
		default:
			slog.Error("failed to fetch event", "error", err, "id", id)
			renderError(w, r, h.renderer, http.StatusBadGateway, "error.internal")
		}
		return
	}

	// The rest of the page still renders without the related list.
	all, err := h.content.Events(r.Context())
	if err != nil {
		if isCanceled(err) {
			return
		}
		slog.Warn("failed to fetch related events", "error", err, "id", id)
		all = nil
	}
	others := service.RemoveByID(all, id, func(e model.Event) string { return e.ID })

	renderPage(w, r, h.renderer, "public/event", render.TemplateData{
		Title: event.Title,
		Data: eventDetail{
			Event:   event,
			Related: newPublicList(r, others, service.EventTitle, service.RelatedInitial, service.RelatedStep),
		},
	})
}

// updateView is one announcement on the public Updates page.
type updateView struct {
	model.Update
	// Summary is the description cut to the display limit.
	Summary   string
	Truncated bool
	Expanded  bool
	// ToggleURL flips the "Show More..." state of this update.
	ToggleURL      string
	AttachmentName string
}

// updatesPage is the data of the public/updates template.
type updatesPage struct {
	publicList[model.Update]
	Views []updateView
}

// Updates handles GET /updates. Long descriptions are cut unless ?expand=
// names the update.
func (h *FrontendHandler) Updates(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)
	data := render.TemplateData{Title: i18n.T(lang, "public.updates.title")}

	updates, err := h.content.Updates(r.Context())
	if err != nil {
		flash, ok := fetchFailedFlash(r, err, "public updates", "updates.fetch_failed")
		if !ok {
			return
		}
		updates = nil
		data.Flash = flash
		data.FlashType = flashTypeError
	}

	list := newPublicList(r, updates, service.UpdateText, service.PublicInitial, service.PublicStep)
	expand := r.URL.Query().Get(paramExpand)

	views := make([]updateView, len(list.Window.Items))
	for i, u := range list.Window.Items {
		summary, truncated := service.Truncate(u.Description, service.DescriptionLimit)
		v := updateView{
			Update:    u,
			Summary:   summary,
			Truncated: truncated,
			Expanded:  truncated && expand == u.ID,
		}
		if truncated {
			if v.Expanded {
				v.ToggleURL = withParam(r, paramExpand, "")
			} else {
				v.ToggleURL = withParam(r, paramExpand, u.ID)
			}
		}
		if u.HasAttachment() {
			v.AttachmentName = util.AttachmentFilename(u.Title, u.FileURL)
		}
		views[i] = v
	}

	data.Data = updatesPage{publicList: list, Views: views}
	renderPage(w, r, h.renderer, "public/updates", data)
}
