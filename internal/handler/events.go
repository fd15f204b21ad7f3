// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/byiringiroaimefils/estg-tss/internal/apiclient"
	"github.com/byiringiroaimefils/estg-tss/internal/i18n"
	"github.com/byiringiroaimefils/estg-tss/internal/imaging"
	"github.com/byiringiroaimefils/estg-tss/internal/middleware"
	"github.com/byiringiroaimefils/estg-tss/internal/model"
	"github.com/byiringiroaimefils/estg-tss/internal/render"
	"github.com/byiringiroaimefils/estg-tss/internal/service"
)

// EventsHandler handles the admin Events tab.
type EventsHandler struct {
	api            *apiclient.Client
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	content        *service.PublicContent
	activity       *service.ActivityService
	images         *imaging.Processor
	maxUpload      int64
}

// NewEventsHandler creates a new EventsHandler. content and activity may be nil.
func NewEventsHandler(api *apiclient.Client, renderer *render.Renderer, sm *scs.SessionManager,
	content *service.PublicContent, activity *service.ActivityService, images *imaging.Processor, maxUpload int64) *EventsHandler {
	return &EventsHandler{
		api:            api,
		renderer:       renderer,
		sessionManager: sm,
		content:        content,
		activity:       activity,
		images:         images,
		maxUpload:      maxUpload,
	}
}

// eventForm is the data of the admin/event_form template.
type eventForm struct {
	Title       string
	Description string
}

// List handles GET /admin/events.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	data := adminData(r, TabEvents, "events.title", nil)

	events, err := h.api.Events(r.Context(), apiCookie(r, h.sessionManager))
	switch classifyFetch(w, r, h.sessionManager, err, "events") {
	case fetchHandled:
		return
	case fetchFailed:
		events = nil
		data.Flash = i18n.T(middleware.GetLanguage(r), "events.fetch_failed")
		data.FlashType = flashTypeError
	}

	data.Data = newListPage(r, events, service.EventText)
	renderPage(w, r, h.renderer, "admin/events", data)
}

// New handles GET /admin/events/new.
func (h *EventsHandler) New(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, eventForm{}, "", "")
}

func (h *EventsHandler) renderForm(w http.ResponseWriter, r *http.Request, form eventForm, flash, flashType string) {
	data := adminData(r, TabEvents, "events.new_title", form)
	data.Flash = flash
	data.FlashType = flashType
	renderPage(w, r, h.renderer, "admin/event_form", data)
}

// Create handles POST /admin/events.
func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)

	// Whatever parsed before a failure is kept so the form comes back filled.
	parseErr := parseMultipart(w, r, h.maxUpload)
	form := eventForm{
		Title:       formValue(r, fieldTitle),
		Description: formValue(r, fieldDescription),
	}
	if parseErr != nil {
		h.renderForm(w, r, form, i18n.T(lang, validationMessageKey(parseErr)), flashTypeWarning)
		return
	}
	if err := requireFields(form.Title, form.Description); err != nil {
		h.renderForm(w, r, form, i18n.T(lang, validationMessageKey(err)), flashTypeWarning)
		return
	}

	image, err := readEventImage(r, h.images)
	if err != nil {
		h.renderForm(w, r, form, i18n.T(lang, validationMessageKey(err)), flashTypeWarning)
		return
	}

	err = h.api.CreateEvent(r.Context(), apiCookie(r, h.sessionManager), apiclient.EventInput{
		Title:       form.Title,
		Description: form.Description,
		Image:       image,
	})
	if err != nil {
		if handleMutationError(w, r, h.sessionManager, err) {
			return
		}
		recordActivity(r, h.activity, model.ActivityLevelError, model.ActivityCategoryEvent,
			"Event creation failed", "", map[string]any{"title": form.Title, "error": err.Error()})
		h.renderForm(w, r, form, failureMessage(r, err, "events.create_failed"), flashTypeError)
		return
	}

	if h.content != nil {
		h.content.InvalidateEvents(r.Context())
	}
	recordInfo(r, h.activity, model.ActivityCategoryEvent, "Event created", map[string]any{"title": form.Title})
	flashSuccess(w, r, h.renderer, redirectAdminEvents, i18n.T(lang, "events.created"))
}

// Delete handles POST /admin/events/{id}/delete.
func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)
	id := chi.URLParam(r, "id")

	err := h.api.DeleteEvent(r.Context(), apiCookie(r, h.sessionManager), id)
	if err != nil {
		if handleMutationError(w, r, h.sessionManager, err) {
			return
		}
		recordActivity(r, h.activity, model.ActivityLevelError, model.ActivityCategoryEvent,
			"Event deletion failed", "", map[string]any{"id": id, "error": err.Error()})
		flashError(w, r, h.renderer, redirectAdminEvents, failureMessage(r, err, "events.delete_failed"))
		return
	}

	if h.content != nil {
		h.content.InvalidateEvents(r.Context())
	}
	recordInfo(r, h.activity, model.ActivityCategoryEvent, "Event deleted", map[string]any{"id": id})
	flashSuccess(w, r, h.renderer, redirectAdminEvents, i18n.T(lang, "events.deleted"))
}
