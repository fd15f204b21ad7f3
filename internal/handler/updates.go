package handler

import (
	"errors"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/byiringiroaimefils/estg-tss/internal/apiclient"
	"github.com/byiringiroaimefils/estg-tss/internal/i18n"
	"github.com/byiringiroaimefils/estg-tss/internal/middleware"
	"github.com/byiringiroaimefils/estg-tss/internal/model"
	"github.com/byiringiroaimefils/estg-tss/internal/render"
	"github.com/byiringiroaimefils/estg-tss/internal/service"
)

// UpdatesHandler handles the admin Updates tab.
type UpdatesHandler struct {
	api            *apiclient.Client
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	content        *service.PublicContent
	activity       *service.ActivityService
	maxUpload      int64
}

// NewUpdatesHandler creates a new UpdatesHandler. content and activity may be nil.
func NewUpdatesHandler(api *apiclient.Client, renderer *render.Renderer, sm *scs.SessionManager,
	content *service.PublicContent, activity *service.ActivityService, maxUpload int64) *UpdatesHandler {
	return &UpdatesHandler{
		api:            api,
		renderer:       renderer,
		sessionManager: sm,
		content:        content,
		activity:       activity,
		maxUpload:      maxUpload,
	}
}

// updateForm is the data of the admin/update_form template.
type updateForm struct {
	ID          string
	Title       string
	Description string
	Type        string
	FileURL     string
}

// IsEdit reports whether the form edits an existing update.
func (f updateForm) IsEdit() bool { return f.ID != "" }

// Action is the URL the form posts to.
func (f updateForm) Action() string {
	if f.IsEdit() {
		return redirectAdminUpdates + "/" + f.ID
	}
	return redirectAdminUpdates
}

func (f updateForm) input() apiclient.UpdateInput {
	return apiclient.UpdateInput{Title: f.Title, Description: f.Description, Type: f.Type}
}

// List handles GET /admin/updates.
func (h *UpdatesHandler) List(w http.ResponseWriter, r *http.Request) {
	data := adminData(r, TabUpdates, "updates.title", nil)

	updates, err := h.api.Updates(r.Context(), apiCookie(r, h.sessionManager))
	switch classifyFetch(w, r, h.sessionManager, err, "updates") {
	case fetchHandled:
		return
	case fetchFailed:
		updates = nil
		data.Flash = i18n.T(middleware.GetLanguage(r), "updates.fetch_failed")
		data.FlashType = flashTypeError
	}

	data.Data = newListPage(r, updates, service.UpdateText)
	renderPage(w, r, h.renderer, "admin/updates", data)
}

// New handles GET /admin/updates/new.
func (h *UpdatesHandler) New(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, updateForm{}, "", "")
}

func (h *UpdatesHandler) renderForm(w http.ResponseWriter, r *http.Request, form updateForm, flash, flashType string) {
	titleKey := "updates.new_title"
	if form.IsEdit() {
		titleKey = "updates.edit_title"
	}
	data := adminData(r, TabUpdates, titleKey, form)
	data.Flash = flash
	data.FlashType = flashType
	renderPage(w, r, h.renderer, "admin/update_form", data)
}

// readUpdateForm reads and validates the update fields.
func readUpdateForm(r *http.Request, id string) (updateForm, error) {
	form := updateForm{
		ID:          id,
		Title:       formValue(r, fieldTitle),
		Description: formValue(r, fieldDescription),
		Type:        formValue(r, fieldType),
	}
	return form, requireFields(form.Title, form.Description, form.Type)
}

// Create handles POST /admin/updates.
func (h *UpdatesHandler) Create(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)

	parseErr := parseMultipart(w, r, h.maxUpload)
	form, err := readUpdateForm(r, "")
	if parseErr != nil {
		h.renderForm(w, r, form, i18n.T(lang, validationMessageKey(parseErr)), flashTypeWarning)
		return
	}
	if err != nil {
		h.renderForm(w, r, form, i18n.T(lang, validationMessageKey(err)), flashTypeWarning)
		return
	}

	attachment, closer, err := readAttachment(r)
	if err != nil {
		h.renderForm(w, r, form, i18n.T(lang, validationMessageKey(err)), flashTypeWarning)
		return
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}

	in := form.input()
	in.Attachment = attachment
	if err := h.api.CreateUpdate(r.Context(), apiCookie(r, h.sessionManager), in); err != nil {
		if handleMutationError(w, r, h.sessionManager, err) {
			return
		}
		recordActivity(r, h.activity, model.ActivityLevelError, model.ActivityCategoryUpdate,
			"Update creation failed", "", map[string]any{"title": form.Title, "error": err.Error()})
		h.renderForm(w, r, form, failureMessage(r, err, "updates.create_failed"), flashTypeError)
		return
	}

	h.invalidate(r)
	recordInfo(r, h.activity, model.ActivityCategoryUpdate, "Update created",
		map[string]any{"title": form.Title, "type": form.Type, "attachment": attachment != nil})
	flashSuccess(w, r, h.renderer, redirectAdminUpdates, i18n.T(lang, "updates.created"))
}

// Edit handles GET /admin/updates/{id}/edit. The API has no single-update
// endpoint, so the record is looked up in the list.
func (h *UpdatesHandler) Edit(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)
	id := chi.URLParam(r, "id")

	updates, err := h.api.Updates(r.Context(), apiCookie(r, h.sessionManager))
	switch classifyFetch(w, r, h.sessionManager, err, "updates") {
	case fetchHandled:
		return
	case fetchFailed:
		flashError(w, r, h.renderer, redirectAdminUpdates, i18n.T(lang, "updates.fetch_failed"))
		return
	}

	for _, u := range updates {
		if u.ID == id {
			h.renderForm(w, r, updateForm{
				ID:          u.ID,
				Title:       u.Title,
				Description: u.Description,
				Type:        u.Type,
				FileURL:     u.FileURL,
			}, "", "")
			return
		}
	}
	flashError(w, r, h.renderer, redirectAdminUpdates, i18n.T(lang, "updates.not_found"))
}

// Update handles POST /admin/updates/{id}.
func (h *UpdatesHandler) Update(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)
	id := chi.URLParam(r, "id")

	parseErr := parseMultipart(w, r, h.maxUpload)
	form, err := readUpdateForm(r, id)
	if parseErr != nil {
		h.renderForm(w, r, form, i18n.T(lang, validationMessageKey(parseErr)), flashTypeWarning)
		return
	}
	if err != nil {
		h.renderForm(w, r, form, i18n.T(lang, validationMessageKey(err)), flashTypeWarning)
		return
	}

	err = h.api.EditUpdate(r.Context(), apiCookie(r, h.sessionManager), id, form.input())
	if err != nil {
		if handleMutationError(w, r, h.sessionManager, err) {
			return
		}
		if errors.Is(err, apiclient.ErrNotFound) {
			flashError(w, r, h.renderer, redirectAdminUpdates, i18n.T(lang, "updates.not_found"))
			return
		}
		recordActivity(r, h.activity, model.ActivityLevelError, model.ActivityCategoryUpdate,
			"Update edit failed", "", map[string]any{"id": id, "error": err.Error()})
		h.renderForm(w, r, form, failureMessage(r, err, "updates.edit_failed"), flashTypeError)
		return
	}

	h.invalidate(r)
	recordInfo(r, h.activity, model.ActivityCategoryUpdate, "Update edited", map[string]any{"id": id, "title": form.Title})
	flashSuccess(w, r, h.renderer, redirectAdminUpdates, i18n.T(lang, "updates.edited"))
}

// Delete handles POST /admin/updates/{id}/delete.
func (h *UpdatesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)
	id := chi.URLParam(r, "id")

	err := h.api.DeleteUpdate(r.Context(), apiCookie(r, h.sessionManager), id)
	if err != nil {
		if handleMutationError(w, r, h.sessionManager, err) {
			return
		}
		recordActivity(r, h.activity, model.ActivityLevelError, model.ActivityCategoryUpdate,
			"Update deletion failed", "", map[string]any{"id": id, "error": err.Error()})
		flashError(w, r, h.renderer, redirectAdminUpdates, failureMessage(r, err, "updates.delete_failed"))
		return
	}

	h.invalidate(r)
	recordInfo(r, h.activity, model.ActivityCategoryUpdate, "Update deleted", map[string]any{"id": id})
	flashSuccess(w, r, h.renderer, redirectAdminUpdates, i18n.T(lang, "updates.deleted"))
}

func (h *UpdatesHandler) invalidate(r *http.Request) {
	if h.content != nil {
		h.content.InvalidateUpdates(r.Context())
	}
}
