package handler

import (
	"net/http"
	"net/url"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/byiringiroaimefils/estg-tss/internal/apiclient"
	"github.com/byiringiroaimefils/estg-tss/internal/i18n"
	"github.com/byiringiroaimefils/estg-tss/internal/middleware"
	"github.com/byiringiroaimefils/estg-tss/internal/model"
	"github.com/byiringiroaimefils/estg-tss/internal/render"
	"github.com/byiringiroaimefils/estg-tss/internal/service"
)

// CreatorsHandler handles the Admin-only Content Creators tab.
type CreatorsHandler struct {
	api            *apiclient.Client
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	activity       *service.ActivityService
}

// NewCreatorsHandler creates a new CreatorsHandler.
func NewCreatorsHandler(api *apiclient.Client, renderer *render.Renderer, sm *scs.SessionManager, activity *service.ActivityService) *CreatorsHandler {
	return &CreatorsHandler{
		api:            api,
		renderer:       renderer,
		sessionManager: sm,
		activity:       activity,
	}
}

// creatorForm is the data of the admin/creator_form template.
// The password is never echoed back.
type creatorForm struct {
	Username string
	Email    string
	Phone    string
}

// creatorDelete is the data of the admin/creator_delete confirmation page.
type creatorDelete struct {
	Creator model.Creator
	Prompt  string
}

func creatorID(c model.Creator) string { return c.ID }

// List handles GET /admin/creators. A creator named by ?removed= was just
// deleted and is dropped locally in case the API still lists it.
func (h *CreatorsHandler) List(w http.ResponseWriter, r *http.Request) {
	data := adminData(r, TabCreators, "creators.title", nil)

	creators, err := h.api.Creators(r.Context(), apiCookie(r, h.sessionManager))
	switch classifyFetch(w, r, h.sessionManager, err, "content creators") {
	case fetchHandled:
		return
	case fetchFailed:
		creators = nil
		data.Flash = i18n.T(middleware.GetLanguage(r), "creators.fetch_failed")
		data.FlashType = flashTypeError
	}

	removed := r.URL.Query().Get(paramRemoved)
	if removed != "" {
		creators = service.RemoveByID(creators, removed, creatorID)
	}

	page := newListPage(r, creators, service.CreatorText)
	page.Removed = removed
	data.Data = page
	renderPage(w, r, h.renderer, "admin/creators", data)
}

// New handles GET /admin/creators/new.
func (h *CreatorsHandler) New(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, creatorForm{}, "", "")
}

func (h *CreatorsHandler) renderForm(w http.ResponseWriter, r *http.Request, form creatorForm, flash, flashType string) {
	data := adminData(r, TabCreators, "creators.new_title", form)
	data.Flash = flash
	data.FlashType = flashType
	renderPage(w, r, h.renderer, "admin/creator_form", data)
}

// Create handles POST /admin/creators.
func (h *CreatorsHandler) Create(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)

	parseErr := r.ParseForm()
	form := creatorForm{
		Username: formValue(r, fieldUsername),
		Email:    formValue(r, fieldEmail),
		Phone:    formValue(r, fieldPhone),
	}
	if parseErr != nil {
		h.renderForm(w, r, form, i18n.T(lang, "form.invalid"), flashTypeWarning)
		return
	}
	password := r.FormValue(fieldPassword)

	if err := requireFields(form.Username, form.Email, password); err != nil {
		h.renderForm(w, r, form, i18n.T(lang, validationMessageKey(err)), flashTypeWarning)
		return
	}
	if err := validateEmail(form.Email); err != nil {
		h.renderForm(w, r, form, i18n.T(lang, validationMessageKey(err)), flashTypeWarning)
		return
	}

	err := h.api.CreateCreator(r.Context(), apiCookie(r, h.sessionManager), apiclient.CreatorInput{
		Username: form.Username,
		Email:    form.Email,
		Phone:    form.Phone,
		Password: password,
	})
	if err != nil {
		if handleMutationError(w, r, h.sessionManager, err) {
			return
		}
		recordActivity(r, h.activity, model.ActivityLevelError, model.ActivityCategoryCreator,
			"Content creator registration failed", "", map[string]any{"email": form.Email, "error": err.Error()})
		h.renderForm(w, r, form, failureMessage(r, err, "creators.create_failed"), flashTypeError)
		return
	}

	recordInfo(r, h.activity, model.ActivityCategoryCreator, "Content creator registered",
		map[string]any{"username": form.Username, "email": form.Email})
	flashSuccess(w, r, h.renderer, redirectAdminCreators, i18n.T(lang, "creators.created"))
}

// ConfirmDelete handles GET /admin/creators/{id}/delete and shows the
// Cancel/Delete prompt.
func (h *CreatorsHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)
	id := chi.URLParam(r, "id")

	creators, err := h.api.Creators(r.Context(), apiCookie(r, h.sessionManager))
	switch classifyFetch(w, r, h.sessionManager, err, "content creators") {
	case fetchHandled:
		return
	case fetchFailed:
		flashError(w, r, h.renderer, redirectAdminCreators, i18n.T(lang, "creators.fetch_failed"))
		return
	}

	for _, c := range creators {
		if c.ID == id {
			renderPage(w, r, h.renderer, "admin/creator_delete", adminData(r, TabCreators, "creators.confirm_title", creatorDelete{
				Creator: c,
				Prompt:  i18n.T(lang, "creators.confirm", c.Username),
			}))
			return
		}
	}
	flashError(w, r, h.renderer, redirectAdminCreators, i18n.T(lang, "creators.not_found"))
}

// Delete handles POST /admin/creators/{id}/delete.
func (h *CreatorsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)
	id := chi.URLParam(r, "id")

	msg, err := h.api.DeleteCreator(r.Context(), apiCookie(r, h.sessionManager), id)
	if err != nil {
		if handleMutationError(w, r, h.sessionManager, err) {
			return
		}
		recordActivity(r, h.activity, model.ActivityLevelError, model.ActivityCategoryCreator,
			"Content creator deletion failed", "", map[string]any{"id": id, "error": err.Error()})
		flashError(w, r, h.renderer, redirectAdminCreators, failureMessage(r, err, "creators.delete_failed"))
		return
	}

	if msg == "" {
		msg = i18n.T(lang, "creators.deleted")
	}
	recordInfo(r, h.activity, model.ActivityCategoryCreator, "Content creator deleted", map[string]any{"id": id})
	target := redirectAdminCreators + "?" + url.Values{paramRemoved: {id}}.Encode()
	flashSuccess(w, r, h.renderer, target, msg)
}
