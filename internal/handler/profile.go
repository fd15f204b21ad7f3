package handler

import (
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/byiringiroaimefils/estg-tss/internal/apiclient"
	"github.com/byiringiroaimefils/estg-tss/internal/i18n"
	"github.com/byiringiroaimefils/estg-tss/internal/middleware"
	"github.com/byiringiroaimefils/estg-tss/internal/model"
	"github.com/byiringiroaimefils/estg-tss/internal/render"
	"github.com/byiringiroaimefils/estg-tss/internal/service"
	"github.com/byiringiroaimefils/estg-tss/internal/session"
)

// Editable profile fields.
const (
	profileFieldEmail    = "email"
	profileFieldUsername = "username"
	profileFieldPassword = "password"
)

// ProfileHandler handles the Profile tab.
type ProfileHandler struct {
	api            *apiclient.Client
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	activity       *service.ActivityService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(api *apiclient.Client, renderer *render.Renderer, sm *scs.SessionManager, activity *service.ActivityService) *ProfileHandler {
	return &ProfileHandler{
		api:            api,
		renderer:       renderer,
		sessionManager: sm,
		activity:       activity,
	}
}

// profilePage is the data of the admin/profile template.
type profilePage struct {
	ShowBackup bool
	// Field is the form that failed, kept so its values can be shown again.
	Field    string
	Email    string
	Username string
}

// Show handles GET /admin/profile. ?backup=1 reveals the backup code.
func (h *ProfileHandler) Show(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, profilePage{ShowBackup: r.URL.Query().Get(paramBackup) == "1"}, "", "")
}

func (h *ProfileHandler) render(w http.ResponseWriter, r *http.Request, page profilePage, flash, flashType string) {
	data := adminData(r, TabProfile, "profile.title", page)
	data.Flash = flash
	data.FlashType = flashType
	renderPage(w, r, h.renderer, "admin/profile", data)
}

// Update handles POST /admin/profile/{field}. Every successful change ends
// the session so the user signs in again with the new details.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)
	field := chi.URLParam(r, "field")

	if err := r.ParseForm(); err != nil {
		h.render(w, r, profilePage{}, i18n.T(lang, "form.invalid"), flashTypeWarning)
		return
	}

	page := profilePage{Field: field}
	var change apiclient.ProfileChange
	var successKey string

	switch field {
	case profileFieldEmail:
		page.Email = formValue(r, fieldEmail)
		if err := requireFields(page.Email); err != nil {
			h.render(w, r, page, i18n.T(lang, validationMessageKey(err)), flashTypeWarning)
			return
		}
		if err := validateEmail(page.Email); err != nil {
			h.render(w, r, page, i18n.T(lang, validationMessageKey(err)), flashTypeWarning)
			return
		}
		change.Email = page.Email
		successKey = "profile.email_updated"

	case profileFieldUsername:
		page.Username = formValue(r, fieldUsername)
		if err := requireFields(page.Username); err != nil {
			h.render(w, r, page, i18n.T(lang, validationMessageKey(err)), flashTypeWarning)
			return
		}
		change.Username = page.Username
		successKey = "profile.username_updated"

	case profileFieldPassword:
		password := r.FormValue(fieldPassword)
		confirm := r.FormValue(fieldConfirmPassword)
		if err := requireFields(password, confirm); err != nil {
			h.render(w, r, page, i18n.T(lang, validationMessageKey(err)), flashTypeWarning)
			return
		}
		if password != confirm {
			h.render(w, r, page, i18n.T(lang, "profile.password_mismatch"), flashTypeError)
			return
		}
		change.Password = password
		successKey = "profile.password_updated"

	default:
		http.NotFound(w, r)
		return
	}

	ctx := r.Context()
	cookie := apiCookie(r, h.sessionManager)
	if err := h.api.UpdateProfile(ctx, cookie, change); err != nil {
		if handleMutationError(w, r, h.sessionManager, err) {
			return
		}
		recordActivity(r, h.activity, model.ActivityLevelError, model.ActivityCategoryProfile,
			"Profile update failed", "", map[string]any{"field": field, "error": err.Error()})
		h.render(w, r, page, failureMessage(r, err, "profile.update_failed"), flashTypeError)
		return
	}

	recordInfo(r, h.activity, model.ActivityCategoryProfile, "Profile updated", map[string]any{"field": field})

	if err := h.api.Logout(ctx, cookie); err != nil && !isCanceled(err) {
		slog.Warn("upstream logout after profile change failed", "error", err)
	}
	if err := session.End(ctx, h.sessionManager); err != nil {
		slog.Error("failed to end session", "error", err)
	}
	flashSuccess(w, r, h.renderer, RouteRoot, i18n.T(lang, successKey))
}
