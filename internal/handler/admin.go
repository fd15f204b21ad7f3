// Package handler implements the HTTP handlers: the public pages, the two
// login flows and the admin panel that manages events, updates, content
// creators and the signed-in profile through the school API.
package handler

import (
	"net/http"

	"github.com/byiringiroaimefils/estg-tss/internal/i18n"
	"github.com/byiringiroaimefils/estg-tss/internal/middleware"
	"github.com/byiringiroaimefils/estg-tss/internal/model"
	"github.com/byiringiroaimefils/estg-tss/internal/render"
)

// Admin tab keys.
const (
	TabUpdates  = "updates"
	TabEvents   = "events"
	TabCreators = "creators"
	TabProfile  = "profile"
	TabActivity = "activity"
)

// adminTab describes one tab of the admin shell.
type adminTab struct {
	key       string
	labelKey  string
	url       string
	adminOnly bool
}

// adminTabOrder is the tab bar order. The first visible tab is the landing page.
var adminTabOrder = []adminTab{
	{TabUpdates, "tab.updates", redirectAdminUpdates, false},
	{TabEvents, "tab.events", redirectAdminEvents, false},
	{TabCreators, "tab.creators", redirectAdminCreators, true},
	{TabProfile, "tab.profile", redirectAdminProfile, false},
	{TabActivity, "tab.activity", redirectAdminActivity, true},
}

// adminTabs returns the tabs role may see, labelled in lang.
func adminTabs(role, lang string) []render.Tab {
	tabs := make([]render.Tab, 0, len(adminTabOrder))
	for _, t := range adminTabOrder {
		if t.adminOnly && role != model.RoleAdmin {
			continue
		}
		tabs = append(tabs, render.Tab{Key: t.key, Label: i18n.T(lang, t.labelKey), URL: t.url})
	}
	return tabs
}

// adminData builds the template data shared by every admin page.
func adminData(r *http.Request, activeTab, titleKey string, data any) render.TemplateData {
	lang := middleware.GetLanguage(r)
	role := ""
	if p := middleware.GetProfile(r); p != nil {
		role = p.Role
	}
	return render.TemplateData{
		Title:     i18n.T(lang, titleKey),
		Data:      data,
		Tabs:      adminTabs(role, lang),
		ActiveTab: activeTab,
	}
}

// AdminHandler serves the admin shell itself.
type AdminHandler struct{}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler() *AdminHandler {
	return &AdminHandler{}
}

// Dashboard sends the user to the first tab their role can see.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	role := ""
	if p := middleware.GetProfile(r); p != nil {
		role = p.Role
	}
	tabs := adminTabs(role, middleware.GetLanguage(r))
	http.Redirect(w, r, tabs[0].URL, http.StatusSeeOther)
}
