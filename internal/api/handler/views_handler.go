package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/payperproject/portal/internal/core/domain"
)

// View is a protected portal page and its access requirement.
type View struct {
	Name        string
	Title       string
	Requirement domain.Requirement
}

// Views lists the protected pages served under /app.
var Views = []View{
	{Name: "dashboard", Title: "Dashboard"},
	{Name: "profile", Title: "Profile"},
	{Name: "admin", Title: "Admin", Requirement: domain.Requirement{RequireAdmin: true}},
	{Name: "admin/users", Title: "User management", Requirement: domain.Requirement{RequireAdmin: true}},
	{Name: "project-manager", Title: "Project Manager", Requirement: domain.Requirement{RequireProjectManager: true}},
	{Name: "recruitment", Title: "Recruitment", Requirement: domain.Requirement{RequireProjectManager: true}},
}

type ViewsHandler struct {
	views map[string]View
}

func NewViewsHandler(views []View) *ViewsHandler {
	m := make(map[string]View, len(views))
	for _, v := range views {
		m[v.Name] = v
	}
	return &ViewsHandler{views: m}
}

type viewResponse struct {
	View  string       `json:"view"`
	Title string       `json:"title"`
	User  *domain.User `json:"user,omitempty"`
}

// Render returns the payload of a view that passed the access gate.
func (h *ViewsHandler) Render(name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		v, ok := h.views[name]
		if !ok {
			return domain.ErrViewNotFound
		}
		state, _ := c.Get("auth_view").(domain.AuthView)
		return c.JSON(http.StatusOK, viewResponse{View: v.Name, Title: v.Title, User: state.User})
	}
}
