package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/payperproject/portal/internal/core/domain"
	"github.com/payperproject/portal/internal/core/ports"
	"github.com/payperproject/portal/internal/core/service"
)

// PortalService is the browser-facing identity API.
type PortalService interface {
	ResolveAuthState(ctx context.Context, b service.Browser) (*service.Resolution, error)
	Login(ctx context.Context, b service.Browser, email, password string) (*domain.User, error)
	Register(ctx context.Context, b service.Browser, in ports.RegisterInput) (*domain.User, error)
	CompanyLogin(ctx context.Context, b service.Browser, email, password string) (*domain.User, error)
	Logout(ctx context.Context, b service.Browser) error
	UpdateUser(ctx context.Context, b service.Browser, user *domain.User) error
}

type PortalHandler struct {
	portal      PortalService
	confirmWait time.Duration
}

func NewPortalHandler(portal PortalService, confirmWait time.Duration) *PortalHandler {
	return &PortalHandler{portal: portal, confirmWait: confirmWait}
}

type sessionResponse struct {
	domain.AuthView
	Identity string `json:"identity"`
}

func newSessionResponse(v domain.AuthView) sessionResponse {
	return sessionResponse{AuthView: v, Identity: v.Identity.String()}
}

type updateUserRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

// Session returns the browser's authorization view. With confirm=true it
// waits for revalidation of the primary track.
//
// @Summary      Current portal session
// @Tags         portal
// @Produce      json
// @Param        confirm  query     bool  false  "Wait for revalidation"
// @Success      200      {object}  sessionResponse
// @Failure      504      {object}  map[string]string
// @Router       /portal/session [get]
func (h *PortalHandler) Session(c echo.Context) error {
	b, err := ctxBrowser(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	res, err := h.portal.ResolveAuthState(ctx, b)
	if err != nil {
		return err
	}
	if c.QueryParam("confirm") != "true" {
		return c.JSON(http.StatusOK, newSessionResponse(res.Optimistic))
	}

	waitCtx, cancel := context.WithTimeout(ctx, h.confirmWait)
	defer cancel()
	view, err := res.Confirmed(waitCtx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return echo.NewHTTPError(http.StatusGatewayTimeout, "session revalidation timed out")
	}
	return c.JSON(http.StatusOK, newSessionResponse(view))
}

// Login signs the browser in on the primary track.
//
// @Summary      Portal login
// @Tags         portal
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  domain.User
// @Failure      401   {object}  map[string]string
// @Router       /portal/login [post]
func (h *PortalHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	b, err := ctxBrowser(c)
	if err != nil {
		return err
	}

	user, err := h.portal.Login(c.Request().Context(), b, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Register creates a primary account and signs the browser in.
//
// @Summary      Portal registration
// @Tags         portal
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  domain.User
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /portal/register [post]
func (h *PortalHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	b, err := ctxBrowser(c)
	if err != nil {
		return err
	}

	user, err := h.portal.Register(c.Request().Context(), b, req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// CompanyLogin signs the browser in on the company track.
//
// @Summary      Portal company login
// @Tags         portal
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Company login credentials"
// @Success      200   {object}  domain.User
// @Failure      401   {object}  map[string]string
// @Router       /portal/company/login [post]
func (h *PortalHandler) CompanyLogin(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	b, err := ctxBrowser(c)
	if err != nil {
		return err
	}

	user, err := h.portal.CompanyLogin(c.Request().Context(), b, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Logout clears both identity tracks.
//
// @Summary      Portal logout
// @Tags         portal
// @Success      204
// @Router       /portal/logout [post]
func (h *PortalHandler) Logout(c echo.Context) error {
	b, err := ctxBrowser(c)
	if err != nil {
		return err
	}
	if err := h.portal.Logout(c.Request().Context(), b); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdateUser edits the profile fields of the stored primary user.
//
// @Summary      Update stored profile
// @Tags         portal
// @Accept       json
// @Produce      json
// @Param        body  body      updateUserRequest  true  "Profile fields"
// @Success      200   {object}  domain.User
// @Failure      401   {object}  map[string]string
// @Router       /portal/user [patch]
func (h *PortalHandler) UpdateUser(c echo.Context) error {
	var req updateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	b, err := ctxBrowser(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	primary, err := b.Store.PrimarySession(ctx)
	if err != nil {
		return err
	}
	if primary == nil {
		return domain.ErrUnauthorized
	}

	user := *primary.User
	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if err := h.portal.UpdateUser(ctx, b, &user); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, &user)
}
