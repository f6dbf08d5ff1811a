package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/payperproject/portal/internal/core/ports"
)

type CompanyAuthHandler struct {
	companyService ports.CompanyAuthService
}

func NewCompanyAuthHandler(companyService ports.CompanyAuthService) *CompanyAuthHandler {
	return &CompanyAuthHandler{companyService: companyService}
}

// Login authenticates a company account.
//
// @Summary      Company login
// @Tags         company
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Company login credentials"
// @Success      200   {object}  envelope
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/company/auth/login [post]
func (h *CompanyAuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, user, err := h.companyService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return success(c, http.StatusOK, "Login successful", sessionData{Token: token, User: user})
}
