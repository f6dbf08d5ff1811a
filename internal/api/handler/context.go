package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/payperproject/portal/internal/core/service"
)

// ctxBrowser returns the browser session injected by the BrowserSession
// middleware. Its absence means the route was wired without it.
func ctxBrowser(c echo.Context) (service.Browser, error) {
	b, ok := c.Get("browser").(service.Browser)
	if !ok || b.Store == nil {
		return service.Browser{}, echo.NewHTTPError(http.StatusInternalServerError, "browser session missing")
	}
	return b, nil
}

// ctxToken returns the bearer token accepted by the Auth middleware.
func ctxToken(c echo.Context) (string, error) {
	token, _ := c.Get("token").(string)
	if token == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return token, nil
}

// bindAndValidate decodes the request body into req and runs its validation tags.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
