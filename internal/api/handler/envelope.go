package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/payperproject/portal/internal/core/domain"
)

// envelope is the success body of the auth API:
// {"status":"success","message":"...","data":{...}}
type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type sessionData struct {
	Token string       `json:"token,omitempty"`
	User  *domain.User `json:"user"`
}

func success(c echo.Context, code int, message string, data any) error {
	return c.JSON(code, envelope{Status: "success", Message: message, Data: data})
}
