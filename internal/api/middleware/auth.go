package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/payperproject/portal/internal/core/service"
)

// TokenParser validates a bearer token and returns its claims.
type TokenParser interface {
	Parse(raw string) (*service.TokenClaims, error)
}

// Auth validates the JWT and injects the raw token and its claims into context.
func Auth(tokens TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := tokens.Parse(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set("token", parts[1])
			c.Set("user_id", claims.Subject)
			c.Set("track", string(claims.Track))
			c.Set("user_type", string(claims.UserType))

			return next(c)
		}
	}
}
