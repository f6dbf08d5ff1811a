package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/payperproject/portal/internal/core/ports"
	"github.com/payperproject/portal/internal/core/service"
	"github.com/payperproject/portal/internal/infrastructure/session"
)

// CookieName is the cookie carrying the browser session id.
const CookieName = "ppp_sid"

// StorageFactory returns the client storage bucket for one browser session.
type StorageFactory func(sid string) ports.ClientStorage

type SessionConfig struct {
	Storage StorageFactory
	Secure  bool
	MaxAge  time.Duration
}

// BrowserSession identifies the browser by its session cookie, issuing a new
// one when missing or malformed, and injects a service.Browser into context.
func BrowserSession(cfg SessionConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid := ""
			if ck, err := c.Cookie(CookieName); err == nil && validSessionID(ck.Value) {
				sid = ck.Value
			}
			if sid == "" {
				sid = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     CookieName,
					Value:    sid,
					Path:     "/",
					MaxAge:   int(cfg.MaxAge.Seconds()),
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			c.Set("browser", service.Browser{
				ID:    sid,
				Store: session.NewStore(cfg.Storage(sid)),
			})
			return next(c)
		}
	}
}

func validSessionID(v string) bool {
	_, err := uuid.Parse(v)
	return err == nil
}
