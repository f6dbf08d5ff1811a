package middleware

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/payperproject/portal/internal/core/domain"
	"github.com/payperproject/portal/internal/core/service"
	"github.com/payperproject/portal/internal/metrics"
)

// LoginPath is where unauthenticated callers are redirected.
const LoginPath = "/login"

// AuthStateResolver resolves the identity view of a browser.
type AuthStateResolver interface {
	ResolveAuthState(ctx context.Context, b service.Browser) (*service.Resolution, error)
}

type AccessConfig struct {
	Resolver AuthStateResolver
	// ConfirmWait bounds how long a request waits for revalidation before the
	// optimistic view is used. Zero always uses the optimistic view.
	ConfirmWait time.Duration
	Log         zerolog.Logger
}

type deniedResponse struct {
	Error   string `json:"error"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// Access guards a protected view. It must run after BrowserSession.
func Access(cfg AccessConfig, view string, req domain.Requirement) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			b, ok := c.Get("browser").(service.Browser)
			if !ok {
				return echo.NewHTTPError(http.StatusInternalServerError, "browser session missing")
			}

			ctx := c.Request().Context()
			res, err := cfg.Resolver.ResolveAuthState(ctx, b)
			if err != nil {
				return err
			}

			state := res.Optimistic
			if cfg.ConfirmWait > 0 {
				waitCtx, cancel := context.WithTimeout(ctx, cfg.ConfirmWait)
				confirmed, err := res.Confirmed(waitCtx)
				cancel()
				switch {
				case err == nil:
					state = confirmed
				case ctx.Err() != nil:
					return ctx.Err()
				default:
					cfg.Log.Warn().Str("browser", b.ID).Str("view", view).Msg("revalidation still pending, using optimistic view")
				}
			}

			out := service.Evaluate(req, state, c.Request().URL.RequestURI())
			metrics.GateOutcomesTotal.WithLabelValues(view, string(out.Kind)).Inc()

			switch out.Kind {
			case domain.ShowLoadingPlaceholder:
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusAccepted, map[string]string{"status": "loading"})
			case domain.RedirectToLogin:
				return c.Redirect(http.StatusFound, LoginPath+"?from="+url.QueryEscape(out.ReturnTo))
			case domain.ShowAccessDenied:
				return c.JSON(http.StatusForbidden, deniedResponse{
					Error:   "access denied",
					Reason:  string(out.Reason),
					Message: out.Message(),
				})
			}

			c.Set("auth_view", state)
			return next(c)
		}
	}
}
