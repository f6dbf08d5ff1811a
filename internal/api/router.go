package api

import (
	"sync"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/payperproject/portal/docs"
	"github.com/payperproject/portal/internal/api/handler"
	"github.com/payperproject/portal/internal/api/middleware"
	"github.com/payperproject/portal/internal/core/domain"
	"github.com/payperproject/portal/internal/core/ports"
	"github.com/payperproject/portal/internal/core/service"
)

// Deps holds everything the router wires into handlers.
type Deps struct {
	Auth    ports.AuthService
	Company ports.CompanyAuthService
	Tokens  middleware.TokenParser
	Portal  *service.IdentityResolver

	Storage      middleware.StorageFactory
	StorageTTL   time.Duration
	CookieSecure bool
	ConfirmWait  time.Duration

	Health map[string]handler.Pinger
	Log    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(httpMetrics())

	// --- Auth backend ---
	authHandler := handler.NewAuthHandler(d.Auth)
	companyHandler := handler.NewCompanyAuthHandler(d.Company)
	bearer := middleware.Auth(d.Tokens)

	apiGroup := e.Group("/api")
	apiGroup.POST("/auth/register", authHandler.Register)
	apiGroup.POST("/auth/login", authHandler.Login)
	apiGroup.GET("/auth/me", authHandler.Me, bearer)
	apiGroup.POST("/auth/logout", authHandler.Logout, bearer)
	apiGroup.POST("/company/auth/login", companyHandler.Login)

	// --- Browser-facing portal ---
	browser := middleware.BrowserSession(middleware.SessionConfig{
		Storage: d.Storage,
		Secure:  d.CookieSecure,
		MaxAge:  d.StorageTTL,
	})
	portalHandler := handler.NewPortalHandler(d.Portal, d.ConfirmWait)

	portal := e.Group("/portal", browser)
	portal.GET("/session", portalHandler.Session)
	portal.POST("/login", portalHandler.Login)
	portal.POST("/register", portalHandler.Register)
	portal.POST("/company/login", portalHandler.CompanyLogin)
	portal.POST("/logout", portalHandler.Logout)
	portal.PATCH("/user", portalHandler.UpdateUser)

	access := middleware.AccessConfig{Resolver: d.Portal, ConfirmWait: d.ConfirmWait, Log: d.Log}
	views := handler.NewViewsHandler(handler.Views)

	app := e.Group("/app", browser)
	for _, v := range handler.Views {
		app.GET("/"+v.Name, views.Render(v.Name), middleware.Access(access, v.Name, v.Requirement))
	}
	app.GET("/*", func(echo.Context) error { return domain.ErrViewNotFound })

	// --- Health probes and tooling (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Health)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// httpMetrics registers the HTTP collectors with the default registry once,
// so several routers can share a process.
var httpMetrics = sync.OnceValue(func() echo.MiddlewareFunc {
	return echoprometheus.NewMiddleware("portal_http")
})

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			evt.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
