// @title       Pay Per Project portal API
// @version     1.0
// @description Dual-identity session resolution and access gating for the Pay Per Project portal.
// @BasePath    /
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/payperproject/portal/internal/api"
	"github.com/payperproject/portal/internal/api/handler"
	"github.com/payperproject/portal/internal/core/domain"
	"github.com/payperproject/portal/internal/core/ports"
	"github.com/payperproject/portal/internal/core/service"
	"github.com/payperproject/portal/internal/infrastructure/authapi"
	"github.com/payperproject/portal/internal/infrastructure/config"
	"github.com/payperproject/portal/internal/infrastructure/db/mongo"
	"github.com/payperproject/portal/internal/infrastructure/db/redis"
	"github.com/payperproject/portal/internal/infrastructure/queue"
	"github.com/payperproject/portal/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad(ctx)
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.IsDevelopment(), Service: "portal"})

	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database, AppName: "portal"})
	if err != nil {
		log.Fatal().Err(err).Msg("connect mongo")
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()

	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("connect redis")
	}
	defer func() {
		_ = rdb.Close()
	}()

	users := mongo.NewUserRepository(db)
	companyUsers := mongo.NewCompanyUserRepository(db)
	for _, repo := range []*mongo.UserRepository{users, companyUsers} {
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Fatal().Err(err).Msg("ensure mongo indexes")
		}
	}

	tokens := service.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := service.NewAuthService(users, tokens, redis.NewTokenDenylist(rdb), logger.Component("auth"))
	companyService := service.NewCompanyAuthService(companyUsers, tokens, logger.Component("company_auth"))

	if err := seedAdmin(ctx, authService, cfg.Seed, log); err != nil {
		log.Fatal().Err(err).Msg("seed admin")
	}

	dispatcher := queue.NewDispatcher(cfg.Portal.RevalidateWorkers, logger.Component("revalidation"))
	dispatcher.Start(ctx)

	resolver := service.NewIdentityResolver(
		authAPI(cfg, authService, companyService, log),
		dispatcher,
		service.ResolverOptions{Revalidate: cfg.Portal.Revalidate, Timeout: cfg.Portal.RevalidateTimeout},
		logger.Component("identity"),
	)

	e := api.NewRouter(api.Deps{
		Auth:    authService,
		Company: companyService,
		Tokens:  tokens,
		Portal:  resolver,
		Storage: func(sid string) ports.ClientStorage {
			return redis.NewClientStorage(rdb, sid, cfg.Portal.StorageTTL)
		},
		StorageTTL:   cfg.Portal.StorageTTL,
		CookieSecure: cfg.Portal.CookieSecure,
		ConfirmWait:  cfg.Portal.ConfirmWait,
		Health: map[string]handler.Pinger{
			"mongodb": handler.MongoPinger(db),
			"redis":   handler.RedisPinger(rdb),
		},
		Log: log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("portal listening")
		errCh <- e.Start(":" + cfg.Port)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown portal")
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("portal server failed")
		}
	}
}

// authAPI picks the backend the portal authenticates against: a remote one
// when AUTH_API_URL is set, otherwise the services of this process.
func authAPI(cfg *config.Config, auth ports.AuthService, company ports.CompanyAuthService, log zerolog.Logger) ports.AuthAPI {
	if cfg.Auth.APIURL != "" {
		log.Info().Str("url", cfg.Auth.APIURL).Msg("using remote auth backend")
		return authapi.NewClient(cfg.Auth.APIURL, nil)
	}
	return authapi.NewLocal(auth, company)
}

func seedAdmin(ctx context.Context, auth *service.AuthService, seed config.SeedConfig, log zerolog.Logger) error {
	if seed.AdminEmail == "" || seed.AdminPassword == "" {
		return nil
	}
	user, err := auth.EnsureUser(ctx, ports.RegisterInput{
		Email:     seed.AdminEmail,
		Password:  seed.AdminPassword,
		FirstName: "Admin",
		LastName:  "User",
		UserType:  domain.UserTypeAdmin,
	})
	if err != nil {
		return err
	}
	log.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("admin account ready")
	return nil
}

