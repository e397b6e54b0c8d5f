package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"accessgate/docs"
	"accessgate/internal/auth"
	"accessgate/internal/config"
	"accessgate/internal/db"
	"accessgate/internal/handler"
	"accessgate/internal/logger"
	"accessgate/internal/router"
	"accessgate/internal/seed"
	"accessgate/internal/service"
)

// @title Access Gate API
// @version 1.0
// @description User registration, token login and permission-guarded resource endpoints.
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.IsDevelopment(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	// run returns only after its deferred cleanup has completed.
	err = run(cfg, zl)
	if err != nil {
		zl.Error("server stopped", zap.Error(err))
	}
	_ = zl.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.UsingDevSecret {
		zl.Warn("JWT_SECRET is not set; signing tokens with the development secret")
	}

	store, err := db.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	// The memory store has no persistence, so it is seeded on every start.
	if cfg.StoreDriver == config.StoreMemory {
		defs, err := seed.LoadRoles(cfg.RolesFile)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			zl.Warn("roles file not found; memory store has no roles", zap.String("path", cfg.RolesFile))
		case err != nil:
			return err
		default:
			if err := seed.Apply(ctx, store.Roles, defs); err != nil {
				return err
			}
			zl.Info("roles seeded", zap.Int("count", len(defs)))
		}
	}

	hasher, err := auth.NewPasswordHasher(cfg.BcryptCost)
	if err != nil {
		return err
	}
	jwtService, err := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return err
	}

	authService := service.NewAuthService(store.Users, store.Roles, hasher, jwtService, zl)
	accessService := service.NewAccessService(store.Users, store.Roles, zl)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	router.Register(
		e,
		zl,
		jwtService,
		accessService,
		handler.NewAuthHandler(authService, zl),
		handler.NewResourceHandler(),
		handler.NewHealthHandler(store, zl),
	)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	addr := ":" + cfg.ServerPort
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zl.Info("listening",
			zap.String("addr", addr),
			zap.String("store", cfg.StoreDriver),
			zap.Duration("token_ttl", cfg.TokenTTL),
		)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		zl.Info("shutting down")
		return e.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
