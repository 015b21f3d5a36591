package app

import (
	"context"
	"fmt"
	"time"

	"github.com/yyzahran/Recipe-App/internal/pkg/config"
	"github.com/yyzahran/Recipe-App/internal/recipes/api/server"
	"github.com/yyzahran/Recipe-App/internal/recipes/repository/mediastore/disk"
	"github.com/yyzahran/Recipe-App/internal/recipes/repository/recipecache/redis"
	rr "github.com/yyzahran/Recipe-App/internal/recipes/repository/reciperepo/postgres"
	ur "github.com/yyzahran/Recipe-App/internal/recipes/repository/userrepo/postgres"
	"github.com/yyzahran/Recipe-App/internal/recipes/services/authservice"
	"github.com/yyzahran/Recipe-App/internal/recipes/services/recipeservice"
	"github.com/yyzahran/Recipe-App/pkg/logger"
)

type Server interface {
	Start(context.Context) error
	Shutdown(context.Context) error
}

type RecipesApp struct {
	s   Server
	lg  logger.Logger
	cfg config.Config
}

// New wires the application together. The postgres repos block until the
// database is reachable and migrations are applied, so by the time the
// server starts listening the schema is consistent.
func New(ctx context.Context, cfg config.Config) (RecipesApp, error) {
	lg, err := logger.New(cfg.Logger)
	if err != nil {
		return RecipesApp{}, fmt.Errorf("can't get logger error: %w", err)
	}

	recipeRepo, err := rr.New(ctx, cfg.PostgresDB)
	if err != nil {
		return RecipesApp{}, fmt.Errorf("postgres recipe repo initializing error: %w", err)
	}

	rc, err := redis.New(ctx, cfg.RedisCache)
	if err != nil {
		return RecipesApp{}, fmt.Errorf("redis recipe cache initializing error: %w", err)
	}

	media, err := disk.New(cfg.Media)
	if err != nil {
		return RecipesApp{}, fmt.Errorf("media store initializing error: %w", err)
	}

	recipeService := recipeservice.New(recipeRepo, rc, media, lg)

	userRepo, err := ur.New(ctx, cfg.PostgresDB)
	if err != nil {
		return RecipesApp{}, fmt.Errorf("postgres user repo initializing error: %w", err)
	}

	authService := authservice.New(userRepo, cfg.Auth)

	s := server.New(cfg.Server, cfg.Media, recipeService, authService, media, lg)

	return RecipesApp{
		s:   s,
		lg:  lg,
		cfg: cfg,
	}, nil
}

func (ra *RecipesApp) Run(ctx context.Context) {
	ra.lg.Infof("STARTED SERVER ON %s", ra.cfg.Server.Addr)

	go func() {
		if err := ra.s.Start(ctx); err != nil {
			ra.lg.Errorf("server start error: %s", err.Error())
			ctx.Done()

			return
		}
	}()

	<-ctx.Done()

	ctxS, cancel := context.WithTimeout(context.Background(), time.Second*5) //nolint:gomnd
	defer cancel()

	if err := ra.Stop(ctxS); err != nil { //nolint:contextcheck
		ra.lg.Errorf("server shutdown error: %s", err.Error())
	}
}

func (ra *RecipesApp) Stop(ctx context.Context) error {
	if err := ra.s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	ra.lg.Info("Shutdowned successfully")

	return nil
}
