// Command server runs the Daily Journal blog.
//
// @title        Daily Journal
// @version      1.0
// @description  Server-rendered blog: post catalog, accounts and static pages.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/daily-journal/blog/internal/api"
	"github.com/daily-journal/blog/internal/api/handler"
	"github.com/daily-journal/blog/internal/api/view"
	"github.com/daily-journal/blog/internal/core/service"
	mongodb "github.com/daily-journal/blog/internal/infrastructure/db/mongo"
	redisdb "github.com/daily-journal/blog/internal/infrastructure/db/redis"
	"github.com/daily-journal/blog/internal/pkg/config"
	"github.com/daily-journal/blog/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad(ctx)
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "blog",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URL,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()

	// The store may come up after the server; requests fail until it does.
	if err := mongodb.Ping(ctx, client, cfg.Mongo.Timeout); err != nil {
		log.Error().Err(err).Msg("database connection failed")
	} else {
		log.Info().Str("database", cfg.Mongo.Database).Msg("database connected successfully")
	}

	accountRepo := mongodb.NewAccountRepository(db)
	if err := accountRepo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("could not ensure users indexes")
	}

	healthChecks := map[string]handler.PingFunc{
		"mongodb": func(ctx context.Context) error { return mongodb.Ping(ctx, client, 0) },
	}

	var guard service.SignupGuard
	if cfg.Redis.Enabled() {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, signup lock disabled")
		} else {
			defer rdb.Close()
			guard = redisdb.NewSignupGuard(rdb)
			healthChecks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		}
	}

	renderer, err := view.New()
	if err != nil {
		return err
	}

	postService := service.NewPostService(mongodb.NewPostRepository(db), logger.Component("posts"))
	accountService := service.NewAccountService(accountRepo, guard, logger.Component("accounts"))

	e := api.NewRouter(api.Dependencies{
		PostService:    postService,
		AccountService: accountService,
		Renderer:       renderer,
		HealthChecks:   healthChecks,
		StaticDir:      cfg.StaticDir,
		Log:            logger.Component("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
