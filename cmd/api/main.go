package main

import (
	"context"
	"os/signal"
	"syscall"

	"texd/internal/adapter/repo"
	"texd/internal/cache"
	"texd/internal/coalesce"
	"texd/internal/domain"
	"texd/internal/http/handlers"
	httpapi "texd/internal/http/httpapi"
	"texd/internal/infra"
	"texd/internal/katex"
	"texd/internal/storage"
)

func main() {
	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	var journal domain.RenderJournal
	if cfg.DatabaseURL != "" {
		pool, err := infra.NewDBPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer pool.Close()
		j := repo.NewRenderJournal(pool)
		if err := j.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to ensure journal schema")
		}
		journal = j
	} else {
		logger.Warn().Msg("DATABASE_URL not set, render journal disabled")
	}

	var store *storage.FileStore
	if cfg.BitmapDir != "" {
		store, err = storage.NewFileStore(cfg.BitmapDir)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure bitmap store")
		}
	}

	engine, err := katex.NewHTTPEngine(katex.EngineOptions{
		BaseURL:        cfg.EngineBaseURL,
		RequestTimeout: cfg.EngineTimeout,
		Logger:         &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure render engine")
	}

	bitmaps, err := cache.New(cfg.BitmapCacheSize)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure bitmap cache")
	}

	gateway, err := katex.NewGateway(katex.GatewayOptions{
		Engine:        engine,
		Coalescer:     coalesce.New(&logger),
		Cache:         bitmaps,
		Journal:       journal,
		Logger:        &logger,
		RenderTimeout: cfg.EngineTimeout,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure render gateway")
	}

	app := handlers.NewApp(gateway, store, journal, logger)
	router := httpapi.NewRouter(app, cfg, logger)
	server := infra.NewHTTPServer(cfg, router)

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info().Str("engine", cfg.EngineBaseURL).Msgf("API listening on %s", server.Addr())
	if err := server.Run(runCtx); err != nil {
		logger.Fatal().Err(err).Msg("http server failed")
	}
	logger.Info().Msg("server stopped")
}
