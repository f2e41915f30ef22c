package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aspataal/internal/config"
	"aspataal/internal/domain/entity"
	httpx "aspataal/internal/http"
	"aspataal/internal/services/components"
	"aspataal/internal/services/data"
	"aspataal/internal/services/records"
	"aspataal/internal/store/memory"
	"aspataal/internal/store/postgres"
	"aspataal/internal/store/redisstore"
	"aspataal/internal/store/repositories"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func setupLogging(app config.AppCfg) {
	zerolog.TimeFieldFormat = time.RFC3339
	if lvl, err := zerolog.ParseLevel(app.LogLevel); err == nil && lvl != zerolog.NoLevel {
		zerolog.SetGlobalLevel(lvl)
	}
	if app.Env == "dev" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func main() {
	cfg := config.Load()
	setupLogging(cfg.App)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg, err := entity.Default()
	if err != nil {
		log.Fatal().Err(err).Msg("entity registry invalid")
	}

	// Init store
	var store repositories.RecordStore
	var dashboards repositories.DashboardStore
	switch cfg.DB.Driver {
	case config.DriverMemory:
		log.Warn().Msg("using in-memory store; data is lost on exit")
		store = memory.New()
	default:
		pool := postgres.MustOpen(ctx, cfg.DB)
		defer pool.Close()
		repo := postgres.NewRepo(pool)
		store, dashboards = repo, repo
	}

	// Optional dashboard cache
	var cache repositories.Cache
	if cfg.Redis.Addr != "" {
		rc, err := redisstore.Open(ctx, cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable; dashboard cache disabled")
		} else {
			defer rc.Close()
			cache = rc
		}
	}

	comps := components.NewService(reg, store, dashboards, cache, cfg.Dashboard.CacheTTL)

	// Keep dashboards warm
	worker := components.NewWorker(comps, cfg.Dashboard.RefreshEvery)
	go worker.Run(ctx)

	// Router
	r := httpx.NewRouter(httpx.RouterDependencies{
		Config:   cfg,
		Registry: reg,
		DataService: data.NewService(store, data.Options{
			DefaultLimit: cfg.List.DefaultLimit,
			MaxLimit:     cfg.List.MaxLimit,
			DefaultDesc:  cfg.List.OrderType == "desc",
		}),
		RecordService:    records.NewService(store),
		ComponentService: comps,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Msgf("%s API listening on :%s", cfg.App.Name, cfg.App.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	cancel()
	ctx2, cancel2 := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	log.Info().Msg("server stopped")
}
