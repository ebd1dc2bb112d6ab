package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wukjhc-create/elta-crm-sub009/internal/config"
	"github.com/wukjhc-create/elta-crm-sub009/internal/infra"
	"github.com/wukjhc-create/elta-crm-sub009/internal/repository"
	"github.com/wukjhc-create/elta-crm-sub009/internal/router"
	"github.com/wukjhc-create/elta-crm-sub009/internal/service"
	"github.com/wukjhc-create/elta-crm-sub009/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger — dev: pretty, prod: JSON
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// One breaker registry for the whole process: the guarded client trips
	// breakers, the health board and the stale sweep read the same states.
	breakers := infra.NewBreakerRegistry(infra.CircuitBreakerConfig{})
	client := infra.NewGuardedSupplierClient(
		infra.NewHTTPSupplierClient(cfg.SupplierAPIBaseURL, cfg.SupplierAPIToken),
		breakers,
	)

	// Background refresh pipeline: worker pool draining the refresh queue
	// plus the periodic stale sweep feeding it.
	dispatcher := worker.NewDispatcher(rdb)
	productRepo := repository.NewSupplierProductRepository(db)
	cacheRepo := repository.NewPriceCacheRepository(db)
	syncLogRepo := repository.NewSyncLogRepository(db)
	cacheSvc := service.NewPriceCacheService(cacheRepo, productRepo, cfg.CacheMaxAge())

	workerHandlers := &worker.Handlers{
		Refresh: worker.NewRefreshWorker(client, productRepo, cacheSvc, syncLogRepo, dispatcher),
	}
	worker.StartWorkerPool(ctx, rdb, workerHandlers, cfg.WorkerPoolSize)
	worker.StartStaleSweep(ctx, worker.StaleSweepConfig{
		CacheRepo:  cacheRepo,
		Dispatcher: dispatcher,
		Breakers:   breakers,
		MaxAge:     cfg.CacheMaxAge(),
		Interval:   cfg.StaleSweepInterval(),
	})

	r := router.New(cfg, db, rdb, client, breakers)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("pricing service listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
