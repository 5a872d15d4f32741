package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inventapro/internal/app"
	"inventapro/internal/config"
	"inventapro/internal/infra"
	"inventapro/internal/middleware"
	"inventapro/internal/router"
	"inventapro/internal/service"
	"inventapro/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// @title        inventapro API
// @version      1.0
// @description  Product catalogue, bulk product import and stock ledger.
// @BasePath     /
// @securityDefinitions.apikey BearerAuth
// @in           header
// @name         Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: pretty in dev, JSON in prod
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	core, err := app.NewCore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialise storage")
	}
	defer core.Close()

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	// Worker handlers are wired here (composition root) so the pool has
	// access to every infrastructure dependency.
	dispatcher := worker.NewDispatcher(rdb)
	jobs := service.NewImportJobService(rdb, core.Blobs, core.Imports, dispatcher, cfg.ImportJobTTL, cfg.ImportTimeout)
	mailer := infra.NewMailer(cfg)
	if !mailer.Enabled() {
		log.Warn().Msg("SMTP_HOST not set: import report emails will end in the dead letter queue")
	}

	pool := worker.NewPool(rdb)
	pool.Register(worker.QueueProductImport, worker.JobTypeProductImport, worker.NewImportWorker(jobs))
	pool.Register(worker.QueueEmail, worker.JobTypeEmail, worker.NewEmailWorker(mailer))
	pool.Start(ctx, cfg.WorkerPoolSize)

	limiter := middleware.NewIPRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitPerMinute/10+1)
	go limiter.RunPurge(ctx.Done(), 5*time.Minute)

	sqlDB, err := core.DB.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to access connection pool")
	}

	r := router.New(cfg, router.Deps{
		DB:       sqlDB,
		Redis:    rdb,
		Storage:  core.StorageCB,
		Limiter:  limiter,
		Imports:  core.Imports,
		Jobs:     jobs,
		Products: core.Products,
		Stock:    core.Stock,
	})

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     r,
		ReadTimeout: 2 * time.Minute,
		// a synchronous import may run for the whole import timeout
		WriteTimeout: cfg.ImportTimeout + time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("inventapro listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
