package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/matan25/flytau/internal/config"
	"github.com/matan25/flytau/internal/database"
	"github.com/matan25/flytau/internal/handlers"
	"github.com/matan25/flytau/internal/router"
	"github.com/matan25/flytau/internal/seatlock"
	"github.com/matan25/flytau/internal/service"
	"github.com/matan25/flytau/internal/websocket"
)

// reconcileInterval drives the background pass that settles flight,
// seat and order statuses against the clock.
const reconcileInterval = time.Minute

func main() {
	if err := config.Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize configuration")
	}
	cfg := config.Get()

	level, err := zerolog.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Server.Env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	ctx := context.Background()

	if cfg.DB.Postgres.AutoMigrate {
		if err := database.Migrate(cfg.PostgresDSN()); err != nil {
			log.Fatal().Err(err).Msg("Failed to run database migrations")
		}
	}

	pool, err := database.NewPool(ctx, cfg.PostgresDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	locker := seatlock.New(redisClient, time.Duration(cfg.Cache.SeatLockTTLSeconds)*time.Second)

	hub := websocket.NewHub()
	go hub.Run()

	repo := database.NewRepository(pool)
	svc := service.New(repo, locker, hub)
	h := handlers.NewHandler(svc)
	r := router.SetupRouter(h, hub)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	reconcileCtx, stopReconcile := context.WithCancel(ctx)
	go runReconcileLoop(reconcileCtx, svc)

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("API server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	stopReconcile()

	shutdownCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Server.Shutdown.GracePeriodSeconds)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

func runReconcileLoop(ctx context.Context, svc service.Service) {
	ticker := time.NewTicker(reconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := svc.Reconcile(ctx, ""); err != nil {
				log.Error().Err(err).Msg("Background reconciliation failed")
			}
		}
	}
}
