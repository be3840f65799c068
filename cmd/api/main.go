package main

import (
	"context"
	"fmt"
	stdlog "log"
	"os/signal"
	"syscall"

	"apiwatch/config"
	"apiwatch/internals/app"
	"apiwatch/internals/server"
	"apiwatch/pkg/db"
	"apiwatch/pkg/logger"
	"apiwatch/pkg/retry"
)

func main() {
	cfg, err := config.LoadConfig("env.yaml")
	if err != nil {
		stdlog.Fatalf("failed to load config: %v", err)
	}

	// Done channel of ctx closes on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.Init(cfg)
	log.Info().Msg("logger initialized")

	connectRetry := retry.Policy{
		Attempts: cfg.Worker.DBRetryAttempts,
		Delay:    cfg.Worker.DBRetryDelay,
	}
	dbPool, err := db.ConnectToDB(ctx, &cfg.DB, connectRetry, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize db pool")
	}
	log.Info().Msg("database pool initialized")

	container, err := app.NewContainer(ctx, dbPool, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize dependencies")
	}
	log.Info().Msg("dependencies initialized")

	if cfg.Worker.DisableCrons {
		log.Warn().Msg("background crons disabled by config")
	} else {
		go container.Scheduler.Start(ctx)
	}

	router := app.RegisterRoutes(container)
	log.Info().Msg("routes registered")

	srv := server.New(fmt.Sprintf(":%d", cfg.Port), router, log)
	srv.Start()

	// main goroutine waits for the signal
	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	// 1. stop accepting requests
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	// 2. close infra (scheduler already stopped with ctx)
	if err := container.Shutdown(); err != nil {
		log.Error().Err(err).Msg("dependencies shutdown failed")
	}

	log.Info().Msg("graceful shutdown complete")
}
