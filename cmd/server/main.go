// Package main is the entry point for the wealthfolio-core portfolio
// valuation and performance service.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aristath/wealthfolio-core/internal/config"
	"github.com/aristath/wealthfolio-core/internal/di"
	"github.com/aristath/wealthfolio-core/internal/server"
	"github.com/aristath/wealthfolio-core/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Config{Level: "info", Pretty: true}).Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.DevMode})
	log.Info().Msg("starting wealthfolio-core")

	container, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to wire dependencies")
	}
	defer container.Close()

	if err := container.Scheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start sync scheduler")
	}
	defer container.Scheduler.Stop()

	srv := server.New(server.Config{
		Log:       log,
		Config:    cfg,
		Container: container,
	})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info().Msg("shutdown signal received")
		cancel()
		if err := <-errCh; err != nil {
			log.Error().Err(err).Msg("server shutdown error")
		}
	case err := <-errCh:
		cancel()
		if err != nil {
			log.Error().Err(err).Msg("server stopped unexpectedly")
		}
	}

	log.Info().Msg("server stopped")
}
