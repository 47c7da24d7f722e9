package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/ducduc1118-design/recash/internal/api"
	"github.com/ducduc1118-design/recash/internal/common"
	"github.com/ducduc1118-design/recash/internal/config"
	"github.com/ducduc1118-design/recash/internal/server"

	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	tokens, err := server.NewTokenIssuer(cfg.Auth)
	if err != nil {
		logger.Fatal("Invalid auth config", zap.Error(err))
	}

	rewards := api.NewRewardsService(services.Ledger, services.Rewards, services.Publisher)
	if err := rewards.HealthCheck(ctx); err != nil {
		logger.Fatal("Ledger store is not reachable", zap.Error(err))
	}

	srv := server.New(cfg.Server, rewards, tokens)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("HTTP server failed", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}

	logger.Info("Server stopped")
}
