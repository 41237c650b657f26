package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/demobank/microservices/cards-service/internal/app"
	"github.com/demobank/microservices/shared/config"
	"github.com/demobank/microservices/shared/logger"
)

func main() {
	cfg, err := config.LoadServiceConfig(config.Defaults{
		ServiceName: "cards",
		Port:        "9000",
		StoreDriver: "memory",
	})
	if err != nil {
		zap.NewExample().Fatal("failed to load config", zap.Error(err))
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	service, err := app.New(cfg, log.With(zap.String("service", cfg.ServiceName)))
	if err != nil {
		log.Fatal("failed to start cards service", zap.Error(err))
	}

	log.Info("cards service starting", zap.String("port", cfg.Port))
	if err := service.Run(ctx); err != nil {
		log.Error("cards service stopped", zap.Error(err))
	}
}
