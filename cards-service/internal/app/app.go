// Package app composes the cards microservice. It carries no persistence
// yet; it serves its contact snapshot and liveness surface.
package app

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/demobank/microservices/shared/config"
	"github.com/demobank/microservices/shared/logger"
	"github.com/demobank/microservices/shared/runtime"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	ContactInfo *config.ContactInfo
	Handler     http.Handler

	cfg *config.ServiceConfig
	log *zap.Logger
}

func New(cfg *config.ServiceConfig, log *zap.Logger) (*App, error) {
	log = logger.OrNop(log)

	var (
		info *config.ContactInfo
		err  error
	)
	if cfg.ContactInfoFile == "" {
		info, err = config.LoadContactInfo(nil, config.CardsPrefix)
	} else {
		source, readErr := config.ReadSource(cfg.ContactInfoFile)
		if readErr != nil {
			return nil, readErr
		}
		info, err = config.LoadContactInfo(source, config.CardsPrefix)
	}
	if err != nil {
		return nil, err
	}

	return &App{
		ContactInfo: info,
		Handler:     runtime.NewRouter(cfg.ServiceName, info, log),
		cfg:         cfg,
		log:         log,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	return runtime.Serve(ctx, ":"+a.cfg.Port, a.Handler, shutdownTimeout, a.log)
}
