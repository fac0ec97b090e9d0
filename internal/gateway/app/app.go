package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sdkchurn/internal/gateway/config"
	"sdkchurn/internal/gateway/handler"
	"sdkchurn/internal/gateway/server"
	churnsvc "sdkchurn/internal/gateway/service/churn"
)

type App struct {
	server *server.Server
	stores *gatewayStores
	logger *zap.Logger
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// Dependencies
	stores, err := initStores(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	churnSvc := churnsvc.New(stores.churn, logger)

	churnHandler := handler.NewChurnHandler(churnSvc, logger)
	pageHandler := handler.NewPageHandler(churnSvc, logger)

	// Routing & Server
	mux := server.NewMux(churnHandler, pageHandler, logger)
	srv := server.New(cfg.Port, mux, logger)

	return &App{
		server: srv,
		stores: stores,
		logger: logger,
	}, nil
}

func (a *App) Logger() *zap.Logger {
	return a.logger
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	if cerr := a.stores.Close(); cerr != nil {
		err = errors.Join(err, fmt.Errorf("close store: %w", cerr))
	}
	_ = a.logger.Sync()
	return err
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsLocal() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
