package main

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sales_api/api"
	"sales_api/internal/catalog"
	"sales_api/internal/config"
	"sales_api/internal/events"
	"sales_api/internal/metrics"
	"sales_api/internal/sales"
	"sales_api/internal/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("error loading configuration: %v", err))
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("error building logger: %v", err))
	}
	defer logger.Sync()

	storage, closeStorage, err := openStorage(cfg, logger)
	if err != nil {
		logger.Fatal("failed to open storage", zap.String("driver", cfg.StorageDriver), zap.Error(err))
	}
	defer closeStorage()

	var m *metrics.Metrics
	sinks := []sales.Publisher{events.NewLogPublisher(logger)}
	if cfg.MetricsEnabled {
		m = metrics.New()
		sinks = append(sinks, events.NewMetricsPublisher(m))
	}
	if cfg.WebhookURL != "" {
		webhook := events.NewWebhookPublisher(cfg.WebhookURL, cfg.WebhookTimeout)
		defer webhook.Close()
		sinks = append(sinks, webhook)
		logger.Info("webhook event sink enabled", zap.String("url", cfg.WebhookURL))
	}

	salesService := sales.NewService(storage, events.NewFanOut(sinks...), logger)
	catalogService := catalog.NewService(storage, logger)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	api.InitRoutes(r, api.Dependencies{
		Sales:   salesService,
		Catalog: catalogService,
		Metrics: m,
		Logger:  logger,
	})

	logger.Info("starting server", zap.String("addr", cfg.HTTPAddr), zap.String("storage", cfg.StorageDriver))
	if err := r.Run(cfg.HTTPAddr); err != nil {
		logger.Fatal("error trying to start server", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}

	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = lvl
	return zc.Build()
}

func openStorage(cfg config.Config, logger *zap.Logger) (sales.Storage, func(), error) {
	switch cfg.StorageDriver {
	case config.DriverSQLite:
		store, err := sqlite.New(context.Background(), cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using sqlite storage", zap.String("path", cfg.SQLitePath))
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Warn("failed to close storage", zap.Error(err))
			}
		}, nil
	default:
		logger.Info("using in-memory storage")
		return sales.NewLocalStorage(), func() {}, nil
	}
}
