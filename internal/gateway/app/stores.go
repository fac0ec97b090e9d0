package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	churncache "sdkchurn/internal/cache/churn"
	"sdkchurn/internal/gateway/config"
	churnrepo "sdkchurn/internal/gateway/repository/churn"
	"sdkchurn/internal/gateway/repository/dataset"
)

type gatewayStores struct {
	churn  churnrepo.Store
	origin *churnrepo.SQLStore
}

func (s *gatewayStores) Close() error {
	if s == nil {
		return nil
	}
	return s.origin.Close()
}

func initStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*gatewayStores, error) {
	dialect, err := churnrepo.ParseDialect(cfg.Database.Driver)
	if err != nil {
		return nil, err
	}

	dsn := cfg.Database.URL
	if dialect == churnrepo.SQLite {
		dsn = cfg.Database.SQLitePath
		if err := fetchDataset(ctx, cfg, logger); err != nil {
			return nil, err
		}
	}

	origin, err := churnrepo.Open(ctx, dialect, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open churn store: %w", err)
	}
	logger.Info("churn store opened", zap.String("driver", string(dialect)))

	return &gatewayStores{
		churn: churncache.NewCachedStore(origin, churncache.CacheConfig{
			TTL:        cfg.Cache.TTL,
			MaxEntries: cfg.Cache.MaxEntries,
		}),
		origin: origin,
	}, nil
}

func fetchDataset(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if !cfg.Dataset.Enabled() {
		if cfg.Dataset.Endpoint != "" {
			logger.Warn("dataset s3 config incomplete, using local snapshot", zap.String("path", cfg.Database.SQLitePath))
		}
		return nil
	}
	src, err := dataset.NewS3Source(dataset.S3Config{
		Endpoint:  cfg.Dataset.Endpoint,
		Region:    cfg.Dataset.Region,
		AccessKey: cfg.Dataset.AccessKey,
		SecretKey: cfg.Dataset.SecretKey,
		Bucket:    cfg.Dataset.Bucket,
		Object:    cfg.Dataset.Object,
		UseSSL:    cfg.Dataset.UseSSL,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize dataset source: %w", err)
	}
	if err := src.Fetch(ctx, cfg.Database.SQLitePath); err != nil {
		return fmt.Errorf("failed to fetch dataset: %w", err)
	}
	return nil
}
