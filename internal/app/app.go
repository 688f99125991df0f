// Package app builds the service graph shared by the commands from a Config.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/recipelens/backend/config"
	"github.com/recipelens/backend/internal/domain"
	"github.com/recipelens/backend/internal/infrastructure/cache"
	"github.com/recipelens/backend/internal/infrastructure/reftable"
	"github.com/recipelens/backend/internal/infrastructure/storage"
	"github.com/recipelens/backend/internal/infrastructure/usda"
	"github.com/recipelens/backend/internal/pkg/logger"
	"github.com/recipelens/backend/internal/usecase"
)

// App is the wired service graph. Close releases caches and stores.
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Table     *domain.ReferenceTable
	Cache     domain.CacheRepository
	Recipes   domain.RecipeRepository
	Nutrition *usecase.NutritionService

	closers []func() error
}

// New builds the logger, reference table, cache, recipe store and nutrition service
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return NewWithLogger(ctx, cfg, log)
}

// NewWithLogger is New with a caller-supplied logger
func NewWithLogger(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: log}

	table, err := reftable.Load(cfg.Nutrition.ReferenceTable)
	if err != nil {
		return nil, fmt.Errorf("failed to load reference table: %w", err)
	}
	a.Table = table
	log.Info("reference table loaded",
		zap.String("path", tableSource(cfg.Nutrition.ReferenceTable)),
		zap.Int("entries", table.Len()),
		zap.Int("informal_entries", table.InformalLen()),
	)

	if err := a.initCache(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.initStorage(); err != nil {
		a.Close()
		return nil, err
	}

	resolver := usecase.NewResolver(table, log)
	aggregator := usecase.NewAggregator(resolver, usecase.DefaultIgnoreSet(cfg.Nutrition.ExtraIgnore...), log)
	a.Nutrition = usecase.NewNutritionService(aggregator, a.Cache, usecase.NutritionServiceConfig{
		CacheTTL: cfg.Cache.TTL,
		Workers:  cfg.Nutrition.Workers,
	}, log)

	return a, nil
}

func (a *App) initCache(ctx context.Context) error {
	switch a.Config.Cache.Type {
	case "redis":
		rc, err := cache.NewRedisCache(a.Config.Cache.RedisURL, a.Logger)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, rc.Close)
		// an unreachable Redis degrades to uncached computation
		if err := rc.Ping(ctx); err != nil {
			a.Logger.Warn("redis cache unavailable, continuing without cache", zap.Error(err))
		}
		a.Cache = rc
	default:
		mc := cache.NewMemoryCache(a.Config.Cache.CleanupInterval)
		a.closers = append(a.closers, mc.Close)
		a.Cache = mc
	}
	a.Logger.Info("cache initialized",
		zap.String("type", a.Config.Cache.Type),
		zap.Duration("ttl", a.Config.Cache.TTL),
	)
	return nil
}

func (a *App) initStorage() error {
	switch a.Config.Storage.Type {
	case "sqlite":
		store, err := storage.NewSQLiteStore(a.Config.Storage.SQLitePath)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, store.Close)
		a.Recipes = store
		a.Logger.Info("recipe store initialized", zap.String("type", "sqlite"), zap.String("path", a.Config.Storage.SQLitePath))
	default:
		a.Recipes = storage.NewFileStore(a.Config.Storage.RecipesPath)
		a.Logger.Info("recipe store initialized", zap.String("type", "file"), zap.String("path", a.Config.Storage.RecipesPath))
	}
	return nil
}

// NewImportService builds the USDA import pipeline. It requires an API key.
func (a *App) NewImportService() (*usecase.ImportService, error) {
	if err := a.Config.RequireUSDA(); err != nil {
		return nil, err
	}
	client := usda.NewClient(usda.ClientConfig{
		APIKey:          a.Config.USDA.APIKey,
		BaseURL:         a.Config.USDA.BaseURL,
		RequestsPerHour: a.Config.RateLimit.USDA,
		Timeout:         a.Config.USDA.Timeout,
		RetryCount:      2,
	}, a.Logger)

	return usecase.NewImportService(client, usecase.ImportServiceConfig{
		MinConfidenceThreshold: a.Config.USDA.MinConfidence,
		EnableFuzzyMatching:    true,
	}, a.Logger), nil
}

// Close releases resources in reverse order of creation
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	_ = a.Logger.Sync()
	return first
}

func tableSource(path string) string {
	if path == "" {
		return "built-in"
	}
	return path
}
