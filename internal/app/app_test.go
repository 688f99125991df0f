package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/recipelens/backend/config"
	"github.com/recipelens/backend/internal/domain"
	"github.com/recipelens/backend/internal/infrastructure/cache"
	"github.com/recipelens/backend/internal/infrastructure/storage"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Log:       config.LogConfig{Level: "info", Format: "json"},
		Nutrition: config.NutritionConfig{Workers: 2, ExtraIgnore: []string{"garnish"}},
		Storage: config.StorageConfig{
			Type:        "file",
			RecipesPath: filepath.Join(dir, "recipes.json"),
			SQLitePath:  filepath.Join(dir, "recipes.db"),
		},
		Cache: config.CacheConfig{Type: "memory", TTL: time.Hour},
	}
}

func TestNewWithLogger_FileStore(t *testing.T) {
	cfg := testConfig(t)

	a, err := NewWithLogger(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	assert.Greater(t, a.Table.Len(), 0)
	assert.IsType(t, &cache.MemoryCache{}, a.Cache)
	assert.IsType(t, &storage.FileStore{}, a.Recipes)

	calc, err := a.Nutrition.CalculateRecipe(context.Background(), &domain.Recipe{
		Ingredients: []domain.IngredientEntry{
			{Name: "egg", Quantity: 100, Unit: "g"},
			{Name: "garnish", Quantity: 5, Unit: "g"},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, calc.Nutrition)
	assert.Equal(t, 144.0, calc.Nutrition.EnergyKcal)
	assert.Equal(t, "ignored", calc.Contributions[1].SkipReason)
}

func TestNewWithLogger_SQLiteStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Type = "sqlite"

	a, err := NewWithLogger(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	assert.IsType(t, &storage.SQLiteStore{}, a.Recipes)
	recipes, err := a.Recipes.LoadRecipes(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recipes)
}

func TestNewWithLogger_BadTable(t *testing.T) {
	cfg := testConfig(t)
	cfg.Nutrition.ReferenceTable = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := NewWithLogger(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestNewWithLogger_InvalidRedisURL(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache = config.CacheConfig{Type: "redis", RedisURL: "http://nope"}

	_, err := NewWithLogger(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestNewImportService_RequiresAPIKey(t *testing.T) {
	cfg := testConfig(t)
	a, err := NewWithLogger(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	_, err = a.NewImportService()
	assert.Error(t, err)

	cfg.USDA.APIKey = "key"
	svc, err := a.NewImportService()
	require.NoError(t, err)
	assert.NotNil(t, svc)
}
