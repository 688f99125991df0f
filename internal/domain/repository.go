package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// RecipeRepository is the source and sink of the recipe collection
type RecipeRepository interface {
	LoadRecipes(ctx context.Context) ([]Recipe, error)
	SaveRecipes(ctx context.Context, recipes []Recipe) error
}

// USDAClient defines the interface for interacting with USDA FoodData Central API
type USDAClient interface {
	SearchFoods(ctx context.Context, query string) (*USDASearchResponse, error)
	GetFoodDetails(ctx context.Context, fdcID string) (*USDAFood, error)
}
