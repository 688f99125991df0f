package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/recipelens/backend/internal/domain"
)

// NutritionServiceConfig holds configuration for the nutrition service
type NutritionServiceConfig struct {
	CacheTTL time.Duration
	Workers  int
}

// NutritionService computes recipe nutrition over a reference table, caching results by ingredient list
type NutritionService struct {
	aggregator *Aggregator
	cache      domain.CacheRepository
	cacheTTL   time.Duration
	cacheScope string
	workers    int
	logger     *zap.Logger
}

// NewNutritionService creates a new nutrition service with dependencies.
// cache may be nil, in which case every request is computed.
func NewNutritionService(
	aggregator *Aggregator,
	cache domain.CacheRepository,
	config NutritionServiceConfig,
	logger *zap.Logger,
) *NutritionService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}
	workers := config.Workers
	if workers <= 0 {
		workers = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &NutritionService{
		aggregator: aggregator,
		cache:      cache,
		cacheTTL:   cacheTTL,
		cacheScope: cacheScope(aggregator),
		workers:    workers,
		logger:     logger,
	}
}

// RecipeCalculation is the nutrition result for one recipe.
// Nutrition is nil when the recipe has no ingredients.
type RecipeCalculation struct {
	Title         string                       `json:"title,omitempty"`
	Computed      bool                         `json:"computed"`
	Nutrition     *domain.RecipeNutritionTotal `json:"nutrition"`
	Contributions []ContributionResult         `json:"contributions"`
	Diagnostics   []domain.Diagnostic          `json:"diagnostics"`
	Cached        bool                         `json:"cached"`
}

// CalculateRecipe computes nutrition for a recipe's ingredient list.
// Flow: check cache -> aggregate -> cache -> return
func (s *NutritionService) CalculateRecipe(ctx context.Context, recipe *domain.Recipe) (*RecipeCalculation, error) {
	if recipe == nil {
		return nil, domain.ErrInvalidRequest
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cacheKey := generateCacheKey(s.cacheScope, recipe.Ingredients)
	if cached, err := s.getFromCache(ctx, cacheKey); err == nil {
		cached.Title = recipe.Title
		cached.Cached = true
		return cached, nil
	}

	result := s.aggregator.Aggregate(recipe.Ingredients)
	calc := &RecipeCalculation{
		Title:         recipe.Title,
		Computed:      result.Total != nil,
		Nutrition:     result.Total,
		Contributions: result.Contributions,
		Diagnostics:   result.Diagnostics,
	}

	if calc.Nutrition != nil {
		if err := s.setInCache(ctx, cacheKey, calc); err != nil {
			s.logger.Debug("failed to cache recipe nutrition", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	return calc, nil
}

// CalculateIngredient computes the contribution of a single ingredient entry
func (s *NutritionService) CalculateIngredient(ctx context.Context, entry domain.IngredientEntry) (ContributionResult, []domain.Diagnostic, error) {
	if err := ctx.Err(); err != nil {
		return ContributionResult{}, nil, err
	}
	cr, diags := s.aggregator.Contribute(entry)
	return cr, diags, nil
}

// RecipeOutcome is the per-recipe row of a batch run
type RecipeOutcome struct {
	Index       int                          `json:"index"`
	ID          string                       `json:"id,omitempty"`
	Title       string                       `json:"title"`
	Nutrition   *domain.RecipeNutritionTotal `json:"nutrition"`
	Diagnostics []domain.Diagnostic          `json:"diagnostics,omitempty"`
}

// BatchReport summarizes a batch run over a recipe collection
type BatchReport struct {
	Results []RecipeOutcome `json:"results"`
	Updated int             `json:"updated"`
	Skipped int             `json:"skipped"`
}

// Apply attaches each computed total to its recipe and returns the number of recipes updated.
// Recipes with no result keep their existing nutrition.
func (r *BatchReport) Apply(recipes []domain.Recipe) int {
	updated := 0
	for _, res := range r.Results {
		if res.Nutrition == nil || res.Index >= len(recipes) {
			continue
		}
		total := *res.Nutrition
		recipes[res.Index].Nutrition = &total
		updated++
	}
	return updated
}

// CalculateAll computes nutrition for every recipe using a bounded worker pool.
// Recipes are independent; the returned results keep input order.
func (s *NutritionService) CalculateAll(ctx context.Context, recipes []domain.Recipe) (*BatchReport, error) {
	results := make([]RecipeOutcome, len(recipes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range recipes {
		i := i
		g.Go(func() error {
			calc, err := s.CalculateRecipe(gctx, &recipes[i])
			if err != nil {
				return fmt.Errorf("recipe %d (%q): %w", i, recipes[i].Title, err)
			}
			results[i] = RecipeOutcome{
				Index:       i,
				ID:          recipes[i].ID,
				Title:       recipes[i].Title,
				Nutrition:   calc.Nutrition,
				Diagnostics: calc.Diagnostics,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &BatchReport{Results: results}
	for _, r := range results {
		if r.Nutrition == nil {
			report.Skipped++
			continue
		}
		report.Updated++
	}

	s.logger.Info("batch nutrition run complete",
		zap.Int("recipes", len(recipes)),
		zap.Int("updated", report.Updated),
		zap.Int("skipped", report.Skipped),
	)
	return report, nil
}

// cacheScope digests everything besides the ingredient list that decides a result:
// the reference table and the ignore set. Editing either moves every key.
func cacheScope(a *Aggregator) string {
	if a == nil {
		return ""
	}
	h := sha256.New()
	if a.resolver != nil && a.resolver.Table() != nil {
		h.Write([]byte(a.resolver.Table().Fingerprint()))
	}
	h.Write([]byte{'\n'})
	h.Write([]byte(strings.Join(a.ignore.Names(), "\x00")))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// generateCacheKey derives a cache key from the scope and the normalized ingredient list.
// Format: "nutrition:recipe:{scope}:{sha256}"
func generateCacheKey(scope string, entries []domain.IngredientEntry) string {
	h := sha256.New()
	for _, e := range entries {
		h.Write([]byte(domain.NormalizeName(e.Name)))
		h.Write([]byte{0})
		h.Write([]byte(strconv.FormatFloat(e.Quantity, 'g', -1, 64)))
		h.Write([]byte{0})
		h.Write([]byte(strings.ToLower(strings.TrimSpace(e.Unit))))
		h.Write([]byte{'\n'})
	}
	return "nutrition:recipe:" + scope + ":" + hex.EncodeToString(h.Sum(nil))
}

func (s *NutritionService) getFromCache(ctx context.Context, key string) (*RecipeCalculation, error) {
	if s.cache == nil {
		return nil, domain.ErrCacheMiss
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			s.logger.Debug("cache lookup failed", zap.String("key", key), zap.Error(err))
		}
		return nil, err
	}

	var calc RecipeCalculation
	if err := json.Unmarshal(raw, &calc); err != nil {
		return nil, domain.ErrCacheMiss
	}
	return &calc, nil
}

func (s *NutritionService) setInCache(ctx context.Context, key string, calc *RecipeCalculation) error {
	if s.cache == nil {
		return nil
	}
	raw, err := json.Marshal(calc)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, key, raw, s.cacheTTL)
}
