package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/recipelens/backend/internal/domain"
	"github.com/recipelens/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	nutritionService *usecase.NutritionService
	recipes          domain.RecipeRepository
	logger           *zap.Logger
}

// NewHandler creates a new HTTP handler. recipes may be nil, which disables the selection endpoint.
func NewHandler(nutritionService *usecase.NutritionService, recipes domain.RecipeRepository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		nutritionService: nutritionService,
		recipes:          recipes,
		logger:           logger,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "recipelens-backend",
		"version": "1.0.0",
	})
}

// RecipeNutritionRequest is the body of POST /api/v1/nutrition/recipe
type RecipeNutritionRequest struct {
	Title       string                   `json:"title"`
	Ingredients []domain.IngredientEntry `json:"ingredients"`
}

// IngredientNutritionRequest is the body of POST /api/v1/nutrition/ingredient
type IngredientNutritionRequest struct {
	Name     string  `json:"name" binding:"required"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit" binding:"required"`
}

// IngredientNutritionResponse reports how one ingredient resolved and what it contributes
type IngredientNutritionResponse struct {
	usecase.ContributionResult
	Diagnostics []domain.Diagnostic `json:"diagnostics"`
}

// SelectionNutritionResponse is the summed nutrition of a recipe selection
type SelectionNutritionResponse struct {
	Nutrition *domain.RecipeNutritionTotal `json:"nutrition"`
	Matched   int                          `json:"matched"`
	Missing   []string                     `json:"missing"`
}

// CalculateRecipe handles recipe nutrition requests
func (h *Handler) CalculateRecipe(c *gin.Context) {
	if h.nutritionService == nil {
		h.notConfigured(c, "Nutrition service")
		return
	}

	var req RecipeNutritionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	calc, err := h.nutritionService.CalculateRecipe(c.Request.Context(), &domain.Recipe{
		Title:       req.Title,
		Ingredients: req.Ingredients,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, calc)
}

// CalculateIngredient handles single ingredient requests
func (h *Handler) CalculateIngredient(c *gin.Context) {
	if h.nutritionService == nil {
		h.notConfigured(c, "Nutrition service")
		return
	}

	var req IngredientNutritionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	result, diags, err := h.nutritionService.CalculateIngredient(c.Request.Context(), domain.IngredientEntry{
		Name:     req.Name,
		Quantity: req.Quantity,
		Unit:     req.Unit,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	if diags == nil {
		diags = []domain.Diagnostic{}
	}

	c.JSON(http.StatusOK, IngredientNutritionResponse{
		ContributionResult: result,
		Diagnostics:        diags,
	})
}

// SumSelection handles selection nutrition requests against the recipe store
func (h *Handler) SumSelection(c *gin.Context) {
	if h.recipes == nil {
		h.notConfigured(c, "Recipe store")
		return
	}

	var sel domain.Selection
	if err := c.ShouldBindJSON(&sel); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if len(sel.RecipeIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "recipe_ids is required"})
		return
	}

	recipes, err := h.recipes.LoadRecipes(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	known := make(map[string]bool, len(recipes))
	for _, r := range recipes {
		if r.ID != "" {
			known[r.ID] = true
		}
	}
	resp := SelectionNutritionResponse{Missing: []string{}}
	for _, id := range sel.RecipeIDs {
		if known[id] {
			resp.Matched++
		} else {
			resp.Missing = append(resp.Missing, id)
		}
	}
	if resp.Matched == 0 {
		h.handleError(c, domain.ErrRecipeNotFound)
		return
	}

	resp.Nutrition = usecase.SumSelection(recipes, sel)
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) notConfigured(c *gin.Context, what string) {
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"error": what + " not configured",
	})
}

// handleError maps domain errors to HTTP responses
func (h *Handler) handleError(c *gin.Context, err error) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrRecipeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Request timed out"})
	default:
		h.logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
