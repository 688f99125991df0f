// Package mcp exposes the nutrition engine as MCP tools over a plain HTTP endpoint.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/recipelens/backend/internal/domain"
	"github.com/recipelens/backend/internal/usecase"
)

const (
	ToolCalculateRecipe   = "calculate_recipe_nutrition"
	ToolResolveIngredient = "resolve_ingredient"
)

// ErrUnknownTool is returned for a tool name the server does not register
var ErrUnknownTool = errors.New("unknown tool")

type CalculateRecipeParams struct {
	Title       string                   `json:"title,omitempty" description:"Recipe title"`
	Ingredients []domain.IngredientEntry `json:"ingredients" description:"Ingredient entries with name, quantity and unit"`
}

type ResolveIngredientParams struct {
	Name     string   `json:"name" description:"Ingredient name"`
	Quantity *float64 `json:"quantity,omitempty" description:"Quantity in the given unit (defaults to 100 g or 1 informal unit)"`
	Unit     string   `json:"unit,omitempty" description:"Unit label, g by default"`
}

type toolHandler func(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error)

// Server dispatches MCP tool calls to the nutrition service
type Server struct {
	service *usecase.NutritionService
	tools   map[string]toolHandler
	logger  *zap.Logger
}

// NewServer creates the MCP tool server
func NewServer(service *usecase.NutritionService, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{service: service, logger: logger}
	s.tools = map[string]toolHandler{
		ToolCalculateRecipe:   s.handleCalculateRecipe,
		ToolResolveIngredient: s.handleResolveIngredient,
	}
	return s
}

// Tools lists the registered tool names
func (s *Server) Tools() []string {
	return []string{ToolCalculateRecipe, ToolResolveIngredient}
}

// Call runs one tool request
func (s *Server) Call(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	handler, ok := s.tools[req.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, req.Name)
	}
	return handler(ctx, req)
}

// Handle serves POST /mcp with a CallToolRequest body
func (s *Server) Handle(c *gin.Context) {
	var req protocol.CallToolRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid JSON: %v", err)})
		return
	}

	result, err := s.Call(c.Request.Context(), &req)
	if err != nil {
		s.logger.Warn("mcp tool call failed", zap.String("tool", req.Name), zap.Error(err))
		switch {
		case errors.Is(err, ErrUnknownTool):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// extractParams converts the request arguments into target
func extractParams(req *protocol.CallToolRequest, target interface{}) error {
	jsonBytes, err := json.Marshal(req.Arguments)
	if err != nil {
		return fmt.Errorf("failed to marshal arguments: %w", err)
	}
	if err := json.Unmarshal(jsonBytes, target); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	return nil
}

func (s *Server) handleCalculateRecipe(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params CalculateRecipeParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	calc, err := s.service.CalculateRecipe(ctx, &domain.Recipe{
		Title:       params.Title,
		Ingredients: params.Ingredients,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to calculate recipe: %w", err)
	}
	return jsonResult(calc)
}

func (s *Server) handleResolveIngredient(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params ResolveIngredientParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.Name) == "" {
		return nil, fmt.Errorf("%w: ingredient name is required", domain.ErrInvalidRequest)
	}

	entry := domain.IngredientEntry{Name: params.Name, Unit: params.Unit}
	if entry.Unit == "" {
		entry.Unit = "g"
	}
	switch {
	case params.Quantity != nil:
		entry.Quantity = *params.Quantity
	case isInformal(entry.Unit):
		entry.Quantity = 1
	default:
		entry.Quantity = 100
	}

	result, diags, err := s.service.CalculateIngredient(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve ingredient: %w", err)
	}

	out, err := jsonResult(struct {
		usecase.ContributionResult
		Diagnostics []domain.Diagnostic `json:"diagnostics"`
	}{result, diags})
	if err != nil {
		return nil, err
	}
	out.IsError = result.Outcome == usecase.OutcomeFailed
	return out, nil
}

func isInformal(label string) bool {
	u, err := domain.ParseUnit(label)
	return err == nil && u.IsInformal()
}

func jsonResult(data interface{}) (*protocol.CallToolResult, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: string(jsonBytes),
			},
		},
	}, nil
}
