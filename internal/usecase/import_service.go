package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/recipelens/backend/internal/domain"
	"github.com/recipelens/backend/internal/infrastructure/usda"
)

// ImportServiceConfig holds configuration for reference-table imports
type ImportServiceConfig struct {
	MinConfidenceThreshold float64
	EnableFuzzyMatching    bool
}

// ImportService drafts reference-table entries from USDA FoodData Central
type ImportService struct {
	usdaClient      domain.USDAClient
	preprocessor    *QueryPreprocessor
	matchingService *MatchingService
	logger          *zap.Logger
}

// ImportedEntry is a drafted reference-table entry and the USDA food it came from
type ImportedEntry struct {
	Name   string
	Query  string
	Match  *domain.MatchResult
	Record domain.NutrientRecord
}

// NewImportService creates an import service
func NewImportService(usdaClient domain.USDAClient, config ImportServiceConfig, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{
		usdaClient:   usdaClient,
		preprocessor: NewQueryPreprocessor(logger),
		matchingService: NewMatchingService(MatchConfig{
			MinConfidenceThreshold: config.MinConfidenceThreshold,
			EnableFuzzyMatching:    config.EnableFuzzyMatching,
		}, logger),
		logger: logger,
	}
}

// ImportIngredient searches USDA for name and maps the best match to a per-100 g record.
// Flow: clean query -> search USDA -> match best result -> map nutrients.
// A below-threshold match is returned together with ErrLowConfidence.
func (s *ImportService) ImportIngredient(ctx context.Context, name string) (*ImportedEntry, error) {
	name = domain.NormalizeName(name)
	query := s.preprocessor.PreprocessQuery(name)
	if query == "" {
		return nil, domain.ErrInvalidRequest
	}

	searchResult, err := s.usdaClient.SearchFoods(ctx, query)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) || errors.Is(err, domain.ErrRateLimited) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUSDAAPIFailure, err)
	}
	if searchResult == nil || len(searchResult.Foods) == 0 {
		return nil, domain.ErrProductNotFound
	}

	match, matchErr := s.matchingService.FindBestMatch(ctx, query, searchResult.Foods)
	if match == nil {
		return nil, matchErr
	}

	var food *domain.USDAFood
	for i := range searchResult.Foods {
		if searchResult.Foods[i].FdcID == match.FdcID {
			food = &searchResult.Foods[i]
			break
		}
	}
	if food == nil {
		return nil, domain.ErrProductNotFound
	}

	entry := &ImportedEntry{
		Name:   name,
		Query:  query,
		Match:  match,
		Record: usda.MapToNutrientRecord(food),
	}

	s.logger.Info("drafted reference entry",
		zap.String("ingredient", name),
		zap.String("query", query),
		zap.Int("fdc_id", match.FdcID),
		zap.String("description", match.Description),
		zap.Float64("confidence", match.MatchScore),
	)
	return entry, matchErr
}
