package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/recipelens/backend/internal/domain"
	"github.com/recipelens/backend/internal/infrastructure/usda"
)

// MockUSDAClient is a mock implementation of domain.USDAClient
type MockUSDAClient struct {
	searchResult *domain.USDASearchResponse
	searchError  error
	foodResult   *domain.USDAFood
	foodError    error
	lastQuery    string
}

func NewMockUSDAClient() *MockUSDAClient {
	return &MockUSDAClient{}
}

func (m *MockUSDAClient) SearchFoods(ctx context.Context, query string) (*domain.USDASearchResponse, error) {
	m.lastQuery = query
	if m.searchError != nil {
		return nil, m.searchError
	}
	return m.searchResult, nil
}

func (m *MockUSDAClient) GetFoodDetails(ctx context.Context, fdcID string) (*domain.USDAFood, error) {
	if m.foodError != nil {
		return nil, m.foodError
	}
	return m.foodResult, nil
}

func garlicSearchResult() *domain.USDASearchResponse {
	return &domain.USDASearchResponse{
		Foods: []domain.USDAFood{
			{FdcID: 1, Description: "Garlic bread", DataType: "Survey (FNDDS)"},
			{
				FdcID:       1104647,
				Description: "Garlic, raw",
				DataType:    "Foundation",
				Nutrients: []domain.USDANutrient{
					{NutrientID: usda.NutrientIDEnergy, Value: 143},
					{NutrientID: usda.NutrientIDProtein, Value: 6.62},
					{NutrientID: usda.NutrientIDCarbohydrate, Value: 28.2},
					{NutrientID: usda.NutrientIDTotalFat, Value: 0.38},
					{NutrientID: usda.NutrientIDSodium, UnitName: "MG", Value: 11},
				},
			},
		},
	}
}

func TestImportIngredient(t *testing.T) {
	ctx := context.Background()

	t.Run("drafts a record from the best match", func(t *testing.T) {
		client := NewMockUSDAClient()
		client.searchResult = garlicSearchResult()
		svc := NewImportService(client, ImportServiceConfig{}, nil)

		entry, err := svc.ImportIngredient(ctx, "Garlic, minced")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.lastQuery != "garlic" {
			t.Errorf("query = %q, want garlic", client.lastQuery)
		}
		if entry.Match.FdcID != 1104647 {
			t.Errorf("FdcID = %d, want 1104647", entry.Match.FdcID)
		}
		want := domain.NutrientRecord{EnergyKcal: 143, ProteinG: 6.62, CarbsG: 28.2, FatG: 0.38, SodiumMg: 11, UnitLabel: "g"}
		if entry.Record != want {
			t.Errorf("record = %+v, want %+v", entry.Record, want)
		}
	})

	t.Run("returns low confidence entry with error", func(t *testing.T) {
		client := NewMockUSDAClient()
		client.searchResult = &domain.USDASearchResponse{
			Foods: []domain.USDAFood{{FdcID: 5, Description: "Apples, raw", DataType: "Foundation"}},
		}
		svc := NewImportService(client, ImportServiceConfig{MinConfidenceThreshold: 60}, nil)

		entry, err := svc.ImportIngredient(ctx, "dragonfruit")
		if !errors.Is(err, domain.ErrLowConfidence) {
			t.Errorf("error = %v, want ErrLowConfidence", err)
		}
		if entry == nil || entry.Match.FdcID != 5 {
			t.Errorf("entry = %+v, want low-confidence draft", entry)
		}
	})

	t.Run("wraps search failures", func(t *testing.T) {
		client := NewMockUSDAClient()
		client.searchError = errors.New("connection reset")
		svc := NewImportService(client, ImportServiceConfig{}, nil)

		_, err := svc.ImportIngredient(ctx, "garlic")
		if !errors.Is(err, domain.ErrUSDAAPIFailure) {
			t.Errorf("error = %v, want ErrUSDAAPIFailure", err)
		}
	})

	t.Run("passes not found through", func(t *testing.T) {
		client := NewMockUSDAClient()
		client.searchError = domain.ErrProductNotFound
		svc := NewImportService(client, ImportServiceConfig{}, nil)

		_, err := svc.ImportIngredient(ctx, "garlic")
		if !errors.Is(err, domain.ErrProductNotFound) {
			t.Errorf("error = %v, want ErrProductNotFound", err)
		}
	})

	t.Run("rejects names with nothing to search", func(t *testing.T) {
		svc := NewImportService(NewMockUSDAClient(), ImportServiceConfig{}, nil)

		_, err := svc.ImportIngredient(ctx, "2 large")
		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("error = %v, want ErrInvalidRequest", err)
		}
	})
}
