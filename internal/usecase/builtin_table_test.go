package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipelens/backend/internal/domain"
	"github.com/recipelens/backend/internal/infrastructure/reftable"
)

func newBuiltinAggregator(t *testing.T) *Aggregator {
	t.Helper()
	table, err := reftable.LoadDefault()
	require.NoError(t, err)
	return NewAggregator(NewResolver(table, nil), nil, nil)
}

func TestBuiltinTable_SubstringFollowsDeclarationOrder(t *testing.T) {
	agg := newBuiltinAggregator(t)

	tests := []struct {
		name        string
		entry       domain.IngredientEntry
		wantMatched string
		wantKcal    float64
	}{
		{"lemon water is water", domain.IngredientEntry{Name: "柠檬水", Quantity: 200, Unit: "g"}, "水", 0},
		{"lemon black tea is tea", domain.IngredientEntry{Name: "柠檬红茶", Quantity: 100, Unit: "g"}, "红茶", 2},
		{"garlic before minced garlic", domain.IngredientEntry{Name: "新鲜蒜末", Quantity: 100, Unit: "g"}, "蒜", 149},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cr, _ := agg.Contribute(tt.entry)
			require.Equal(t, OutcomeContributed, cr.Outcome)
			assert.Equal(t, "substring", cr.Tier)
			assert.Equal(t, tt.wantMatched, cr.MatchedName)
			assert.InDelta(t, tt.wantKcal, cr.Contribution.EnergyKcal, 1e-9)
		})
	}
}

func TestBuiltinTable_EggKeywordUnderPiece(t *testing.T) {
	agg := newBuiltinAggregator(t)

	for _, name := range []string{"蛋黄", "蛋白", "egg yolk", "egg white"} {
		t.Run(name, func(t *testing.T) {
			cr, _ := agg.Contribute(domain.IngredientEntry{Name: name, Quantity: 1, Unit: "个"})
			require.Equal(t, OutcomeContributed, cr.Outcome)
			assert.Equal(t, "informal_derived", cr.Tier)
			assert.Equal(t, "egg", cr.MatchedName)
			assert.Equal(t, 72.0, cr.Contribution.EnergyKcal)
		})
	}

	t.Run("by weight the yolk keeps its own record", func(t *testing.T) {
		cr, _ := agg.Contribute(domain.IngredientEntry{Name: "蛋黄", Quantity: 100, Unit: "g"})
		assert.Equal(t, 328.0, cr.Contribution.EnergyKcal)
	})
}

func TestBuiltinTable_SpoonOfSoySauce(t *testing.T) {
	agg := newBuiltinAggregator(t)

	result := agg.Aggregate([]domain.IngredientEntry{{Name: "酱油", Quantity: 15, Unit: "勺"}})

	require.NotNil(t, result.Total)
	assert.Equal(t, 2.19, result.Total.SaltG)
	assert.InDelta(t, 9.45, result.Contributions[0].Contribution.EnergyKcal, 1e-9)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, domain.DiagnosticUnknownUnit, result.Diagnostics[0].Kind)
}
