package usecase

import (
	"math"

	"github.com/recipelens/backend/internal/domain"
)

const (
	minSelectionScale = 0.1
	maxSelectionScale = 20
)

// NormalizeScale clamps a servings multiplier to [0.1, 20]. Missing, non-positive
// or non-finite scales mean one serving.
func NormalizeScale(scale float64) float64 {
	if math.IsNaN(scale) || math.IsInf(scale, 0) || scale <= 0 {
		return 1
	}
	return math.Min(math.Max(scale, minSelectionScale), maxSelectionScale)
}

// SumSelection adds up the stored nutrition of the selected recipes, each multiplied by its scale.
// Unknown ids and recipes without nutrition contribute nothing.
func SumSelection(recipes []domain.Recipe, sel domain.Selection) *domain.RecipeNutritionTotal {
	byID := make(map[string]*domain.Recipe, len(recipes))
	for i := range recipes {
		if id := recipes[i].ID; id != "" {
			if _, dup := byID[id]; !dup {
				byID[id] = &recipes[i]
			}
		}
	}

	var sum domain.NutrientContribution
	for _, id := range sel.RecipeIDs {
		r, ok := byID[id]
		if !ok || r.Nutrition == nil {
			continue
		}
		scale := 1.0
		if s, ok := sel.Scales[id]; ok {
			scale = NormalizeScale(s)
		}
		n := r.Nutrition
		sum = sum.Add(domain.NutrientContribution{
			EnergyKcal: n.EnergyKcal * scale,
			ProteinG:   n.ProteinG * scale,
			CarbsG:     n.CarbsG * scale,
			FatG:       n.FatG * scale,
			SaltG:      n.SaltG * scale,
		})
	}
	return domain.NewRecipeNutritionTotal(sum)
}
