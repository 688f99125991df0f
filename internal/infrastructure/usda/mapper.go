package usda

import (
	"github.com/recipelens/backend/internal/domain"
)

// USDA Nutrient IDs for the fields a reference record carries
const (
	NutrientIDEnergy       = 1008 // Calories (kcal)
	NutrientIDProtein      = 1003 // Protein (g)
	NutrientIDCarbohydrate = 1005 // Carbohydrates (g)
	NutrientIDTotalFat     = 1004 // Total Fat (g)
	NutrientIDSodium       = 1093 // Sodium, Na (mg)
)

// MapToNutrientRecord converts a USDA food to a per-100 g reference record.
// FoodData Central reports search-result nutrients per 100 g.
func MapToNutrientRecord(food *domain.USDAFood) domain.NutrientRecord {
	rec := domain.NutrientRecord{
		Basis:     domain.BasisMass,
		UnitLabel: "g",
	}

	for _, nutrient := range food.Nutrients {
		switch nutrient.NutrientID {
		case NutrientIDEnergy:
			rec.EnergyKcal = nutrient.Value
		case NutrientIDProtein:
			rec.ProteinG = nutrient.Value
		case NutrientIDCarbohydrate:
			rec.CarbsG = nutrient.Value
		case NutrientIDTotalFat:
			rec.FatG = nutrient.Value
		case NutrientIDSodium:
			rec.SodiumMg = sodiumMilligrams(nutrient)
		}
	}

	return rec
}

// sodiumMilligrams normalizes a sodium value that some foods report in grams
func sodiumMilligrams(n domain.USDANutrient) float64 {
	if n.UnitName == "G" || n.UnitName == "g" {
		return n.Value * 1000
	}
	return n.Value
}

// FindNutrientValue finds a specific nutrient value by ID
func FindNutrientValue(nutrients []domain.USDANutrient, nutrientID int) float64 {
	for _, nutrient := range nutrients {
		if nutrient.NutrientID == nutrientID {
			return nutrient.Value
		}
	}
	return 0.0
}
