package usecase

import "github.com/recipelens/backend/internal/domain"

// sodiumToSalt converts elemental sodium mass to sodium chloride mass (NaCl / Na molar mass)
const sodiumToSalt = 2.54

// edibleSaltNames are ingredient names reported as 100% salt by convention
var edibleSaltNames = map[string]bool{
	"salt": true,
	"盐":    true,
}

// ToSaltGrams converts a per-100-unit sodium figure into grams of salt for the consumed quantity,
// rounded to 2 decimals.
func ToSaltGrams(sodiumMgPer100Unit, quantityInRecordUnits float64) float64 {
	sodiumMg := sodiumMgPer100Unit * quantityInRecordUnits / 100
	return domain.Round(sodiumMg/1000*sodiumToSalt, 2)
}

// IsEdibleSalt reports whether name denotes pure edible salt
func IsEdibleSalt(name string) bool {
	return edibleSaltNames[domain.NormalizeName(name)]
}
