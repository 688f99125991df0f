package domain

import "math"

// UnitBasis describes how a NutrientRecord's quantities are interpreted
type UnitBasis int

const (
	// BasisMass means the record is expressed per 100 g
	BasisMass UnitBasis = iota
	// BasisVolume means the record is expressed per 100 ml
	BasisVolume
	// BasisCount means the record is expressed per one informal unit (piece, head, clove, drop, cup)
	BasisCount
)

// String returns the canonical label of the basis
func (b UnitBasis) String() string {
	switch b {
	case BasisVolume:
		return "volume"
	case BasisCount:
		return "count"
	default:
		return "mass"
	}
}

// NutrientRecord is the nutrient profile of one reference-table entry.
// Mass and volume records are per 100 reference units; count records are per one unit.
// SodiumMg holds elemental sodium, not salt.
type NutrientRecord struct {
	EnergyKcal float64   `json:"energy" yaml:"energy"`
	ProteinG   float64   `json:"protein" yaml:"protein"`
	CarbsG     float64   `json:"carbs" yaml:"carbs"`
	FatG       float64   `json:"fat" yaml:"fat"`
	SodiumMg   float64   `json:"sodium" yaml:"sodium"`
	Basis      UnitBasis `json:"-" yaml:"-"`
	UnitLabel  string    `json:"unit" yaml:"unit"`
}

// Scale returns a copy of the record with every nutrient field multiplied by factor
func (r NutrientRecord) Scale(factor float64) NutrientRecord {
	r.EnergyKcal *= factor
	r.ProteinG *= factor
	r.CarbsG *= factor
	r.FatG *= factor
	r.SodiumMg *= factor
	return r
}

// IsZero reports whether every nutrient field is zero
func (r NutrientRecord) IsZero() bool {
	return r.EnergyKcal == 0 && r.ProteinG == 0 && r.CarbsG == 0 && r.FatG == 0 && r.SodiumMg == 0
}

// IngredientEntry is one line of a recipe's ingredient list
type IngredientEntry struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// NutrientContribution is the as-consumed nutrition of a single ingredient entry
type NutrientContribution struct {
	EnergyKcal float64 `json:"calories"`
	ProteinG   float64 `json:"protein"`
	CarbsG     float64 `json:"carbs"`
	FatG       float64 `json:"fat"`
	SaltG      float64 `json:"salt"`
}

// Add returns the field-wise sum of c and other
func (c NutrientContribution) Add(other NutrientContribution) NutrientContribution {
	return NutrientContribution{
		EnergyKcal: c.EnergyKcal + other.EnergyKcal,
		ProteinG:   c.ProteinG + other.ProteinG,
		CarbsG:     c.CarbsG + other.CarbsG,
		FatG:       c.FatG + other.FatG,
		SaltG:      c.SaltG + other.SaltG,
	}
}

// RecipeNutritionTotal is the rounded nutrition summary attached to a recipe.
// Energy, protein, carbs and fat carry one decimal; salt carries two.
type RecipeNutritionTotal struct {
	EnergyKcal float64 `json:"calories"`
	ProteinG   float64 `json:"protein"`
	CarbsG     float64 `json:"carbs"`
	FatG       float64 `json:"fat"`
	SaltG      float64 `json:"salt"`
}

// NewRecipeNutritionTotal rounds raw totals into a RecipeNutritionTotal
func NewRecipeNutritionTotal(sum NutrientContribution) *RecipeNutritionTotal {
	return &RecipeNutritionTotal{
		EnergyKcal: Round(sum.EnergyKcal, 1),
		ProteinG:   Round(sum.ProteinG, 1),
		CarbsG:     Round(sum.CarbsG, 1),
		FatG:       Round(sum.FatG, 1),
		SaltG:      Round(sum.SaltG, 2),
	}
}

// Round rounds v to the given number of decimal places, half away from zero
func Round(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}

// DiagnosticKind classifies a non-fatal advisory raised while computing nutrition
type DiagnosticKind string

const (
	// DiagnosticUnmatched means no matching tier found the ingredient
	DiagnosticUnmatched DiagnosticKind = "unmatched_ingredient"
	// DiagnosticUnknownUnit means the unit label was not recognized and the quantity was read as grams
	DiagnosticUnknownUnit DiagnosticKind = "unknown_unit"
	// DiagnosticComputationError means the entry could not be computed and contributed zero
	DiagnosticComputationError DiagnosticKind = "computation_error"
)

// Diagnostic is a human-readable advisory attached to a nutrition result
type Diagnostic struct {
	Kind       DiagnosticKind `json:"kind"`
	Ingredient string         `json:"ingredient"`
	Message    string         `json:"message"`
}
