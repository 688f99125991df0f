package usecase

import (
	"testing"

	"github.com/recipelens/backend/internal/domain"
)

type fixtureEntry struct {
	unit string
	name string
	rec  domain.NutrientRecord
}

// newTestTable builds a small reference table. Primary entries are declared in the order given.
func newTestTable(t *testing.T) *domain.ReferenceTable {
	t.Helper()

	b := domain.NewReferenceTableBuilder()
	primary := []fixtureEntry{
		{name: "egg", rec: domain.NutrientRecord{EnergyKcal: 144, ProteinG: 13.3, CarbsG: 1.5, FatG: 8.8}},
		{name: "salt", rec: domain.NutrientRecord{SodiumMg: 100000}},
		{name: "soy sauce", rec: domain.NutrientRecord{EnergyKcal: 63, ProteinG: 5.6, CarbsG: 9.9, FatG: 0.1, SodiumMg: 5757}},
		{name: "water", rec: domain.NutrientRecord{UnitLabel: "ml"}},
		{name: "milk", rec: domain.NutrientRecord{EnergyKcal: 54, ProteinG: 3, CarbsG: 3.4, FatG: 3.2, SodiumMg: 40, UnitLabel: "ml"}},
		{name: "garlic", rec: domain.NutrientRecord{EnergyKcal: 149, ProteinG: 6.4, CarbsG: 33.1, FatG: 0.5, SodiumMg: 17}},
		{name: "garlic paste", rec: domain.NutrientRecord{EnergyKcal: 120, ProteinG: 5, CarbsG: 25, FatG: 1, SodiumMg: 900}},
		{name: "potato", rec: domain.NutrientRecord{EnergyKcal: 77, ProteinG: 2, CarbsG: 17, FatG: 0.1, SodiumMg: 6}},
		{name: "white vinegar", rec: domain.NutrientRecord{EnergyKcal: 18, CarbsG: 0.04, SodiumMg: 2, UnitLabel: "ml"}},
	}
	for _, e := range primary {
		if err := b.Add(e.name, e.rec); err != nil {
			t.Fatalf("Add(%q): %v", e.name, err)
		}
	}

	informal := []fixtureEntry{
		{unit: domain.UnitPiece, name: "egg", rec: domain.NutrientRecord{EnergyKcal: 72, ProteinG: 6.5, CarbsG: 0.5, FatG: 4.4}},
		{unit: domain.UnitPiece, name: "flatbread", rec: domain.NutrientRecord{EnergyKcal: 280, ProteinG: 9, CarbsG: 58, FatG: 1, SodiumMg: 500}},
		{unit: domain.UnitClove, name: "garlic", rec: domain.NutrientRecord{EnergyKcal: 4, ProteinG: 0.2, CarbsG: 0.9, FatG: 0.01}},
		{unit: domain.UnitCup, name: "water"},
	}
	for _, e := range informal {
		if err := b.AddInformal(e.unit, e.name, e.rec); err != nil {
			t.Fatalf("AddInformal(%q, %q): %v", e.unit, e.name, err)
		}
	}

	table, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return table
}
