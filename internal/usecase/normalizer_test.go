package usecase

import (
	"errors"
	"math"
	"testing"

	"github.com/recipelens/backend/internal/domain"
)

func mustUnit(t *testing.T, label string) domain.Unit {
	t.Helper()
	u, err := domain.ParseUnit(label)
	if err != nil {
		t.Fatalf("ParseUnit(%q): %v", label, err)
	}
	return u
}

func TestScaleFactor(t *testing.T) {
	per100 := Resolution{Query: "flour", Tier: TierExact}
	perUnit := Resolution{Query: "egg", Tier: TierInformalExact, PerUnit: true}

	tests := []struct {
		name     string
		quantity float64
		unit     string
		res      Resolution
		want     float64
	}{
		{"grams", 150, "g", per100, 1.5},
		{"empty unit means grams", 50, "", per100, 0.5},
		{"kilograms", 0.5, "kg", per100, 5},
		{"milligrams", 500, "mg", per100, 0.005},
		{"milliliters", 200, "ml", per100, 2},
		{"liters", 1.5, "l", per100, 15},
		{"per-unit record scales by count", 2, "piece", perUnit, 2},
		{"piece on per-100 record", 2, "piece", per100, 2},
		{"clove on per-100 record", 4, "clove", per100, 0.12},
		{"drop on per-100 record", 10, "drop", per100, 0.05},
		{"cup on per-100 record", 2, "cup", per100, 5},
		{"cup of water", 3, "cup", Resolution{Query: "water", PerUnit: true}, 0},
		{"cup of hot water", 1, "cup", Resolution{Query: "hot water"}, 0},
		{"cup of watermelon", 1, "cup", Resolution{Query: "watermelon"}, 2.5},
		{"water by volume", 200, "ml", Resolution{Query: "water"}, 2},
		{"zero quantity", 0, "g", per100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScaleFactor(tt.quantity, mustUnit(t, tt.unit), tt.res)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ScaleFactor(%v, %q) = %v, want %v", tt.quantity, tt.unit, got, tt.want)
			}
		})
	}
}

func TestValidateQuantity(t *testing.T) {
	for _, q := range []float64{0, 0.5, 1000} {
		if err := validateQuantity(q); err != nil {
			t.Errorf("validateQuantity(%v) = %v, want nil", q, err)
		}
	}
	for _, q := range []float64{-1, math.NaN(), math.Inf(1)} {
		if err := validateQuantity(q); !errors.Is(err, domain.ErrInvalidQuantity) {
			t.Errorf("validateQuantity(%v) = %v, want ErrInvalidQuantity", q, err)
		}
	}
}
