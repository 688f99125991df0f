package usecase

import (
	"fmt"
	"math"

	"github.com/recipelens/backend/internal/domain"
)

// ScaleFactor returns the factor applied to res.Record to get the as-consumed amounts.
// Per-unit records scale by count; per-100 records scale by the quantity expressed in
// reference units divided by 100. A cup of water contributes nothing.
func ScaleFactor(quantity float64, unit domain.Unit, res Resolution) float64 {
	if unit.Label == domain.UnitCup && denotesWater(res.Query) {
		return 0
	}
	if res.PerUnit {
		return quantity
	}
	// density is taken as 1, so grams and milliliters are interchangeable
	return quantity * unit.Multiplier / 100
}

func validateQuantity(quantity float64) error {
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) || quantity < 0 {
		return fmt.Errorf("%w: %v", domain.ErrInvalidQuantity, quantity)
	}
	return nil
}
