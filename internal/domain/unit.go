package domain

import (
	"fmt"
	"strings"
)

// UnitKind groups unit labels by how they convert to reference units
type UnitKind int

const (
	// UnitMass labels convert to grams
	UnitMass UnitKind = iota
	// UnitVolume labels convert to milliliters
	UnitVolume
	// UnitInformal labels are counted (piece, head, clove, drop, cup)
	UnitInformal
)

// Canonical informal unit labels
const (
	UnitPiece = "piece"
	UnitHead  = "head"
	UnitClove = "clove"
	UnitDrop  = "drop"
	UnitCup   = "cup"
)

// Unit is a parsed ingredient unit.
// Multiplier is the number of reference units (g or ml) in one of this unit;
// for informal units it is the fixed approximation used when no per-unit record exists.
type Unit struct {
	Label      string
	Kind       UnitKind
	Basis      UnitBasis
	Multiplier float64
}

// IsInformal reports whether the unit is a counted informal unit
func (u Unit) IsInformal() bool {
	return u.Kind == UnitInformal
}

var (
	unitGram       = Unit{Label: "g", Kind: UnitMass, Basis: BasisMass, Multiplier: 1}
	unitKilogram   = Unit{Label: "kg", Kind: UnitMass, Basis: BasisMass, Multiplier: 1000}
	unitMilligram  = Unit{Label: "mg", Kind: UnitMass, Basis: BasisMass, Multiplier: 0.001}
	unitMilliliter = Unit{Label: "ml", Kind: UnitVolume, Basis: BasisVolume, Multiplier: 1}
	unitLiter      = Unit{Label: "l", Kind: UnitVolume, Basis: BasisVolume, Multiplier: 1000}

	// one piece ≈ 100 g, one head ≈ 100 g, one clove ≈ 3 g, one drop ≈ 0.5 ml, one cup ≈ 250 ml
	unitPiece = Unit{Label: UnitPiece, Kind: UnitInformal, Basis: BasisMass, Multiplier: 100}
	unitHead  = Unit{Label: UnitHead, Kind: UnitInformal, Basis: BasisMass, Multiplier: 100}
	unitClove = Unit{Label: UnitClove, Kind: UnitInformal, Basis: BasisMass, Multiplier: 3}
	unitDrop  = Unit{Label: UnitDrop, Kind: UnitInformal, Basis: BasisVolume, Multiplier: 0.5}
	unitCup   = Unit{Label: UnitCup, Kind: UnitInformal, Basis: BasisVolume, Multiplier: 250}
)

// unitAliases maps every accepted spelling to its unit.
// Chinese labels are the ones used by the recipe collection this table was first built for.
var unitAliases = map[string]Unit{
	"":           unitGram,
	"g":          unitGram,
	"gram":       unitGram,
	"grams":      unitGram,
	"克":          unitGram,
	"kg":         unitKilogram,
	"kilogram":   unitKilogram,
	"kilograms":  unitKilogram,
	"千克":         unitKilogram,
	"公斤":         unitKilogram,
	"mg":         unitMilligram,
	"milligram":  unitMilligram,
	"milligrams": unitMilligram,
	"毫克":         unitMilligram,

	"ml":          unitMilliliter,
	"milliliter":  unitMilliliter,
	"milliliters": unitMilliliter,
	"millilitre":  unitMilliliter,
	"millilitres": unitMilliliter,
	"毫升":          unitMilliliter,
	"l":           unitLiter,
	"liter":       unitLiter,
	"liters":      unitLiter,
	"litre":       unitLiter,
	"litres":      unitLiter,
	"升":           unitLiter,

	"piece":  unitPiece,
	"pieces": unitPiece,
	"pc":     unitPiece,
	"pcs":    unitPiece,
	"个":      unitPiece,
	"head":   unitHead,
	"heads":  unitHead,
	"头":      unitHead,
	"clove":  unitClove,
	"cloves": unitClove,
	"瓣":      unitClove,
	"drop":   unitDrop,
	"drops":  unitDrop,
	"滴":      unitDrop,
	"cup":    unitCup,
	"cups":   unitCup,
	"杯":      unitCup,
}

// ParseUnit resolves a raw unit label. An empty label means grams.
func ParseUnit(raw string) (Unit, error) {
	u, ok := unitAliases[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return Unit{}, fmt.Errorf("%w: %q", ErrUnknownUnit, raw)
	}
	return u, nil
}

// FallbackUnit stands in for a label ParseUnit does not recognize.
// The quantity is read as grams against a per-100 record.
func FallbackUnit(raw string) Unit {
	return Unit{Label: strings.ToLower(strings.TrimSpace(raw)), Kind: UnitMass, Basis: BasisMass, Multiplier: 1}
}

// InformalUnitLabels returns the canonical informal unit labels
func InformalUnitLabels() []string {
	return []string{UnitPiece, UnitHead, UnitClove, UnitDrop, UnitCup}
}
