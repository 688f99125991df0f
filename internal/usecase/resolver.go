package usecase

import (
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/recipelens/backend/internal/domain"
)

// MatchTier identifies which lookup strategy resolved an ingredient
type MatchTier int

const (
	// TierInformalExact matched a per-unit record declared under the entry's informal unit
	TierInformalExact MatchTier = iota + 1
	// TierInformalDerived built a per-unit record from a primary record and the unit's constant
	TierInformalDerived
	// TierExact matched a primary record by name
	TierExact
	// TierSubstring matched the first primary record whose name contains or is contained by the query
	TierSubstring
	// TierFallback found nothing; the record is all zeros
	TierFallback
)

// String returns the tier name used in breakdowns and logs
func (t MatchTier) String() string {
	switch t {
	case TierInformalExact:
		return "informal_exact"
	case TierInformalDerived:
		return "informal_derived"
	case TierExact:
		return "exact"
	case TierSubstring:
		return "substring"
	case TierFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Resolution is the outcome of resolving one ingredient name.
// PerUnit records are expressed per one informal unit and carry a precomputed salt figure;
// all other records are per 100 g or 100 ml.
type Resolution struct {
	Query        string
	Name         string
	Tier         MatchTier
	Record       domain.NutrientRecord
	PerUnit      bool
	SaltPerUnitG float64
	Diagnostic   *domain.Diagnostic
}

// matcher is one tier of the resolution chain
type matcher interface {
	match(query string, unit domain.Unit) (Resolution, bool)
}

// Resolver maps an ingredient name and unit to a nutrient record.
// Tiers are tried in order and the first hit wins; resolution never fails.
type Resolver struct {
	table    *domain.ReferenceTable
	matchers []matcher
	logger   *zap.Logger
}

// NewResolver creates a resolver over a built reference table
func NewResolver(table *domain.ReferenceTable, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		table: table,
		matchers: []matcher{
			informalExactMatcher{table: table},
			informalDerivedMatcher{table: table},
			exactMatcher{table: table},
			substringMatcher{table: table},
		},
		logger: logger,
	}
}

// Table returns the reference table the resolver reads from
func (r *Resolver) Table() *domain.ReferenceTable {
	return r.table
}

// Resolve resolves name under a raw unit label.
// An unrecognized unit label only disables the informal tiers.
func (r *Resolver) Resolve(name, unitLabel string) Resolution {
	unit, err := domain.ParseUnit(unitLabel)
	if err != nil {
		unit = domain.FallbackUnit(unitLabel)
	}
	return r.resolve(domain.NormalizeName(name), unit)
}

func (r *Resolver) resolve(query string, unit domain.Unit) Resolution {
	if query != "" {
		for _, m := range r.matchers {
			if res, ok := m.match(query, unit); ok {
				res.Query = query
				return res
			}
		}
	}

	r.logger.Warn("ingredient not found in reference table",
		zap.String("ingredient", query),
		zap.String("unit", unit.Label),
	)
	return Resolution{
		Query:  query,
		Tier:   TierFallback,
		Record: domain.NutrientRecord{Basis: domain.BasisMass, UnitLabel: "g"},
		Diagnostic: &domain.Diagnostic{
			Kind:       domain.DiagnosticUnmatched,
			Ingredient: query,
			Message:    fmt.Sprintf("no reference data for %q, counted as zero", query),
		},
	}
}

type informalExactMatcher struct {
	table *domain.ReferenceTable
}

func (m informalExactMatcher) match(query string, unit domain.Unit) (Resolution, bool) {
	if !unit.IsInformal() {
		return Resolution{}, false
	}
	rec, ok := m.table.Informal(unit.Label, query)
	if !ok {
		return Resolution{}, false
	}
	return perUnitResolution(query, TierInformalExact, rec), true
}

// informalDerivedMatcher applies only to names present in the primary table.
// A per-unit record whose name or one of its keywords appears as a whole word run in the
// query takes precedence ("large egg" under piece uses the declared egg record, as does
// 蛋黄 through the 蛋 keyword); otherwise the primary record is scaled by the unit's
// fixed constant.
type informalDerivedMatcher struct {
	table *domain.ReferenceTable
}

func (m informalDerivedMatcher) match(query string, unit domain.Unit) (Resolution, bool) {
	if !unit.IsInformal() {
		return Resolution{}, false
	}
	base, ok := m.table.Primary(query)
	if !ok {
		return Resolution{}, false
	}

	for _, e := range m.table.InformalEntries(unit.Label) {
		if containsWords(query, e.Name) || containsAnyWords(query, e.Keywords) {
			return perUnitResolution(e.Name, TierInformalDerived, e.Record), true
		}
	}

	rec := base.Scale(unit.Multiplier / 100)
	rec.Basis = domain.BasisCount
	rec.UnitLabel = unit.Label
	return Resolution{
		Name:         query,
		Tier:         TierInformalDerived,
		Record:       rec,
		PerUnit:      true,
		SaltPerUnitG: ToSaltGrams(base.SodiumMg, unit.Multiplier),
	}, true
}

type exactMatcher struct {
	table *domain.ReferenceTable
}

func (m exactMatcher) match(query string, _ domain.Unit) (Resolution, bool) {
	rec, ok := m.table.Primary(query)
	if !ok {
		return Resolution{}, false
	}
	return Resolution{Name: query, Tier: TierExact, Record: rec}, true
}

// substringMatcher returns the first primary entry, in declaration order, whose name
// contains the query or is contained in it.
type substringMatcher struct {
	table *domain.ReferenceTable
}

func (m substringMatcher) match(query string, _ domain.Unit) (Resolution, bool) {
	for _, e := range m.table.Entries() {
		if strings.Contains(query, e.Name) || strings.Contains(e.Name, query) {
			return Resolution{Name: e.Name, Tier: TierSubstring, Record: e.Record}, true
		}
	}
	return Resolution{}, false
}

func perUnitResolution(name string, tier MatchTier, rec domain.NutrientRecord) Resolution {
	return Resolution{
		Name:         name,
		Tier:         tier,
		Record:       rec,
		PerUnit:      true,
		SaltPerUnitG: domain.Round(rec.SodiumMg/1000*sodiumToSalt, 2),
	}
}

// containsWords reports whether key occurs in name as a run of whole words.
// Keys written in scripts without word separators fall back to plain substring matching.
func containsWords(name, key string) bool {
	if key == "" {
		return false
	}
	if !isSpaced(key) {
		return strings.Contains(name, key)
	}
	words := strings.FieldsFunc(name, isWordSeparator)
	keyWords := strings.FieldsFunc(key, isWordSeparator)
	if len(keyWords) == 0 || len(keyWords) > len(words) {
		return false
	}
	for i := 0; i+len(keyWords) <= len(words); i++ {
		matched := true
		for j, kw := range keyWords {
			if words[i+j] != kw {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}

func containsAnyWords(name string, keys []string) bool {
	for _, k := range keys {
		if containsWords(name, k) {
			return true
		}
	}
	return false
}

func isWordSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// isSpaced reports whether s is written in a script that separates words with spaces
func isSpaced(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r) {
			return false
		}
	}
	return true
}

// denotesWater reports whether an ingredient name refers to plain water
func denotesWater(name string) bool {
	return containsWords(name, "water") || strings.HasSuffix(name, "水")
}
