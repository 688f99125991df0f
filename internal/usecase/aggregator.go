package usecase

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/recipelens/backend/internal/domain"
)

// defaultIgnored are header or summary rows that appear in ingredient lists but are not food
var defaultIgnored = []string{
	"portion", "one portion", "total", "total amount", "steep",
	"hot water at 75°c", "oil 500ml", "cup", "carbs", "protein", "fiber",
	"份", "一份", "总共", "总量", "闷泡", "75摄氏度热水", "油 500ml", "杯", "碳水", "蛋白质", "纤维",
}

// IgnoreSet holds normalized ingredient names that are skipped during aggregation
type IgnoreSet map[string]struct{}

// NewIgnoreSet builds an IgnoreSet from names
func NewIgnoreSet(names ...string) IgnoreSet {
	s := make(IgnoreSet, len(names))
	for _, n := range names {
		if n = domain.NormalizeName(n); n != "" {
			s[n] = struct{}{}
		}
	}
	return s
}

// DefaultIgnoreSet returns the built-in ignore list plus any extra names
func DefaultIgnoreSet(extra ...string) IgnoreSet {
	return NewIgnoreSet(append(append([]string{}, defaultIgnored...), extra...)...)
}

// Contains reports whether name is ignored
func (s IgnoreSet) Contains(name string) bool {
	_, ok := s[domain.NormalizeName(name)]
	return ok
}

// Names returns the ignored names in sorted order
func (s IgnoreSet) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// EntryOutcome describes what happened to one ingredient entry
type EntryOutcome string

const (
	OutcomeContributed EntryOutcome = "contributed"
	OutcomeSkipped     EntryOutcome = "skipped"
	OutcomeFailed      EntryOutcome = "failed"
)

// ContributionResult is the per-entry breakdown of an aggregation
type ContributionResult struct {
	Entry        domain.IngredientEntry      `json:"entry"`
	Outcome      EntryOutcome                `json:"outcome"`
	SkipReason   string                      `json:"skip_reason,omitempty"`
	Tier         string                      `json:"tier,omitempty"`
	MatchedName  string                      `json:"matched_name,omitempty"`
	Contribution domain.NutrientContribution `json:"contribution"`
	Error        string                      `json:"error,omitempty"`
	Err          error                       `json:"-"`
}

// AggregateResult is the outcome of aggregating a recipe's ingredient list.
// Total is nil when the list is empty.
type AggregateResult struct {
	Total         *domain.RecipeNutritionTotal `json:"nutrition"`
	Contributions []ContributionResult         `json:"contributions"`
	Diagnostics   []domain.Diagnostic          `json:"diagnostics"`
}

// Aggregator sums the contributions of a recipe's ingredient entries
type Aggregator struct {
	resolver *Resolver
	ignore   IgnoreSet
	logger   *zap.Logger
}

// NewAggregator creates an aggregator. A nil ignore set uses the defaults.
func NewAggregator(resolver *Resolver, ignore IgnoreSet, logger *zap.Logger) *Aggregator {
	if ignore == nil {
		ignore = DefaultIgnoreSet()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{resolver: resolver, ignore: ignore, logger: logger}
}

// Aggregate computes the rounded nutrition total for entries.
// A failing entry contributes zero and adds a computation_error diagnostic; it never aborts the recipe.
func (a *Aggregator) Aggregate(entries []domain.IngredientEntry) AggregateResult {
	result := AggregateResult{
		Contributions: make([]ContributionResult, 0, len(entries)),
		Diagnostics:   []domain.Diagnostic{},
	}
	if len(entries) == 0 {
		return result
	}

	var sum domain.NutrientContribution
	for _, entry := range entries {
		cr, diags := a.Contribute(entry)
		result.Contributions = append(result.Contributions, cr)
		result.Diagnostics = append(result.Diagnostics, diags...)
		if cr.Outcome == OutcomeContributed {
			sum = sum.Add(cr.Contribution)
		}
	}

	result.Total = domain.NewRecipeNutritionTotal(sum)
	return result
}

// Contribute computes a single entry's contribution along with any diagnostics it raised
func (a *Aggregator) Contribute(entry domain.IngredientEntry) (cr ContributionResult, diags []domain.Diagnostic) {
	cr = ContributionResult{Entry: entry}

	name := domain.NormalizeName(entry.Name)
	if name != "" && a.ignore.Contains(name) {
		cr.Outcome = OutcomeSkipped
		cr.SkipReason = "ignored"
		return cr, nil
	}
	if entry.Quantity == 0 {
		cr.Outcome = OutcomeSkipped
		cr.SkipReason = "zero_quantity"
		return cr, nil
	}

	defer func() {
		if r := recover(); r != nil {
			cr = a.failed(entry, fmt.Errorf("panic: %v", r))
			diags = []domain.Diagnostic{computationDiagnostic(entry, cr.Err)}
		}
	}()

	unit, unitDiag := a.unitOf(entry)
	contribution, res, err := a.compute(name, entry, unit)
	if err != nil {
		cr = a.failed(entry, err)
		return cr, []domain.Diagnostic{computationDiagnostic(entry, err)}
	}

	cr.Outcome = OutcomeContributed
	cr.Tier = res.Tier.String()
	cr.MatchedName = res.Name
	cr.Contribution = contribution
	if unitDiag != nil {
		diags = append(diags, *unitDiag)
	}
	if res.Diagnostic != nil {
		diags = append(diags, *res.Diagnostic)
	}
	return cr, diags
}

// unitOf parses the entry's unit label. An unrecognized label is read as grams
// against a per-100 record and reported with an unknown_unit diagnostic.
func (a *Aggregator) unitOf(entry domain.IngredientEntry) (domain.Unit, *domain.Diagnostic) {
	unit, err := domain.ParseUnit(entry.Unit)
	if err == nil {
		return unit, nil
	}
	a.logger.Warn("unrecognized unit, counting quantity as grams",
		zap.String("ingredient", entry.Name),
		zap.String("unit", entry.Unit),
	)
	return domain.FallbackUnit(entry.Unit), &domain.Diagnostic{
		Kind:       domain.DiagnosticUnknownUnit,
		Ingredient: entry.Name,
		Message:    fmt.Sprintf("unit %q not recognized, quantity counted as grams", entry.Unit),
	}
}

func (a *Aggregator) compute(name string, entry domain.IngredientEntry, unit domain.Unit) (domain.NutrientContribution, Resolution, error) {
	if name == "" {
		return domain.NutrientContribution{}, Resolution{}, domain.ErrEmptyIngredientName
	}
	if err := validateQuantity(entry.Quantity); err != nil {
		return domain.NutrientContribution{}, Resolution{}, err
	}

	res := a.resolver.resolve(name, unit)
	scale := ScaleFactor(entry.Quantity, unit, res)
	rec := res.Record.Scale(scale)

	c := domain.NutrientContribution{
		EnergyKcal: rec.EnergyKcal,
		ProteinG:   rec.ProteinG,
		CarbsG:     rec.CarbsG,
		FatG:       rec.FatG,
	}
	switch {
	case IsEdibleSalt(name):
		grams := entry.Quantity
		if !unit.IsInformal() {
			grams *= unit.Multiplier
		}
		c.SaltG = domain.Round(grams, 2)
	case res.PerUnit:
		c.SaltG = domain.Round(res.SaltPerUnitG*scale, 2)
	default:
		c.SaltG = ToSaltGrams(res.Record.SodiumMg, scale*100)
	}
	return c, res, nil
}

func (a *Aggregator) failed(entry domain.IngredientEntry, err error) ContributionResult {
	a.logger.Warn("ingredient contribution failed",
		zap.String("ingredient", entry.Name),
		zap.Float64("quantity", entry.Quantity),
		zap.String("unit", entry.Unit),
		zap.Error(err),
	)
	return ContributionResult{
		Entry:   entry,
		Outcome: OutcomeFailed,
		Error:   err.Error(),
		Err:     err,
	}
}

func computationDiagnostic(entry domain.IngredientEntry, err error) domain.Diagnostic {
	return domain.Diagnostic{
		Kind:       domain.DiagnosticComputationError,
		Ingredient: entry.Name,
		Message:    err.Error(),
	}
}
