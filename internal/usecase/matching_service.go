package usecase

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/recipelens/backend/internal/domain"
)

// Package-level compiled regex pattern for performance
var punctuationRegex = regexp.MustCompile(`[^\w\s]`)

// Token weight categories for scoring
const (
	weightFood        = 3.0 // Core food terms (milk, chicken, garlic)
	weightDescriptive = 2.0 // Descriptive terms (whole, raw, dried)
	weightDefault     = 1.0 // Everything else
	fuzzyWeightFactor = 0.8 // Fuzzy matches get 80% of normal weight
)

// Scoring bonuses
const (
	substringMatchBonus     = 10.0 // Ingredient name is a substring of the USDA description
	dataTypeFoundationBonus = 8.0  // USDA Foundation data type
	dataTypeLegacyBonus     = 6.0  // USDA SR Legacy data type
	dataTypeSurveyBonus     = 3.0  // USDA Survey (FNDDS) data type
	rawDescriptionBonus     = 4.0  // Description names the raw food
)

// foodTerms contains high-importance food keywords (weight 3.0)
var foodTerms = map[string]bool{
	// Proteins
	"chicken": true, "beef": true, "pork": true, "fish": true, "salmon": true,
	"turkey": true, "lamb": true, "shrimp": true, "tuna": true, "bacon": true,
	"tofu": true, "egg": true, "eggs": true, "duck": true, "squid": true,
	// Dairy
	"milk": true, "cheese": true, "yogurt": true, "butter": true, "cream": true,
	// Grains
	"bread": true, "rice": true, "pasta": true, "noodles": true, "flour": true,
	"wheat": true, "oats": true, "flatbread": true, "dumpling": true, "starch": true,
	// Produce
	"garlic": true, "ginger": true, "onion": true, "scallion": true, "potato": true,
	"tomato": true, "carrot": true, "cabbage": true, "spinach": true, "mushroom": true,
	"pepper": true, "chili": true, "cucumber": true, "eggplant": true, "broccoli": true,
	"lettuce": true, "celery": true, "corn": true, "beans": true, "sprouts": true,
	// Seasonings & Sauces
	"salt": true, "sugar": true, "vinegar": true, "sauce": true, "oil": true,
	"soy": true, "oyster": true, "sesame": true, "paste": true, "honey": true,
	// Beverages
	"water": true, "tea": true, "coffee": true, "juice": true, "wine": true,
}

// descriptiveTerms contains medium-importance descriptive keywords (weight 2.0)
var descriptiveTerms = map[string]bool{
	// Preparation/processing
	"whole": true, "skim": true, "reduced": true, "fat": true, "low": true,
	"raw": true, "cooked": true, "boiled": true, "fried": true, "roasted": true,
	"dried": true, "fresh": true, "frozen": true, "canned": true, "steamed": true,
	"smoked": true, "fermented": true, "ground": true, "light": true, "dark": true,
	// Variety
	"white": true, "brown": true, "red": true, "green": true, "black": true,
	"sweet": true, "hot": true, "spicy": true, "plain": true, "unsalted": true,
	"salted": true, "lean": true, "boneless": true, "skinless": true, "enriched": true,
}

// extendedStopWords includes basic English stop words plus recipe-line noise
var extendedStopWords = map[string]bool{
	// Basic English stop words
	"a": true, "an": true, "the": true, "and": true, "or": true,
	"of": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "with": true, "by": true, "from": true, "is": true,
	"it": true, "as": true, "be": true, "was": true, "are": true,
	// Units
	"oz": true, "lb": true, "lbs": true, "ml": true, "kg": true,
	"gram": true, "grams": true, "cup": true, "cups": true, "tbsp": true, "tsp": true,
	// USDA description filler
	"ns": true, "nfs": true, "made": true, "type": true,
	"includes": true, "prepared": true, "commercial": true, "form": true,
}

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	MinConfidenceThreshold float64
	EnableFuzzyMatching    bool
	FuzzyEditDistance      int
}

// MatchingService scores USDA foods against a reference ingredient name
type MatchingService struct {
	minConfidenceThreshold float64
	enableFuzzyMatching    bool
	fuzzyEditDistance      int
	logger                 *zap.Logger
}

// NewMatchingService creates a new matching service with the given configuration
func NewMatchingService(config MatchConfig, logger *zap.Logger) *MatchingService {
	threshold := config.MinConfidenceThreshold
	if threshold <= 0 {
		threshold = 40.0 // Default 40% threshold
	}

	fuzzyDist := config.FuzzyEditDistance
	if fuzzyDist <= 0 {
		fuzzyDist = 1
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &MatchingService{
		minConfidenceThreshold: threshold,
		enableFuzzyMatching:    config.EnableFuzzyMatching,
		fuzzyEditDistance:      fuzzyDist,
		logger:                 logger,
	}
}

// FindBestMatch finds the USDA food that best matches an ingredient name.
// Returns the best match with confidence score, and ErrLowConfidence alongside it when
// the score is below the threshold.
func (s *MatchingService) FindBestMatch(
	ctx context.Context,
	ingredient string,
	usdaFoods []domain.USDAFood,
) (*domain.MatchResult, error) {
	if strings.TrimSpace(ingredient) == "" {
		return nil, domain.ErrInvalidRequest
	}

	if len(usdaFoods) == 0 {
		return nil, domain.ErrProductNotFound
	}

	var bestMatch *domain.MatchResult
	highestScore := -1.0 // any score, including 0, beats the initial value

	for _, food := range usdaFoods {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		score, matchedTokens := s.calculateMatchScore(ingredient, food.Description, food.DataType)

		s.logger.Debug("scored USDA candidate",
			zap.String("ingredient", ingredient),
			zap.String("description", food.Description),
			zap.String("data_type", food.DataType),
			zap.Float64("score", score),
			zap.Strings("matched", matchedTokens),
		)

		if score > highestScore {
			highestScore = score
			bestMatch = &domain.MatchResult{
				FdcID:         food.FdcID,
				Description:   food.Description,
				MatchScore:    score,
				MatchedTokens: matchedTokens,
			}
		}
	}

	if bestMatch.MatchScore < s.minConfidenceThreshold {
		return bestMatch, domain.ErrLowConfidence
	}

	return bestMatch, nil
}

// calculateMatchScore computes similarity between an ingredient name and a USDA description.
// Uses a weighted combination of:
//   - Ingredient token coverage, weighted by term importance (most important)
//   - USDA token coverage
//   - Jaccard similarity
//
// plus substring, data type and raw-food bonuses. Returns the score (0-100) and the matched tokens.
func (s *MatchingService) calculateMatchScore(ingredient, usdaDescription, dataType string) (float64, []string) {
	ingredientTokens := tokenize(ingredient)
	usdaTokens := tokenize(usdaDescription)

	if len(ingredientTokens) == 0 || len(usdaTokens) == 0 {
		return 0, nil
	}

	weighted, totalWeight, matchedTokens := s.weightedCoverage(ingredientTokens, usdaTokens)
	ingredientCoverage := weighted / totalWeight

	usdaMatched, _ := findIntersection(usdaTokens, ingredientTokens)
	usdaCoverage := float64(usdaMatched) / float64(len(usdaTokens))

	exactMatched, _ := findIntersection(ingredientTokens, usdaTokens)
	jaccard := float64(exactMatched) / float64(findUnion(ingredientTokens, usdaTokens))

	score := (ingredientCoverage*0.60 + usdaCoverage*0.20 + jaccard*0.20) * 70

	ingredientLower := strings.ToLower(strings.TrimSpace(ingredient))
	usdaLower := strings.ToLower(usdaDescription)

	if len(ingredientLower) > 3 && strings.Contains(usdaLower, ingredientLower) {
		score += substringMatchBonus
	}

	switch dataType {
	case "Foundation":
		score += dataTypeFoundationBonus
	case "SR Legacy":
		score += dataTypeLegacyBonus
	case "Survey (FNDDS)":
		score += dataTypeSurveyBonus
	}

	for _, t := range usdaTokens {
		if t == "raw" {
			score += rawDescriptionBonus
			break
		}
	}

	if score > 100 {
		score = 100
	}

	return score, matchedTokens
}

// weightedCoverage sums the weights of ingredient tokens found in the USDA tokens.
// With fuzzy matching enabled, near misses ("tomatos" vs "tomatoes") count at a reduced weight.
func (s *MatchingService) weightedCoverage(ingredientTokens, usdaTokens []string) (float64, float64, []string) {
	usdaSet := make(map[string]bool, len(usdaTokens))
	for _, t := range usdaTokens {
		usdaSet[t] = true
	}

	var matched, total float64
	var matchedTokens []string
	for _, tok := range ingredientTokens {
		w := tokenWeight(tok)
		total += w
		if usdaSet[tok] {
			matched += w
			matchedTokens = append(matchedTokens, tok)
			continue
		}
		if !s.enableFuzzyMatching {
			continue
		}
		for _, u := range usdaTokens {
			if fuzzyTokenMatch(tok, u, s.fuzzyEditDistance) {
				matched += w * fuzzyWeightFactor
				matchedTokens = append(matchedTokens, tok)
				break
			}
		}
	}
	return matched, total, matchedTokens
}

func tokenWeight(token string) float64 {
	switch {
	case foodTerms[token]:
		return weightFood
	case descriptiveTerms[token]:
		return weightDescriptive
	default:
		return weightDefault
	}
}

// tokenize splits a string into normalized lowercase tokens.
// Removes punctuation, stop words and pure numeric tokens.
func tokenize(s string) []string {
	cleaned := punctuationRegex.ReplaceAllString(strings.ToLower(s), " ")
	words := strings.Fields(cleaned)

	var tokens []string
	for _, word := range words {
		if len(word) <= 1 {
			continue
		}
		if extendedStopWords[word] {
			continue
		}
		if isNumeric(word) {
			continue
		}
		tokens = append(tokens, word)
	}

	return tokens
}

// isNumeric checks if a string contains only digits
func isNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

// fuzzyTokenMatch checks if two tokens are similar within the edit distance threshold
func fuzzyTokenMatch(token1, token2 string, threshold int) bool {
	if token1 == token2 {
		return true
	}

	// Only apply fuzzy matching to tokens of 4+ chars to avoid false positives
	if len(token1) < 4 || len(token2) < 4 {
		return false
	}

	lenDiff := len(token1) - len(token2)
	if lenDiff < 0 {
		lenDiff = -lenDiff
	}
	if lenDiff > threshold {
		return false
	}

	return levenshteinDistance(token1, token2) <= threshold
}

// levenshteinDistance calculates the edit distance between two strings
func levenshteinDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	// two rows instead of the full matrix
	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(r2)]
}

// findIntersection returns the count of common tokens and the list of matched tokens
func findIntersection(tokens1, tokens2 []string) (int, []string) {
	set := make(map[string]bool)
	for _, t := range tokens1 {
		set[t] = true
	}

	var matched []string
	seen := make(map[string]bool)
	for _, t := range tokens2 {
		if set[t] && !seen[t] {
			matched = append(matched, t)
			seen[t] = true
		}
	}

	return len(matched), matched
}

// findUnion returns the count of unique tokens across both sets
func findUnion(tokens1, tokens2 []string) int {
	set := make(map[string]bool)
	for _, t := range tokens1 {
		set[t] = true
	}
	for _, t := range tokens2 {
		set[t] = true
	}
	return len(set)
}
