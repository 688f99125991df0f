package usecase

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// QueryPreprocessor turns recipe ingredient names into focused FoodData Central search queries
type QueryPreprocessor struct {
	logger *zap.Logger
}

// Compiled regex patterns for query preprocessing
var (
	// Matches amounts written into the name, e.g. "500g", "2 tbsp", "1/2 cup", "3 cloves"
	amountPattern = regexp.MustCompile(`\b\d+(?:[./]\d+)?\s*(?:kg|g|mg|ml|l|oz|lbs?|tbsp|tsp|cups?|cloves?|pieces?|pcs|heads?|drops?)\b`)

	// Matches bare numbers and fractions, e.g. "2", "1/2"
	numberPattern = regexp.MustCompile(`\b\d+(?:[./]\d+)?\b`)

	// Matches parenthesized notes, e.g. "(optional)", "(about 2)"
	parenPattern = regexp.MustCompile(`\([^)]*\)`)

	// Characters the USDA search proxy rejects
	queryUnsafeChars = regexp.MustCompile(`[#%+@!^*=\[\]{}<>|\\~&` + "`" + `]`)

	multiSpacePattern = regexp.MustCompile(`\s+`)
)

// queryNoiseWords are preparation and serving words that don't identify a food
var queryNoiseWords = map[string]bool{
	// Preparation
	"minced":    true,
	"chopped":   true,
	"diced":     true,
	"sliced":    true,
	"grated":    true,
	"crushed":   true,
	"shredded":  true,
	"peeled":    true,
	"julienned": true,
	"cubed":     true,
	"halved":    true,
	"beaten":    true,
	"softened":  true,
	"melted":    true,
	"divided":   true,

	// Serving notes
	"optional":    true,
	"garnish":     true,
	"taste":       true,
	"needed":      true,
	"about":       true,
	"approx":      true,
	"roughly":     true,
	"finely":      true,
	"thinly":      true,
	"coarsely":    true,
	"freshly":     true,
	"room":        true,
	"temperature": true,

	// Size descriptors
	"large":   true,
	"medium":  true,
	"small":   true,
	"big":     true,
	"handful": true,
	"pinch":   true,
	"dash":    true,
}

// NewQueryPreprocessor creates a new query preprocessor
func NewQueryPreprocessor(logger *zap.Logger) *QueryPreprocessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryPreprocessor{logger: logger}
}

// PreprocessQuery cleans an ingredient name for USDA API search.
// Removes amounts, parenthesized notes, preparation words and unsafe characters.
func (p *QueryPreprocessor) PreprocessQuery(name string) string {
	if strings.TrimSpace(name) == "" {
		return ""
	}

	original := name
	cleaned := strings.ToLower(name)

	// text after a comma is usually a preparation note ("garlic, minced")
	if idx := strings.Index(cleaned, ","); idx > 0 {
		cleaned = cleaned[:idx]
	}

	cleaned = parenPattern.ReplaceAllString(cleaned, " ")
	cleaned = amountPattern.ReplaceAllString(cleaned, " ")
	cleaned = numberPattern.ReplaceAllString(cleaned, " ")
	cleaned = queryUnsafeChars.ReplaceAllString(cleaned, " ")
	cleaned = p.removeNoiseWords(cleaned)
	cleaned = multiSpacePattern.ReplaceAllString(cleaned, " ")
	cleaned = strings.Trim(cleaned, " -,;:")

	// Limit query length to avoid USDA API issues
	if len(cleaned) > 100 {
		cleaned = cleaned[:100]
		if lastSpace := strings.LastIndex(cleaned, " "); lastSpace > 50 {
			cleaned = cleaned[:lastSpace]
		}
	}

	p.logger.Debug("preprocessed ingredient query",
		zap.String("input", original),
		zap.String("output", cleaned),
	)
	return cleaned
}

// removeNoiseWords removes preparation and serving terms from the query
func (p *QueryPreprocessor) removeNoiseWords(s string) string {
	words := strings.Fields(s)
	kept := make([]string, 0, len(words))

	for _, word := range words {
		cleanWord := strings.Trim(word, ",.!?;:-'\"")
		if cleanWord == "" || queryNoiseWords[cleanWord] || extendedStopWords[cleanWord] {
			continue
		}
		kept = append(kept, word)
	}

	return strings.Join(kept, " ")
}

// ExtractFoodKeywords extracts the most important food-related keywords from text.
// Returns a slice of keywords ordered by importance
func (p *QueryPreprocessor) ExtractFoodKeywords(text string) []string {
	tokens := tokenize(text)

	var highPriority []string // Food terms (weight 3)
	var medPriority []string  // Descriptive terms (weight 2)
	var lowPriority []string  // Other terms (weight 1)

	for _, token := range tokens {
		switch {
		case foodTerms[token]:
			highPriority = append(highPriority, token)
		case descriptiveTerms[token]:
			medPriority = append(medPriority, token)
		default:
			lowPriority = append(lowPriority, token)
		}
	}

	result := make([]string, 0, len(tokens))
	result = append(result, highPriority...)
	result = append(result, medPriority...)
	result = append(result, lowPriority...)
	return result
}
