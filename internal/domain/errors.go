package domain

import "errors"

var (
	// ErrEmptyReferenceTable is returned when the reference table is missing or has no entries
	ErrEmptyReferenceTable = errors.New("reference table is empty")

	// ErrInvalidReferenceTable is returned when the reference table document is malformed
	ErrInvalidReferenceTable = errors.New("invalid reference table")

	// ErrUnknownUnit is returned when an ingredient unit label is not recognized
	ErrUnknownUnit = errors.New("unknown unit")

	// ErrInvalidQuantity is returned for negative or non-finite ingredient quantities
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrEmptyIngredientName is returned when an ingredient entry has a blank name
	ErrEmptyIngredientName = errors.New("empty ingredient name")

	// ErrRecipeNotFound is returned when a recipe id is not present in the store
	ErrRecipeNotFound = errors.New("recipe not found")

	// ErrProductNotFound is returned when a food cannot be found in USDA database
	ErrProductNotFound = errors.New("product not found in USDA database")

	// ErrLowConfidence is returned when the match confidence is below the threshold
	ErrLowConfidence = errors.New("match confidence below threshold")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrUSDAAPIFailure is returned when USDA API request fails
	ErrUSDAAPIFailure = errors.New("USDA API request failed")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")
)
