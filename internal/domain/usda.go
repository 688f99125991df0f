package domain

// USDAFood represents a food item from the USDA FoodData Central API
type USDAFood struct {
	FdcID       int            `json:"fdcId"`
	Description string         `json:"description"`
	DataType    string         `json:"dataType"`
	FoodClass   string         `json:"foodClass,omitempty"`
	Nutrients   []USDANutrient `json:"foodNutrients"`
}

// USDANutrient represents a single nutrient from USDA data
type USDANutrient struct {
	NutrientID     int     `json:"nutrientId"`
	NutrientName   string  `json:"nutrientName"`
	NutrientNumber string  `json:"nutrientNumber,omitempty"`
	UnitName       string  `json:"unitName"`
	Value          float64 `json:"value"`
}

// USDASearchResponse represents the response from USDA search API
type USDASearchResponse struct {
	Foods       []USDAFood `json:"foods"`
	TotalHits   int        `json:"totalHits"`
	CurrentPage int        `json:"currentPage"`
	TotalPages  int        `json:"totalPages"`
}

// MatchResult represents the outcome of picking a USDA food for a reference name
type MatchResult struct {
	FdcID         int      `json:"fdcId"`
	Description   string   `json:"description"`
	MatchScore    float64  `json:"matchScore"`
	MatchedTokens []string `json:"matchedTokens,omitempty"`
}
