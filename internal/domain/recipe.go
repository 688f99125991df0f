package domain

import (
	"encoding/json"
	"fmt"
)

// Recipe is a record of the recipe collection.
// Fields other than id, title, ingredients and nutrition are kept verbatim in Extra
// so that a load/save round trip does not drop data owned by other tools.
type Recipe struct {
	ID          string                     `json:"id,omitempty"`
	Title       string                     `json:"title"`
	Ingredients []IngredientEntry          `json:"ingredients"`
	Nutrition   *RecipeNutritionTotal      `json:"nutrition,omitempty"`
	Extra       map[string]json.RawMessage `json:"-"`
}

var recipeKnownFields = []string{"id", "title", "ingredients", "nutrition"}

// UnmarshalJSON decodes the known fields and stashes the rest in Extra
func (r *Recipe) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	type plain Recipe
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decode recipe: %w", err)
	}

	for _, k := range recipeKnownFields {
		delete(raw, k)
	}
	if len(raw) > 0 {
		p.Extra = raw
	}

	*r = Recipe(p)
	return nil
}

// MarshalJSON writes the known fields merged with Extra
func (r Recipe) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(r.Extra)+4)
	for k, v := range r.Extra {
		out[k] = v
	}

	put := func(key string, v interface{}) error {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode recipe %s: %w", key, err)
		}
		out[key] = b
		return nil
	}

	if r.ID != "" {
		if err := put("id", r.ID); err != nil {
			return nil, err
		}
	}
	if err := put("title", r.Title); err != nil {
		return nil, err
	}
	ingredients := r.Ingredients
	if ingredients == nil {
		ingredients = []IngredientEntry{}
	}
	if err := put("ingredients", ingredients); err != nil {
		return nil, err
	}
	if r.Nutrition != nil {
		if err := put("nutrition", r.Nutrition); err != nil {
			return nil, err
		}
	}

	return json.Marshal(out)
}

// Selection is a set of chosen recipes with optional per-recipe servings multipliers
type Selection struct {
	RecipeIDs []string           `json:"recipe_ids"`
	Scales    map[string]float64 `json:"scales,omitempty"`
}
