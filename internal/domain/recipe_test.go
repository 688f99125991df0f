package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecipeJSONKeepsUnknownFields(t *testing.T) {
	input := `{
		"id": "r1",
		"title": "Tomato Egg",
		"category": "home",
		"steps": ["beat eggs", "fry"],
		"ingredients": [{"name": "egg", "quantity": 2, "unit": "piece"}]
	}`

	var r Recipe
	require.NoError(t, json.Unmarshal([]byte(input), &r))
	assert.Equal(t, "r1", r.ID)
	assert.Equal(t, "Tomato Egg", r.Title)
	require.Len(t, r.Ingredients, 1)
	assert.Equal(t, 2.0, r.Ingredients[0].Quantity)
	assert.Nil(t, r.Nutrition)
	assert.Contains(t, r.Extra, "category")
	assert.Contains(t, r.Extra, "steps")

	r.Nutrition = &RecipeNutritionTotal{EnergyKcal: 144, SaltG: 3}
	out, err := json.Marshal(r)
	require.NoError(t, err)

	var round map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &round))
	assert.Equal(t, "home", round["category"])
	assert.Len(t, round["steps"], 2)
	nutrition, ok := round["nutrition"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 144.0, nutrition["calories"])
	assert.Equal(t, 3.0, nutrition["salt"])
}

func TestRecipeJSONMissingQuantityDecodesAsZero(t *testing.T) {
	var r Recipe
	require.NoError(t, json.Unmarshal([]byte(`{"title":"x","ingredients":[{"name":"salt","unit":"g"}]}`), &r))
	require.Len(t, r.Ingredients, 1)
	assert.Zero(t, r.Ingredients[0].Quantity)
	assert.Nil(t, r.Extra)
}
