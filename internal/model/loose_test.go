package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectedFood_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  DetectedFood
	}{
		{
			name:  "typed",
			input: `{"en_name":"apple","estimated_weight_grams":150,"confidence":0.9,"method":"seg"}`,
			want:  DetectedFood{EnglishName: "apple", EstimatedWeightGrams: 150, Confidence: 0.9, Method: "seg"},
		},
		{
			name:  "numeric strings",
			input: `{"en_name":"rice","estimated_weight_grams":" 180 ","confidence":"0.7"}`,
			want:  DetectedFood{EnglishName: "rice", EstimatedWeightGrams: 180, Confidence: 0.7},
		},
		{
			name:  "words for numbers",
			input: `{"en_name":"soup","estimated_weight_grams":"a bowl","confidence":"high"}`,
			want:  DetectedFood{EnglishName: "soup"},
		},
		{
			name:  "numeric name",
			input: `{"en_name":7,"method":null}`,
			want:  DetectedFood{EnglishName: "7"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got DetectedFood
			require.NoError(t, json.Unmarshal([]byte(tt.input), &got))
			assert.Equal(t, tt.want, got)
		})
	}

	var f DetectedFood
	assert.Error(t, json.Unmarshal([]byte(`"apple"`), &f))
}

func TestEnrichedFood_UnmarshalKeepsNutrition(t *testing.T) {
	input := `{"en_name":"apple","estimated_weight_grams":"150","confidence":0.9,"method":"seg",
		"nutrition":{"calories":"78","protein":0.5,"fat":"0.3","weight":150,"source":"usda"}}`

	var got EnrichedFood
	require.NoError(t, json.Unmarshal([]byte(input), &got))
	assert.Equal(t, EnrichedFood{
		DetectedFood: DetectedFood{EnglishName: "apple", EstimatedWeightGrams: 150, Confidence: 0.9, Method: "seg"},
		Nutrition:    NutritionRecord{Source: SourceUSDA, Calories: 78, Protein: 0.5, Fat: 0.3, Weight: 150},
	}, got)

	data, err := json.Marshal(got)
	require.NoError(t, err)
	var again EnrichedFood
	require.NoError(t, json.Unmarshal(data, &again))
	assert.Equal(t, got, again)
}

func TestTotalNutrition_UnmarshalJSON(t *testing.T) {
	var got TotalNutrition
	require.NoError(t, json.Unmarshal([]byte(`{"calories":"78","weight":150,"foodCount":"2"}`), &got))
	assert.Equal(t, TotalNutrition{Calories: 78, Weight: 150, FoodCount: 2}, got)
}

func TestEnrichedResult_NullFoodsStayNil(t *testing.T) {
	var got EnrichedResult
	require.NoError(t, json.Unmarshal([]byte(`{"foods":null}`), &got))
	assert.Nil(t, got.Foods)
	assert.Nil(t, got.TotalNutrition)
}
