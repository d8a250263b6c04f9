package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// LooseFloat reads a decoded JSON value as a number. Numeric strings are
// parsed; anything else is zero.
func LooseFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// LooseString reads a decoded JSON value as text. Null is empty.
func LooseString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

// UnmarshalJSON decodes a food leniently, since model output stored by
// older clients carries numbers as strings or words.
func (f *DetectedFood) UnmarshalJSON(data []byte) error {
	var raw struct {
		EnglishName          any `json:"en_name"`
		Method               any `json:"method"`
		EstimatedWeightGrams any `json:"estimated_weight_grams"`
		Confidence           any `json:"confidence"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid food: %w", err)
	}
	*f = DetectedFood{
		EnglishName:          LooseString(raw.EnglishName),
		Method:               LooseString(raw.Method),
		EstimatedWeightGrams: LooseFloat(raw.EstimatedWeightGrams),
		Confidence:           LooseFloat(raw.Confidence),
	}
	return nil
}

// UnmarshalJSON decodes the embedded food and its nutrition separately;
// without it the promoted DetectedFood decoder would drop Nutrition.
func (f *EnrichedFood) UnmarshalJSON(data []byte) error {
	var detected DetectedFood
	if err := detected.UnmarshalJSON(data); err != nil {
		return err
	}
	var rest struct {
		Nutrition NutritionRecord `json:"nutrition"`
	}
	if err := json.Unmarshal(data, &rest); err != nil {
		return fmt.Errorf("invalid food nutrition: %w", err)
	}
	*f = EnrichedFood{DetectedFood: detected, Nutrition: rest.Nutrition}
	return nil
}

// UnmarshalJSON decodes nutrients leniently.
func (n *NutritionRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid nutrition: %w", err)
	}
	*n = NutritionRecord{
		Source:   NutritionSource(LooseString(raw["source"])),
		Calories: LooseFloat(raw["calories"]),
		Protein:  LooseFloat(raw["protein"]),
		Fat:      LooseFloat(raw["fat"]),
		Carbs:    LooseFloat(raw["carbs"]),
		Fiber:    LooseFloat(raw["fiber"]),
		Sugar:    LooseFloat(raw["sugar"]),
		Weight:   LooseFloat(raw["weight"]),
	}
	return nil
}

// UnmarshalJSON decodes totals leniently.
func (t *TotalNutrition) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid nutrition totals: %w", err)
	}
	*t = TotalNutrition{
		Calories:  LooseFloat(raw["calories"]),
		Protein:   LooseFloat(raw["protein"]),
		Fat:       LooseFloat(raw["fat"]),
		Carbs:     LooseFloat(raw["carbs"]),
		Fiber:     LooseFloat(raw["fiber"]),
		Sugar:     LooseFloat(raw["sugar"]),
		Weight:    LooseFloat(raw["weight"]),
		FoodCount: int(LooseFloat(raw["foodCount"])),
	}
	return nil
}
