// Package model defines the core domain models used throughout the application.
package model

// NutritionSource indicates where a nutrition record came from.
type NutritionSource string

// Nutrition source constants.
const (
	SourceEstimated NutritionSource = "estimated"
	SourceUSDA      NutritionSource = "usda"
)

// DetectedFood is a single food item reported by the analysis service.
type DetectedFood struct {
	EnglishName          string  `json:"en_name"`
	Method               string  `json:"method"`
	EstimatedWeightGrams float64 `json:"estimated_weight_grams"`
	Confidence           float64 `json:"confidence"`
}

// NutritionRecord holds the nutrients for one food at its detected weight.
// Nutrients are in grams except Calories (kcal).
type NutritionRecord struct {
	Source   NutritionSource `json:"source"`
	Calories float64         `json:"calories"`
	Protein  float64         `json:"protein"`
	Fat      float64         `json:"fat"`
	Carbs    float64         `json:"carbs"`
	Fiber    float64         `json:"fiber"`
	Sugar    float64         `json:"sugar"`
	Weight   float64         `json:"weight"`
}

// EnrichedFood is a detected food with its nutrition attached.
type EnrichedFood struct {
	DetectedFood
	Nutrition NutritionRecord `json:"nutrition"`
}

// TotalNutrition sums the nutrition of every food found in one image.
type TotalNutrition struct {
	Calories  float64 `json:"calories"`
	Protein   float64 `json:"protein"`
	Fat       float64 `json:"fat"`
	Carbs     float64 `json:"carbs"`
	Fiber     float64 `json:"fiber"`
	Sugar     float64 `json:"sugar"`
	Weight    float64 `json:"weight"`
	FoodCount int     `json:"foodCount"`
}

// EnrichedResult is the enriched form of a single image analysis.
// A nil Foods slice means the field was absent, which matters for records
// written by older clients.
type EnrichedResult struct {
	TotalNutrition *TotalNutrition `json:"totalNutrition,omitempty"`
	Foods          []EnrichedFood  `json:"foods"`
}

// EmptyEnrichedResult returns a result with no foods and zero totals.
func EmptyEnrichedResult() EnrichedResult {
	return EnrichedResult{
		Foods:          []EnrichedFood{},
		TotalNutrition: &TotalNutrition{},
	}
}
