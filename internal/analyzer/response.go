package analyzer

import (
	"bytes"
	"encoding/json"

	"github.com/Veraticus/platewise/internal/model"
	"github.com/Veraticus/platewise/internal/nutrition"
)

// Response is the body of a successful analysis request.
type Response struct {
	DataSources       map[string]any  `json:"data_sources,omitempty"`
	Success           *bool           `json:"success,omitempty"`
	Result            json.RawMessage `json:"result,omitempty"`
	ParsedAnalysis    json.RawMessage `json:"parsed_analysis,omitempty"`
	RawVLMResult      json.RawMessage `json:"raw_vlm_result,omitempty"`
	AnalysisTimestamp string          `json:"analysis_timestamp,omitempty"`
}

// ResultText returns the result field as text. Non-string JSON values are
// returned in their encoded form.
func (r *Response) ResultText() string {
	return rawText(r.Result)
}

// RawText returns the unprocessed model output: raw_vlm_result, else result,
// else the empty string.
func (r *Response) RawText() string {
	if s := rawText(r.RawVLMResult); s != "" {
		return s
	}
	return r.ResultText()
}

// PipelineInput is the payload to enrich locally when parsed_analysis is
// unusable: result, falling back to raw_vlm_result.
func (r *Response) PipelineInput() string {
	if s := r.ResultText(); s != "" {
		return s
	}
	return rawText(r.RawVLMResult)
}

func rawText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

type parsedAnalysis struct {
	Foods                *[]parsedFood `json:"foods"`
	TotalNutrition       *parsedTotal  `json:"totalNutrition"`
	ServerTotalNutrition *parsedTotal  `json:"total_nutrition"`
	FoodCount            *int          `json:"food_count"`
}

type parsedFood struct {
	Nutrition            *parsedNutrition `json:"nutrition"`
	USDASource           *bool            `json:"usda_source"`
	EnglishName          string           `json:"en_name"`
	Method               string           `json:"method"`
	EstimatedWeightGrams float64          `json:"estimated_weight_grams"`
	Confidence           float64          `json:"confidence"`
}

type parsedNutrition struct {
	Weight      *float64 `json:"weight"`
	WeightGrams *float64 `json:"weight_grams"`
	Estimated   *bool    `json:"estimated"`
	FDCID       *int     `json:"fdc_id"`
	Source      string   `json:"source"`
	USDAName    string   `json:"usda_name"`
	Calories    float64  `json:"calories"`
	Protein     float64  `json:"protein"`
	Fat         float64  `json:"fat"`
	Carbs       float64  `json:"carbs"`
	Fiber       float64  `json:"fiber"`
	Sugar       float64  `json:"sugar"`
}

type parsedTotal struct {
	Weight          *float64 `json:"weight"`
	TotalWeight     *float64 `json:"total_weight"`
	FoodCount       *int     `json:"foodCount"`
	ServerFoodCount *int     `json:"food_count"`
	Calories        float64  `json:"calories"`
	Protein         float64  `json:"protein"`
	Fat             float64  `json:"fat"`
	Carbs           float64  `json:"carbs"`
	Fiber           float64  `json:"fiber"`
	Sugar           float64  `json:"sugar"`
}

// Parsed normalizes parsed_analysis into an EnrichedResult. It accepts the
// client shape (nutrition.weight, totalNutrition) and the server shape
// (nutrition.weight_grams, total_nutrition.total_weight). ok is false when
// the field is absent or has no foods array.
func (r *Response) Parsed() (result *model.EnrichedResult, ok bool) {
	raw := bytes.TrimSpace(r.ParsedAnalysis)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, false
	}

	var pa parsedAnalysis
	if err := json.Unmarshal(raw, &pa); err != nil || pa.Foods == nil {
		return nil, false
	}

	foods := make([]model.EnrichedFood, 0, len(*pa.Foods))
	for _, f := range *pa.Foods {
		foods = append(foods, normalizeFood(f))
	}

	total := pa.TotalNutrition
	if total == nil {
		total = pa.ServerTotalNutrition
	}

	var totals model.TotalNutrition
	if total == nil {
		totals = nutrition.Aggregate(foods)
	} else {
		totals = model.TotalNutrition{
			Calories:  total.Calories,
			Protein:   total.Protein,
			Fat:       total.Fat,
			Carbs:     total.Carbs,
			Fiber:     total.Fiber,
			Sugar:     total.Sugar,
			Weight:    firstFloat(total.Weight, total.TotalWeight),
			FoodCount: firstInt(len(foods), total.FoodCount, total.ServerFoodCount, pa.FoodCount),
		}
	}

	return &model.EnrichedResult{Foods: foods, TotalNutrition: &totals}, true
}

func normalizeFood(f parsedFood) model.EnrichedFood {
	detected := model.DetectedFood{
		EnglishName:          f.EnglishName,
		Method:               f.Method,
		EstimatedWeightGrams: f.EstimatedWeightGrams,
		Confidence:           f.Confidence,
	}

	if f.Nutrition == nil {
		return model.EnrichedFood{
			DetectedFood: detected,
			Nutrition: model.NutritionRecord{
				Weight: f.EstimatedWeightGrams,
				Source: model.SourceEstimated,
			},
		}
	}

	n := f.Nutrition
	weight := f.EstimatedWeightGrams
	if n.Weight != nil {
		weight = *n.Weight
	} else if n.WeightGrams != nil {
		weight = *n.WeightGrams
	}

	return model.EnrichedFood{
		DetectedFood: detected,
		Nutrition: model.NutritionRecord{
			Calories: n.Calories,
			Protein:  n.Protein,
			Fat:      n.Fat,
			Carbs:    n.Carbs,
			Fiber:    n.Fiber,
			Sugar:    n.Sugar,
			Weight:   weight,
			Source:   sourceOf(f),
		},
	}
}

func sourceOf(f parsedFood) model.NutritionSource {
	switch model.NutritionSource(f.Nutrition.Source) {
	case model.SourceUSDA:
		return model.SourceUSDA
	case model.SourceEstimated:
		return model.SourceEstimated
	}
	if f.USDASource != nil {
		if *f.USDASource {
			return model.SourceUSDA
		}
		return model.SourceEstimated
	}
	if f.Nutrition.USDAName != "" || f.Nutrition.FDCID != nil {
		return model.SourceUSDA
	}
	return model.SourceEstimated
}

func firstFloat(vals ...*float64) float64 {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return 0
}

// firstInt returns the first non-nil value, or fallback.
func firstInt(fallback int, vals ...*int) int {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return fallback
}
