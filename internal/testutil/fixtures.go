package testutil

import (
	"fmt"
	"strings"

	"github.com/Veraticus/platewise/internal/model"
	"github.com/Veraticus/platewise/internal/nutrition"
)

// RawFoods renders a service payload listing foods as name:grams pairs.
func RawFoods(pairs ...any) string {
	if len(pairs)%2 != 0 {
		panic("RawFoods needs name, grams pairs")
	}
	items := make([]string, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		items = append(items, fmt.Sprintf(`{"en_name":%q,"estimated_weight_grams":%v,"confidence":0.9,"method":"raw"}`,
			pairs[i], pairs[i+1]))
	}
	return `{"foods":[` + strings.Join(items, ",") + `]}`
}

// RecordBuilder builds history records for tests.
type RecordBuilder struct {
	record model.HistoryRecord
	table  *nutrition.Table
}

// NewRecord starts a record with id and timestamp.
func NewRecord(id model.HistoryID, timestamp string) *RecordBuilder {
	return &RecordBuilder{
		record: model.HistoryRecord{ID: id, Timestamp: timestamp, Results: []model.AnalysisResult{}},
		table:  nutrition.NewTable(),
	}
}

// WithEnrichedResult adds a result enriched with the built-in table.
func (b *RecordBuilder) WithEnrichedResult(imageName, raw string, foods ...model.DetectedFood) *RecordBuilder {
	enriched := make([]model.EnrichedFood, len(foods))
	for i, f := range foods {
		enriched[i] = model.EnrichedFood{
			DetectedFood: f,
			Nutrition:    b.table.Estimate(f.EnglishName, f.EstimatedWeightGrams),
		}
	}
	total := nutrition.Aggregate(enriched)
	b.record.Results = append(b.record.Results, model.AnalysisResult{
		Image:          model.ImageFile{Name: imageName, MIMEType: "image/jpeg"},
		RawResult:      raw,
		EnrichedResult: &model.EnrichedResult{Foods: enriched, TotalNutrition: &total},
		Timestamp:      b.record.Timestamp,
	})
	return b
}

// WithLegacyResult adds a result that carries only the raw payload.
func (b *RecordBuilder) WithLegacyResult(imageName, raw string) *RecordBuilder {
	b.record.Results = append(b.record.Results, model.AnalysisResult{
		Image:     model.ImageFile{Name: imageName},
		RawResult: raw,
		Timestamp: b.record.Timestamp,
	})
	return b
}

// Build returns the record.
func (b *RecordBuilder) Build() model.HistoryRecord {
	return b.record
}

// Food is shorthand for a detected food.
func Food(name string, grams float64) model.DetectedFood {
	return model.DetectedFood{EnglishName: name, EstimatedWeightGrams: grams, Confidence: 0.9, Method: "raw"}
}
