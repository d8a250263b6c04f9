package history

import (
	"math"
	"sort"

	"github.com/Veraticus/platewise/internal/enrich"
	"github.com/Veraticus/platewise/internal/model"
	"github.com/Veraticus/platewise/internal/nutrition"
)

// Sorted returns a copy of records, newest first. Records with unparseable
// timestamps sort last, keeping their relative order.
func Sorted(records []model.HistoryRecord) []model.HistoryRecord {
	out := make([]model.HistoryRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time().After(out[j].Time())
	})
	return out
}

// Summarize sorts records newest first and derives display entries for at
// most limit of them. A limit of zero or less means no limit.
func Summarize(records []model.HistoryRecord, table *nutrition.Table, limit int) []model.DisplayEntry {
	sorted := Sorted(records)
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	if table == nil {
		table = nutrition.NewTable()
	}
	entries := make([]model.DisplayEntry, 0, len(sorted))
	for _, r := range sorted {
		entries = append(entries, Describe(r, table))
	}
	return entries
}

// Describe derives the display entry for one record. Results saved without
// enrichment are re-estimated from their raw payload with table, or with
// the built-in table when table is nil.
func Describe(r model.HistoryRecord, table *nutrition.Table) model.DisplayEntry {
	if table == nil {
		table = nutrition.NewTable()
	}
	var calories float64
	var foodCount int

	for _, res := range r.Results {
		calories += resultCalories(res, table)
		foodCount += resultFoodCount(res)
	}

	return model.DisplayEntry{
		ID:            r.ID,
		Timestamp:     r.Timestamp,
		Time:          r.Time(),
		ImageCount:    len(r.Results),
		FoodCount:     foodCount,
		TotalCalories: math.Floor(calories + 0.5),
	}
}

func resultCalories(res model.AnalysisResult, table *nutrition.Table) float64 {
	if res.EnrichedResult != nil && res.EnrichedResult.TotalNutrition != nil {
		return res.EnrichedResult.TotalNutrition.Calories
	}

	foods, err := enrich.DecodeFoods(res.RawResult)
	if err != nil {
		return 0
	}
	var sum float64
	for _, f := range foods {
		sum += table.Estimate(f.EnglishName, f.EstimatedWeightGrams).Calories
	}
	return sum
}

func resultFoodCount(res model.AnalysisResult) int {
	if res.EnrichedResult != nil && res.EnrichedResult.Foods != nil {
		return len(res.EnrichedResult.Foods)
	}
	foods, err := enrich.DecodeFoods(res.RawResult)
	if err != nil {
		return 0
	}
	return len(foods)
}
