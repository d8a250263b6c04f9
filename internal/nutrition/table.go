// Package nutrition estimates nutrient content for detected foods.
//
// The built-in Table scales a small per-100g reference table by weight.
// USDASource queries FoodData Central instead. Both satisfy Source.
package nutrition

import (
	"context"
	"strings"

	"github.com/Veraticus/platewise/internal/model"
)

// Per100g holds reference nutrient values for 100 g of a food.
type Per100g struct {
	Calories float64
	Protein  float64
	Fat      float64
	Carbs    float64
	Fiber    float64
	Sugar    float64
}

// Entry is a named row of the reference table.
type Entry struct {
	Key    string
	Values Per100g
}

// DefaultEntry applies when no table key matches a food name.
var DefaultEntry = Per100g{Calories: 150, Protein: 5, Fat: 5, Carbs: 20, Fiber: 2, Sugar: 5}

// referenceEntries is searched in order and the first match wins.
var referenceEntries = []Entry{
	{Key: "apple", Values: Per100g{Calories: 52, Protein: 0.3, Fat: 0.2, Carbs: 14, Fiber: 2.4, Sugar: 10}},
	{Key: "banana", Values: Per100g{Calories: 89, Protein: 1.1, Fat: 0.3, Carbs: 23, Fiber: 2.6, Sugar: 12}},
	{Key: "orange", Values: Per100g{Calories: 47, Protein: 0.9, Fat: 0.1, Carbs: 12, Fiber: 2.4, Sugar: 9}},
	{Key: "broccoli", Values: Per100g{Calories: 34, Protein: 2.8, Fat: 0.4, Carbs: 7, Fiber: 2.6, Sugar: 1.5}},
	{Key: "carrot", Values: Per100g{Calories: 41, Protein: 0.9, Fat: 0.2, Carbs: 10, Fiber: 2.8, Sugar: 4.7}},
	{Key: "tomato", Values: Per100g{Calories: 18, Protein: 0.9, Fat: 0.2, Carbs: 3.9, Fiber: 1.2, Sugar: 2.6}},
	{Key: "chicken", Values: Per100g{Calories: 165, Protein: 31, Fat: 3.6}},
	{Key: "beef", Values: Per100g{Calories: 250, Protein: 26, Fat: 15}},
	{Key: "pork", Values: Per100g{Calories: 242, Protein: 27, Fat: 14}},
	{Key: "fish", Values: Per100g{Calories: 206, Protein: 22, Fat: 12}},
	{Key: "salmon", Values: Per100g{Calories: 208, Protein: 20, Fat: 13}},
	{Key: "rice", Values: Per100g{Calories: 130, Protein: 2.7, Fat: 0.3, Carbs: 28, Fiber: 0.4, Sugar: 0.1}},
	{Key: "bread", Values: Per100g{Calories: 265, Protein: 9, Fat: 3.2, Carbs: 49, Fiber: 2.7, Sugar: 5}},
	{Key: "pasta", Values: Per100g{Calories: 131, Protein: 5, Fat: 1.1, Carbs: 25, Fiber: 1.8, Sugar: 0.6}},
	{Key: "potato", Values: Per100g{Calories: 77, Protein: 2, Fat: 0.1, Carbs: 17, Fiber: 2.2, Sugar: 0.8}},
}

// Table is the built-in reference table estimator. The zero value is not
// usable; construct with NewTable.
type Table struct {
	entries  []Entry
	fallback Per100g
}

// NewTable returns the built-in reference table.
func NewTable() *Table {
	entries := make([]Entry, len(referenceEntries))
	copy(entries, referenceEntries)
	return &Table{entries: entries, fallback: DefaultEntry}
}

// Entries returns a copy of the table rows in match order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Match returns the reference values for name and the key that matched.
// An empty key means the default entry was used.
func (t *Table) Match(name string) (Per100g, string) {
	lower := strings.ToLower(name)
	if lower == "" {
		return t.fallback, ""
	}
	for _, e := range t.entries {
		if strings.Contains(lower, e.Key) || strings.Contains(e.Key, lower) {
			return e.Values, e.Key
		}
	}
	return t.fallback, ""
}

// Estimate scales the matching reference entry to weightGrams. It never
// fails. Negative weights produce zero nutrients.
func (t *Table) Estimate(foodName string, weightGrams float64) model.NutritionRecord {
	values, _ := t.Match(foodName)
	return Scale(values, weightGrams, model.SourceEstimated)
}

// Lookup implements Source. It never returns an error.
func (t *Table) Lookup(_ context.Context, foodName string, weightGrams float64) (model.NutritionRecord, error) {
	return t.Estimate(foodName, weightGrams), nil
}

// Name implements Source.
func (t *Table) Name() string {
	return string(model.SourceEstimated)
}

// Scale converts per-100g values to a record for weightGrams.
func Scale(values Per100g, weightGrams float64, source model.NutritionSource) model.NutritionRecord {
	multiplier := weightGrams / 100
	if multiplier < 0 {
		multiplier = 0
	}
	return model.NutritionRecord{
		Calories: Round1(values.Calories * multiplier),
		Protein:  Round1(values.Protein * multiplier),
		Fat:      Round1(values.Fat * multiplier),
		Carbs:    Round1(values.Carbs * multiplier),
		Fiber:    Round1(values.Fiber * multiplier),
		Sugar:    Round1(values.Sugar * multiplier),
		Weight:   weightGrams,
		Source:   source,
	}
}
