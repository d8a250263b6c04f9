package nutrition

import "github.com/Veraticus/platewise/internal/model"

// Aggregate sums the nutrition of foods. Every sum is rounded to one
// decimal; an empty slice yields all zeros.
func Aggregate(foods []model.EnrichedFood) model.TotalNutrition {
	var total model.TotalNutrition
	for _, f := range foods {
		n := f.Nutrition
		total.Calories += n.Calories
		total.Protein += n.Protein
		total.Fat += n.Fat
		total.Carbs += n.Carbs
		total.Fiber += n.Fiber
		total.Sugar += n.Sugar
		total.Weight += n.Weight
	}

	total.Calories = Round1(total.Calories)
	total.Protein = Round1(total.Protein)
	total.Fat = Round1(total.Fat)
	total.Carbs = Round1(total.Carbs)
	total.Fiber = Round1(total.Fiber)
	total.Sugar = Round1(total.Sugar)
	total.Weight = Round1(total.Weight)
	total.FoodCount = len(foods)
	return total
}
