package scaling

import "github.com/noot-app/mealplan-scaler/internal/types"

// ResolveTargets returns the calorie and macro targets of the day for the given scale
// factor, each rounded to a whole number. A day with nothing to derive from resolves to
// zero targets.
func (e *Engine) ResolveTargets(day types.Day, factor float64) types.Macros {
	return e.baselineTargets(day).Scale(factor).Round()
}

// baselineTargets prefers authored targets and falls back to the unscaled meal totals.
// Authored targets without one of the macros borrow that macro from the meal totals.
func (e *Engine) baselineTargets(day types.Day) types.Macros {
	derived := e.derivedTotals(day)
	if !day.Targets.HasCalories() {
		return derived
	}

	t := day.Targets
	base := derived
	base.Calories = *t.Calories
	if t.Protein != nil {
		base.Protein = *t.Protein
	}
	if t.Carbs != nil {
		base.Carbs = *t.Carbs
	}
	if t.Fat != nil {
		base.Fat = *t.Fat
	}
	return base
}

func (e *Engine) derivedTotals(day types.Day) types.Macros {
	var total types.Macros
	for _, meal := range day.Meals {
		if meal.Nutrition != nil && meal.Nutrition.Calories > 0 {
			total = total.Add(*meal.Nutrition)
			continue
		}
		total = total.Add(e.calc.ForMeal(meal))
	}
	return total
}
