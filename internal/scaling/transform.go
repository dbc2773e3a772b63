package scaling

import (
	"math"

	"github.com/noot-app/mealplan-scaler/internal/types"
)

// ScaleFactor returns the clamped factor for a body weight using the engine options
func (e *Engine) ScaleFactor(bodyWeightKg float64) float64 {
	return e.opts.ScaleFactor(bodyWeightKg)
}

// ApplyLinearScale returns a copy of day with every continuous amount multiplied by factor
// and rounded. Discrete amounts are copied unchanged, except that negative counts become 0.
func (e *Engine) ApplyLinearScale(day types.Day, factor float64) types.Day {
	reg := e.calc.Units()
	out := day.Clone()
	for i := range out.Meals {
		for j := range out.Meals[i].Ingredients {
			ing := &out.Meals[i].Ingredients[j]
			if reg.IsDiscrete(ing.Unit) {
				ing.Amount = math.Max(0, ing.Amount)
				continue
			}
			ing.Amount = reg.RoundAmount(*ing, ing.Amount*factor)
		}
	}
	return out
}

// clampAmounts returns a copy of day in which no ingredient amount is negative
func clampAmounts(day types.Day) types.Day {
	out := day.Clone()
	for i := range out.Meals {
		for j := range out.Meals[i].Ingredients {
			ing := &out.Meals[i].Ingredients[j]
			ing.Amount = math.Max(0, ing.Amount)
		}
	}
	return out
}
