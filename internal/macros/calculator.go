// Package macros computes calorie and macronutrient yields of ingredients, meals and days.
// Every function here is pure: totals are recomputed from ingredient amounts on each call
// and never cached on the data.
package macros

import (
	"github.com/noot-app/mealplan-scaler/internal/types"
	"github.com/noot-app/mealplan-scaler/internal/units"
)

// Atwater factors in kcal per gram
const (
	KcalPerGramProtein = 4.0
	KcalPerGramCarbs   = 4.0
	KcalPerGramFat     = 9.0
)

// Calculator derives macro totals using a unit registry
type Calculator struct {
	units *units.Registry
}

// NewCalculator creates a calculator backed by the given unit registry
func NewCalculator(registry *units.Registry) *Calculator {
	return &Calculator{units: registry}
}

// Units returns the registry the calculator resolves units with
func (c *Calculator) Units() *units.Registry {
	return c.units
}

// DensityPerUnit returns the macro yield of exactly one unit of the ingredient
func (c *Calculator) DensityPerUnit(ing types.Ingredient) types.Macros {
	f := c.units.GramsPerUnit(ing) / 100
	return types.Macros{
		Calories: ing.CaloriesPer100g * f,
		Protein:  ing.ProteinPer100g * f,
		Carbs:    ing.CarbsPer100g * f,
		Fat:      ing.FatPer100g * f,
	}
}

// UnitsOf returns how many units the ingredient amount represents. Discrete amounts are
// already unit counts; continuous amounts are expressed in grams or millilitres.
func (c *Calculator) UnitsOf(ing types.Ingredient) float64 {
	if c.units.IsDiscrete(ing.Unit) {
		return ing.Amount
	}
	return ing.Amount / c.units.GramsPerUnit(ing)
}

// ForIngredient returns the macro contribution of the ingredient amount
func (c *Calculator) ForIngredient(ing types.Ingredient) types.Macros {
	return c.DensityPerUnit(ing).Scale(c.UnitsOf(ing))
}

// ForMeal sums the contribution of every ingredient of the meal
func (c *Calculator) ForMeal(meal types.Meal) types.Macros {
	var total types.Macros
	for _, ing := range meal.Ingredients {
		total = total.Add(c.ForIngredient(ing))
	}
	return total
}

// ForDay sums all meals of the day
func (c *Calculator) ForDay(day types.Day) types.Macros {
	var total types.Macros
	for _, meal := range day.Meals {
		total = total.Add(c.ForMeal(meal))
	}
	return total
}

// AtwaterKcal returns the energy implied by the macronutrients alone
func AtwaterKcal(m types.Macros) float64 {
	return m.Protein*KcalPerGramProtein + m.Carbs*KcalPerGramCarbs + m.Fat*KcalPerGramFat
}

// AdjustableKcal returns the Atwater energy of the continuous ingredients of a meal.
// Discrete ingredients are never resized and therefore do not count.
func (c *Calculator) AdjustableKcal(meal types.Meal) float64 {
	var kcal float64
	for _, ing := range meal.Ingredients {
		if c.units.IsDiscrete(ing.Unit) {
			continue
		}
		kcal += AtwaterKcal(c.DensityPerUnit(ing)) * c.UnitsOf(ing)
	}
	return kcal
}
