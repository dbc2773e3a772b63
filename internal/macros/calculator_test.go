package macros

import (
	"testing"

	"github.com/noot-app/mealplan-scaler/internal/types"
	"github.com/noot-app/mealplan-scaler/internal/units"
	"github.com/stretchr/testify/assert"
)

func egg(amount float64) types.Ingredient {
	return types.Ingredient{
		Name:            "Ei",
		Unit:            "per_piece",
		Amount:          amount,
		UnitWeightG:     50,
		CaloriesPer100g: 155,
		ProteinPer100g:  13,
		CarbsPer100g:    1.1,
		FatPer100g:      11,
	}
}

func oats(grams float64) types.Ingredient {
	return types.Ingredient{
		Name:            "Havermout",
		Unit:            "g",
		Amount:          grams,
		CaloriesPer100g: 389,
		ProteinPer100g:  13.5,
		CarbsPer100g:    67,
		FatPer100g:      6.9,
	}
}

func TestCalculator_ForIngredient(t *testing.T) {
	c := NewCalculator(units.NewRegistry())

	tests := []struct {
		name     string
		ing      types.Ingredient
		expected types.Macros
	}{
		{
			name:     "grams",
			ing:      oats(80),
			expected: types.Macros{Calories: 311.2, Protein: 10.8, Carbs: 53.6, Fat: 5.52},
		},
		{
			name:     "pieces use the unit weight",
			ing:      egg(2),
			expected: types.Macros{Calories: 155, Protein: 13, Carbs: 1.1, Fat: 11},
		},
		{
			name: "tablespoons",
			ing: types.Ingredient{
				Unit: "per_tbsp", Amount: 30, CaloriesPer100g: 884, FatPer100g: 100,
			},
			expected: types.Macros{Calories: 265.2, Fat: 30},
		},
		{
			name: "piece without unit weight counts as 100 g",
			ing: types.Ingredient{
				Unit: "stuk", Amount: 1, CaloriesPer100g: 52, CarbsPer100g: 14,
			},
			expected: types.Macros{Calories: 52, Carbs: 14},
		},
		{
			name:     "zero amount",
			ing:      oats(0),
			expected: types.Macros{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.ForIngredient(tt.ing)
			assert.InDelta(t, tt.expected.Calories, got.Calories, 1e-9)
			assert.InDelta(t, tt.expected.Protein, got.Protein, 1e-9)
			assert.InDelta(t, tt.expected.Carbs, got.Carbs, 1e-9)
			assert.InDelta(t, tt.expected.Fat, got.Fat, 1e-9)
		})
	}
}

func TestCalculator_UnitsOf(t *testing.T) {
	c := NewCalculator(units.NewRegistry())

	assert.Equal(t, 2.0, c.UnitsOf(egg(2)))
	assert.InDelta(t, 80, c.UnitsOf(oats(80)), 1e-12)
	assert.InDelta(t, 0.8, c.UnitsOf(types.Ingredient{Unit: "per_100g", Amount: 80}), 1e-12)
	assert.InDelta(t, 2.0, c.UnitsOf(types.Ingredient{Unit: "per_cup", Amount: 480}), 1e-12)
	assert.InDelta(t, 1.5, c.UnitsOf(types.Ingredient{Unit: "per_30g", Amount: 45}), 1e-12)
}

func TestCalculator_DensityPerUnit(t *testing.T) {
	c := NewCalculator(units.NewRegistry())

	d := c.DensityPerUnit(egg(3))
	assert.InDelta(t, 77.5, d.Calories, 1e-9)
	assert.InDelta(t, 6.5, d.Protein, 1e-9)

	// one gram of oats
	d = c.DensityPerUnit(oats(10))
	assert.InDelta(t, 3.89, d.Calories, 1e-9)
}

func TestCalculator_ForMealAndDay(t *testing.T) {
	c := NewCalculator(units.NewRegistry())

	breakfast := types.Meal{Slot: types.SlotBreakfast, Ingredients: []types.Ingredient{egg(2), oats(80)}}
	lunch := types.Meal{Slot: types.SlotLunch, Ingredients: []types.Ingredient{oats(50)}}
	day := types.Day{Weekday: types.Monday, Meals: []types.Meal{breakfast, lunch}}

	meal := c.ForMeal(breakfast)
	assert.InDelta(t, 466.2, meal.Calories, 1e-9)

	total := c.ForDay(day)
	assert.InDelta(t, 466.2+194.5, total.Calories, 1e-9)

	// recomputation is stable and does not mutate the day
	again := c.ForDay(day)
	assert.Equal(t, total, again)
	assert.Equal(t, 80.0, day.Meals[0].Ingredients[1].Amount)

	assert.Equal(t, types.Macros{}, c.ForDay(types.Day{}))
}

func TestAtwaterKcal(t *testing.T) {
	assert.Equal(t, 0.0, AtwaterKcal(types.Macros{}))
	assert.Equal(t, 4.0*10+4*20+9*5, AtwaterKcal(types.Macros{Calories: 999, Protein: 10, Carbs: 20, Fat: 5}))
}

func TestCalculator_AdjustableKcal(t *testing.T) {
	c := NewCalculator(units.NewRegistry())

	meal := types.Meal{Ingredients: []types.Ingredient{egg(2), oats(100)}}
	// only the oats count: 13.5*4 + 67*4 + 6.9*9
	assert.InDelta(t, 384.1, c.AdjustableKcal(meal), 1e-9)

	onlyEggs := types.Meal{Ingredients: []types.Ingredient{egg(4)}}
	assert.Equal(t, 0.0, c.AdjustableKcal(onlyEggs))
}
