package types

import (
	"encoding/json"
	"math"
)

// Macros holds calories (kcal) and macronutrients (g). It is used both for computed
// totals and for resolved targets.
type Macros struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Add returns the field-wise sum of m and o
func (m Macros) Add(o Macros) Macros {
	return Macros{
		Calories: m.Calories + o.Calories,
		Protein:  m.Protein + o.Protein,
		Carbs:    m.Carbs + o.Carbs,
		Fat:      m.Fat + o.Fat,
	}
}

// Scale multiplies every field by f
func (m Macros) Scale(f float64) Macros {
	return Macros{
		Calories: m.Calories * f,
		Protein:  m.Protein * f,
		Carbs:    m.Carbs * f,
		Fat:      m.Fat * f,
	}
}

// Round rounds every field to the nearest integer
func (m Macros) Round() Macros {
	return Macros{
		Calories: math.Round(m.Calories),
		Protein:  math.Round(m.Protein),
		Carbs:    math.Round(m.Carbs),
		Fat:      math.Round(m.Fat),
	}
}

// IsZero reports whether all fields are zero
func (m Macros) IsZero() bool {
	return m == Macros{}
}

// Targets are the authored daily goals of a plan day. Any field may be missing.
type Targets struct {
	Calories *float64 `json:"calories,omitempty"`
	Protein  *float64 `json:"protein,omitempty"`
	Carbs    *float64 `json:"carbs,omitempty"`
	Fat      *float64 `json:"fat,omitempty"`
}

// UnmarshalJSON folds the synonyms used by plan authors onto the canonical fields.
// The first positive value in synonym order wins.
func (t *Targets) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	t.Calories = firstPositive(raw, "calories", "kcal", "target_calories")
	t.Protein = firstPositive(raw, "protein", "proteins", "target_protein")
	t.Carbs = firstPositive(raw, "carbs", "carbohydrates", "target_carbs")
	t.Fat = firstPositive(raw, "fat", "fats", "target_fat")
	return nil
}

// HasCalories reports whether an explicit, positive calorie target was authored
func (t *Targets) HasCalories() bool {
	return t != nil && t.Calories != nil && *t.Calories > 0
}

func firstPositive(raw map[string]any, keys ...string) *float64 {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok {
			continue
		}
		if f, ok := v.(float64); ok && f > 0 {
			return &f
		}
	}
	return nil
}
