package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// UnitCode identifies the unit an ingredient amount is expressed in
type UnitCode string

// MealSlot is one of the six fixed meal moments of a plan day
type MealSlot string

const (
	SlotBreakfast      MealSlot = "ontbijt"
	SlotMorningSnack   MealSlot = "ochtend_snack"
	SlotLunch          MealSlot = "lunch"
	SlotAfternoonSnack MealSlot = "lunch_snack"
	SlotDinner         MealSlot = "diner"
	SlotEveningSnack   MealSlot = "avond_snack"
)

// MealSlots lists the meal slots in the order they are served
var MealSlots = []MealSlot{
	SlotBreakfast,
	SlotMorningSnack,
	SlotLunch,
	SlotAfternoonSnack,
	SlotDinner,
	SlotEveningSnack,
}

// Valid reports whether s is one of the known meal slots
func (s MealSlot) Valid() bool {
	for _, slot := range MealSlots {
		if slot == s {
			return true
		}
	}
	return false
}

// Weekday is the key of a day inside a weekly plan
type Weekday string

const (
	Monday    Weekday = "maandag"
	Tuesday   Weekday = "dinsdag"
	Wednesday Weekday = "woensdag"
	Thursday  Weekday = "donderdag"
	Friday    Weekday = "vrijdag"
	Saturday  Weekday = "zaterdag"
	Sunday    Weekday = "zondag"
)

// Weekdays lists the plan days starting on Monday
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var englishWeekdays = map[string]Weekday{
	"monday":    Monday,
	"tuesday":   Tuesday,
	"wednesday": Wednesday,
	"thursday":  Thursday,
	"friday":    Friday,
	"saturday":  Saturday,
	"sunday":    Sunday,
}

// ParseWeekday accepts Dutch plan keys as well as English day names
func ParseWeekday(s string) (Weekday, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, d := range Weekdays {
		if string(d) == key {
			return d, nil
		}
	}
	if d, ok := englishWeekdays[key]; ok {
		return d, nil
	}
	return "", fmt.Errorf("unknown weekday %q", s)
}

// Ingredient is a single line of a meal with its per-100g nutrition data
type Ingredient struct {
	Name            string   `json:"name"`
	Unit            UnitCode `json:"unit"`
	Amount          float64  `json:"amount"`
	CaloriesPer100g float64  `json:"calories_per_100g"`
	ProteinPer100g  float64  `json:"protein_per_100g"`
	CarbsPer100g    float64  `json:"carbs_per_100g"`
	FatPer100g      float64  `json:"fat_per_100g"`
	// UnitWeightG is the weight of one unit for units without a fixed gram value (pieces, slices)
	UnitWeightG float64 `json:"unit_weight_g,omitempty"`
}

// UnmarshalJSON accepts the field spellings found in authored plans
func (i *Ingredient) UnmarshalJSON(data []byte) error {
	type Alias Ingredient
	aux := &struct {
		Kcal          *float64 `json:"kcal_per_100g"`
		Proteins      *float64 `json:"proteins_per_100g"`
		Carbohydrates *float64 `json:"carbohydrates_per_100g"`
		Fats          *float64 `json:"fats_per_100g"`
		GramsPerUnit  *float64 `json:"grams_per_unit"`
		WeightPerUnit *float64 `json:"weight_per_unit"`
		*Alias
	}{
		Alias: (*Alias)(i),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	fillIfZero(&i.CaloriesPer100g, aux.Kcal)
	fillIfZero(&i.ProteinPer100g, aux.Proteins)
	fillIfZero(&i.CarbsPer100g, aux.Carbohydrates)
	fillIfZero(&i.FatPer100g, aux.Fats)
	fillIfZero(&i.UnitWeightG, aux.GramsPerUnit)
	fillIfZero(&i.UnitWeightG, aux.WeightPerUnit)
	if i.Amount < 0 {
		i.Amount = 0
	}
	return nil
}

func fillIfZero(dst *float64, v *float64) {
	if *dst == 0 && v != nil {
		*dst = *v
	}
}

// Meal holds the ingredients served in one slot. Totals are never stored on a meal;
// they are recomputed from the ingredients whenever needed.
type Meal struct {
	Slot        MealSlot     `json:"-"`
	Ingredients []Ingredient `json:"ingredients"`
	// Nutrition is an optional authored summary, only consulted when deriving targets
	Nutrition *Macros `json:"nutrition,omitempty"`
}

// Clone returns a deep copy of the meal
func (m Meal) Clone() Meal {
	out := Meal{Slot: m.Slot}
	if m.Ingredients != nil {
		out.Ingredients = make([]Ingredient, len(m.Ingredients))
		copy(out.Ingredients, m.Ingredients)
	}
	if m.Nutrition != nil {
		n := *m.Nutrition
		out.Nutrition = &n
	}
	return out
}

// Day is one weekday of a plan with up to six meals in slot order
type Day struct {
	Weekday Weekday  `json:"-"`
	Meals   []Meal   `json:"-"`
	Targets *Targets `json:"-"`
}

// Meal returns the meal for a slot, if the day has one
func (d Day) Meal(slot MealSlot) (Meal, bool) {
	for _, m := range d.Meals {
		if m.Slot == slot {
			return m, true
		}
	}
	return Meal{}, false
}

// Clone returns a deep copy of the day
func (d Day) Clone() Day {
	out := Day{Weekday: d.Weekday}
	if d.Meals != nil {
		out.Meals = make([]Meal, len(d.Meals))
		for i, m := range d.Meals {
			out.Meals[i] = m.Clone()
		}
	}
	if d.Targets != nil {
		t := *d.Targets
		out.Targets = &t
	}
	return out
}

// UnmarshalJSON decodes a day object keyed by meal slot plus an optional "targets" key.
// Unknown keys are ignored.
func (d *Day) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	d.Meals = nil
	d.Targets = nil
	for _, slot := range MealSlots {
		msg, ok := raw[string(slot)]
		if !ok || string(msg) == "null" {
			continue
		}
		var meal Meal
		if err := json.Unmarshal(msg, &meal); err != nil {
			return fmt.Errorf("meal %s: %w", slot, err)
		}
		meal.Slot = slot
		d.Meals = append(d.Meals, meal)
	}

	if msg, ok := raw["targets"]; ok && string(msg) != "null" {
		var t Targets
		if err := json.Unmarshal(msg, &t); err != nil {
			return fmt.Errorf("targets: %w", err)
		}
		d.Targets = &t
	}
	return nil
}

// MarshalJSON writes the day back in the slot-keyed shape
func (d Day) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Meals)+1)
	for _, m := range d.Meals {
		out[string(m.Slot)] = m
	}
	if d.Targets != nil {
		out["targets"] = d.Targets
	}
	return json.Marshal(out)
}

// Plan is an authored week of meals calibrated for the reference body weight
type Plan struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Goal string          `json:"goal,omitempty"`
	Week map[Weekday]Day `json:"week"`
}

// Day returns a deep copy of the requested weekday
func (p *Plan) Day(weekday Weekday) (Day, bool) {
	d, ok := p.Week[weekday]
	if !ok {
		return Day{}, false
	}
	out := d.Clone()
	out.Weekday = weekday
	return out, true
}

// Summary returns the catalog listing view of the plan
func (p *Plan) Summary() PlanSummary {
	days := make([]Weekday, 0, len(p.Week))
	for _, d := range Weekdays {
		if _, ok := p.Week[d]; ok {
			days = append(days, d)
		}
	}
	return PlanSummary{ID: p.ID, Name: p.Name, Goal: p.Goal, Days: days}
}

// PlanSummary is a lightweight view of a plan for listing
type PlanSummary struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Goal string    `json:"goal,omitempty"`
	Days []Weekday `json:"days"`
}

// ScalingContext holds the caller supplied parameters of a scaling run
type ScalingContext struct {
	BodyWeightKg float64 `json:"body_weight_kg"`
	Day          Weekday `json:"day"`
}
