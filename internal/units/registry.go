// Package units is the single source of truth for ingredient unit semantics: how many
// grams one unit weighs, whether the unit is a discrete portion, and the step amounts
// are rounded to.
package units

import (
	"math"
	"strings"
	"sync"

	"github.com/noot-app/mealplan-scaler/internal/types"
)

// DefaultGramsPerUnit is used for units without a fixed weight when the ingredient
// does not carry one either
const DefaultGramsPerUnit = 100.0

// Rounding steps
const (
	StepWhole = 1.0
	StepHalf  = 0.5
	StepTenth = 0.1
)

// Unit describes one unit code and its aliases
type Unit struct {
	Code types.UnitCode `mapstructure:"code" json:"code"`
	// GramsPerUnit is the fixed gram equivalent of one unit. Zero means the weight comes
	// from the ingredient (pieces, slices) or falls back to DefaultGramsPerUnit.
	GramsPerUnit float64          `mapstructure:"grams_per_unit" json:"grams_per_unit"`
	Discrete     bool             `mapstructure:"discrete" json:"discrete"`
	Step         float64          `mapstructure:"step" json:"step"`
	Aliases      []types.UnitCode `mapstructure:"aliases" json:"aliases,omitempty"`
}

var builtin = []Unit{
	{Code: "g", GramsPerUnit: 1, Step: StepWhole, Aliases: []types.UnitCode{"gram", "grams", "per_g"}},
	{Code: "per_100g", GramsPerUnit: 100, Step: StepWhole},
	{Code: "ml", GramsPerUnit: 1, Step: StepWhole, Aliases: []types.UnitCode{"per_ml"}},
	{Code: "per_tbsp", GramsPerUnit: 15, Step: StepHalf, Aliases: []types.UnitCode{"tbsp", "eetlepel", "eetlepels", "el"}},
	{Code: "per_tsp", GramsPerUnit: 5, Step: StepHalf, Aliases: []types.UnitCode{"tsp", "theelepel", "theelepels", "tl"}},
	{Code: "per_cup", GramsPerUnit: 240, Step: StepTenth, Aliases: []types.UnitCode{"cup", "cups", "kopje"}},
	{Code: "per_30g", GramsPerUnit: 30, Step: StepTenth},
	{Code: "per_piece", Discrete: true, Step: StepWhole, Aliases: []types.UnitCode{"piece", "pieces", "stuk", "stuks"}},
	{Code: "slice", Discrete: true, Step: StepWhole, Aliases: []types.UnitCode{"slices", "per_slice", "plakje", "plakjes", "snee", "sneetje"}},
}

// Registry maps unit codes to their definitions. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	units map[types.UnitCode]Unit
}

// NewRegistry returns a registry preloaded with the built-in units
func NewRegistry() *Registry {
	r := &Registry{units: make(map[types.UnitCode]Unit)}
	for _, u := range builtin {
		r.Register(u)
	}
	return r
}

// Register adds a unit (and its aliases), replacing any existing definition
func (r *Registry) Register(u Unit) {
	if u.Step <= 0 {
		u.Step = defaultStep(u)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.units[Normalize(u.Code)] = u
	for _, alias := range u.Aliases {
		r.units[Normalize(alias)] = u
	}
}

// Lookup returns the definition of a unit code
func (r *Registry) Lookup(code types.UnitCode) (Unit, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.units[Normalize(code)]
	return u, ok
}

// Codes returns the number of registered codes, aliases included
func (r *Registry) Codes() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.units)
}

// GramsPerUnit returns the gram equivalent of one unit of the ingredient
func (r *Registry) GramsPerUnit(ing types.Ingredient) float64 {
	if u, ok := r.Lookup(ing.Unit); ok && u.GramsPerUnit > 0 {
		return u.GramsPerUnit
	}
	if ing.UnitWeightG > 0 {
		return ing.UnitWeightG
	}
	return DefaultGramsPerUnit
}

// IsDiscrete reports whether the unit is an indivisible portion. Unknown units are continuous.
func (r *Registry) IsDiscrete(code types.UnitCode) bool {
	u, ok := r.Lookup(code)
	return ok && u.Discrete
}

// RoundAmount snaps raw to the step of the ingredient's unit and clamps it at zero.
// Call it only when writing an amount back; intermediate math stays unrounded.
func (r *Registry) RoundAmount(ing types.Ingredient, raw float64) float64 {
	if raw <= 0 || math.IsNaN(raw) {
		return 0
	}
	step := StepTenth
	if u, ok := r.Lookup(ing.Unit); ok {
		step = u.Step
	}
	rounded := math.Round(raw/step) * step
	// strip float noise such as 2.3000000000000003
	return math.Round(rounded*1000) / 1000
}

// Normalize lower-cases and trims a unit code
func Normalize(code types.UnitCode) types.UnitCode {
	return types.UnitCode(strings.ToLower(strings.TrimSpace(string(code))))
}

func defaultStep(u Unit) float64 {
	if u.Discrete {
		return StepWhole
	}
	return StepTenth
}
