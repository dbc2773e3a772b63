// Package scaling adapts a plan day, authored for a reference body weight, to a user's
// body weight. A run resolves the day's targets, scales continuous ingredients linearly and
// then performs a proportional correction so the calorie total tracks the target.
//
// The engine is pure: it never mutates its input and keeps no state between runs, so a
// single Engine may serve any number of concurrent callers.
package scaling

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/noot-app/mealplan-scaler/internal/macros"
	"github.com/noot-app/mealplan-scaler/internal/types"
	"golang.org/x/sync/errgroup"
)

// Default weight table, matching the 70-130 kg overview of the plan screens
const (
	DefaultTableMinKg  = 70.0
	DefaultTableMaxKg  = 130.0
	DefaultTableStepKg = 5.0

	maxTableRows = 500
)

// MealTotals is the recomputed subtotal of one meal
type MealTotals struct {
	Slot   types.MealSlot `json:"slot"`
	Totals types.Macros   `json:"totals"`
}

// Result is the outcome of scaling one day for one body weight
type Result struct {
	Weekday      types.Weekday `json:"weekday"`
	BodyWeightKg float64       `json:"body_weight_kg"`
	Factor       float64       `json:"factor"`
	Day          types.Day     `json:"day"`
	Targets      types.Macros  `json:"targets"`
	Totals       types.Macros  `json:"totals"`
	Meals        []MealTotals  `json:"meals"`
	// LinearTotals are the day totals after linear scaling, before correction
	LinearTotals types.Macros `json:"linear_totals"`
	Correction   Correction   `json:"correction"`
}

// Engine runs scaling invocations
type Engine struct {
	calc *macros.Calculator
	opts Options
	log  *slog.Logger
}

// NewEngine creates a scaling engine
func NewEngine(calc *macros.Calculator, opts Options, logger *slog.Logger) *Engine {
	return &Engine{
		calc: calc,
		opts: opts.normalized(),
		log:  logger,
	}
}

// Options returns the effective options after defaults were applied
func (e *Engine) Options() Options {
	return e.opts
}

// Calculator returns the macro calculator the engine measures with
func (e *Engine) Calculator() *macros.Calculator {
	return e.calc
}

// Scale produces the body-weight-adjusted copy of day with its totals
func (e *Engine) Scale(day types.Day, sc types.ScalingContext) Result {
	start := time.Now()

	day = clampAmounts(day)
	factor := e.ScaleFactor(sc.BodyWeightKg)
	targets := e.ResolveTargets(day, factor)
	linear := e.ApplyLinearScale(day, factor)
	linearTotals := e.calc.ForDay(linear)
	adjusted, corr := e.reconcile(linear, targets)

	weekday := sc.Day
	if weekday == "" {
		weekday = day.Weekday
	}
	adjusted.Weekday = weekday

	meals := make([]MealTotals, 0, len(adjusted.Meals))
	for _, meal := range adjusted.Meals {
		meals = append(meals, MealTotals{Slot: meal.Slot, Totals: e.calc.ForMeal(meal)})
	}

	res := Result{
		Weekday:      weekday,
		BodyWeightKg: sc.BodyWeightKg,
		Factor:       factor,
		Day:          adjusted,
		Targets:      targets,
		Totals:       e.calc.ForDay(adjusted),
		Meals:        meals,
		LinearTotals: linearTotals,
		Correction:   corr,
	}

	e.log.Debug("Scaled day",
		"weekday", weekday,
		"body_weight_kg", sc.BodyWeightKg,
		"factor", factor,
		"target_kcal", targets.Calories,
		"linear_kcal", math.Round(linearTotals.Calories),
		"total_kcal", math.Round(res.Totals.Calories),
		"correction", corr.Kind,
		"unresolved", corr.Unresolved,
		"duration", time.Since(start))

	if targets.Calories <= 0 {
		e.log.Warn("Day has no calorie target, returned unreconciled", "weekday", weekday)
	}

	return res
}

// Table scales the same day for every weight. Runs are independent and execute
// concurrently; results keep the order of weights.
func (e *Engine) Table(ctx context.Context, day types.Day, weekday types.Weekday, weights []float64) ([]Result, error) {
	start := time.Now()
	results := make([]Result, len(weights))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.TableConcurrency)
	for i, w := range weights {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = e.Scale(day, types.ScalingContext{BodyWeightKg: w, Day: weekday})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("weight table: %w", err)
	}

	e.log.Debug("Computed weight table", "weekday", weekday, "rows", len(results), "duration", time.Since(start))
	return results, nil
}

// WeightRange returns the weights from minKg to maxKg (inclusive) in steps of stepKg
func WeightRange(minKg, maxKg, stepKg float64) ([]float64, error) {
	if stepKg <= 0 || math.IsNaN(stepKg) {
		return nil, fmt.Errorf("step must be positive, got %v", stepKg)
	}
	if minKg <= 0 || maxKg < minKg {
		return nil, fmt.Errorf("invalid weight range %v-%v", minKg, maxKg)
	}
	n := int(math.Floor((maxKg-minKg)/stepKg+1e-9)) + 1
	if n > maxTableRows {
		return nil, fmt.Errorf("weight range has %d rows, limit is %d", n, maxTableRows)
	}

	weights := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		weights = append(weights, math.Round((minKg+float64(i)*stepKg)*100)/100)
	}
	return weights, nil
}
