package scaling

import (
	"math"

	"github.com/noot-app/mealplan-scaler/internal/macros"
	"github.com/noot-app/mealplan-scaler/internal/types"
)

// CorrectionKind tells which way the reconciler moved the day
type CorrectionKind string

const (
	CorrectionNone    CorrectionKind = "none"
	CorrectionSurplus CorrectionKind = "surplus"
	CorrectionDeficit CorrectionKind = "deficit"
)

// Correction reports what the reconciler did. Gaps are signed (total minus target), so a
// positive gap is a surplus.
type Correction struct {
	Kind      CorrectionKind `json:"kind"`
	GapBefore float64        `json:"gap_before_kcal"`
	GapAfter  float64        `json:"gap_after_kcal"`
	Passes    int            `json:"passes"`
	// Unresolved is set when the remaining gap is still above tolerance, for example
	// because every ingredient left to resize is a discrete portion.
	Unresolved bool `json:"unresolved"`
	// Rejected is set when a pass was discarded because rounding widened the gap
	Rejected bool `json:"rejected,omitempty"`
}

// Reconcile closes the calorie gap between the linearly scaled day and the targets of the
// original day by resizing continuous ingredients. It never touches discrete amounts and
// never returns a day further from the target than scaled.
func (e *Engine) Reconcile(original, scaled types.Day, factor float64) (types.Day, Correction) {
	return e.reconcile(scaled, e.ResolveTargets(original, factor))
}

func (e *Engine) reconcile(scaled types.Day, targets types.Macros) (types.Day, Correction) {
	day := clampAmounts(scaled)
	totals := e.calc.ForDay(day)
	corr := Correction{Kind: CorrectionNone}
	corr.GapBefore = math.Round(totals.Calories) - targets.Calories
	corr.GapAfter = corr.GapBefore

	// nothing to aim for
	if targets.Calories <= 0 {
		return day, corr
	}

	for pass := 0; pass < e.opts.MaxPasses; pass++ {
		gap := math.Round(totals.Calories) - targets.Calories

		var kind CorrectionKind
		switch {
		case gap > e.opts.ToleranceKcal:
			kind = CorrectionSurplus
		case -gap > e.opts.ToleranceKcal:
			kind = CorrectionDeficit
		}
		if kind == "" {
			break
		}
		if corr.Kind == CorrectionNone {
			corr.Kind = kind
		}

		next, ok := e.redistribute(day, -gap)
		if !ok {
			corr.Unresolved = true
			break
		}

		nextTotals := e.calc.ForDay(next)
		before := math.Abs(totals.Calories - targets.Calories)
		after := math.Abs(nextTotals.Calories - targets.Calories)
		if after > before {
			corr.Rejected = true
			e.log.Debug("Discarded correction pass that widened the gap",
				"pass", pass+1,
				"gap_before", before,
				"gap_after", after)
			break
		}

		day, totals = next, nextTotals
		corr.Passes++
		if after == before {
			break
		}
	}

	corr.GapAfter = math.Round(totals.Calories) - targets.Calories
	if math.Abs(corr.GapAfter) > e.opts.ToleranceKcal {
		corr.Unresolved = true
	}
	return day, corr
}

// redistribute spreads deltaKcal (negative removes energy) over the meals in proportion to
// their adjustable energy. It reports false when no meal has anything adjustable.
func (e *Engine) redistribute(day types.Day, deltaKcal float64) (types.Day, bool) {
	out := day.Clone()

	adjustable := make([]float64, len(out.Meals))
	var total float64
	for i, meal := range out.Meals {
		adjustable[i] = e.calc.AdjustableKcal(meal)
		total += adjustable[i]
	}
	if total <= 0 {
		return day, false
	}

	for i := range out.Meals {
		if adjustable[i] <= 0 {
			continue
		}
		e.adjustMeal(&out.Meals[i], deltaKcal*adjustable[i]/total)
	}
	return out, true
}

// adjustMeal splits the meal's share over its continuous ingredients in proportion to
// their energy per unit, converting the energy delta to units and then grams.
func (e *Engine) adjustMeal(meal *types.Meal, shareKcal float64) {
	reg := e.calc.Units()

	perUnit := make([]float64, len(meal.Ingredients))
	var densitySum float64
	for j, ing := range meal.Ingredients {
		if reg.IsDiscrete(ing.Unit) {
			continue
		}
		k := macros.AtwaterKcal(e.calc.DensityPerUnit(ing))
		if k <= 0 {
			continue
		}
		perUnit[j] = k
		densitySum += k
	}
	if densitySum <= 0 {
		return
	}

	for j := range meal.Ingredients {
		if perUnit[j] <= 0 {
			continue
		}
		ing := &meal.Ingredients[j]
		ingKcal := shareKcal * perUnit[j] / densitySum
		deltaUnits := ingKcal / perUnit[j]
		deltaGrams := deltaUnits * reg.GramsPerUnit(*ing)
		ing.Amount = reg.RoundAmount(*ing, math.Max(0, ing.Amount+deltaGrams))
	}
}
