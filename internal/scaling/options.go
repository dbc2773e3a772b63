package scaling

import "math"

// Defaults for a plan authored at a 100 kg reference body weight
const (
	DefaultReferenceWeightKg = 100.0
	DefaultMinFactor         = 0.5
	DefaultMaxFactor         = 1.5
	DefaultToleranceKcal     = 5.0
	DefaultMaxPasses         = 1
	DefaultTableConcurrency  = 8

	// maxPassesLimit guards the optional convergence loop
	maxPassesLimit = 10
)

// Options tune the scaling engine
type Options struct {
	ReferenceWeightKg float64
	MinFactor         float64
	MaxFactor         float64
	// ToleranceKcal is the calorie gap below which no correction is attempted
	ToleranceKcal float64
	// MaxPasses is the number of correction passes. 1 keeps the single-pass behaviour
	// where a small residual gap is accepted.
	MaxPasses        int
	TableConcurrency int
}

// DefaultOptions returns the reference configuration
func DefaultOptions() Options {
	return Options{
		ReferenceWeightKg: DefaultReferenceWeightKg,
		MinFactor:         DefaultMinFactor,
		MaxFactor:         DefaultMaxFactor,
		ToleranceKcal:     DefaultToleranceKcal,
		MaxPasses:         DefaultMaxPasses,
		TableConcurrency:  DefaultTableConcurrency,
	}
}

// normalized replaces unusable values with defaults
func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.ReferenceWeightKg <= 0 || math.IsNaN(o.ReferenceWeightKg) {
		o.ReferenceWeightKg = d.ReferenceWeightKg
	}
	if o.MinFactor <= 0 || o.MaxFactor <= 0 || o.MinFactor > o.MaxFactor {
		o.MinFactor, o.MaxFactor = d.MinFactor, d.MaxFactor
	}
	if o.ToleranceKcal < 0 {
		o.ToleranceKcal = d.ToleranceKcal
	}
	if o.MaxPasses < 1 {
		o.MaxPasses = d.MaxPasses
	}
	if o.MaxPasses > maxPassesLimit {
		o.MaxPasses = maxPassesLimit
	}
	if o.TableConcurrency < 1 {
		o.TableConcurrency = d.TableConcurrency
	}
	return o
}

// ScaleFactor maps a body weight onto the clamped linear scale factor.
// Weights that are not positive numbers resolve to the lower bound.
func (o Options) ScaleFactor(bodyWeightKg float64) float64 {
	o = o.normalized()
	if math.IsNaN(bodyWeightKg) || bodyWeightKg <= 0 {
		return o.MinFactor
	}
	return math.Min(o.MaxFactor, math.Max(o.MinFactor, bodyWeightKg/o.ReferenceWeightKg))
}

// ScaleFactor uses the default reference weight and clamp bounds
func ScaleFactor(bodyWeightKg float64) float64 {
	return DefaultOptions().ScaleFactor(bodyWeightKg)
}
