package strategy

import (
	"math"
	"time"
)

// SafeRange bounds the speed ratio a policy may apply. Min and Max always
// bracket 1.0.
type SafeRange struct {
	Min float64
	Max float64
}

// Clamp pulls a value into the range and reports whether it moved.
func (r SafeRange) Clamp(v float64) (float64, bool) {
	if v < r.Min {
		return r.Min, true
	}
	if v > r.Max {
		return r.Max, true
	}
	return v, false
}

// Decision records how a requested speed ratio was resolved.
type Decision struct {
	// Requested is the raw natural/target ratio.
	Requested float64
	// Applied is the ratio after the dead zone and range clamp.
	Applied float64
	// Clamped reports that the request fell outside the safe range.
	Clamped bool
}

// Decide resolves the speed ratio that maps a naturally paced clip onto its
// cue window. Ratios within threshold of 1.0 collapse to no stretch at all;
// ratios outside the safe range clamp to the nearest bound.
func Decide(natural, target time.Duration, bounds SafeRange, threshold float64) Decision {
	if natural <= 0 || target <= 0 {
		return Decision{Requested: 1.0, Applied: 1.0}
	}

	requested := natural.Seconds() / target.Seconds()
	if math.Abs(requested-1.0) <= threshold {
		return Decision{Requested: requested, Applied: 1.0}
	}

	applied, clamped := bounds.Clamp(requested)
	return Decision{Requested: requested, Applied: applied, Clamped: clamped}
}

// relativeError is the duration miss as a fraction of the target window.
func relativeError(actual, target time.Duration) float64 {
	if target <= 0 {
		return 0
	}
	return math.Abs(actual.Seconds()-target.Seconds()) / target.Seconds()
}

// clampBias bounds a length-bias magnitude.
func clampBias(bias, limit float64) float64 {
	if limit <= 0 {
		return bias
	}
	if bias > limit {
		return limit
	}
	if bias < -limit {
		return -limit
	}
	return bias
}
