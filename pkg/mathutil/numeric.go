// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/water-builder/pkg/constants"
)

// Round rounds a value to three decimals, the precision used when salt
// quantities and ion concentrations are displayed.
func Round(val float64) float64 {
	return math.Round(val*constants.DisplayPrecision) / constants.DisplayPrecision
}

// IsZero checks if a value is effectively zero (within ppm tolerance)
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.PPMTolerance
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// Clamp limits val to the closed interval [lo, hi].
func Clamp(val, lo, hi float64) float64 {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// IsFinite reports whether val is neither NaN nor infinite.
func IsFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}

