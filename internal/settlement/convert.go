// Package settlement converts closed-session chip results into currency
// balances and simplifies them into a minimal set of pairwise transfers.
package settlement

import "math"

// Epsilon is the cent-level tolerance used uniformly for balance comparisons,
// the zero-sum precondition and the pot-overdraw slack check. Keep every
// float comparison in this package and its callers on this one constant.
const Epsilon = 0.01

// ChipsToUnits converts a chip amount to currency units at the given
// chips-per-unit rate.
func ChipsToUnits(chips int64, chipsPerUnit int64) float64 {
	if chipsPerUnit <= 0 {
		chipsPerUnit = 1
	}
	return float64(chips) / float64(chipsPerUnit)
}

// UnitsToChips converts currency units back to chips, rounding to the
// nearest whole chip.
func UnitsToChips(units float64, chipsPerUnit int64) int64 {
	if chipsPerUnit <= 0 {
		chipsPerUnit = 1
	}
	return int64(math.Round(units * float64(chipsPerUnit)))
}

// Round2 rounds a currency amount to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
