package calculator

import (
	"math"

	"github.com/shopspring/decimal"
)

// Guards shared by every stage. A zero or undefined denominator never leaks
// NaN or Inf into a result: it resolves to the sentinel documented at the
// call site and the caller records model.ErrGuardedZeroDivision where a table
// cell is affected.

// Round2 rounds v to two decimals, half away from zero. Non-finite input is returned unchanged.
func Round2(v float64) float64 {
	if !finite(v) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// stepReturn is the simple return from prev to cur; ok is false when prev is zero
// or either price is not finite.
func stepReturn(prev, cur float64) (r float64, ok bool) {
	if prev == 0 || !finite(prev) || !finite(cur) {
		return 0, false
	}
	return (cur - prev) / prev, true
}

// ratioOr returns num/den, or fallback when den is zero.
func ratioOr(num, den, fallback float64) float64 {
	if den == 0 {
		return fallback
	}
	return num / den
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// AllFinite reports whether every value in vs is a real number.
func AllFinite(vs []float64) bool {
	for _, v := range vs {
		if !finite(v) {
			return false
		}
	}
	return true
}
