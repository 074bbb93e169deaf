package pricing

import (
	"math"

	"github.com/shopspring/decimal"
)

// RoundToUnit rounds a currency amount to the nearest multiple of unit,
// halves away from zero. Decimal arithmetic keeps 123450 from drifting to
// 123400 through binary float error. Non-finite amounts come back unchanged.
func RoundToUnit(amount, unit float64) float64 {
	if unit <= 0 || !isFinite(amount) || !isFinite(unit) {
		return amount
	}
	u := decimal.NewFromFloat(unit)
	return decimal.NewFromFloat(amount).Div(u).Round(0).Mul(u).InexactFloat64()
}

// applyFactor multiplies a price by an adjustment factor in decimal space.
// Non-finite inputs come back unchanged and an overflowing product saturates
// at the largest float.
func applyFactor(price, factor float64) float64 {
	if !isFinite(price) || !isFinite(factor) {
		return price
	}
	return saturate(decimal.NewFromFloat(price).Mul(decimal.NewFromFloat(factor)).InexactFloat64())
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// saturate maps ±Inf onto ±MaxFloat64 so results stay JSON-encodable
func saturate(v float64) float64 {
	switch {
	case math.IsInf(v, 1):
		return math.MaxFloat64
	case math.IsInf(v, -1):
		return -math.MaxFloat64
	default:
		return v
	}
}
