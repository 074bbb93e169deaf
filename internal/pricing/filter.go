package pricing

import (
	"fmt"
	"math"
)

// InvalidInputWarning records a listing value the engine ignored. It is
// informational only and never aborts a computation.
type InvalidInputWarning struct {
	Index  int     `json:"index"`
	Field  string  `json:"field"`
	Value  float64 `json:"value"`
	Reason string  `json:"reason"`
}

// String describes the warning
func (w InvalidInputWarning) String() string {
	return fmt.Sprintf("listing %d: %s=%v ignored (%s)", w.Index, w.Field, w.Value, w.Reason)
}

// FilterResult is the validated view of a comparable set
type FilterResult struct {
	Prices    []float64 // ascending
	Odometers []float64 // positive odometer readings of kept listings
	Discarded int       // listings dropped because of their price
	Warnings  []InvalidInputWarning
}

// FilterComparables keeps listings with a finite positive price. Listings with
// a missing or invalid odometer still count for price statistics but are left
// out of the odometer average.
func FilterComparables(comparables []ComparableListing) FilterResult {
	result := FilterResult{
		Prices:    make([]float64, 0, len(comparables)),
		Odometers: make([]float64, 0, len(comparables)),
	}

	for i, c := range comparables {
		if reason := invalidReason(c.Price); reason != "" {
			result.Discarded++
			result.Warnings = append(result.Warnings, InvalidInputWarning{
				Index: i, Field: "price", Value: c.Price, Reason: reason,
			})
			continue
		}
		result.Prices = append(result.Prices, c.Price)

		if reason := invalidReason(c.OdometerKm); reason != "" {
			result.Warnings = append(result.Warnings, InvalidInputWarning{
				Index: i, Field: "odometer_km", Value: c.OdometerKm, Reason: reason,
			})
			continue
		}
		result.Odometers = append(result.Odometers, c.OdometerKm)
	}

	result.Prices = sortedCopy(result.Prices)
	return result
}

func invalidReason(v float64) string {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return "not finite"
	case v <= 0:
		return "not positive"
	default:
		return ""
	}
}
