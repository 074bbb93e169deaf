package pricing

import "math"

// ExpectedOdometerKm returns the mileage a vehicle of the given age is
// expected to show. Negative ages count as zero.
func ExpectedOdometerKm(ageYears int, params Params) float64 {
	if ageYears < 0 {
		ageYears = 0
	}
	return float64(ageYears) * params.ExpectedKmPerYear
}

// StepPercent looks deltaKm up in the step table. NaN is treated as no delta.
func StepPercent(deltaKm float64, params Params) float64 {
	if math.IsNaN(deltaKm) {
		deltaKm = 0
	}
	for _, step := range params.KmSteps {
		if step.matches(deltaKm) {
			return step.Percent
		}
	}
	return params.BeyondPercent
}

// KilometrajeFactor maps deltaKm to the multiplicative price factor, always
// within [ClampMin, ClampMax].
func KilometrajeFactor(deltaKm float64, params Params) float64 {
	return clamp(1+StepPercent(deltaKm, params), params.ClampMin, params.ClampMax)
}

// ComputeAdjustment builds the full adjustment result for a base price
func ComputeAdjustment(basePrice, selectedOdometerKm float64, ageYears int, params Params) AdjustmentResult {
	if math.IsNaN(selectedOdometerKm) || math.IsInf(selectedOdometerKm, 0) || selectedOdometerKm < 0 {
		selectedOdometerKm = 0
	}
	if math.IsNaN(basePrice) || math.IsInf(basePrice, 0) || basePrice < 0 {
		basePrice = 0
	}

	expected := ExpectedOdometerKm(ageYears, params)
	delta := selectedOdometerKm - expected
	factor := KilometrajeFactor(delta, params)

	return AdjustmentResult{
		Factor:             factor,
		PercentAdjustment:  RoundToUnit((factor-1)*100, 0.01),
		ExpectedOdometerKm: expected,
		DeltaKm:            delta,
		BasePrice:          basePrice,
		AdjustedPrice:      applyFactor(basePrice, factor),
	}
}
