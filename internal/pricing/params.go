package pricing

import (
	"fmt"
	"math"
	"strings"
)

// KmStep is one row of the kilometraje step table. A delta matches the step
// when it is below UpTo, or equal to it when Inclusive is set.
type KmStep struct {
	UpTo      float64 `json:"up_to" yaml:"up_to"`
	Inclusive bool    `json:"inclusive" yaml:"inclusive"`
	Percent   float64 `json:"percent" yaml:"percent"`
}

// matches reports whether delta falls into this step
func (s KmStep) matches(delta float64) bool {
	return delta < s.UpTo || (s.Inclusive && delta == s.UpTo)
}

// Params contains every tunable constant of the pricing engine
type Params struct {
	// Kilometraje
	ExpectedKmPerYear float64  `json:"expected_km_per_year"`
	KmSteps           []KmStep `json:"km_steps"`
	BeyondPercent     float64  `json:"beyond_percent"` // applied when no step matches
	ClampMin          float64  `json:"clamp_min"`
	ClampMax          float64  `json:"clamp_max"`

	// Distribution method selection
	QuartileThreshold  int       `json:"quartile_threshold"`
	DeviationThreshold int       `json:"deviation_threshold"`
	MinQuartileSample  int       `json:"min_quartile_sample"`
	DeviationCuts      []float64 `json:"deviation_cuts"` // multiples of stdDev around the mean
	FixedCuts          []float64 `json:"fixed_cuts"`     // ratios of the anchor price
	FixedFloor         float64   `json:"fixed_floor"`
	FixedCeiling       float64   `json:"fixed_ceiling"`
	TailPercentile     float64   `json:"tail_percentile"` // upper edge of the "high" bucket

	// Demand
	DemandHighAbove  int      `json:"demand_high_above"`
	DemandModerateAt int      `json:"demand_moderate_at"`
	NewVehicleMaxAge int      `json:"new_vehicle_max_age"`
	OldVehicleMinAge int      `json:"old_vehicle_min_age"`
	PopularBrands    []string `json:"popular_brands"`

	// Competition
	CompetitionHighAbove    int     `json:"competition_high_above"`
	CompetitionLowBelow     int     `json:"competition_low_below"`
	CompetitionVeryLowBelow int     `json:"competition_very_low_below"`
	CompetitionVeryHighAt   int     `json:"competition_very_high_at"`
	CompetitionExtremeAt    int     `json:"competition_extreme_at"`
	LowDispersion           float64 `json:"low_dispersion"`
	HighDispersion          float64 `json:"high_dispersion"`
	LowCV                   float64 `json:"low_cv"`
	HighCV                  float64 `json:"high_cv"`

	// Rounding of the headline average price
	PriceRoundingUnit float64 `json:"price_rounding_unit"`

	// ReferenceYear pins "current year" for age calculations. Zero means
	// the engine clock decides.
	ReferenceYear int `json:"reference_year"`
}

// DefaultKmSteps returns the standard kilometraje step table
func DefaultKmSteps() []KmStep {
	return []KmStep{
		{UpTo: -30000, Percent: 0.15},
		{UpTo: -15000, Percent: 0.10},
		{UpTo: -5000, Percent: 0.05},
		{UpTo: 5000, Inclusive: true, Percent: 0},
		{UpTo: 15000, Inclusive: true, Percent: -0.05},
		{UpTo: 30000, Inclusive: true, Percent: -0.10},
	}
}

// DefaultParams returns the recommended engine parameters
func DefaultParams() Params {
	return Params{
		ExpectedKmPerYear: 15000,
		KmSteps:           DefaultKmSteps(),
		BeyondPercent:     -0.15,
		ClampMin:          0.75,
		ClampMax:          1.15,

		QuartileThreshold:  12,
		DeviationThreshold: 5,
		MinQuartileSample:  4,
		DeviationCuts:      []float64{-1.5, -0.5, 0.5, 1.5},
		FixedCuts:          []float64{0.90, 0.98, 1.02, 1.10},
		FixedFloor:         0.80,
		FixedCeiling:       1.20,
		TailPercentile:     0.90,

		DemandHighAbove:  15,
		DemandModerateAt: 5,
		NewVehicleMaxAge: 2,
		OldVehicleMinAge: 6,
		PopularBrands: []string{
			"Toyota", "Nissan", "Volkswagen", "Chevrolet", "Honda",
			"Mazda", "Kia", "Hyundai", "Ford",
		},

		CompetitionHighAbove:    20,
		CompetitionLowBelow:     10,
		CompetitionVeryLowBelow: 5,
		CompetitionVeryHighAt:   35,
		CompetitionExtremeAt:    50,
		LowDispersion:           0.20,
		HighDispersion:          0.45,
		LowCV:                   0.08,
		HighCV:                  0.18,

		PriceRoundingUnit: 100,
	}
}

// Validate checks that the parameters describe a usable engine
func (p Params) Validate() error {
	if p.ExpectedKmPerYear <= 0 {
		return fmt.Errorf("expected km per year must be positive: %.0f", p.ExpectedKmPerYear)
	}
	if p.ClampMin <= 0 || p.ClampMax < p.ClampMin {
		return fmt.Errorf("invalid clamp bounds: min=%.3f max=%.3f", p.ClampMin, p.ClampMax)
	}
	if err := validateKmSteps(p.KmSteps, p.BeyondPercent); err != nil {
		return err
	}
	if p.DeviationThreshold < 1 || p.QuartileThreshold <= p.DeviationThreshold {
		return fmt.Errorf("invalid method thresholds: deviation=%d quartile=%d",
			p.DeviationThreshold, p.QuartileThreshold)
	}
	if p.MinQuartileSample < 1 {
		return fmt.Errorf("min quartile sample must be at least 1: %d", p.MinQuartileSample)
	}
	if err := validateCuts("deviation", p.DeviationCuts); err != nil {
		return err
	}
	if err := validateCuts("fixed", p.FixedCuts); err != nil {
		return err
	}
	if p.FixedCuts[0] <= 0 || p.FixedFloor <= 0 || p.FixedFloor > p.FixedCuts[0] ||
		p.FixedCeiling < p.FixedCuts[len(p.FixedCuts)-1] {
		return fmt.Errorf("fixed band floor/ceiling must enclose the fixed cuts")
	}
	if !(p.TailPercentile > 0.75 && p.TailPercentile < 1) {
		return fmt.Errorf("tail percentile must be in (0.75, 1): %.2f", p.TailPercentile)
	}
	if p.DemandModerateAt < 0 || p.DemandHighAbove < p.DemandModerateAt {
		return fmt.Errorf("invalid demand thresholds: moderate=%d high=%d", p.DemandModerateAt, p.DemandHighAbove)
	}
	if p.NewVehicleMaxAge < 0 || p.OldVehicleMinAge <= p.NewVehicleMaxAge {
		return fmt.Errorf("invalid vehicle age bands: new<=%d old>=%d", p.NewVehicleMaxAge, p.OldVehicleMinAge)
	}
	if p.CompetitionLowBelow > p.CompetitionHighAbove ||
		p.CompetitionVeryLowBelow > p.CompetitionLowBelow ||
		p.CompetitionVeryHighAt <= p.CompetitionHighAbove ||
		p.CompetitionExtremeAt < p.CompetitionVeryHighAt {
		return fmt.Errorf("invalid competition count thresholds")
	}
	if p.LowDispersion < 0 || p.HighDispersion < p.LowDispersion || p.LowCV < 0 || p.HighCV < p.LowCV {
		return fmt.Errorf("invalid competition dispersion thresholds")
	}
	if p.PriceRoundingUnit <= 0 {
		return fmt.Errorf("price rounding unit must be positive: %.2f", p.PriceRoundingUnit)
	}
	return nil
}

// validateKmSteps enforces increasing bounds and non-increasing percentages,
// which keeps the factor monotonic in deltaKm.
func validateKmSteps(steps []KmStep, beyond float64) error {
	if len(steps) == 0 {
		return fmt.Errorf("kilometraje step table is empty")
	}
	for i, s := range steps {
		if math.IsNaN(s.UpTo) || math.IsNaN(s.Percent) {
			return fmt.Errorf("kilometraje step %d is not a number", i)
		}
		if i == 0 {
			continue
		}
		prev := steps[i-1]
		if s.UpTo <= prev.UpTo {
			return fmt.Errorf("kilometraje step %d bound %.0f does not increase", i, s.UpTo)
		}
		if s.Percent > prev.Percent {
			return fmt.Errorf("kilometraje step %d percent %.3f increases", i, s.Percent)
		}
	}
	if beyond > steps[len(steps)-1].Percent {
		return fmt.Errorf("beyond percent %.3f exceeds last step", beyond)
	}
	return nil
}

func validateCuts(name string, cuts []float64) error {
	if len(cuts) != BucketCount-1 {
		return fmt.Errorf("%s cuts: want %d values, got %d", name, BucketCount-1, len(cuts))
	}
	for i := 1; i < len(cuts); i++ {
		if cuts[i] < cuts[i-1] {
			return fmt.Errorf("%s cuts must be non-decreasing", name)
		}
	}
	return nil
}

// IsPopularBrand reports whether brand is on the popular-brand list.
// Matching ignores case and surrounding whitespace.
func (p Params) IsPopularBrand(brand string) bool {
	brand = strings.TrimSpace(brand)
	if brand == "" {
		return false
	}
	for _, b := range p.PopularBrands {
		if strings.EqualFold(strings.TrimSpace(b), brand) {
			return true
		}
	}
	return false
}
