package config

import (
	"slices"

	"carpulse/internal/pricing"
)

// PricingConfig exposes every tunable constant of the pricing engine
type PricingConfig struct {
	ExpectedKmPerYear float64          `yaml:"expected_km_per_year" envconfig:"EXPECTED_KM_PER_YEAR"`
	KmSteps           []pricing.KmStep `yaml:"kilometraje_steps" ignored:"true"`
	BeyondPercent     float64          `yaml:"beyond_percent" envconfig:"BEYOND_PERCENT"`
	ClampMin          float64          `yaml:"clamp_min" envconfig:"CLAMP_MIN"`
	ClampMax          float64          `yaml:"clamp_max" envconfig:"CLAMP_MAX"`

	QuartileThreshold  int       `yaml:"quartile_threshold" envconfig:"QUARTILE_THRESHOLD"`
	DeviationThreshold int       `yaml:"deviation_threshold" envconfig:"DEVIATION_THRESHOLD"`
	MinQuartileSample  int       `yaml:"min_quartile_sample" envconfig:"MIN_QUARTILE_SAMPLE"`
	DeviationCuts      []float64 `yaml:"deviation_cuts" envconfig:"DEVIATION_CUTS"`
	FixedCuts          []float64 `yaml:"fixed_cuts" envconfig:"FIXED_CUTS"`
	FixedFloor         float64   `yaml:"fixed_floor" envconfig:"FIXED_FLOOR"`
	FixedCeiling       float64   `yaml:"fixed_ceiling" envconfig:"FIXED_CEILING"`
	TailPercentile     float64   `yaml:"tail_percentile" envconfig:"TAIL_PERCENTILE"`

	DemandHighAbove  int      `yaml:"demand_high_above" envconfig:"DEMAND_HIGH_ABOVE"`
	DemandModerateAt int      `yaml:"demand_moderate_at" envconfig:"DEMAND_MODERATE_AT"`
	NewVehicleMaxAge int      `yaml:"new_vehicle_max_age" envconfig:"NEW_VEHICLE_MAX_AGE"`
	OldVehicleMinAge int      `yaml:"old_vehicle_min_age" envconfig:"OLD_VEHICLE_MIN_AGE"`
	PopularBrands    []string `yaml:"popular_brands" envconfig:"POPULAR_BRANDS"`

	CompetitionHighAbove    int     `yaml:"competition_high_above" envconfig:"COMPETITION_HIGH_ABOVE"`
	CompetitionLowBelow     int     `yaml:"competition_low_below" envconfig:"COMPETITION_LOW_BELOW"`
	CompetitionVeryLowBelow int     `yaml:"competition_very_low_below" envconfig:"COMPETITION_VERY_LOW_BELOW"`
	CompetitionVeryHighAt   int     `yaml:"competition_very_high_at" envconfig:"COMPETITION_VERY_HIGH_AT"`
	CompetitionExtremeAt    int     `yaml:"competition_extreme_at" envconfig:"COMPETITION_EXTREME_AT"`
	LowDispersion           float64 `yaml:"low_dispersion" envconfig:"LOW_DISPERSION"`
	HighDispersion          float64 `yaml:"high_dispersion" envconfig:"HIGH_DISPERSION"`
	LowCV                   float64 `yaml:"low_cv" envconfig:"LOW_CV"`
	HighCV                  float64 `yaml:"high_cv" envconfig:"HIGH_CV"`

	PriceRoundingUnit float64 `yaml:"price_rounding_unit" envconfig:"PRICE_ROUNDING_UNIT"`
	ReferenceYear     int     `yaml:"reference_year" envconfig:"REFERENCE_YEAR"`
}

// DefaultPricing returns the pricing section matching pricing.DefaultParams
func DefaultPricing() PricingConfig {
	p := pricing.DefaultParams()
	return PricingConfig{
		ExpectedKmPerYear:       p.ExpectedKmPerYear,
		KmSteps:                 p.KmSteps,
		BeyondPercent:           p.BeyondPercent,
		ClampMin:                p.ClampMin,
		ClampMax:                p.ClampMax,
		QuartileThreshold:       p.QuartileThreshold,
		DeviationThreshold:      p.DeviationThreshold,
		MinQuartileSample:       p.MinQuartileSample,
		DeviationCuts:           p.DeviationCuts,
		FixedCuts:               p.FixedCuts,
		FixedFloor:              p.FixedFloor,
		FixedCeiling:            p.FixedCeiling,
		TailPercentile:          p.TailPercentile,
		DemandHighAbove:         p.DemandHighAbove,
		DemandModerateAt:        p.DemandModerateAt,
		NewVehicleMaxAge:        p.NewVehicleMaxAge,
		OldVehicleMinAge:        p.OldVehicleMinAge,
		PopularBrands:           p.PopularBrands,
		CompetitionHighAbove:    p.CompetitionHighAbove,
		CompetitionLowBelow:     p.CompetitionLowBelow,
		CompetitionVeryLowBelow: p.CompetitionVeryLowBelow,
		CompetitionVeryHighAt:   p.CompetitionVeryHighAt,
		CompetitionExtremeAt:    p.CompetitionExtremeAt,
		LowDispersion:           p.LowDispersion,
		HighDispersion:          p.HighDispersion,
		LowCV:                   p.LowCV,
		HighCV:                  p.HighCV,
		PriceRoundingUnit:       p.PriceRoundingUnit,
		ReferenceYear:           p.ReferenceYear,
	}
}

// Params converts the section into engine parameters
func (c PricingConfig) Params() pricing.Params {
	return pricing.Params{
		ExpectedKmPerYear:       c.ExpectedKmPerYear,
		KmSteps:                 slices.Clone(c.KmSteps),
		BeyondPercent:           c.BeyondPercent,
		ClampMin:                c.ClampMin,
		ClampMax:                c.ClampMax,
		QuartileThreshold:       c.QuartileThreshold,
		DeviationThreshold:      c.DeviationThreshold,
		MinQuartileSample:       c.MinQuartileSample,
		DeviationCuts:           slices.Clone(c.DeviationCuts),
		FixedCuts:               slices.Clone(c.FixedCuts),
		FixedFloor:              c.FixedFloor,
		FixedCeiling:            c.FixedCeiling,
		TailPercentile:          c.TailPercentile,
		DemandHighAbove:         c.DemandHighAbove,
		DemandModerateAt:        c.DemandModerateAt,
		NewVehicleMaxAge:        c.NewVehicleMaxAge,
		OldVehicleMinAge:        c.OldVehicleMinAge,
		PopularBrands:           slices.Clone(c.PopularBrands),
		CompetitionHighAbove:    c.CompetitionHighAbove,
		CompetitionLowBelow:     c.CompetitionLowBelow,
		CompetitionVeryLowBelow: c.CompetitionVeryLowBelow,
		CompetitionVeryHighAt:   c.CompetitionVeryHighAt,
		CompetitionExtremeAt:    c.CompetitionExtremeAt,
		LowDispersion:           c.LowDispersion,
		HighDispersion:          c.HighDispersion,
		LowCV:                   c.LowCV,
		HighCV:                  c.HighCV,
		PriceRoundingUnit:       c.PriceRoundingUnit,
		ReferenceYear:           c.ReferenceYear,
	}
}
